package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/h2non/filetype"
	gonanoid "github.com/matoous/go-nanoid/v2"
	cfg "github.com/socialmagic/content-engine/configs"
	"github.com/socialmagic/content-engine/internal/apperrors"
)

// MediaStorage is the blob-store capability: bytes in, public URL out.
// Objects belong to the post that created them until it is regenerated,
// at which point the old object is deleted before the new upload.
type MediaStorage interface {
	UploadGeneratedMedia(ctx context.Context, userID, postID int64, mediaType string, data []byte) (string, error)
	GenerateVideoThumbnail(ctx context.Context, userID, postID int64, videoURL string) (string, error)
	Delete(ctx context.Context, url string) error
}

type s3Storage struct {
	config cfg.Config
}

func NewS3Storage(config cfg.Config) MediaStorage {
	return &s3Storage{config: config}
}

func (s *s3Storage) client(ctx context.Context) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(s.config.S3.AccessKey, s.config.S3.SecretKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", s.config.S3.AccountID))
	}), nil
}

func (s *s3Storage) UploadGeneratedMedia(ctx context.Context, userID, postID int64, mediaType string, data []byte) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", err
	}

	contentType := "image/jpeg"
	extension := "jpg"
	if mediaType == "video" {
		contentType = "video/mp4"
		extension = "mp4"
	}
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		contentType = kind.MIME.Value
		extension = kind.Extension
	}

	key := fmt.Sprintf("generated/%d/%d/%s.%s", userID, postID, id, extension)

	client, err := s.client(ctx)
	if err != nil {
		return "", apperrors.NewProvider("storage", err)
	}

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.S3.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		slog.Info(err.Error())
		return "", apperrors.NewProvider("storage", err)
	}

	return fmt.Sprintf("%s/%s", strings.TrimRight(s.config.S3.PublicBaseURL, "/"), key), nil
}

// GenerateVideoThumbnail reserves a thumbnail object for a stored video.
// TODO: extract a real frame with ffmpeg instead of reserving an empty key.
func (s *s3Storage) GenerateVideoThumbnail(ctx context.Context, userID, postID int64, videoURL string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("thumbnails/%d/%d/%s.jpg", userID, postID, id)

	client, err := s.client(ctx)
	if err != nil {
		return "", apperrors.NewProvider("storage", err)
	}

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.S3.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(nil),
		ContentType: aws.String("image/jpeg"),
	})
	if err != nil {
		slog.Info(err.Error())
		return "", apperrors.NewProvider("storage", err)
	}

	return fmt.Sprintf("%s/%s", strings.TrimRight(s.config.S3.PublicBaseURL, "/"), key), nil
}

func (s *s3Storage) Delete(ctx context.Context, url string) error {
	base := strings.TrimRight(s.config.S3.PublicBaseURL, "/") + "/"
	key := strings.TrimPrefix(url, base)
	if key == url || key == "" {
		return fmt.Errorf("url %q is not in the media bucket", url)
	}

	client, err := s.client(ctx)
	if err != nil {
		return apperrors.NewProvider("storage", err)
	}

	_, err = client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.config.S3.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		slog.Info(err.Error())
		return apperrors.NewProvider("storage", err)
	}
	return nil
}
