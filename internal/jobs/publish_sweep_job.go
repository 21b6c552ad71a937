package jobs

import (
	"context"
	"log/slog"
	"time"

	config "github.com/socialmagic/content-engine/configs"
	"github.com/socialmagic/content-engine/internal/queue"
	"github.com/socialmagic/content-engine/internal/repository"
)

// PublishSweepJob finds posts whose publish slot fell inside the last
// sweep interval and hands each one to the queue. The window is bounded
// on both sides so a post missed during an outage surfaces in the
// overdue listing instead of publishing hours late unannounced.
type PublishSweepJob struct {
	cfg    config.Config
	posts  repository.PostRepository
	client queue.Enqueuer
}

func NewPublishSweepJob(cfg config.Config, posts repository.PostRepository, client queue.Enqueuer) *PublishSweepJob {
	return &PublishSweepJob{cfg: cfg, posts: posts, client: client}
}

func (j *PublishSweepJob) Run() {
	ctx := context.Background()
	now := time.Now().UTC()
	from := now.Add(-j.cfg.Scheduling.PublishSweepInterval)

	posts, err := j.posts.ListScheduledInWindow(ctx, from, now)
	if err != nil {
		slog.Error("publish sweep query failed", "error", err)
		return
	}

	for _, post := range posts {
		err := queue.EnqueuePublishPost(j.client, queue.PublishPostPayload{PostID: post.ID})
		if err != nil {
			slog.Error("failed to enqueue publish", "post_id", post.ID, "error", err)
		}
	}

	if len(posts) > 0 {
		slog.Info("publish sweep enqueued posts", "count", len(posts))
	}
}
