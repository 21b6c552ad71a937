package queue

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// Enqueuer is the slice of asynq.Client the pipeline needs. Jobs and
// handlers take it instead of the concrete client so tests can capture
// enqueues.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

func enqueue(client Enqueuer, taskType string, payload any, opts ...asynq.Option) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	if _, err := client.Enqueue(asynq.NewTask(taskType, data), opts...); err != nil {
		return err
	}

	slog.Info("task enqueued", "type", taskType)
	return nil
}

func EnqueueGenerateUserWeek(client Enqueuer, payload GenerateUserWeekPayload) error {
	return enqueue(client, TaskTypeGenerateUserWeek, payload)
}

func EnqueueGeneratePost(client Enqueuer, payload GeneratePostPayload) error {
	return enqueue(client, TaskTypeGeneratePost, payload)
}

func EnqueueRegeneratePost(client Enqueuer, payload RegeneratePostPayload) error {
	return enqueue(client, TaskTypeRegeneratePost, payload)
}

func EnqueueScheduleApproved(client Enqueuer, payload ScheduleApprovedPayload) error {
	return enqueue(client, TaskTypeScheduleApproved, payload)
}

func EnqueuePublishPost(client Enqueuer, payload PublishPostPayload) error {
	return enqueue(client, TaskTypePublishPost, payload)
}

func EnqueueRefreshMetrics(client Enqueuer, payload RefreshMetricsPayload, delay time.Duration) error {
	return enqueue(client, TaskTypeRefreshMetrics, payload, asynq.ProcessIn(delay))
}

func EnqueueWeeklyDigest(client Enqueuer, payload WeeklyDigestPayload) error {
	return enqueue(client, TaskTypeWeeklyDigest, payload)
}
