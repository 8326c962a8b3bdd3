package queue

import (
	"context"
	"time"

	"github.com/dejanvasic/shopgram/internal/repository"
	"github.com/dejanvasic/shopgram/internal/service"
	"github.com/dejanvasic/shopgram/internal/transfer"
)

const TaskTypeDispatchPost = "dispatch:post"

type DispatchPostPayload struct {
	ScheduledPostID int64 `json:"scheduled_post_id"`
}

// Publisher is what the dispatcher needs from the publishing pipeline.
// Satisfied by service.PublishService.
type Publisher interface {
	Publish(ctx context.Context, platform string, productID int64, opts service.PublishOptions) (*transfer.PublishResult, error)
}

// EnqueueFunc re-enqueues a dispatch task with a delay. main wires this
// to the asynq client; tests swap in a recorder.
type EnqueueFunc func(payload DispatchPostPayload, delay time.Duration) error

type Queue struct {
	sp      repository.ScheduledPostRepository
	pub     Publisher
	enqueue EnqueueFunc
	now     func() time.Time
}

func NewQueue(sp repository.ScheduledPostRepository, pub Publisher, enqueue EnqueueFunc) *Queue {
	return &Queue{
		sp:      sp,
		pub:     pub,
		enqueue: enqueue,
		now:     time.Now,
	}
}
