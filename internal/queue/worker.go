package queue

import (
	"context"
	"encoding/json"
	"log"

	"github.com/hibiken/asynq"

	"github.com/dejanvasic/shopgram/internal/models"
	"github.com/dejanvasic/shopgram/internal/service"
)

func (q *Queue) HandleDispatchPostTask(ctx context.Context, task *asynq.Task) error {
	var payload DispatchPostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	return q.Dispatch(ctx, payload.ScheduledPostID)
}

// Dispatch runs one scheduled-post trigger. A record that fires early is
// pushed back for the remainder of the wait; a due record gets exactly
// one publish attempt. On failure the record keeps the vendor message
// and waits for a human — a blind retry could create a duplicate post,
// so the error is swallowed rather than returned to asynq.
func (q *Queue) Dispatch(ctx context.Context, scheduledPostID int64) error {
	rec, err := q.sp.GetByID(ctx, scheduledPostID)
	if err != nil {
		return err
	}
	if rec == nil {
		log.Printf("Scheduled post %d no longer exists, skipping", scheduledPostID)
		return nil
	}

	now := q.now()
	if now.Before(rec.ScheduledFor) {
		return q.enqueue(DispatchPostPayload{ScheduledPostID: rec.ID}, rec.ScheduledFor.Sub(now))
	}

	if err := q.sp.UpdateStatus(ctx, rec.ID, models.ScheduledPostStatusProcessing, ""); err != nil {
		return err
	}

	result, err := q.pub.Publish(ctx, rec.Platform, rec.ProductID, service.PublishOptions{})
	if err != nil {
		log.Printf("Error publishing scheduled post %d to %s: %v", rec.ID, rec.Platform, err)
		if updateErr := q.sp.UpdateStatus(ctx, rec.ID, models.ScheduledPostStatusFailed, err.Error()); updateErr != nil {
			log.Printf("Error recording failure for scheduled post %d: %v", rec.ID, updateErr)
		}
		return nil
	}

	log.Printf("Published scheduled post %d to %s as %s", rec.ID, result.Platform, result.ID)
	return q.sp.Remove(ctx, rec.ID)
}
