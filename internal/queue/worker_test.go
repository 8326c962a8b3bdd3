package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dejanvasic/shopgram/internal/models"
	"github.com/dejanvasic/shopgram/internal/service"
	"github.com/dejanvasic/shopgram/internal/transfer"
)

type statusChange struct {
	ID           int64
	Status       string
	ErrorMessage string
}

type fakeScheduledPostRepo struct {
	records       map[int64]*models.ScheduledPost
	statusChanges []statusChange
	removed       []int64
}

func (r *fakeScheduledPostRepo) GetByID(ctx context.Context, id int64) (*models.ScheduledPost, error) {
	return r.records[id], nil
}

func (r *fakeScheduledPostRepo) Create(ctx context.Context, sp *models.ScheduledPost) (int64, error) {
	return sp.ID, nil
}

func (r *fakeScheduledPostRepo) List(ctx context.Context) ([]*models.ScheduledPost, error) {
	return nil, nil
}

func (r *fakeScheduledPostRepo) UpdateStatus(ctx context.Context, id int64, status, errorMessage string) error {
	r.statusChanges = append(r.statusChanges, statusChange{ID: id, Status: status, ErrorMessage: errorMessage})
	return nil
}

func (r *fakeScheduledPostRepo) MarkStaleProcessingFailed(ctx context.Context, olderThan time.Time, errorMessage string) (int64, error) {
	return 0, nil
}

func (r *fakeScheduledPostRepo) Remove(ctx context.Context, id int64) error {
	r.removed = append(r.removed, id)
	return nil
}

type fakePublisher struct {
	calls []string
	err   error
}

func (p *fakePublisher) Publish(ctx context.Context, platform string, productID int64, opts service.PublishOptions) (*transfer.PublishResult, error) {
	p.calls = append(p.calls, platform)
	if p.err != nil {
		return nil, p.err
	}
	return &transfer.PublishResult{OK: true, Platform: platform, ID: "post-1"}, nil
}

type enqueued struct {
	Payload DispatchPostPayload
	Delay   time.Duration
}

func newTestQueue(repo *fakeScheduledPostRepo, pub *fakePublisher, now time.Time) (*Queue, *[]enqueued) {
	var requeued []enqueued
	q := NewQueue(repo, pub, func(payload DispatchPostPayload, delay time.Duration) error {
		requeued = append(requeued, enqueued{Payload: payload, Delay: delay})
		return nil
	})
	q.now = func() time.Time { return now }
	return q, &requeued
}

func record(id int64, scheduledFor time.Time) *models.ScheduledPost {
	return &models.ScheduledPost{
		ID:           id,
		ProductID:    7,
		Platform:     models.PlatformFacebook,
		ScheduledFor: scheduledFor,
		Status:       models.ScheduledPostStatusScheduled,
	}
}

func TestDispatchBeforeDueTimeDoesNotPublish(t *testing.T) {
	now := time.Unix(1700000000, 0)
	repo := &fakeScheduledPostRepo{records: map[int64]*models.ScheduledPost{
		1: record(1, now.Add(60*time.Second)),
	}}
	pub := &fakePublisher{}
	q, requeued := newTestQueue(repo, pub, now)

	if err := q.Dispatch(context.Background(), 1); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	if len(pub.calls) != 0 {
		t.Errorf("publisher must not run before the due time")
	}
	if len(*requeued) != 1 {
		t.Fatalf("expected 1 re-enqueue, got %d", len(*requeued))
	}
	if (*requeued)[0].Delay != 60*time.Second {
		t.Errorf("re-enqueue delay = %v, want 60s", (*requeued)[0].Delay)
	}
	if len(repo.statusChanges) != 0 {
		t.Errorf("status must not change on an early trigger")
	}
}

func TestDispatchAtDueTimePublishesOnceAndDeletes(t *testing.T) {
	now := time.Unix(1700000000, 0)
	repo := &fakeScheduledPostRepo{records: map[int64]*models.ScheduledPost{
		1: record(1, now),
	}}
	pub := &fakePublisher{}
	q, requeued := newTestQueue(repo, pub, now)

	if err := q.Dispatch(context.Background(), 1); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	if len(pub.calls) != 1 {
		t.Fatalf("expected exactly 1 publish, got %d", len(pub.calls))
	}
	if len(repo.statusChanges) != 1 || repo.statusChanges[0].Status != models.ScheduledPostStatusProcessing {
		t.Errorf("record must be marked processing before the attempt: %+v", repo.statusChanges)
	}
	if len(repo.removed) != 1 || repo.removed[0] != 1 {
		t.Errorf("record must be deleted on success, removed = %v", repo.removed)
	}
	if len(*requeued) != 0 {
		t.Errorf("no re-enqueue expected at the due time")
	}
}

func TestDispatchFailureRecordsMessageWithoutRetry(t *testing.T) {
	now := time.Unix(1700000000, 0)
	repo := &fakeScheduledPostRepo{records: map[int64]*models.ScheduledPost{
		1: record(1, now.Add(-time.Minute)),
	}}
	pub := &fakePublisher{err: errors.New("Invalid parameter")}
	q, _ := newTestQueue(repo, pub, now)

	// A nil return keeps asynq from re-running the task.
	if err := q.Dispatch(context.Background(), 1); err != nil {
		t.Fatalf("Dispatch must swallow publish errors, got %v", err)
	}

	if len(repo.statusChanges) != 2 {
		t.Fatalf("expected processing then failed, got %+v", repo.statusChanges)
	}
	last := repo.statusChanges[1]
	if last.Status != models.ScheduledPostStatusFailed || last.ErrorMessage != "Invalid parameter" {
		t.Errorf("failure not recorded: %+v", last)
	}
	if len(repo.removed) != 0 {
		t.Errorf("failed record must be kept for inspection")
	}
}

func TestDispatchMissingRecordIsNoop(t *testing.T) {
	repo := &fakeScheduledPostRepo{records: map[int64]*models.ScheduledPost{}}
	pub := &fakePublisher{}
	q, requeued := newTestQueue(repo, pub, time.Unix(1700000000, 0))

	if err := q.Dispatch(context.Background(), 42); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if len(pub.calls) != 0 || len(*requeued) != 0 {
		t.Errorf("removed record must not trigger anything")
	}
}
