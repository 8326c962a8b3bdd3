package job

import (
	"context"
	"log"
	"log/slog"
	"time"

	"github.com/dejanvasic/shopgram/internal/repository"
)

// A dispatch that dies between "processing" and its terminal state (a
// crashed worker, a lost redis connection) would otherwise sit in
// processing forever. The sweep surfaces those records as failed so an
// operator can re-trigger or remove them. It never re-publishes.
const staleProcessingAge = 15 * time.Minute

type StaleDispatchJob struct {
	sp repository.ScheduledPostRepository
}

func NewStaleDispatchJob(sp repository.ScheduledPostRepository) *StaleDispatchJob {
	return &StaleDispatchJob{sp: sp}
}

func (j *StaleDispatchJob) SweepStuck() {
	ctx := context.Background()

	cutoff := time.Now().Add(-staleProcessingAge)
	n, err := j.sp.MarkStaleProcessingFailed(ctx, cutoff, "dispatch interrupted")
	if err != nil {
		slog.Info(err.Error())
		return
	}

	if n > 0 {
		log.Printf("Marked %d stuck dispatch records as failed", n)
	}
}
