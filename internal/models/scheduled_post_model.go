package models

import "time"

type ScheduledPost struct {
	ID           int64     `db:"id" json:"id"`
	ProductID    int64     `db:"product_id" json:"product_id"`
	Platform     string    `db:"platform" json:"platform"`
	ScheduledFor time.Time `db:"scheduled_for" json:"scheduled_for"`
	Status       string    `db:"status" json:"status"` // scheduled, processing, failed
	ErrorMessage string    `db:"error_message" json:"error_message"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

const (
	PlatformFacebook  = "facebook"
	PlatformInstagram = "instagram"
)

const (
	ScheduledPostStatusScheduled  = "scheduled"
	ScheduledPostStatusProcessing = "processing"
	ScheduledPostStatusFailed     = "failed"
)

func ValidPlatform(platform string) bool {
	return platform == PlatformFacebook || platform == PlatformInstagram
}
