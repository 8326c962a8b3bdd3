package transfer

type PublishRequest struct {
	Platform    string `json:"platform"`
	ProductID   int64  `json:"product_id"`
	ScheduledAt string `json:"scheduled_at,omitempty"` // RFC 3339, optional
}

type PublishResult struct {
	OK       bool   `json:"ok"`
	Platform string `json:"platform"`
	ID       string `json:"id"`
}
