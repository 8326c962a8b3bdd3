package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dejanvasic/shopgram/internal/graph"
	"github.com/dejanvasic/shopgram/internal/models"
)

const (
	containerPollAttempts = 10
	containerPollInterval = 700 * time.Millisecond
)

type InstagramService interface {
	PublishProduct(ctx context.Context, access *graph.PageAccess, product *models.Product, images []*models.ProductImage, opts PublishOptions) (string, error)
}

type instagramService struct {
	client *graph.Client
	sleep  func(time.Duration)
}

func NewInstagramService(client *graph.Client) InstagramService {
	return &instagramService{client: client, sleep: time.Sleep}
}

// PublishProduct creates a media container per image (a CAROUSEL parent
// on top when there is more than one), waits for the creation container
// to finish processing, then publishes it.
func (s *instagramService) PublishProduct(ctx context.Context, access *graph.PageAccess, product *models.Product, images []*models.ProductImage, opts PublishOptions) (string, error) {
	if access.InstagramBusinessID == "" {
		return "", ErrNotLinked
	}
	if len(images) == 0 {
		return "", ErrNoImages
	}

	caption := product.Caption()
	isCarousel := len(images) > 1
	mediaPath := access.InstagramBusinessID + "/media"

	containerIDs := make([]string, 0, len(images))
	for _, img := range images {
		params := url.Values{}
		params.Set("image_url", img.FileURL)
		params.Set("access_token", access.PageAccessToken)
		if isCarousel {
			params.Set("is_carousel_item", "true")
		} else {
			params.Set("caption", caption)
		}

		id, err := s.client.PostForm(ctx, mediaPath, params)
		if err != nil {
			return "", fmt.Errorf("error creating media container: %w", err)
		}
		containerIDs = append(containerIDs, id)
	}

	creationID := containerIDs[0]
	if isCarousel {
		params := url.Values{}
		params.Set("media_type", "CAROUSEL")
		params.Set("children", strings.Join(containerIDs, ","))
		params.Set("caption", caption)
		params.Set("access_token", access.PageAccessToken)

		id, err := s.client.PostForm(ctx, mediaPath, params)
		if err != nil {
			return "", fmt.Errorf("error creating carousel container: %w", err)
		}
		creationID = id
	}

	if err := s.waitForContainer(ctx, access.PageAccessToken, creationID); err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("creation_id", creationID)
	params.Set("access_token", access.PageAccessToken)
	if opts.ScheduledAt > 0 {
		params.Set("publish_time", strconv.FormatInt(opts.ScheduledAt, 10))
	}

	mediaID, err := s.client.PostForm(ctx, access.InstagramBusinessID+"/media_publish", params)
	if err != nil {
		return "", fmt.Errorf("error publishing media: %w", err)
	}

	return mediaID, nil
}

// waitForContainer polls the container status until FINISHED. ERROR is
// terminal and fails immediately; exhausting the attempts while still
// in progress fails with ErrMediaNotReady. Fixed interval, no backoff:
// containers for a handful of images usually finish within a second or
// two, the bound only guards against a vendor-side stall.
func (s *instagramService) waitForContainer(ctx context.Context, accessToken, creationID string) error {
	for attempt := 0; attempt < containerPollAttempts; attempt++ {
		params := url.Values{}
		params.Set("fields", "status_code,status")
		params.Set("access_token", accessToken)

		var result struct {
			StatusCode string `json:"status_code"`
			Status     string `json:"status"`
		}
		if err := s.client.Get(ctx, creationID, params, &result); err != nil {
			return fmt.Errorf("error checking container status: %w", err)
		}

		switch result.StatusCode {
		case "FINISHED":
			return nil
		case "ERROR":
			status := result.Status
			if status == "" {
				status = "container entered ERROR state"
			}
			return fmt.Errorf("media container failed: %s", status)
		}

		s.sleep(containerPollInterval)
	}

	return fmt.Errorf("%w after %d attempts", ErrMediaNotReady, containerPollAttempts)
}
