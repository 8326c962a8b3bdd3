package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/dejanvasic/shopgram/internal/graph"
	"github.com/dejanvasic/shopgram/internal/models"
)

// PublishOptions carries the optional vendor-side schedule time as Unix
// seconds. Zero means publish immediately.
type PublishOptions struct {
	ScheduledAt int64
}

type FacebookService interface {
	PublishProduct(ctx context.Context, access *graph.PageAccess, product *models.Product, images []*models.ProductImage, opts PublishOptions) (string, error)
}

type facebookService struct {
	client *graph.Client
}

func NewFacebookService(client *graph.Client) FacebookService {
	return &facebookService{client: client}
}

// PublishProduct uploads every image as an unpublished photo and then
// creates one feed post attaching them all. Uploads are sequential on
// purpose: attachment order must match image order, and the vendor does
// not guarantee ordering under concurrent writes.
func (s *facebookService) PublishProduct(ctx context.Context, access *graph.PageAccess, product *models.Product, images []*models.ProductImage, opts PublishOptions) (string, error) {
	if len(images) == 0 {
		return "", ErrNoImages
	}

	photoIDs := make([]string, 0, len(images))
	for _, img := range images {
		params := url.Values{}
		params.Set("url", img.FileURL)
		params.Set("published", "false")
		params.Set("access_token", access.PageAccessToken)

		id, err := s.client.PostForm(ctx, access.PageID+"/photos", params)
		if err != nil {
			return "", fmt.Errorf("error uploading photo: %w", err)
		}
		photoIDs = append(photoIDs, id)
	}

	params := url.Values{}
	params.Set("message", product.Caption())
	params.Set("access_token", access.PageAccessToken)
	for i, photoID := range photoIDs {
		entry, err := json.Marshal(map[string]string{"media_fbid": photoID})
		if err != nil {
			return "", fmt.Errorf("error marshalling attached media: %w", err)
		}
		params.Set(fmt.Sprintf("attached_media[%d]", i), string(entry))
	}
	if opts.ScheduledAt > 0 {
		params.Set("published", "false")
		params.Set("scheduled_publish_time", strconv.FormatInt(opts.ScheduledAt, 10))
	}

	postID, err := s.client.PostForm(ctx, access.PageID+"/feed", params)
	if err != nil {
		return "", fmt.Errorf("error creating feed post: %w", err)
	}

	return postID, nil
}
