package service

import (
	"context"
	"fmt"
	"log/slog"

	config "github.com/dejanvasic/shopgram/configs"
	"github.com/dejanvasic/shopgram/internal/graph"
	"github.com/dejanvasic/shopgram/internal/models"
	"github.com/dejanvasic/shopgram/internal/repository"
	"github.com/dejanvasic/shopgram/internal/transfer"
)

type PublishService interface {
	Publish(ctx context.Context, platform string, productID int64, opts PublishOptions) (*transfer.PublishResult, error)
}

type publishService struct {
	cfg    config.Config
	client *graph.Client
	pr     repository.ProductRepository
	pi     repository.ProductImageRepository
	fb     FacebookService
	ig     InstagramService
}

func NewPublishService(
	cfg config.Config,
	client *graph.Client,
	pr repository.ProductRepository,
	pi repository.ProductImageRepository,
	fb FacebookService,
	ig InstagramService) PublishService {
	return &publishService{
		cfg:    cfg,
		client: client,
		pr:     pr,
		pi:     pi,
		fb:     fb,
		ig:     ig,
	}
}

func (s *publishService) Publish(ctx context.Context, platform string, productID int64, opts PublishOptions) (*transfer.PublishResult, error) {
	product, err := s.pr.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("error loading product %d: %w", productID, err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	images, err := s.pi.ListByProductID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("error loading images for product %d: %w", productID, err)
	}

	ordered := OrderImages(images)
	if len(ordered) == 0 {
		return nil, ErrNoImages
	}

	// Page credentials are short-lived and resolved on every attempt.
	access, err := graph.ResolvePageAccess(ctx, s.client, s.cfg.FacebookPageID, s.cfg.FacebookAccessToken)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	var postID string
	switch platform {
	case models.PlatformFacebook:
		postID, err = s.fb.PublishProduct(ctx, access, product, ordered, opts)
	case models.PlatformInstagram:
		postID, err = s.ig.PublishProduct(ctx, access, product, ordered, opts)
	default:
		return nil, fmt.Errorf("unsupported platform: %s", platform)
	}
	if err != nil {
		return nil, err
	}

	return &transfer.PublishResult{OK: true, Platform: platform, ID: postID}, nil
}
