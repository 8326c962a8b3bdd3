package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"

	"github.com/dejanvasic/shopgram/internal/models"
	"github.com/dejanvasic/shopgram/internal/repository"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

type MediaService interface {
	AddProductImage(ctx context.Context, productID int64, file *multipart.FileHeader, isMain bool) (*models.ProductImage, error)
}

type mediaService struct {
	pr repository.ProductRepository
	pi repository.ProductImageRepository
	r2 R2Service
}

func NewMediaService(pr repository.ProductRepository, pi repository.ProductImageRepository, r2 R2Service) MediaService {
	return &mediaService{pr: pr, pi: pi, r2: r2}
}

// AddProductImage stores an uploaded image in R2 and records its public
// URL on the product. Only still images are accepted — the publishing
// pipeline posts photos, and the Graph API must be able to fetch the URL.
func (s *mediaService) AddProductImage(ctx context.Context, productID int64, file *multipart.FileHeader, isMain bool) (*models.ProductImage, error) {
	product, err := s.pr.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("error checking product %d: %w", productID, err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	fileContent, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer fileContent.Close()

	fileBytes, err := io.ReadAll(fileContent)
	if err != nil {
		return nil, fmt.Errorf("error reading file content: %w", err)
	}

	allowedTypes := map[string]struct{}{
		"jpg": {}, "jpeg": {}, "png": {},
	}

	fileType, err := filetype.Match(fileBytes)
	if err != nil || fileType == types.Unknown {
		return nil, fmt.Errorf("unsupported file type: %w", err)
	}
	if _, ok := allowedTypes[fileType.Extension]; !ok {
		return nil, fmt.Errorf("file type %s is not allowed", fileType.Extension)
	}

	key, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	if err := s.r2.UploadToR2(ctx, key, fileBytes, fileType.MIME.Value); err != nil {
		return nil, fmt.Errorf("error uploading file: %w", err)
	}

	img := &models.ProductImage{
		ProductID: productID,
		FileURL:   s.r2.PublicURL(key),
		IsMain:    isMain,
	}

	imgID, err := s.pi.Create(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("error saving image record: %w", err)
	}
	img.ID = imgID

	return img, nil
}
