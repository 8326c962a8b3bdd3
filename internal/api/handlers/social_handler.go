package handlers

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"

	"github.com/dejanvasic/shopgram/internal/models"
	"github.com/dejanvasic/shopgram/internal/queue"
	"github.com/dejanvasic/shopgram/internal/repository"
	"github.com/dejanvasic/shopgram/internal/service"
	"github.com/dejanvasic/shopgram/internal/transfer"
)

type SocialHandler struct {
	s       service.PublishService
	sp      repository.ScheduledPostRepository
	enqueue queue.EnqueueFunc
}

func NewSocialHandler(s service.PublishService, sp repository.ScheduledPostRepository, asynqClient *asynq.Client) *SocialHandler {
	return &SocialHandler{
		s:  s,
		sp: sp,
		enqueue: func(payload queue.DispatchPostPayload, delay time.Duration) error {
			return queue.EnqueuePost(asynqClient, payload, delay)
		},
	}
}

func (h *SocialHandler) Publish(c *fiber.Ctx) error {
	var req transfer.PublishRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request",
		})
	}

	if req.Platform == "" || req.ProductID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "platform and product_id are required",
		})
	}
	if !models.ValidPlatform(req.Platform) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unsupported platform",
		})
	}

	if req.ScheduledAt != "" {
		scheduledFor, err := time.Parse(time.RFC3339, req.ScheduledAt)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "scheduled_at must be RFC 3339",
			})
		}
		// Past timestamps fall through to an immediate publish.
		if scheduledFor.After(time.Now()) {
			return h.schedule(c, &req, scheduledFor)
		}
	}

	result, err := h.s.Publish(c.Context(), req.Platform, req.ProductID, service.PublishOptions{})
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Product not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *SocialHandler) schedule(c *fiber.Ctx, req *transfer.PublishRequest, scheduledFor time.Time) error {
	record := &models.ScheduledPost{
		ProductID:    req.ProductID,
		Platform:     req.Platform,
		ScheduledFor: scheduledFor,
		Status:       models.ScheduledPostStatusScheduled,
	}

	id, err := h.sp.Create(c.Context(), record)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to save scheduled post",
		})
	}

	if err := h.enqueue(queue.DispatchPostPayload{ScheduledPostID: id}, time.Until(scheduledFor)); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error scheduling post",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"ok":        true,
		"scheduled": true,
		"id":        id,
	})
}

func (h *SocialHandler) ListScheduled(c *fiber.Ctx) error {
	posts, err := h.sp.List(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to list scheduled posts",
		})
	}

	return c.Status(fiber.StatusOK).JSON(posts)
}

func (h *SocialHandler) RemoveScheduled(c *fiber.Ctx) error {
	id := c.QueryInt("id", 0)
	if id == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "id is required",
		})
	}

	if err := h.sp.Remove(c.Context(), int64(id)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to remove scheduled post",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}
