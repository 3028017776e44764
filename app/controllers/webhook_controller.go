package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/autoplazacr/autoplaza/internal/pkg/onvo"
	"github.com/autoplazacr/autoplaza/internal/pkg/payments"
)

type webhookPayload struct {
	ID        string             `json:"id"`
	EventType string             `json:"type"`
	Secret    string             `json:"secret,omitempty"`
	Data      onvo.PaymentIntent `json:"data"`
}

// HandleOnvoWebhook receives asynchronous payment-intent status notifications,
// persists them idempotently, and hands them to the reconciler. The provider
// only retries on non-2xx, so everything the system deliberately drops is
// still acknowledged with 200.
func HandleOnvoWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)

	var payload webhookPayload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	}

	secret := strings.TrimSpace(c.Get("X-Onvo-Webhook-Secret"))
	if secret == "" {
		secret = strings.TrimSpace(payload.Secret)
	}
	secretValid := paymentService.VerifyWebhookSecret(secret)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	created, stored, err := paymentService.RecordWebhookEvent(ctx, payments.WebhookEventLogInput{
		ProviderEventID: payload.ID,
		EventType:       payload.EventType,
		PayloadJSON:     string(rawBody),
		SecretValid:     secretValid,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_persist_failed"})
	}
	if !created {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "duplicate": true})
	}
	if !secretValid {
		_ = paymentService.MarkWebhookProcessed(ctx, stored.ID, errors.New("invalid webhook secret"))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_secret"})
	}

	handled := paymentService.HandleWebhook(ctx, payments.WebhookEvent{
		EventType: payload.EventType,
		Secret:    secret,
		Intent:    payload.Data,
	})
	var processingErr error
	if !handled {
		processingErr = errors.New("event dropped by reconciler")
	}
	_ = paymentService.MarkWebhookProcessed(ctx, stored.ID, processingErr)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": handled})
}
