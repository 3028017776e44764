package controllers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/autoplazacr/autoplaza/app/models"
	"github.com/autoplazacr/autoplaza/app/repository"
	"github.com/autoplazacr/autoplaza/internal/pkg/onvo"
	"github.com/autoplazacr/autoplaza/internal/pkg/payments"
)

var paymentService *payments.Service

// InitializePaymentController wires the payment service used by the payment
// and webhook handlers.
func InitializePaymentController(svc *payments.Service) {
	paymentService = svc
}

type createPaymentRequest struct {
	Kind            string `json:"kind" validate:"required,oneof=listing advertisement"`
	ListingUUID     string `json:"listing_uuid" validate:"required_if=Kind listing,omitempty,uuid4"`
	AdvertisementID uint   `json:"advertisement_id" validate:"required_if=Kind advertisement"`
	Plan            string `json:"plan" validate:"omitempty,oneof=basico destacado premium"`
	UserID          *uint  `json:"user_id"`
}

// HandleCreatePayment opens a payment intent for a listing plan or an
// advertisement slot and mirrors it locally.
func HandleCreatePayment(c *fiber.Ctx) error {
	var req createPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid JSON body"})
	}
	if err := validator.New().Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_failed", "message": err.Error()})
	}

	in := payments.CreatePaymentInput{UserID: req.UserID}

	switch req.Kind {
	case "listing":
		listing, err := repository.GetGlobalFactory().GetListingRepository().GetByUUID(strings.TrimSpace(req.ListingUUID))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Listing not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Listing lookup failed"})
		}
		plan := models.NormalizePlan(req.Plan)
		if req.Plan == "" {
			plan = models.NormalizePlan(listing.Plan)
		}
		in.Amount = models.PlanPrice(plan)
		in.Description = models.PlanDisplayName(plan)
		in.ListingID = &listing.ID
		in.Metadata = map[string]string{"plan": plan}
	case "advertisement":
		ad, err := repository.GetGlobalFactory().GetAdvertisementRepository().GetByID(req.AdvertisementID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Advertisement not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Advertisement lookup failed"})
		}
		in.Amount = models.AdSlotPrice(ad.Slot)
		in.Description = "Espacio publicitario " + ad.Slot
		in.AdvertisementID = &ad.ID
		in.Metadata = map[string]string{"slot": ad.Slot}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 35*time.Second)
	defer cancel()

	intent, err := paymentService.CreatePaymentIntent(ctx, in)
	if err != nil {
		if errors.Is(err, onvo.ErrAmountBelowMinimum) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "amount_below_minimum", "message": err.Error()})
		}
		var gwErr *onvo.GatewayError
		if errors.As(err, &gwErr) {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "gateway_error", "message": "Payment provider rejected the request"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Payment could not be created"})
	}

	return c.Status(fiber.StatusCreated).JSON(intent)
}

// HandleGetPayment reads a payment intent from the provider, best effort.
func HandleGetPayment(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Missing payment intent id"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 35*time.Second)
	defer cancel()

	intent := paymentService.GetPaymentIntent(ctx, id)
	if intent == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Payment intent unavailable"})
	}
	return c.Status(fiber.StatusOK).JSON(intent)
}

// HandlePaymentConfig exposes what the client-side checkout widget needs.
func HandlePaymentConfig(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"publishable_key": paymentService.PublishableKey(),
		"currency":        "CRC",
		"minimum_amount":  onvo.MinimumAmount,
	})
}
