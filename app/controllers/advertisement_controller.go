package controllers

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/autoplazacr/autoplaza/app/models"
	"github.com/autoplazacr/autoplaza/app/repository"
)

type createAdvertisementRequest struct {
	CompanyName string     `json:"company_name" validate:"required,min=2,max=150"`
	ContactMail string     `json:"contact_mail" validate:"omitempty,email"`
	ImageURL    string     `json:"image_url" validate:"required,url,max=255"`
	TargetURL   string     `json:"target_url" validate:"omitempty,url,max=255"`
	Slot        string     `json:"slot" validate:"required"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
}

// HandleCreateAdvertisement registers a partner banner. It stays inactive
// until its payment succeeds.
func HandleCreateAdvertisement(c *fiber.Ctx) error {
	var req createAdvertisementRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid JSON body"})
	}
	if err := validator.New().Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_failed", "message": err.Error()})
	}
	if !models.IsValidAdSlot(req.Slot) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_failed", "message": "Unknown advertisement slot"})
	}

	ad := &models.Advertisement{
		CompanyName: strings.TrimSpace(req.CompanyName),
		ContactMail: strings.TrimSpace(req.ContactMail),
		ImageURL:    strings.TrimSpace(req.ImageURL),
		TargetURL:   strings.TrimSpace(req.TargetURL),
		Slot:        req.Slot,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		IsActive:    false,
	}

	if err := repository.GetGlobalFactory().GetAdvertisementRepository().Create(ad); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Advertisement could not be created"})
	}
	return c.Status(fiber.StatusCreated).JSON(ad)
}

// HandleListAdvertisements returns the published banners for a slot.
func HandleListAdvertisements(c *fiber.Ctx) error {
	slot := strings.TrimSpace(c.Query("slot", models.AdSlotHomeSide))
	if !models.IsValidAdSlot(slot) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Unknown advertisement slot"})
	}

	ads, err := repository.GetGlobalFactory().GetAdvertisementRepository().ListActiveBySlot(slot)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Advertisement query failed"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"advertisements": ads, "slot": slot})
}
