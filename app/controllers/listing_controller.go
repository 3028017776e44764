package controllers

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/autoplazacr/autoplaza/app/models"
	"github.com/autoplazacr/autoplaza/app/repository"
)

const defaultPageSize = 20
const maxPageSize = 100

type createListingRequest struct {
	UserID      uint   `json:"user_id" validate:"required"`
	Title       string `json:"title" validate:"required,min=5,max=255"`
	Description string `json:"description" validate:"max=5000"`
	Make        string `json:"make" validate:"required,max=80"`
	Model       string `json:"model" validate:"required,max=80"`
	Year        int    `json:"year" validate:"required,min=1950,max=2030"`
	Mileage     int    `json:"mileage" validate:"min=0"`
	Price       int64  `json:"price" validate:"required,min=1"`
	Province    string `json:"province" validate:"max=80"`
	Plan        string `json:"plan" validate:"omitempty,oneof=basico destacado premium"`
}

// HandleCreateListing creates a listing. It starts pending moderation and
// invisible; payment and moderation gate its visibility.
func HandleCreateListing(c *fiber.Ctx) error {
	var req createListingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid JSON body"})
	}
	if err := validator.New().Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_failed", "message": err.Error()})
	}

	listing := &models.Listing{
		UserID:           req.UserID,
		Title:            strings.TrimSpace(req.Title),
		Description:      strings.TrimSpace(req.Description),
		Make:             strings.TrimSpace(req.Make),
		Model:            strings.TrimSpace(req.Model),
		Year:             req.Year,
		Mileage:          req.Mileage,
		Price:            req.Price,
		Currency:         "CRC",
		Province:         strings.TrimSpace(req.Province),
		Plan:             models.NormalizePlan(req.Plan),
		ModerationStatus: models.ListingModerationPending,
		IsActive:         false,
	}

	if err := repository.GetGlobalFactory().GetListingRepository().Create(listing); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Listing could not be created"})
	}
	return c.Status(fiber.StatusCreated).JSON(listing)
}

// HandleListListings returns a filtered page of active listings.
func HandleListListings(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", defaultPageSize)
	if limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}

	filter := repository.ListingFilter{
		Make:     strings.TrimSpace(c.Query("make")),
		YearMin:  c.QueryInt("year_min", 0),
		YearMax:  c.QueryInt("year_max", 0),
		PriceMin: int64(c.QueryInt("price_min", 0)),
		PriceMax: int64(c.QueryInt("price_max", 0)),
		Province: strings.TrimSpace(c.Query("province")),
	}

	listings, total, err := repository.GetGlobalFactory().GetListingRepository().ListActive(filter, (page-1)*limit, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Listing query failed"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"listings": listings,
		"total":    total,
		"page":     page,
		"limit":    limit,
	})
}

// HandleGetListing returns a single listing by public UUID. Inactive listings
// are hidden from the public surface.
func HandleGetListing(c *fiber.Ctx) error {
	uuid := strings.TrimSpace(c.Params("uuid"))
	listing, err := repository.GetGlobalFactory().GetListingRepository().GetByUUID(uuid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Listing not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Listing lookup failed"})
	}
	if !listing.IsActive {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Listing not found"})
	}
	return c.Status(fiber.StatusOK).JSON(listing)
}

type moderateListingRequest struct {
	Action string `json:"action" validate:"required,oneof=approve reject"`
	Note   string `json:"note" validate:"max=2000"`
}

// HandleModerateListing applies an admin moderation decision to a listing.
func HandleModerateListing(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid listing id"})
	}

	var req moderateListingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid JSON body"})
	}
	if err := validator.New().Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_failed", "message": err.Error()})
	}

	repo := repository.GetGlobalFactory().GetListingRepository()
	listing, err := repo.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Listing not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Listing lookup failed"})
	}

	switch req.Action {
	case "approve":
		listing.ModerationStatus = models.ListingModerationApproved
	case "reject":
		listing.ModerationStatus = models.ListingModerationRejected
		listing.IsActive = false
	}
	listing.ModerationNote = strings.TrimSpace(req.Note)

	if err := repo.Update(listing); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Listing could not be updated"})
	}
	return c.Status(fiber.StatusOK).JSON(listing)
}

// HandleListPendingListings returns listings awaiting moderation, oldest first.
func HandleListPendingListings(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", defaultPageSize)
	if limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}

	listings, err := repository.GetGlobalFactory().GetListingRepository().ListPendingModeration((page-1)*limit, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Listing query failed"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"listings": listings, "page": page, "limit": limit})
}
