package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/autoplazacr/autoplaza/internal/pkg/exchange"
)

var exchangeService *exchange.Service

// InitializeExchangeController wires the exchange-rate service used by the
// rate handler.
func InitializeExchangeController(svc *exchange.Service) {
	exchangeService = svc
}

// HandleGetExchangeRate returns the cached CRC-per-USD rate used for price
// display.
func HandleGetExchangeRate(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	rate, err := exchangeService.CRCPerUSD(ctx)
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "rate_unavailable", "message": "Exchange rate could not be resolved"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"crc_per_usd": rate})
}
