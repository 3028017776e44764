package router

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	redisstorage "github.com/gofiber/storage/redis"

	"github.com/autoplazacr/autoplaza/app/controllers"
	"github.com/autoplazacr/autoplaza/app/repository"
	"github.com/autoplazacr/autoplaza/internal/pkg/cache"
	"github.com/autoplazacr/autoplaza/internal/pkg/database"
	"github.com/autoplazacr/autoplaza/internal/pkg/env"
	"github.com/autoplazacr/autoplaza/internal/pkg/exchange"
	"github.com/autoplazacr/autoplaza/internal/pkg/middleware"
	"github.com/autoplazacr/autoplaza/internal/pkg/onvo"
	"github.com/autoplazacr/autoplaza/internal/pkg/payments"
)

type ApiRouter struct {
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	repository.InitializeFactory(database.GetDB())

	client := onvo.NewClientFromEnv()
	controllers.InitializePaymentController(payments.NewServiceFromDB(database.GetDB(), client))
	controllers.InitializeExchangeController(exchange.NewServiceFromEnv(cache.GetClient()))

	api := app.Group("/api", limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		Storage:    newLimiterStorage(),
	}))

	v1 := api.Group("/v1")

	// accounts
	v1.Post("/users/register", controllers.HandleRegisterUser)
	v1.Post("/users/login", controllers.HandleLogin)

	// payments
	v1.Post("/payments", controllers.HandleCreatePayment)
	v1.Get("/payments/config", controllers.HandlePaymentConfig)
	v1.Get("/payments/:id", controllers.HandleGetPayment)

	// provider webhooks
	v1.Post("/webhooks/onvo", controllers.HandleOnvoWebhook)

	// listings
	v1.Post("/listings", controllers.HandleCreateListing)
	v1.Get("/listings", controllers.HandleListListings)
	v1.Get("/listings/:uuid", controllers.HandleGetListing)

	// advertisements
	v1.Post("/advertisements", controllers.HandleCreateAdvertisement)
	v1.Get("/advertisements", controllers.HandleListAdvertisements)

	// misc
	v1.Get("/exchange-rate", controllers.HandleGetExchangeRate)

	// admin moderation
	admin := v1.Group("/admin", middleware.AdminKeyMiddleware())
	admin.Get("/listings/pending", controllers.HandleListPendingListings)
	admin.Patch("/listings/:id/moderate", controllers.HandleModerateListing)
}

func newLimiterStorage() *redisstorage.Storage {
	port, err := strconv.Atoi(env.GetEnv("CACHE_PORT", "6379"))
	if err != nil {
		port = 6379
	}
	return redisstorage.New(redisstorage.Config{
		Host:     env.GetEnv("CACHE_HOST", "localhost"),
		Port:     port,
		Database: 1,
	})
}
