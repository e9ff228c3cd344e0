package restapi

import (
	"strconv"
	"time"

	"github.com/andreyxaxa/ubl-sender/config"
	_ "github.com/andreyxaxa/ubl-sender/docs" // swagger spec
	v1 "github.com/andreyxaxa/ubl-sender/internal/controller/restapi/v1"
	"github.com/andreyxaxa/ubl-sender/internal/metrics"
	"github.com/andreyxaxa/ubl-sender/internal/usecase"
	"github.com/andreyxaxa/ubl-sender/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// @title UBL sender
// @version 1.0.0
// @description Schedules UBL documents for delivery to SUNAT
// @host localhost:8080
// @BasePath /
func NewRouter(app *fiber.App, cfg *config.Config, delivery usecase.DeliveryUseCase, l logger.Interface) {
	app.Use(metricsMiddleware)

	// Prometheus
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Swagger
	if cfg.Swagger.Enabled {
		app.Get("/swagger/*", swagger.HandlerDefault)
	}

	// Routers
	apiV1Group := app.Group("/v1")
	{
		v1.NewDocumentRoutes(apiV1Group, delivery, l)
	}
}

func metricsMiddleware(ctx *fiber.Ctx) error {
	start := time.Now()
	err := ctx.Next()

	// route pattern, not the raw path, keeps label cardinality bounded
	route := ctx.Route().Path
	status := ctx.Response().StatusCode()
	if err != nil {
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
	}

	metrics.HTTPRequestsTotal.WithLabelValues(ctx.Method(), route, strconv.Itoa(status)).Inc()
	metrics.HTTPRequestDuration.WithLabelValues(ctx.Method(), route).Observe(time.Since(start).Seconds())

	return err
}
