package main

import (
	"context"
	"fmt"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/walruspass/walruspass/cmd/gateway/container"
	"github.com/walruspass/walruspass/cmd/gateway/routes"
	"github.com/walruspass/walruspass/common/bootstrap"
)

func main() {
	ctx := context.Background()

	// Bootstrap common components (config, logger, DB, telemetry)
	components, err := bootstrap.Setup(ctx, "gateway")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap gateway: %v\n", err)
		os.Exit(1)
	}
	defer components.Shutdown(ctx)

	// Initialize service container (singleton pattern - all services created once)
	serviceContainer, err := container.NewContainer(ctx, components)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize service container: %v\n", err)
		os.Exit(1)
	}

	e := setupEcho()
	setupMiddleware(e)
	setupHealthCheck(e, serviceContainer)
	registerRoutes(e, serviceContainer)

	startServer(e, components)
}

// setupEcho initializes the Echo server with basic configuration
func setupEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	return e
}

// setupMiddleware configures all middleware for the Echo server
func setupMiddleware(e *echo.Echo) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())
}

// setupHealthCheck registers the health check endpoint
func setupHealthCheck(e *echo.Echo, c *container.Container) {
	e.GET("/health", func(ec echo.Context) error {
		status := "ok"
		if err := c.Components.Health(ec.Request().Context()); err != nil {
			status = "degraded"
		}
		return ec.JSON(200, map[string]string{
			"status":  status,
			"service": "gateway",
		})
	})
}

// registerRoutes registers all application routes using the service container
func registerRoutes(e *echo.Echo, serviceContainer *container.Container) {
	routes.RegisterProfileRoutes(e, serviceContainer)
	routes.RegisterTuskyRoutes(e, serviceContainer)
	routes.RegisterNFTRoutes(e, serviceContainer)
	routes.RegisterAuthRoutes(e, serviceContainer)
}

// startServer starts the Echo server on the configured port
func startServer(e *echo.Echo, components *bootstrap.Components) {
	port := components.Config.Service.Port
	components.Logger.Info("starting gateway", "port", port)

	if err := e.Start(fmt.Sprintf(":%d", port)); err != nil {
		components.Logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
