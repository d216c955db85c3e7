package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"record-sync/core/loader"
	"record-sync/core/logger"
	"record-sync/core/middleware/auth"
	"record-sync/core/middleware/rayid"
	"record-sync/feature/records"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "record-sync/docs/swagger"
)

// @title Record Sync API
// @version 1.0
// @description Reconcile spreadsheets with the remote record store.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the record sync server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		// 1. Configuration, logger and the records service
		a, err := newApp(ctx)
		if err != nil {
			log.Fatalf("Failed to initialize: %v", err)
		}
		logg := a.logger
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		if err := a.cfg.Server.Validate(); err != nil {
			logg.Fatal("Invalid server configuration", zap.Error(err))
		}

		// 2. Fiber app, uploads are bounded by the body limit
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
			BodyLimit:             a.cfg.Server.BodyLimit(),
		})

		// 3. Feature loader
		mgr := loader.NewManager()
		mgr.Register(records.NewFeature(a.service))

		// RayID first so every log line carries it
		app.Use(rayid.New())

		// Request logging with Zap + RayID
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// Swagger documentation is public
		app.Get("/swagger/*", swagger.HandlerDefault)

		// Everything else requires the API key
		app.Use(auth.New(auth.Config{ApiKey: a.cfg.Server.ApiKey}))

		// 4. Load features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 5. Start server
		go func() {
			logg.Info("Starting server", zap.String("addr", a.cfg.Server.Addr()))
			if err := app.Listen(a.cfg.Server.Addr()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 6. Graceful shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
