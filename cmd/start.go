package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"site-cleaner/core/loader"
	"site-cleaner/core/logger"
	"site-cleaner/core/metrics"
	"site-cleaner/core/middleware/auth"
	"site-cleaner/core/middleware/rayid"
	"site-cleaner/feature/cleanup"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "site-cleaner/docs/swagger"
)

// @title Site Cleaner API
// @version 1.0
// @description API for planning and applying cleanups of static site build directories.
// @host localhost:8080
// @BasePath /

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the site cleaner server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup()
		if err != nil {
			return err
		}
		logg := rt.log
		defer logg.Sync()
		zap.ReplaceGlobals(logg)
		rt.checkSiteFiles()

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		fsys := afero.NewOsFs()
		registry := cleanup.NewRegistry(fsys, rt.cfg.Cleaner, rt.client, rt.cfg.Storage.Bucket, rt.db)

		mgr := loader.NewManager(logg)
		mgr.Register(cleanup.NewFeature(fsys, registry, rt.cfg.Cleaner, logg, rt.db))

		// RayID must be first to trace everything
		app.Use(rayid.New())

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

		// Public endpoints
		app.Get("/swagger/*", swagger.HandlerDefault)
		app.Get("/metrics", metrics.Handler())

		if rt.cfg.Server.ApiKey == "" {
			logg.Warn("SERVER_API_KEY is empty, cleanup endpoints are unauthenticated",
				zap.String("destination", rt.cfg.Cleaner.Destination),
				zap.Strings("allowed_roots", rt.cfg.Cleaner.AllowedRootList()),
			)
		}
		app.Use(auth.New(auth.Config{ApiKey: rt.cfg.Server.ApiKey}))

		if err := mgr.LoadAll(app); err != nil {
			return err
		}

		go func() {
			logg.Info("Starting server",
				zap.String("port", rt.cfg.Server.Port),
				zap.Strings("sources", registry.Names()),
			)
			if err := app.Listen(rt.cfg.Server.Address()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		return app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
