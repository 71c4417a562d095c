package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cashon/internal/handlers"
	"cashon/internal/logger"
	"cashon/internal/metrics"
	"cashon/internal/queue"
	"cashon/internal/routes"
	"cashon/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/cobra"
)

const (
	shutdownTimeout = 10 * time.Second
	resumeInterval  = time.Minute
	// pendingGrace is how long a pending withdrawal is left alone before it
	// is assumed to have lost its job.
	pendingGrace = 5 * time.Minute
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Bool("no-scheduler", false, "Do not run the interest sweep and withdrawal resume loops")
	serveCmd.Flags().Int("rate-limit", 120, "Authenticated requests per IP per minute, 0 disables")
	serveCmd.Flags().String("cors-origins", "http://localhost:5173", "Allowed CORS origins")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, the withdrawal workers and the schedulers",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	q := queue.New(cfg.QueueWorkers, cfg.QueueSize, cfg.Payout.Timeout+30*time.Second)
	d, err := bootstrap(ctx, q)
	if err != nil {
		return err
	}
	defer d.Close()

	q.Start(ctx)
	defer q.Stop()

	noScheduler, _ := cmd.Flags().GetBool("no-scheduler")
	if !noScheduler {
		go d.services.Savings.Run(ctx, cfg.InterestSweepInterval)
		go resumeLoop(ctx, d)
	}

	utils.Production = cfg.Env == "production"
	rateLimit, _ := cmd.Flags().GetInt("rate-limit")
	origins, _ := cmd.Flags().GetString("cors-origins")

	app := fiber.New(fiber.Config{
		AppName:      "cashon",
		ErrorHandler: errorHandler,
	})
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PATCH",
	}))
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(metrics.Middleware("/metrics", "/health"))

	routes.SetupRoutes(app, d.services, routes.Options{
		JWTSecret: cfg.JWTSecret,
		RateLimit: rateLimit,
		Health:    handlers.NewHealthHandler(d.db, d.redis),
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("http server listening")
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Error().Err(err).Msg("http shutdown failed")
	}
	return nil
}

// resumeLoop requeues pending withdrawals whose job was lost.
func resumeLoop(ctx context.Context, d *deps) {
	ticker := time.NewTicker(resumeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := d.services.Withdrawals.ResumePending(ctx, time.Now().UTC().Add(-pendingGrace))
			if err != nil {
				logger.Error().Err(err).Msg("failed to resume pending withdrawals")
			} else if n > 0 {
				logger.Info().Int("count", n).Msg("requeued pending withdrawals")
			}
		}
	}
}

func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return utils.Respond(c, fe.Code, fiber.Map{"error": fe.Message})
	}
	return utils.RespondError(c, err)
}
