// Command appian-sandbox serves the mock deployment-management API on a local
// port so appian-deploy can be exercised without an Appian environment.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"

	"github.com/appian-deploy/appian-deploy/internal/logger"
	"github.com/appian-deploy/appian-deploy/pkg/api/v2/routes"
	"github.com/appian-deploy/appian-deploy/test/mocks"
)

const (
	flagAddr   = "addr"
	flagAPIKey = "api-key"

	shutdownTimeout = 5 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		addr    string
		apiKey  string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:          "appian-sandbox",
		Short:        "Serve a local mock of the deployment-management API",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			level := "info"
			if verbose {
				level = "debug"
			}
			logger.Configure(logger.Options{Level: level})

			api := mocks.NewMockAppianAPI()
			api.APIKey = apiKey
			return serve(cmd.Context(), newApp(api), addr)
		},
	}

	cmd.Flags().StringVar(&addr, flagAddr, ":8080", "Listen address")
	cmd.Flags().StringVar(&apiKey, flagAPIKey, mocks.DefaultAPIKey, "API key accepted by the sandbox")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log every request")
	return cmd
}

// newApp builds the fiber app serving api
func newApp(api *mocks.MockAppianAPI) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	app.Use(logger.APILogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	routes.RegisterRoutes(app, api.Handlers())
	return app
}

// serve runs app until ctx is done, then shuts it down gracefully
func serve(ctx context.Context, app *fiber.App, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Sandbox listening on %s", addr)
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down sandbox")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
