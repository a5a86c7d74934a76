package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"backoffice-service/internal/config"
	"backoffice-service/internal/handlers"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "backoffice-service",
		Short:         "Marketplace back-office: bulk import and e-mail tasks",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(newServeCmd(), newImportCmd(), newMigrateCmd(), newSendEmailCmd())
	return root
}

// bootstrap loads .env and configuration and wires the application
func bootstrap(ctx context.Context) (*app, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using system environment variables")
	}

	cfg := config.Load()
	logger := config.NewLogger(cfg)

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize")
		return nil, err
	}
	return a, nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run migrations, the task workers and the operations API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.migrate(); err != nil {
				return err
			}

			a.worker.Start(context.Background())

			if a.cfg.Environment == "production" {
				gin.SetMode(gin.ReleaseMode)
			}
			importDir := filepath.Dir(a.importer.DefaultPath())
			taskHandler := handlers.NewTaskHandler(a.client, a.runs, importDir, a.logger.WithField("component", "api"))
			router := handlers.NewRouter(a.db, taskHandler, a.logger.WithField("component", "http"))

			srv := &http.Server{
				Addr:    ":" + a.cfg.Port,
				Handler: router,
			}

			errCh := make(chan error, 1)
			go func() {
				a.logger.Infof("Backoffice service starting on port %s", a.cfg.Port)
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			select {
			case <-ctx.Done():
			case err := <-errCh:
				a.logger.WithError(err).Error("Failed to start server")
				return err
			}

			a.logger.Info("Shutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.logger.WithError(err).Warn("Server forced to shutdown")
			}

			a.logger.Info("Server shutdown complete")
			return nil
		},
	}
}

func newImportCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a JSON dump synchronously and print the summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			// administrator e-mails queued by the run are delivered before exit
			if a.localQueue {
				a.worker.Start(context.Background())
			}

			summary := a.importer.ImportFrom(cmd.Context(), file)
			fmt.Fprintln(cmd.OutOrStdout(), summary.Message)
			if summary.Fatal {
				return fmt.Errorf("import of %s failed", summary.FilePath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Import document (default: IMPORT_FILE_PATH)")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()
			return a.migrate()
		},
	}
}

func newSendEmailCmd() *cobra.Command {
	var to, subject, body string

	cmd := &cobra.Command{
		Use:   "send-email",
		Short: "Send one e-mail through the configured transport",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			fmt.Fprintln(cmd.OutOrStdout(), a.notifier.SendEmail(cmd.Context(), to, subject, body))
			return nil
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Recipient address (required)")
	cmd.Flags().StringVar(&subject, "subject", "", "Subject line (required)")
	cmd.Flags().StringVar(&body, "body", "", "Message body")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
