package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaharia-lab/formrelay/internal/api"
	"github.com/shaharia-lab/formrelay/internal/config"
	"github.com/shaharia-lab/formrelay/internal/connector"
	"github.com/shaharia-lab/formrelay/internal/logger"
	"github.com/shaharia-lab/formrelay/internal/maintenance"
	"github.com/shaharia-lab/formrelay/internal/metrics"
	"github.com/shaharia-lab/formrelay/internal/queue"
	"github.com/shaharia-lab/formrelay/internal/retry"
	"github.com/shaharia-lab/formrelay/internal/server"
	"github.com/shaharia-lab/formrelay/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the relay server",
	Long:  "Start the HTTP intake server and the background dispatch consumer.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "HTTP server port (overrides PORT env var)")
	serveCmd.Flags().String("forms-file", "", "Path to the forms registry YAML file (overrides FORMRELAY_FORMS_FILE)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port, _ = cmd.Flags().GetInt("port")
	}
	if cmd.Flags().Changed("forms-file") {
		cfg.FormsFile, _ = cmd.Flags().GetString("forms-file")
	}

	log, err := logger.NewSystemLogger(cfg.LogDir(), cfg.SlogLevel())
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}

	forms, err := config.LoadForms(cfg.FormsFile)
	if err != nil {
		return fmt.Errorf("loading forms registry: %w", err)
	}

	db, err := storage.NewSQLiteDB(cfg.DatabaseFile())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Warn("closing database", "error", cerr)
		}
	}()
	store := storage.NewSQLiteDeliveryStore(db)

	q := queue.New()
	m := metrics.New(q.Len)

	retryProvider := retry.NewProvider(retry.Settings{
		MaxRetries:  cfg.Retry.MaxRetryAttempts,
		BaseDelay:   cfg.Retry.BaseDelay(),
		MaxDelay:    cfg.Retry.MaxDelay(),
		UseJitter:   cfg.Retry.UseJitter,
		JitterType:  cfg.Retry.JitterType,
		BackoffType: cfg.Retry.BackoffType,
	})

	registry := connector.NewRegistry(connector.Dependencies{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Retry:      retryProvider,
		Logger:     log,
	})
	dispatcher := connector.NewDispatcher(registry, store, log, m)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var consumers sync.WaitGroup
	for i := 0; i < cfg.ConsumerCount; i++ {
		c := queue.NewConsumer(q, log)
		consumers.Add(1)
		go func() {
			defer consumers.Done()
			c.Run(ctx)
		}()
	}

	maint, err := maintenance.New(maintenance.Config{
		Store:     store,
		Retention: cfg.DeliveryRetention(),
		Logger:    log,
	})
	if err != nil {
		return fmt.Errorf("setting up maintenance jobs: %w", err)
	}
	maint.Start()
	defer maint.Stop()

	apiSrv := api.New(forms, q, dispatcher, store, m, log)
	srv := server.New(apiSrv, m, cfg.AllowedOrigins, cfg.Port, log)

	log.Info("formrelay starting",
		"port", cfg.Port,
		"forms", len(forms.All()),
		"consumers", cfg.ConsumerCount,
	)
	fmt.Fprintf(os.Stderr, "FormRelay listening on http://localhost:%d\n", cfg.Port)
	for _, f := range forms.All() {
		fmt.Fprintf(os.Stderr, "  POST /f/%s  → %q (%d connector(s))\n", f.ID, f.Name, len(f.Connectors))
	}

	runErr := srv.Run(ctx)

	// Let an in-flight work item finish before exiting.
	consumers.Wait()
	return runErr
}
