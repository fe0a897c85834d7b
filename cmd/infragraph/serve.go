package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"infragraph/internal/handler"
	"infragraph/internal/hub"
	"infragraph/internal/service"
	"infragraph/internal/watcher"
)

var serveOpts struct {
	listen string
	watch  bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Long: `Serve run reports, validation results and relationship listings over
HTTP. Run events are streamed to /events as server-sent events and
Prometheus metrics are exposed on /metrics.

With --watch, a post-processing pass also runs whenever the store is
rewritten.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("listen") {
			cfg.Server.Listen = serveOpts.listen
		}

		repo, err := openStore(cfg.Store)
		if err != nil {
			return err
		}
		defer repo.Close()
		log.Printf("Store opened: %s", repo.Location())

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// Initialize event bus and SSE hub
		eventBus := service.NewEventBus()
		sseHub := hub.New()
		go sseHub.Run(ctx)
		sseHub.Forward(ctx, eventBus)

		// Initialize services
		graphSvc := service.NewGraphService(repo)
		processor := service.NewPostProcessor(repo, inferenceOptions(cfg), eventBus)
		validator := service.NewValidationService(repo, validationOptions(cfg), eventBus)

		if serveOpts.watch {
			if storeFormat(cfg.Store) == "sqlite" {
				log.Printf("Warning: --watch ignored for sqlite store %s", cfg.Store.Path)
			} else {
				w := watcher.New(cfg.Store.Path, func() {
					eventBus.Publish(service.Event{
						Type:    service.EventStoreChanged,
						Payload: map[string]string{"store": repo.Location()},
					})
					if _, err := processor.Process(ctx); err != nil {
						log.Printf("Post-processing failed: %v", err)
					}
				}).WithDebounce(cfg.Watch.Debounce.Duration())
				settleAfterRuns(ctx, eventBus, w)
				go func() {
					if err := w.Watch(ctx); err != nil && ctx.Err() == nil {
						log.Printf("Warning: store watcher stopped: %v", err)
					}
				}()
			}
		}

		graphHandler := handler.NewGraphHandler(graphSvc, processor, validator)

		// Setup routes
		mux := http.NewServeMux()

		mux.HandleFunc("GET /api/graph", graphHandler.GetSummary)
		mux.HandleFunc("GET /api/relationships", graphHandler.ListRelationships)
		mux.HandleFunc("GET /api/relationship-types", graphHandler.ListRelationTypes)
		mux.HandleFunc("GET /api/report", graphHandler.GetReport)
		mux.HandleFunc("POST /api/process", graphHandler.TriggerProcess)
		mux.HandleFunc("GET /api/validation", graphHandler.GetValidation)
		mux.HandleFunc("GET /healthz", graphHandler.Healthz)

		// SSE events endpoint
		mux.Handle("GET /events", sseHub)
		mux.Handle("GET /metrics", promhttp.Handler())

		// Apply middleware
		finalHandler := handler.Chain(mux,
			handler.Recover,
			handler.CORS,
			handler.Logger,
		)

		// WriteTimeout stays zero so SSE streams are not cut off
		server := &http.Server{
			Addr:        cfg.Server.Listen,
			Handler:     finalHandler,
			ReadTimeout: 10 * time.Second,
			IdleTimeout: 60 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Printf("Server listening on %s", cfg.Server.Listen)
			if err := server.ListenAndServe(); err != http.ErrServerClosed {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return err
			}
		case <-ctx.Done():
		}

		log.Println("Shutting down server...")

		// Graceful shutdown with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}

		log.Println("Server stopped")
		return nil
	},
}

// settleAfterRuns marks the store content left by every completed run as
// handled, so runs triggered over HTTP do not wake the watcher
func settleAfterRuns(ctx context.Context, bus *service.EventBus, w *watcher.Watcher) {
	events := make(chan service.Event, 16)
	bus.Subscribe(events)

	go func() {
		for {
			select {
			case event := <-events:
				if event.Type == service.EventProcessCompleted {
					w.Settle()
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

func init() {
	serveCmd.Flags().StringVar(&serveOpts.listen, "listen", "", "HTTP listen address")
	serveCmd.Flags().BoolVar(&serveOpts.watch, "watch", false, "re-run processing when the store changes")
}
