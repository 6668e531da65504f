package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/profilecards/internal/patch"
	"github.com/dshills/profilecards/internal/region"
	"github.com/dshills/profilecards/internal/render"
)

// serveFlags holds the parsed flags for the serve command.
type serveFlags struct {
	sourceFlags
	addr     string
	interval time.Duration
}

// shutdownTimeout bounds graceful HTTP shutdown.
const shutdownTimeout = 5 * time.Second

func runServe(ctx context.Context, flags serveFlags, stderr io.Writer) error {
	if err := validateSourceFlags(flags.sourceFlags); err != nil {
		return codeError(exitUsage, "invalid flags: %s", err)
	}
	if strings.TrimSpace(flags.addr) == "" {
		return codeError(exitUsage, "invalid flags: --addr must not be empty")
	}
	if flags.interval < 0 {
		return codeError(exitUsage, "invalid flags: --interval must be >= 0, got %s", flags.interval)
	}

	loader, err := newLoader(flags.sourceFlags, stderr)
	if err != nil {
		return err
	}
	h := newPageHandler(loader, stderr, flags.verbose)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initial load; a failure leaves the page empty until the next reload.
	h.reload(ctx) //nolint:errcheck

	srv := &http.Server{
		Addr:              flags.addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fmt.Fprintf(stderr, "INFO: listening on %s\n", flags.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	})
	if flags.interval > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(flags.interval)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					h.reload(gctx) //nolint:errcheck
				}
			}
		})
	}

	if err := g.Wait(); err != nil {
		return codeError(1, "%s", err)
	}
	return nil
}

// pageHandler serves the display region and triggers reloads.
type pageHandler struct {
	loader  *region.Loader
	log     io.Writer
	verbose bool
	mux     *http.ServeMux

	mu       sync.Mutex
	lastPage string
}

func newPageHandler(loader *region.Loader, logw io.Writer, verbose bool) *pageHandler {
	h := &pageHandler{loader: loader, log: logw, verbose: verbose}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.handlePage("html"))
	mux.HandleFunc("GET /profiles.json", h.handlePage("json"))
	mux.HandleFunc("GET /profiles.md", h.handlePage("md"))
	mux.HandleFunc("POST /reload", h.handleReload)
	mux.HandleFunc("GET /health", h.handleHealth)
	h.mux = mux
	return h
}

func (h *pageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// reload runs one load and, in verbose mode, logs how much the page changed.
func (h *pageHandler) reload(ctx context.Context) error {
	if err := h.loader.LoadProfiles(ctx); err != nil {
		return err
	}
	if !h.verbose {
		return nil
	}
	page, err := h.renderPage("html")
	if err != nil {
		return err
	}
	h.mu.Lock()
	prev := h.lastPage
	h.lastPage = string(page)
	h.mu.Unlock()
	stats := patch.Summarize(prev, string(page))
	if stats.Changed() {
		logVerbose(h.log, true, "page changed (+%d/-%d chars)", stats.Inserted, stats.Deleted)
	} else {
		logVerbose(h.log, true, "page unchanged")
	}
	return nil
}

func (h *pageHandler) renderPage(format string) ([]byte, error) {
	renderer, err := render.NewRenderer(format)
	if err != nil {
		return nil, err
	}
	return renderer.Render(h.loader.Region().Cards())
}

func (h *pageHandler) handlePage(format string) http.HandlerFunc {
	renderer, err := render.NewRenderer(format)
	if err != nil {
		panic(err) // formats are fixed at registration
	}
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := renderer.Render(h.loader.Region().Cards())
		if err != nil {
			fmt.Fprintf(h.log, "ERROR: rendering %s: %s\n", format, err)
			http.Error(w, "render failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", renderer.ContentType())
		w.Write(body) //nolint:errcheck
	}
}

func (h *pageHandler) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := h.reload(r.Context()); err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"status": "error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "cards": h.loader.Region().Len()})
}

func (h *pageHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
