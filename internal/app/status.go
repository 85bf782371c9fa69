package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/vk/fusegrid/internal/ctxlog"
)

// StatusHandler returns the status server routes:
//
//	GET /health         liveness probe
//	GET /v1/plan        task records of the selected pipeline
//	GET /v1/runs        status of every run of this app
//	GET /v1/runs/{id}   status of one run
func (a *App) StatusHandler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/health", a.healthHandler).Methods("GET")

	api := r.PathPrefix("/v1").Subrouter()
	api.HandleFunc("/plan", a.planHandler).Methods("GET")
	api.HandleFunc("/runs", a.listRunsHandler).Methods("GET")
	api.HandleFunc("/runs/{id}", a.getRunHandler).Methods("GET")
	return r
}

// healthHandler answers liveness probes.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

func (a *App) planHandler(w http.ResponseWriter, r *http.Request) {
	tg, err := a.Project(r.Context())
	if err != nil {
		http.Error(w, "Failed to project pipeline: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}
	a.writeJSON(w, tg.Records())
}

func (a *App) listRunsHandler(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, a.runs.List())
}

func (a *App) getRunHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	status, ok := a.runs.Get(id)
	if !ok {
		http.Error(w, "Run not found", http.StatusNotFound)
		return
	}
	a.writeJSON(w, status)
}

func (a *App) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Error("Failed to encode response.", "error", err)
	}
}

// startStatusServer runs the status server in a goroutine.
func (a *App) startStatusServer(ctx context.Context, port int) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Configuring status server.")

	addr := fmt.Sprintf(":%d", port)
	a.httpServer = &http.Server{
		Addr:              addr,
		Handler:           a.StatusHandler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	srv := a.httpServer
	go func() {
		logger.Info("🩺 Status server starting", "address", fmt.Sprintf("http://localhost%s/health", addr))
		// ListenAndServe returns ErrServerClosed on graceful shutdown.
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Status server failed unexpectedly", "error", err)
		}
	}()
}

func (a *App) closeStatusServer(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	if a.httpServer == nil {
		logger.Debug("Status server was not running.")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	logger.Info("🩺 Shutting down status server...")
	if err := a.httpServer.Shutdown(ctx); err != nil {
		logger.Error("Status server shutdown failed", "error", err)
		return err
	}
	a.httpServer = nil
	logger.Debug("Status server shut down gracefully.")
	return nil
}
