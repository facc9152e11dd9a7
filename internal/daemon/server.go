package daemon

import (
	"context"
	"encoding/json"
	"net/http"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yairfalse/leima/events"
	"github.com/yairfalse/leima/telemetry"
)

type commandRequest struct {
	Text string `json:"text"`
}

type commandResponse struct {
	Matched bool   `json:"matched"`
	Status  string `json:"status"`
}

// routes builds the control mux. The context is the daemon's own
// lifecycle, not the HTTP request's: a command-triggered run must
// outlive the webhook call that started it.
func (d *Daemon) routes(ctx context.Context) http.Handler {
	registry := telemetry.PrometheusRegistry
	if registry == nil {
		registry = promclient.NewRegistry()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", d.handleHealth)
	mux.HandleFunc("/-/ready", d.handleReady)
	mux.HandleFunc("/v1/command", d.handleCommand(ctx))
	return mux
}

func (d *Daemon) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (d *Daemon) handleReady(w http.ResponseWriter, r *http.Request) {
	if !d.ready.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// handleCommand accepts chat webhook posts. Text matching the tag
// update command starts one run with command semantics; anything else
// is acknowledged and ignored.
func (d *Daemon) handleCommand(runCtx context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req commandRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		if !IsTagUpdateCommand(req.Text) {
			writeJSON(w, http.StatusOK, commandResponse{Matched: false, Status: "ignored"})
			return
		}

		if !d.busy.CompareAndSwap(false, true) {
			writeJSON(w, http.StatusConflict, commandResponse{Matched: true, Status: "run already in progress"})
			return
		}

		d.logger.Info().Str("text", req.Text).Msg("tag update command received")
		go func() {
			defer d.busy.Store(false)
			if _, err := d.runner.Run(runCtx, events.TriggerCommand); err != nil {
				d.logger.Error().Err(err).Msg("command run failed")
			}
		}()

		writeJSON(w, http.StatusAccepted, commandResponse{Matched: true, Status: "run started"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
