package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"geotrail/pkg/config"
)

// ConfigHandler handles runtime tuning requests.
type ConfigHandler struct {
	cfgProv config.Provider
	onApply func(ctx context.Context)
}

// NewConfigHandler creates a new ConfigHandler. onApply, if set, runs after
// every successful update so live components can pick up the new values.
func NewConfigHandler(cfgProv config.Provider, onApply func(ctx context.Context)) *ConfigHandler {
	return &ConfigHandler{cfgProv: cfgProv, onApply: onApply}
}

// HandleTuning is a unified handler for all tuning methods, facilitating CORS/OPTIONS.
func (h *ConfigHandler) HandleTuning(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, PUT, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.cfgProv.Tuning(r.Context()))
	case http.MethodPut, http.MethodPost:
		h.handleSetTuning(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleSetTuning applies a map of overrides. An empty value resets that key
// to the static config. Every pair is checked before anything is written, so
// a rejected request leaves the stored tuning untouched.
func (h *ConfigHandler) handleSetTuning(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req map[string]string
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	for k, v := range req {
		var err error
		if v == "" {
			if !config.IsTuningKey(k) {
				err = fmt.Errorf("%w: %s", config.ErrUnknownKey, k)
			}
		} else {
			err = config.CheckTuning(k, v)
		}
		if err != nil {
			writeError(w, r, err)
			return
		}
	}

	for k, v := range req {
		var err error
		if v == "" {
			err = h.cfgProv.ResetTuning(ctx, k)
		} else {
			err = h.cfgProv.SetTuning(ctx, k, v)
		}
		if err != nil {
			writeError(w, r, err)
			return
		}
		slog.Info("Config: tuning updated", "key", k, "value", v)
	}

	if h.onApply != nil {
		h.onApply(ctx)
	}
	writeJSON(w, http.StatusOK, h.cfgProv.Tuning(ctx))
}
