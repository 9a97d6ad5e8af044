package shipping

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/wolfman30/commerce-chat/internal/observability/metrics"
	"github.com/wolfman30/commerce-chat/pkg/logging"
)

const maxRateBodyBytes = 1 << 20

// Quoter fetches carrier rates.
type Quoter interface {
	Quote(ctx context.Context, req RateRequest) (json.RawMessage, error)
}

// Handler serves POST /rate as a thin carrier proxy.
type Handler struct {
	quoter  Quoter
	timeout time.Duration
	metrics *metrics.ShippingMetrics
	logger  *logging.Logger
}

// NewHandler creates a rate handler. timeout bounds each carrier call.
func NewHandler(quoter Quoter, timeout time.Duration, m *metrics.ShippingMetrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Handler{quoter: quoter, timeout: timeout, metrics: m, logger: logger}
}

// Rate handles POST /rate.
func (h *Handler) Rate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRateBodyBytes)
	var req RateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.metrics.ObserveQuote("invalid")
		message := "request body must be a JSON object"
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			message = "request body too large"
		}
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": message})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	start := time.Now()
	body, err := h.quoter.Quote(ctx, req)
	var carrierErr *CarrierError
	switch {
	case err == nil:
		h.metrics.ObserveCarrierLatency(time.Since(start).Seconds())
		h.metrics.ObserveQuote("ok")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, werr := w.Write(body); werr != nil {
			h.logger.Error("failed to write rate response", "error", werr)
		}
	case errors.Is(err, ErrMissingPostalCode):
		h.metrics.ObserveQuote("invalid")
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "from_zip and to_zip are required"})
	case errors.Is(err, ErrMissingCredentials):
		h.metrics.ObserveQuote("unconfigured")
		h.logger.Error("rate quote requested without carrier credentials")
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "shipping carrier credentials are not configured on the server"})
	case errors.As(err, &carrierErr):
		h.metrics.ObserveCarrierLatency(time.Since(start).Seconds())
		h.metrics.ObserveQuote("carrier_error")
		h.writeJSON(w, carrierErr.StatusCode, map[string]string{
			"error":   "carrier rejected the quotation request",
			"details": carrierErr.Body,
		})
	default:
		h.metrics.ObserveQuote("transport_error")
		h.logger.Error("rate quote failed", "error", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get shipping rates"})
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}
