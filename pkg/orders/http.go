package orders

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/carebridge-health/dme-orders/pkg/common/logger"
	"github.com/carebridge-health/dme-orders/pkg/extract"
	"github.com/gorilla/mux"
)

type HTTPHandler struct {
	service *Service
	maxBody int64
}

func NewHTTPHandler(service *Service, maxBody int64) *HTTPHandler {
	return &HTTPHandler{service: service, maxBody: maxBody}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/orders/extract", h.handleExtract).Methods(http.MethodPost)
	router.HandleFunc("/orders/{id}", h.handleStatus).Methods(http.MethodGet)
}

func (h *HTTPHandler) handleExtract(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	record, err := h.service.Process(r.Context(), UnwrapNote(body))
	if err != nil {
		if ee, ok := extract.AsError(err); ok {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"kind":   ee.Kind,
				"errors": ee.Fields,
			})
			return
		}
		logger.Log.WithError(err).Error("failed to process note")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"order_id": record.ID,
		"status":   record.Status,
		"strategy": record.Strategy,
		"order":    record.Order().Payload(),
	})
}

func (h *HTTPHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	record, err := h.service.Status(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "order not found", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to fetch order status")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Log.WithError(err).Error("failed to encode response")
	}
}
