package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"infragraph/internal/repository"
	"infragraph/internal/service"
	"infragraph/internal/validate"
)

// Processor runs post-processing on demand
type Processor interface {
	Process(ctx context.Context) (*service.Report, error)
	LastReport() *service.Report
}

// GraphValidator validates the persisted graph on demand
type GraphValidator interface {
	Validate(ctx context.Context) (*validate.Result, error)
}

// GraphHandler handles graph API requests
type GraphHandler struct {
	svc       *service.GraphService
	processor Processor
	validator GraphValidator
}

// NewGraphHandler creates a new graph handler
func NewGraphHandler(svc *service.GraphService, processor Processor, validator GraphValidator) *GraphHandler {
	return &GraphHandler{
		svc:       svc,
		processor: processor,
		validator: validator,
	}
}

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// GetSummary returns document and relationship counts
func (h *GraphHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Summary(r.Context())
	if err != nil {
		log.Printf("Failed to summarize store: %v", err)
		h.writeStoreError(w, "Failed to summarize store", err)
		return
	}

	h.writeJSON(w, summary, http.StatusOK)
}

// ListRelationships returns stored relationships, optionally filtered
func (h *GraphHandler) ListRelationships(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := service.RelationshipFilter{
		Type:     q.Get("type"),
		SourceID: q.Get("source_id"),
		TargetID: q.Get("target_id"),
	}

	rels, err := h.svc.ListRelationships(r.Context(), filter)
	if err != nil {
		log.Printf("Failed to list relationships: %v", err)
		h.writeStoreError(w, "Failed to list relationships", err)
		return
	}

	h.writeJSON(w, rels, http.StatusOK)
}

// ListRelationTypes returns every relation type the validator pairs
func (h *GraphHandler) ListRelationTypes(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, service.RelationTypes(), http.StatusOK)
}

// GetReport returns the report of the last successful run
func (h *GraphHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	report := h.processor.LastReport()
	if report == nil {
		h.writeError(w, "Not found", "no post-processing run has completed yet", http.StatusNotFound)
		return
	}

	if r.URL.Query().Get("format") == "text" {
		h.writeText(w, report.Text())
		return
	}
	h.writeJSON(w, report, http.StatusOK)
}

// TriggerProcess runs post-processing and returns its report
func (h *GraphHandler) TriggerProcess(w http.ResponseWriter, r *http.Request) {
	report, err := h.processor.Process(r.Context())
	if err != nil {
		log.Printf("Post-processing failed: %v", err)
		h.writeStoreError(w, "Post-processing failed", err)
		return
	}

	h.writeJSON(w, report, http.StatusOK)
}

// GetValidation validates the store and returns the result
func (h *GraphHandler) GetValidation(w http.ResponseWriter, r *http.Request) {
	result, err := h.validator.Validate(r.Context())
	if err != nil {
		log.Printf("Validation failed: %v", err)
		h.writeStoreError(w, "Validation failed", err)
		return
	}

	if r.URL.Query().Get("format") == "text" {
		h.writeText(w, result.Report())
		return
	}
	h.writeJSON(w, result, http.StatusOK)
}

// Healthz reports liveness
func (h *GraphHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// Helper methods

func (h *GraphHandler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON: %v", err)
	}
}

func (h *GraphHandler) writeText(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(text + "\n"))
}

func (h *GraphHandler) writeError(w http.ResponseWriter, error, details string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Details: details,
	}); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}

// writeStoreError maps repository failures to status codes
func (h *GraphHandler) writeStoreError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, repository.ErrStoreNotFound):
		h.writeError(w, msg, err.Error(), http.StatusNotFound)
	case errors.Is(err, repository.ErrMalformedStore):
		h.writeError(w, msg, err.Error(), http.StatusUnprocessableEntity)
	default:
		h.writeError(w, msg, err.Error(), http.StatusInternalServerError)
	}
}
