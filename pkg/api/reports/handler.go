package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"property_report/pkg/api/respond"
	"property_report/pkg/core/invest"
	"property_report/pkg/core/render"
	"property_report/pkg/core/report"
	"property_report/pkg/core/schema"
	"property_report/pkg/models"
)

// Service is what the handlers need from report.Service.
type Service interface {
	Generate(ctx context.Context, req report.GenerateRequest) (*report.GenerateResponse, error)
	Get(ctx context.Context, id string) (*report.GenerateResponse, error)
	Compute(raw []byte, o invest.Overrides) (*models.PropertyReport, *report.Metrics, error)
	Schema() *schema.Schema
}

// Handler holds dependencies for report endpoints
type Handler struct {
	Reports Service
	Logger  *zap.Logger
}

// NewHandler creates a new report handler
func NewHandler(reports Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Reports: reports, Logger: logger.Named("api")}
}

// HandleGenerate serves POST /api/report/generate.
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req report.GenerateRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.Reports.Generate(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, resp)
}

// HandleGet serves GET /api/report/{id}?format=json|md|html.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	resp, err := h.Reports.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		respond.JSON(w, http.StatusOK, resp)
	case "md", "markdown":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = w.Write([]byte(render.Markdown(resp)))
	case "html":
		page, err := render.HTML(resp)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(page)
	default:
		respond.Error(w, http.StatusBadRequest, fmt.Sprintf("unknown format %q (want json, md or html)", format))
	}
}

// MetricsRequest is the body of POST /api/metrics.
type MetricsRequest struct {
	Report    json.RawMessage  `json:"report"`
	Overrides invest.Overrides `json:"overrides"`
}

// MetricsResponse is the calculator output for a supplied report.
type MetricsResponse struct {
	Report *models.PropertyReport `json:"report"`
	*report.Metrics
}

// HandleMetrics serves POST /api/metrics: computes a caller-supplied report
// without calling the generation service.
func (h *Handler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	var req MetricsRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Report) == 0 || string(req.Report) == "null" {
		respond.Error(w, http.StatusBadRequest, "report is required")
		return
	}

	// A report sent as a JSON string (e.g. raw model output) is unwrapped
	// by the parser like any other shape.
	rep, m, err := h.Reports.Compute(req.Report, req.Overrides)
	if err != nil {
		status := respond.StatusFor(err)
		if status == http.StatusBadGateway {
			// The caller supplied this document, so a contract failure is theirs.
			status = http.StatusUnprocessableEntity
		}
		respond.Error(w, status, err.Error())
		return
	}
	respond.JSON(w, http.StatusOK, MetricsResponse{Report: rep, Metrics: m})
}

// HandleSchema serves GET /api/schema. ?view=fields returns the flattened
// field list instead of the raw document.
func (h *Handler) HandleSchema(w http.ResponseWriter, r *http.Request) {
	s := h.Reports.Schema()
	if r.URL.Query().Get("view") == "fields" {
		respond.JSON(w, http.StatusOK, s.Describe())
		return
	}
	w.Header().Set("Content-Type", "application/schema+json")
	_, _ = w.Write(s.Raw())
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := respond.StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.Logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err))
	}
	respond.FromError(w, err)
}
