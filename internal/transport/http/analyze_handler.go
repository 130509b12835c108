package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"adpulse/internal/dataprocessing"
	apierrors "adpulse/internal/errors"
	"adpulse/internal/services"
)

// AnalyzeRequest is the payload for POST /api/v1/analyze. Each table carries
// the raw header row and cell grid of one exported platform report.
type AnalyzeRequest struct {
	Tables []TableInput `json:"tables" validate:"required,min=1,dive"`
}

// TableInput mirrors dataprocessing.RawTable on the wire.
type TableInput struct {
	Source  string     `json:"source" validate:"required"`
	Headers []string   `json:"headers" validate:"required,min=1"`
	Rows    [][]string `json:"rows"`
}

// Bind implements render.Binder
func (req *AnalyzeRequest) Bind(r *http.Request) error {
	return nil
}

// AnalyzeResponse wraps the analysis result for JSON rendering.
type AnalyzeResponse struct {
	Success bool                     `json:"success"`
	Result  *services.AnalysisResult `json:"result"`
}

// Render implements render.Renderer
func (resp *AnalyzeResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, http.StatusOK)
	return nil
}

// AnalyzeHandler handles consolidation analysis requests
type AnalyzeHandler struct {
	service  *services.AnalysisService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewAnalyzeHandler creates a new analyze handler
func NewAnalyzeHandler(service *services.AnalysisService, logger *slog.Logger) *AnalyzeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyzeHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With(slog.String("handler", "analyze")),
	}
}

// Routes returns the analyze routes
func (h *AnalyzeHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Post("/", h.Analyze)
	return r
}

// Analyze handles POST /api/v1/analyze
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req AnalyzeRequest
	if err := render.Bind(r, &req); err != nil {
		h.logger.WarnContext(ctx, "malformed analyze request", slog.String("error", err.Error()))
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.InvalidRequestWithError(err)))
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		h.logger.WarnContext(ctx, "analyze request failed validation", slog.String("error", err.Error()))
		render.Render(w, r, apierrors.NewErrorResponse(validationError(err)))
		return
	}

	tables := make([]dataprocessing.RawTable, len(req.Tables))
	for i, in := range req.Tables {
		tables[i] = dataprocessing.RawTable{
			Source:  in.Source,
			Headers: in.Headers,
			Rows:    in.Rows,
		}
	}

	result, err := h.service.Analyze(ctx, tables)
	if err != nil {
		if errors.Is(err, dataprocessing.ErrEmptyInput) {
			render.Render(w, r, apierrors.NewErrorResponse(apierrors.EmptyInputError(err)))
			return
		}
		h.logger.ErrorContext(ctx, "analysis failed", slog.String("error", err.Error()))
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.AnalysisError(err)))
		return
	}

	render.Render(w, r, &AnalyzeResponse{Success: true, Result: result})
}

// validationError converts validator.ValidationErrors into the API error shape
func validationError(err error) *apierrors.APIError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apierrors.InvalidRequestWithError(err)
	}

	fields := make([]apierrors.ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apierrors.ValidationError{
			Field:   fe.Namespace(),
			Message: "failed validation rule: " + fe.Tag(),
		})
	}
	return apierrors.NewValidationErrors(fields)
}
