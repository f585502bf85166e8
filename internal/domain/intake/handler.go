package intake

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rxintake/rxintake/internal/platform/pdftext"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/care-plans", h.Submit)
	api.POST("/patient-records/extract", h.ExtractRecords)
}

type submitResponse struct {
	Success bool `json:"success"`
	*Result
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	// Errors carries the full field-error list on validation failure.
	Errors []FieldError `json:"errors,omitempty"`
	// Partial identifiers are present when generation failed after the
	// base records were committed.
	Partial *partialState `json:"partial,omitempty"`
}

type partialState struct {
	PatientID  string    `json:"patient_id"`
	ProviderID string    `json:"provider_id"`
	OrderID    string    `json:"order_id"`
	Warnings   []Warning `json:"warnings"`
}

// Submit accepts an intake form and returns the generated plan.
func (h *Handler) Submit(c echo.Context) error {
	var sub Submission
	if err := c.Bind(&sub); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "malformed request body"})
	}

	result, err := h.svc.Submit(c.Request().Context(), sub)
	if err != nil {
		var verr *ValidationError
		var perr *PersistenceError
		var gerr *GenerationError
		switch {
		case errors.As(err, &verr):
			return c.JSON(http.StatusBadRequest, errorResponse{Errors: verr.Fields})
		case errors.As(err, &gerr):
			return c.JSON(http.StatusBadGateway, errorResponse{
				Error: "Failed to generate care plan. Please try again or contact support.",
				Partial: &partialState{
					PatientID:  gerr.PatientID.String(),
					ProviderID: gerr.ProviderID.String(),
					OrderID:    gerr.OrderID.String(),
					Warnings:   gerr.Warnings,
				},
			})
		case errors.As(err, &perr):
			return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "store unavailable"})
		default:
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
		}
	}

	return c.JSON(http.StatusCreated, submitResponse{Success: true, Result: result})
}

// ExtractRecords pulls plain text out of an uploaded PDF so it can be
// pasted into the patient-records field.
func (h *Handler) ExtractRecords(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	if fh.Size > pdftext.MaxUploadSize {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "file too large")
	}

	f, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unable to read upload")
	}
	defer f.Close()

	text, err := pdftext.ExtractReader(f)
	if errors.Is(err, pdftext.ErrUnparseable) {
		return echo.NewHTTPError(http.StatusBadRequest, "unable to parse PDF")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "extraction failed")
	}

	return c.JSON(http.StatusOK, map[string]string{"text": text})
}
