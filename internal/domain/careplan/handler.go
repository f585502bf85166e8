package careplan

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/rxintake/rxintake/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/care-plans", h.List)
	api.GET("/care-plans/export", h.Export)
	api.GET("/care-plans/:id", h.Get)
	api.GET("/care-plans/:id/download", h.Download)
}

func (h *Handler) List(c echo.Context) error {
	p := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list care plans")
	}
	if items == nil {
		items = []*CarePlan{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, p.Limit, p.Offset))
}

func (h *Handler) Get(c echo.Context) error {
	cp, err := h.planByParam(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cp)
}

// Download serves the narrative as a plain-text attachment.
func (h *Handler) Download(c echo.Context) error {
	cp, err := h.planByParam(c)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=care_plan_%s.txt`, cp.ID))
	return c.Blob(http.StatusOK, "text/plain; charset=utf-8", []byte(cp.Narrative))
}

var exportHeader = []string{
	"id", "patient_mrn", "patient_first_name", "patient_last_name",
	"referring_provider", "referring_provider_npi",
	"medication_name", "primary_diagnosis",
	"additional_diagnoses", "medication_history",
	"generated_plan", "created_at",
}

// Export streams every stored plan as CSV for pharma reporting.
func (h *Handler) Export(c echo.Context) error {
	rows, err := h.svc.ExportRows(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to export care plans")
	}
	if len(rows) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "no care plans to export")
	}

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	resp.Header().Set(echo.HeaderContentDisposition, "attachment; filename=care_plans_export.csv")
	resp.WriteHeader(http.StatusOK)

	w := csv.NewWriter(resp)
	if err := w.Write(exportHeader); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.ID.String(),
			r.PatientMRN,
			r.PatientFirstName,
			r.PatientLastName,
			r.ProviderName,
			r.ProviderNPI,
			r.MedicationName,
			r.PrimaryDiagnosis,
			strings.Join(r.AdditionalDiagnoses, ", "),
			strings.Join(r.MedicationHistory, ", "),
			r.Narrative,
			r.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (h *Handler) planByParam(c echo.Context) (*CarePlan, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	cp, err := h.svc.Get(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return nil, echo.NewHTTPError(http.StatusNotFound, "care plan not found")
	}
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "failed to load care plan")
	}
	return cp, nil
}
