package careplan

import (
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type mockRepo struct {
	byID    map[uuid.UUID]*CarePlan
	exports []ExportRow
}

func newMockRepo() *mockRepo {
	return &mockRepo{byID: make(map[uuid.UUID]*CarePlan)}
}

func (m *mockRepo) Create(_ context.Context, cp *CarePlan) error {
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	m.byID[cp.ID] = cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*CarePlan, error) {
	if cp, ok := m.byID[id]; ok {
		return cp, nil
	}
	return nil, ErrNotFound
}

func (m *mockRepo) GetByOrderID(_ context.Context, orderID uuid.UUID) (*CarePlan, error) {
	for _, cp := range m.byID {
		if cp.OrderID == orderID {
			return cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*CarePlan, int, error) {
	var items []*CarePlan
	for _, cp := range m.byID {
		items = append(items, cp)
	}
	return items, len(items), nil
}

func (m *mockRepo) ExportRows(_ context.Context) ([]ExportRow, error) {
	return m.exports, nil
}

func TestDownload(t *testing.T) {
	repo := newMockRepo()
	cp := &CarePlan{OrderID: uuid.New(), Narrative: "1. Problem List\n2. Goals", Model: "gpt-4o"}
	repo.Create(context.Background(), cp)

	h := NewHandler(NewService(repo))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(cp.ID.String())

	if err := h.Download(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if got := rec.Body.String(); got != "1. Problem List\n2. Goals" {
		t.Errorf("unexpected body: %q", got)
	}
	if cd := rec.Header().Get(echo.HeaderContentDisposition); !strings.Contains(cd, "attachment") {
		t.Errorf("expected attachment disposition, got %q", cd)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("expected text/plain, got %q", ct)
	}
}

func TestDownload_NotFound(t *testing.T) {
	h := NewHandler(NewService(newMockRepo()))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	err := h.Download(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", httpErr.Code)
	}
}

func TestExport(t *testing.T) {
	repo := newMockRepo()
	repo.exports = []ExportRow{
		{
			ID:                  uuid.New(),
			PatientMRN:          "123456",
			PatientFirstName:    "John",
			PatientLastName:     "Doe",
			ProviderName:        "Dr. Smith",
			ProviderNPI:         "1234567890",
			MedicationName:      "Metformin",
			PrimaryDiagnosis:    "E11.9",
			AdditionalDiagnoses: []string{"I10", "E78.5"},
			MedicationHistory:   []string{"Lisinopril"},
			Narrative:           "plan text with, commas\nand newlines",
			CreatedAt:           time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		},
	}

	h := NewHandler(NewService(repo))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Export(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	records, err := csv.NewReader(rec.Body).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header + 1 row, got %d records", len(records))
	}
	if records[0][1] != "patient_mrn" {
		t.Errorf("unexpected header: %v", records[0])
	}
	row := records[1]
	if row[1] != "123456" || row[6] != "Metformin" {
		t.Errorf("unexpected row: %v", row)
	}
	if row[8] != "I10, E78.5" {
		t.Errorf("expected joined diagnoses, got %q", row[8])
	}
	if row[10] != "plan text with, commas\nand newlines" {
		t.Errorf("narrative did not round-trip: %q", row[10])
	}
}

func TestExport_Empty(t *testing.T) {
	h := NewHandler(NewService(newMockRepo()))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Export(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", httpErr.Code)
	}
}
