package intake

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/rxintake/rxintake/internal/platform/llm"
)

type fixture struct {
	svc       *Service
	patients  *memPatients
	providers *memProviders
	orders    *memOrders
	plans     *memPlans
	gen       *stubGenerator
}

func newFixture() *fixture {
	f := &fixture{
		patients:  newMemPatients(),
		providers: newMemProviders(),
		orders:    newMemOrders(),
		plans:     newMemPlans(),
		gen:       &stubGenerator{narrative: "generated care plan"},
	}
	f.svc = NewService(ServiceConfig{
		Patients:  f.patients,
		Providers: f.providers,
		Orders:    f.orders,
		Plans:     f.plans,
		Generator: f.gen,
		Model:     "gpt-4o",
		Logger:    zerolog.Nop(),
	})
	return f
}

func TestSubmit_Success(t *testing.T) {
	f := newFixture()

	result, err := f.svc.Submit(context.Background(), validSubmission())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Narrative != "generated care plan" {
		t.Errorf("unexpected narrative: %q", result.Narrative)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected no warnings, got %+v", result.Warnings)
	}
	if len(f.patients.byID) != 1 || len(f.providers.byID) != 1 ||
		len(f.orders.byID) != 1 || len(f.plans.byID) != 1 {
		t.Error("expected one row in every store")
	}

	plan, err := f.plans.GetByID(context.Background(), result.CarePlanID)
	if err != nil {
		t.Fatalf("plan not stored: %v", err)
	}
	if plan.OrderID != result.OrderID {
		t.Error("plan not linked to order")
	}
	if plan.Model != "gpt-4o" {
		t.Errorf("unexpected model recorded: %q", plan.Model)
	}
}

func TestSubmit_PromptCarriesNormalizedValues(t *testing.T) {
	f := newFixture()
	sub := validSubmission()
	sub.PrimaryDiagnosis = "e11.9"
	sub.AdditionalDiagnoses = []string{"i10, e78.5"}

	if _, err := f.svc.Submit(context.Background(), sub); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.gen.lastInput.PrimaryDiagnosis != "E11.9" {
		t.Errorf("prompt got raw diagnosis: %q", f.gen.lastInput.PrimaryDiagnosis)
	}
	if len(f.gen.lastInput.AdditionalDiagnoses) != 2 {
		t.Errorf("prompt got unsplit diagnoses: %v", f.gen.lastInput.AdditionalDiagnoses)
	}
}

func TestSubmit_ValidationFailureWritesNothing(t *testing.T) {
	f := newFixture()
	sub := validSubmission()
	sub.PatientMRN = "bad"

	_, err := f.svc.Submit(context.Background(), sub)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(f.patients.byID) != 0 || len(f.orders.byID) != 0 || len(f.plans.byID) != 0 {
		t.Error("validation failure must not write anything")
	}
	if f.gen.calls != 0 {
		t.Error("validation failure must not call the generator")
	}
}

func TestSubmit_WarningsDoNotBlock(t *testing.T) {
	f := newFixture()

	if _, err := f.svc.Submit(context.Background(), validSubmission()); err != nil {
		t.Fatalf("first submission: %v", err)
	}

	result, err := f.svc.Submit(context.Background(), validSubmission())
	if err != nil {
		t.Fatalf("second submission should succeed despite warnings: %v", err)
	}
	if !hasCode(result.Warnings, CodePatientMRNExists) {
		t.Errorf("expected MRN warning on resubmission, got %+v", result.Warnings)
	}
	if !hasCode(result.Warnings, CodeDuplicateOrder) {
		t.Errorf("expected duplicate order warning, got %+v", result.Warnings)
	}
	if len(f.orders.byID) != 2 {
		t.Error("warned submission must still create its order")
	}
	// Patient upsert reuses the MRN row.
	if len(f.patients.byID) != 1 {
		t.Error("expected patient row reused on resubmission")
	}
}

func TestSubmit_GenerationFailureKeepsBaseRows(t *testing.T) {
	f := newFixture()
	f.gen.err = llm.ErrUnavailable

	_, err := f.svc.Submit(context.Background(), validSubmission())
	var gerr *GenerationError
	if !errors.As(err, &gerr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
	if !errors.Is(gerr, llm.ErrUnavailable) {
		t.Errorf("expected wrapped cause, got %v", gerr.Err)
	}

	// Base rows committed, no plan row.
	if len(f.patients.byID) != 1 || len(f.providers.byID) != 1 || len(f.orders.byID) != 1 {
		t.Error("base rows must survive a generation failure")
	}
	if len(f.plans.byID) != 0 {
		t.Error("no plan row may exist after a generation failure")
	}

	// The error must carry the committed identifiers.
	if _, err := f.orders.GetByID(context.Background(), gerr.OrderID); err != nil {
		t.Errorf("order id on error not retrievable: %v", err)
	}
	if _, err := f.patients.GetByID(context.Background(), gerr.PatientID); err != nil {
		t.Errorf("patient id on error not retrievable: %v", err)
	}
}

func TestSubmit_NotConfiguredGenerator(t *testing.T) {
	f := newFixture()
	f.gen.err = llm.ErrNotConfigured

	_, err := f.svc.Submit(context.Background(), validSubmission())
	var gerr *GenerationError
	if !errors.As(err, &gerr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
	if !errors.Is(err, llm.ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured cause, got %v", err)
	}
}

func TestSubmit_PlanStoreFailure(t *testing.T) {
	f := newFixture()
	f.plans.fail = true

	_, err := f.svc.Submit(context.Background(), validSubmission())
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
	if perr.Stage != StagePersistedPlan {
		t.Errorf("expected stage %s, got %s", StagePersistedPlan, perr.Stage)
	}
}

func TestSubmit_DuplicateCheckStoreFailure(t *testing.T) {
	f := newFixture()
	f.patients.fail = true

	_, err := f.svc.Submit(context.Background(), validSubmission())
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
	if perr.Stage != StageDuplicatesChecked {
		t.Errorf("expected stage %s, got %s", StageDuplicatesChecked, perr.Stage)
	}
	if f.gen.calls != 0 {
		t.Error("store failure must stop before generation")
	}
}
