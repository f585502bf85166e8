package intake

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/rxintake/rxintake/internal/domain/careplan"
	"github.com/rxintake/rxintake/internal/domain/order"
	"github.com/rxintake/rxintake/internal/domain/patient"
	"github.com/rxintake/rxintake/internal/domain/provider"
	"github.com/rxintake/rxintake/internal/platform/db"
	"github.com/rxintake/rxintake/internal/platform/llm"
)

// Generator produces the care-plan narrative for a normalized submission.
type Generator interface {
	Generate(ctx context.Context, in llm.PromptInput) (string, error)
}

// Result is a fully processed submission.
type Result struct {
	PatientID  uuid.UUID `json:"patient_id"`
	ProviderID uuid.UUID `json:"provider_id"`
	OrderID    uuid.UUID `json:"order_id"`
	CarePlanID uuid.UUID `json:"care_plan_id"`
	Narrative  string    `json:"generated_plan"`
	Warnings   []Warning `json:"warnings"`
}

// txRunner runs fn inside a store transaction. Abstracted so the service
// can be tested against in-memory repositories.
type txRunner func(ctx context.Context, fn func(context.Context) error) error

// Service orchestrates a submission end to end: validate, check duplicates,
// persist the base records in one transaction, generate the narrative, and
// persist the plan.
type Service struct {
	patients  patient.Repository
	providers provider.Repository
	orders    order.Repository
	plans     careplan.Repository
	checker   *DuplicateChecker
	generator Generator
	model     string
	timeout   time.Duration
	runTx     txRunner
	log       zerolog.Logger
}

type ServiceConfig struct {
	Patients  patient.Repository
	Providers provider.Repository
	Orders    order.Repository
	Plans     careplan.Repository
	Generator Generator
	Model     string
	Timeout   time.Duration
	Pool      *pgxpool.Pool
	Logger    zerolog.Logger
}

func NewService(cfg ServiceConfig) *Service {
	s := &Service{
		patients:  cfg.Patients,
		providers: cfg.Providers,
		orders:    cfg.Orders,
		plans:     cfg.Plans,
		checker:   NewDuplicateChecker(cfg.Patients, cfg.Providers, cfg.Orders),
		generator: cfg.Generator,
		model:     cfg.Model,
		timeout:   cfg.Timeout,
		log:       cfg.Logger.With().Str("component", "intake").Logger(),
	}
	if cfg.Pool != nil {
		pool := cfg.Pool
		s.runTx = func(ctx context.Context, fn func(context.Context) error) error {
			return db.WithTx(ctx, pool, fn)
		}
	} else {
		s.runTx = func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		}
	}
	return s
}

// Submit processes one intake form. On success the returned Result carries
// every created identifier, the narrative, and all advisory warnings.
//
// Failure modes: *ValidationError before any read or write,
// *PersistenceError when the store fails, and *GenerationError when the
// narrative could not be produced. Generation failures happen after the
// base transaction commits; the patient, provider, and order rows stay in
// place and their IDs are carried on the error.
func (s *Service) Submit(ctx context.Context, sub Submission) (*Result, error) {
	n, verr := Validate(sub)
	if verr != nil {
		return nil, verr
	}

	warnings, err := s.checker.Check(ctx, n)
	if err != nil {
		return nil, &PersistenceError{Stage: StageDuplicatesChecked, Err: err}
	}

	pt := &patient.Patient{
		MRN:       n.PatientMRN,
		FirstName: n.PatientFirstName,
		LastName:  n.PatientLastName,
		BirthDate: n.PatientBirthDate,
	}
	pr := &provider.Provider{
		NPI:  n.ReferringProviderNPI,
		Name: n.ReferringProvider,
	}
	o := &order.MedicationOrder{
		MedicationName:      n.MedicationName,
		PrimaryDiagnosis:    n.PrimaryDiagnosis,
		AdditionalDiagnoses: n.AdditionalDiagnoses,
		MedicationHistory:   n.MedicationHistory,
		PatientRecords:      n.PatientRecords,
	}

	err = s.runTx(ctx, func(txCtx context.Context) error {
		if err := s.patients.Upsert(txCtx, pt); err != nil {
			return fmt.Errorf("upsert patient: %w", err)
		}
		if err := s.providers.Upsert(txCtx, pr); err != nil {
			return fmt.Errorf("upsert provider: %w", err)
		}
		o.PatientID = pt.ID
		o.ProviderID = pr.ID
		if err := s.orders.Create(txCtx, o); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, &PersistenceError{Stage: StagePersistedBase, Err: err}
	}

	genCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	narrative, err := s.generator.Generate(genCtx, llm.PromptInput{
		PatientFirstName:     n.PatientFirstName,
		PatientLastName:      n.PatientLastName,
		PatientMRN:           n.PatientMRN,
		ReferringProvider:    n.ReferringProvider,
		ReferringProviderNPI: n.ReferringProviderNPI,
		PrimaryDiagnosis:     n.PrimaryDiagnosis,
		MedicationName:       n.MedicationName,
		AdditionalDiagnoses:  n.AdditionalDiagnoses,
		MedicationHistory:    n.MedicationHistory,
		PatientRecords:       n.PatientRecords,
	})
	if err != nil {
		s.log.Error().Err(err).
			Str("order_id", o.ID.String()).
			Msg("care plan generation failed, base records kept")
		return nil, &GenerationError{
			Err:        err,
			PatientID:  pt.ID,
			ProviderID: pr.ID,
			OrderID:    o.ID,
			Warnings:   warnings,
		}
	}

	cp := &careplan.CarePlan{
		OrderID:   o.ID,
		Narrative: narrative,
		Model:     s.model,
	}
	if err := s.plans.Create(ctx, cp); err != nil {
		return nil, &PersistenceError{Stage: StagePersistedPlan, Err: err}
	}

	s.log.Info().
		Str("order_id", o.ID.String()).
		Str("care_plan_id", cp.ID.String()).
		Int("warnings", len(warnings)).
		Msg("submission complete")

	return &Result{
		PatientID:  pt.ID,
		ProviderID: pr.ID,
		OrderID:    o.ID,
		CarePlanID: cp.ID,
		Narrative:  narrative,
		Warnings:   warnings,
	}, nil
}
