package intake

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/rxintake/rxintake/internal/domain/careplan"
	"github.com/rxintake/rxintake/internal/domain/order"
	"github.com/rxintake/rxintake/internal/domain/patient"
	"github.com/rxintake/rxintake/internal/domain/provider"
	"github.com/rxintake/rxintake/internal/platform/llm"
)

var errStoreDown = errors.New("store down")

type memPatients struct {
	byID map[uuid.UUID]*patient.Patient
	fail bool
}

func newMemPatients() *memPatients {
	return &memPatients{byID: make(map[uuid.UUID]*patient.Patient)}
}

func (m *memPatients) Upsert(_ context.Context, p *patient.Patient) error {
	if m.fail {
		return errStoreDown
	}
	for _, existing := range m.byID {
		if existing.MRN == p.MRN {
			existing.FirstName = p.FirstName
			existing.LastName = p.LastName
			p.ID = existing.ID
			return nil
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	m.byID[p.ID] = p
	return nil
}

func (m *memPatients) GetByID(_ context.Context, id uuid.UUID) (*patient.Patient, error) {
	if m.fail {
		return nil, errStoreDown
	}
	if p, ok := m.byID[id]; ok {
		return p, nil
	}
	return nil, patient.ErrNotFound
}

func (m *memPatients) GetByMRN(_ context.Context, mrn string) (*patient.Patient, error) {
	if m.fail {
		return nil, errStoreDown
	}
	for _, p := range m.byID {
		if p.MRN == mrn {
			return p, nil
		}
	}
	return nil, patient.ErrNotFound
}

func (m *memPatients) GetByName(_ context.Context, first, last string) (*patient.Patient, error) {
	if m.fail {
		return nil, errStoreDown
	}
	for _, p := range m.byID {
		if strings.EqualFold(p.FirstName, first) && strings.EqualFold(p.LastName, last) {
			return p, nil
		}
	}
	return nil, patient.ErrNotFound
}

func (m *memPatients) List(_ context.Context, limit, offset int) ([]*patient.Patient, int, error) {
	var items []*patient.Patient
	for _, p := range m.byID {
		items = append(items, p)
	}
	return items, len(items), nil
}

type memProviders struct {
	byID map[uuid.UUID]*provider.Provider
}

func newMemProviders() *memProviders {
	return &memProviders{byID: make(map[uuid.UUID]*provider.Provider)}
}

func (m *memProviders) Upsert(_ context.Context, p *provider.Provider) error {
	for _, existing := range m.byID {
		if existing.NPI == p.NPI {
			p.ID = existing.ID
			return nil
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	m.byID[p.ID] = p
	return nil
}

func (m *memProviders) GetByID(_ context.Context, id uuid.UUID) (*provider.Provider, error) {
	if p, ok := m.byID[id]; ok {
		return p, nil
	}
	return nil, provider.ErrNotFound
}

func (m *memProviders) GetByNPI(_ context.Context, npi string) (*provider.Provider, error) {
	for _, p := range m.byID {
		if p.NPI == npi {
			return p, nil
		}
	}
	return nil, provider.ErrNotFound
}

func (m *memProviders) GetByName(_ context.Context, name string) (*provider.Provider, error) {
	for _, p := range m.byID {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return nil, provider.ErrNotFound
}

func (m *memProviders) List(_ context.Context, limit, offset int) ([]*provider.Provider, int, error) {
	var items []*provider.Provider
	for _, p := range m.byID {
		items = append(items, p)
	}
	return items, len(items), nil
}

type memOrders struct {
	byID map[uuid.UUID]*order.MedicationOrder
}

func newMemOrders() *memOrders {
	return &memOrders{byID: make(map[uuid.UUID]*order.MedicationOrder)}
}

func (m *memOrders) Create(_ context.Context, o *order.MedicationOrder) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	m.byID[o.ID] = o
	return nil
}

func (m *memOrders) GetByID(_ context.Context, id uuid.UUID) (*order.MedicationOrder, error) {
	if o, ok := m.byID[id]; ok {
		return o, nil
	}
	return nil, order.ErrNotFound
}

func (m *memOrders) FindMatching(_ context.Context, patientID uuid.UUID, med, dx string) (*order.MedicationOrder, error) {
	for _, o := range m.byID {
		if o.PatientID == patientID &&
			strings.EqualFold(o.MedicationName, med) &&
			strings.EqualFold(o.PrimaryDiagnosis, dx) {
			return o, nil
		}
	}
	return nil, order.ErrNotFound
}

func (m *memOrders) List(_ context.Context, limit, offset int) ([]*order.MedicationOrder, int, error) {
	var items []*order.MedicationOrder
	for _, o := range m.byID {
		items = append(items, o)
	}
	return items, len(items), nil
}

func (m *memOrders) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*order.MedicationOrder, int, error) {
	var items []*order.MedicationOrder
	for _, o := range m.byID {
		if o.PatientID == patientID {
			items = append(items, o)
		}
	}
	return items, len(items), nil
}

type memPlans struct {
	byID map[uuid.UUID]*careplan.CarePlan
	fail bool
}

func newMemPlans() *memPlans {
	return &memPlans{byID: make(map[uuid.UUID]*careplan.CarePlan)}
}

func (m *memPlans) Create(_ context.Context, cp *careplan.CarePlan) error {
	if m.fail {
		return errStoreDown
	}
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	m.byID[cp.ID] = cp
	return nil
}

func (m *memPlans) GetByID(_ context.Context, id uuid.UUID) (*careplan.CarePlan, error) {
	if cp, ok := m.byID[id]; ok {
		return cp, nil
	}
	return nil, careplan.ErrNotFound
}

func (m *memPlans) GetByOrderID(_ context.Context, orderID uuid.UUID) (*careplan.CarePlan, error) {
	for _, cp := range m.byID {
		if cp.OrderID == orderID {
			return cp, nil
		}
	}
	return nil, careplan.ErrNotFound
}

func (m *memPlans) List(_ context.Context, limit, offset int) ([]*careplan.CarePlan, int, error) {
	var items []*careplan.CarePlan
	for _, cp := range m.byID {
		items = append(items, cp)
	}
	return items, len(items), nil
}

func (m *memPlans) ExportRows(_ context.Context) ([]careplan.ExportRow, error) {
	return nil, nil
}

type stubGenerator struct {
	narrative string
	err       error
	calls     int
	lastInput llm.PromptInput
}

func (g *stubGenerator) Generate(_ context.Context, in llm.PromptInput) (string, error) {
	g.calls++
	g.lastInput = in
	if g.err != nil {
		return "", g.err
	}
	return g.narrative, nil
}
