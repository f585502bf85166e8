package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient is a pharmacy patient identified by a six-digit MRN.
type Patient struct {
	ID        uuid.UUID  `json:"id"`
	MRN       string     `json:"mrn"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
