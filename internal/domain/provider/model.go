package provider

import (
	"time"

	"github.com/google/uuid"
)

// Provider is a referring prescriber identified by a ten-digit NPI.
type Provider struct {
	ID        uuid.UUID `json:"id"`
	NPI       string    `json:"npi"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
