package db

import (
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/ats-simulator/internal/types"
)

// SimulationSummary is one row of a user's simulation history.
type SimulationSummary struct {
	ID            uuid.UUID    `json:"id"`
	ApplicationID string       `json:"applicationId,omitempty"`
	OverallScore  int          `json:"overallScore"`
	Status        types.Status `json:"status"`
	CreatedAt     time.Time    `json:"createdAt"`
}
