package ports

import (
	"context"

	"github.com/aretw0/espalier/pkg/domain"
)

// ConfigStore persists per-question DynamicOptionsConfig values.
// This enables the editing session to read-modify-write the latest known
// config across requests and replicas.
type ConfigStore interface {
	// Save persists the config for a question.
	Save(ctx context.Context, questionID string, cfg *domain.DynamicOptionsConfig) error

	// Load retrieves the config for a question.
	// Returns domain.ErrConfigNotFound if none is stored.
	Load(ctx context.Context, questionID string) (*domain.DynamicOptionsConfig, error)

	// Delete removes the config for a question.
	Delete(ctx context.Context, questionID string) error

	// List returns the question ids with a stored config.
	List(ctx context.Context) ([]string, error)
}
