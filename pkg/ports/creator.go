package ports

import (
	"context"

	"github.com/aretw0/espalier/pkg/domain"
)

// BlockCreator is the only mutating external call issued by the link state
// machine: synthesizing a new List Tools block in the workflow.
type BlockCreator interface {
	// CreateListToolsBlock creates a block reading sourceListVariable, seeded
	// with initialConfig (nil means no transformation), placed in the section
	// identified by sectionID. It returns the new block's id and the list
	// variable it publishes.
	//
	// The call must be all-or-nothing: on error no block exists and the caller
	// leaves the question config untouched.
	CreateListToolsBlock(ctx context.Context, sourceListVariable string, initialConfig *domain.TransformConfig, sectionID string) (domain.BlockRef, error)
}
