package ports

import (
	"context"

	"github.com/aretw0/espalier/pkg/domain"
)

// SchemaResolver resolves the table/column schema backing a list variable.
type SchemaResolver interface {
	// ResolveSchema returns the schema of the table a list variable originates
	// from. It returns domain.ErrSchemaUnresolved when the variable cannot be
	// traced back to a table.
	ResolveSchema(ctx context.Context, listVariable string) (*domain.TableSchema, error)
}

// BlockRegistry provides read-only access to the workflow's block layout.
type BlockRegistry interface {
	// ResolveBlock returns the List Tools block with the given id, or
	// domain.ErrBlockNotFound.
	ResolveBlock(ctx context.Context, blockID string) (*domain.ListToolsBlock, error)

	// ResolveProducer returns the execution position of the block or input
	// step that publishes the given list variable, or domain.ErrProducerUnknown.
	ResolveProducer(ctx context.Context, listVariable string) (domain.Position, error)

	// ResolveConsumerPosition returns the execution position of the question
	// consuming the options.
	ResolveConsumerPosition(ctx context.Context, questionID string) (domain.Position, error)
}
