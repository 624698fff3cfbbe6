package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/espalier/internal/compiler"
	"github.com/aretw0/espalier/pkg/adapters/memory"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const workspaceDoc = `
workflow: demo
tables:
  - name: applicants
    columns:
      - {id: id, name: ID, isPrimary: true}
      - {id: fullName, name: Full Name}
pages:
  - id: page-1
    blocks:
      - id: load
        type: input
        phase: onEnter
        order: 0
        outputListVariable: applicants
        table: applicants
      - id: narrow
        type: listTools
        phase: onEnter
        order: 1
        sourceListVariable: applicants
        outputListVariable: active
      - id: q-1
        type: choice
        phase: onSubmit
        order: 2
        dynamicOptions:
          listVariable: active
          labelPath: fullName
          valuePath: id
`

func buildWorkspace(t *testing.T) *memory.Workspace {
	t.Helper()
	wf, err := compiler.NewParser().Parse([]byte(workspaceDoc))
	require.NoError(t, err)
	return memory.NewWorkspace(wf)
}

func TestWorkspace_Resolution(t *testing.T) {
	ctx := context.Background()
	ws := buildWorkspace(t)

	t.Run("Schema Follows List Tools Output", func(t *testing.T) {
		// The transformed list still originates from the applicants table.
		schema, err := ws.ResolveSchema(ctx, "active")
		require.NoError(t, err)
		assert.True(t, schema.HasColumn("fullName"))
	})

	t.Run("Unknown Variable Is Unresolved", func(t *testing.T) {
		_, err := ws.ResolveSchema(ctx, "ghosts")
		assert.ErrorIs(t, err, domain.ErrSchemaUnresolved)
	})

	t.Run("Producer Positions", func(t *testing.T) {
		pos, err := ws.ResolveProducer(ctx, "active")
		require.NoError(t, err)
		assert.Equal(t, domain.PhaseOnEnter, pos.Phase)
		assert.Equal(t, 1, pos.Order)

		_, err = ws.ResolveProducer(ctx, "ghosts")
		assert.ErrorIs(t, err, domain.ErrProducerUnknown)
	})

	t.Run("Consumer Position", func(t *testing.T) {
		pos, err := ws.ResolveConsumerPosition(ctx, "q-1")
		require.NoError(t, err)
		assert.Equal(t, domain.PhaseOnSubmit, pos.Phase)
	})

	t.Run("Block Lookup Returns Copies", func(t *testing.T) {
		block, err := ws.ResolveBlock(ctx, "narrow")
		require.NoError(t, err)

		block.Config = &domain.TransformConfig{Select: []string{"tampered"}}

		again, err := ws.ResolveBlock(ctx, "narrow")
		require.NoError(t, err)
		assert.True(t, again.Config.IsEmpty(), "mutating a resolved block must not affect the store")
	})
}

func TestWorkspace_CreateListToolsBlock(t *testing.T) {
	ctx := context.Background()
	ws := buildWorkspace(t)

	ref, err := ws.CreateListToolsBlock(ctx, "applicants", &domain.TransformConfig{
		Select: []string{"id", "fullName"},
	}, "page-1")
	require.NoError(t, err)
	assert.NotEmpty(t, ref.ID)
	assert.NotEmpty(t, ref.OutputListVariable)
	assert.NotEqual(t, "applicants", ref.OutputListVariable)

	block, err := ws.ResolveBlock(ctx, ref.ID)
	require.NoError(t, err)
	assert.Equal(t, "applicants", block.SourceListVariable)
	assert.Equal(t, domain.PhaseOnEnter, block.Phase)
	assert.Len(t, block.Config.Select, 2)

	// The new output is resolvable like any other producer.
	_, err = ws.ResolveProducer(ctx, ref.OutputListVariable)
	assert.NoError(t, err)
	schema, err := ws.ResolveSchema(ctx, ref.OutputListVariable)
	require.NoError(t, err)
	assert.True(t, schema.HasColumn("id"))

	t.Run("Fresh Names Per Call", func(t *testing.T) {
		second, err := ws.CreateListToolsBlock(ctx, "applicants", nil, "page-1")
		require.NoError(t, err)
		assert.NotEqual(t, ref.ID, second.ID)
		assert.NotEqual(t, ref.OutputListVariable, second.OutputListVariable)
	})

	t.Run("Missing Source", func(t *testing.T) {
		_, err := ws.CreateListToolsBlock(ctx, "", nil, "page-1")
		var validationErr *domain.ValidationError
		require.ErrorAs(t, err, &validationErr)
	})
}
