package linker_test

import (
	"context"
	"testing"

	"github.com/aretw0/espalier/internal/linker"
	"github.com/aretw0/espalier/pkg/adapters/memory"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWorkspace() *memory.Workspace {
	ws := memory.NewWorkspace(nil)
	ws.AddProducer("applicants", "applicants", domain.Position{Phase: domain.PhaseOnEnter, Order: 0})
	return ws
}

func unlinkedConfig(transform *domain.TransformConfig) *domain.DynamicOptionsConfig {
	return &domain.DynamicOptionsConfig{
		ListVariable: "applicants",
		LabelPath:    "fullName",
		ValuePath:    "id",
		Link:         domain.Unlinked{Transform: transform},
	}
}

func TestLinker_CreateLink(t *testing.T) {
	ctx := context.Background()

	t.Run("From Plain Unlinked", func(t *testing.T) {
		ws := newWorkspace()
		l := linker.New(ws, ws)

		cfg := unlinkedConfig(nil)
		res, err := l.CreateLink(ctx, "q-1", cfg, "page-1")
		require.NoError(t, err)
		require.NotNil(t, res.CreatedBlock)

		block, ok := ws.Block(res.CreatedBlock.ID)
		require.True(t, ok, "block should exist in the workspace")
		assert.Equal(t, "applicants", block.SourceListVariable)
		assert.True(t, block.Config.IsEmpty(), "block config should start empty")

		assert.Equal(t, domain.StatusLinked, res.Config.Status())
		base, ok := res.Config.BaseListVar()
		require.True(t, ok)
		assert.Equal(t, "applicants", base)
		assert.Equal(t, block.OutputListVariable, res.Config.ListVariable)

		// Input config untouched.
		assert.Equal(t, "applicants", cfg.ListVariable)
		assert.Equal(t, domain.StatusUnlinked, cfg.Status())
	})

	t.Run("From Inline Transform", func(t *testing.T) {
		ws := newWorkspace()
		l := linker.New(ws, ws)

		transform := &domain.TransformConfig{
			Sort: []domain.SortKey{{Field: "lastName", Direction: domain.SortAsc}},
		}
		res, err := l.CreateLink(ctx, "q-1", unlinkedConfig(transform), "page-1")
		require.NoError(t, err)

		block, ok := ws.Block(res.CreatedBlock.ID)
		require.True(t, ok)
		assert.True(t, transform.Equal(block.Config), "inline transform should seed the block")
		assert.Nil(t, res.Config.Transform(), "result must not keep an inline transform")
	})

	t.Run("Missing List Variable", func(t *testing.T) {
		ws := newWorkspace()
		l := linker.New(ws, ws)

		cfg := unlinkedConfig(nil)
		cfg.ListVariable = ""
		res, err := l.CreateLink(ctx, "q-1", cfg, "page-1")
		assert.Nil(t, res)

		var validationErr *domain.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "listVariable", validationErr.Field)
	})

	t.Run("Already Linked", func(t *testing.T) {
		ws := newWorkspace()
		l := linker.New(ws, ws)

		res, err := l.CreateLink(ctx, "q-1", unlinkedConfig(nil), "page-1")
		require.NoError(t, err)

		_, err = l.CreateLink(ctx, "q-1", res.Config, "page-1")
		var validationErr *domain.ValidationError
		require.ErrorAs(t, err, &validationErr)
	})
}

func TestLinker_Unlink(t *testing.T) {
	ctx := context.Background()

	t.Run("Keep Copies Block Config", func(t *testing.T) {
		ws := newWorkspace()
		l := linker.New(ws, ws)

		res, err := l.CreateLink(ctx, "q-1", unlinkedConfig(nil), "page-1")
		require.NoError(t, err)

		// The user edits the shared block after linking.
		sorted := &domain.TransformConfig{
			Sort: []domain.SortKey{{Field: "lastName", Direction: domain.SortAsc}},
		}
		require.NoError(t, ws.SetBlockConfig(res.CreatedBlock.ID, sorted))

		out, err := l.Unlink(ctx, "q-1", res.Config, linker.UnlinkKeep)
		require.NoError(t, err)
		assert.Empty(t, out.Warnings)

		assert.Equal(t, domain.StatusInlineTransform, out.Config.Status())
		assert.True(t, sorted.Equal(out.Config.Transform()))
		assert.Equal(t, "applicants", out.Config.ListVariable)
	})

	t.Run("Keep With Empty Block Config Lands Plain Unlinked", func(t *testing.T) {
		ws := newWorkspace()
		l := linker.New(ws, ws)

		res, err := l.CreateLink(ctx, "q-1", unlinkedConfig(nil), "page-1")
		require.NoError(t, err)

		out, err := l.Unlink(ctx, "q-1", res.Config, linker.UnlinkKeep)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusUnlinked, out.Config.Status())
	})

	t.Run("Discard Drops Transform", func(t *testing.T) {
		ws := newWorkspace()
		l := linker.New(ws, ws)

		res, err := l.CreateLink(ctx, "q-1", unlinkedConfig(&domain.TransformConfig{
			Select: []string{"id", "fullName"},
		}), "page-1")
		require.NoError(t, err)

		out, err := l.Unlink(ctx, "q-1", res.Config, linker.UnlinkDiscard)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusUnlinked, out.Config.Status())
		assert.Nil(t, out.Config.Transform())
		assert.Equal(t, "applicants", out.Config.ListVariable)
	})

	t.Run("Dangling Reference Falls Back To Discard With Warning", func(t *testing.T) {
		ws := newWorkspace()
		l := linker.New(ws, ws)

		res, err := l.CreateLink(ctx, "q-1", unlinkedConfig(&domain.TransformConfig{
			Select: []string{"id"},
		}), "page-1")
		require.NoError(t, err)

		ws.RemoveBlock(res.CreatedBlock.ID)

		out, err := l.Unlink(ctx, "q-1", res.Config, linker.UnlinkKeep)
		require.NoError(t, err, "dangling reference degrades gracefully, it is not an error")
		require.Len(t, out.Warnings, 1)
		assert.Equal(t, domain.WarningDanglingReference, out.Warnings[0].Kind)
		assert.Nil(t, out.Config.Transform(), "nothing to preserve from a missing block")
		assert.Equal(t, "applicants", out.Config.ListVariable)
	})

	t.Run("Missing Base Is An Invariant Violation", func(t *testing.T) {
		ws := newWorkspace()
		l := linker.New(ws, ws)

		cfg := &domain.DynamicOptionsConfig{
			ListVariable: "applicants_view",
			ValuePath:    "id",
			Link:         domain.Linked{BlockID: "lt-corrupt", BaseListVar: ""},
		}
		res, err := l.Unlink(ctx, "q-1", cfg, linker.UnlinkKeep)
		assert.Nil(t, res)

		var invariantErr *domain.InvariantViolation
		require.ErrorAs(t, err, &invariantErr)

		// Config must not be patched with a guess.
		assert.Equal(t, "applicants_view", cfg.ListVariable)
		assert.Equal(t, domain.StatusLinked, cfg.Status())
	})

	t.Run("Not Linked", func(t *testing.T) {
		ws := newWorkspace()
		l := linker.New(ws, ws)

		_, err := l.Unlink(ctx, "q-1", unlinkedConfig(nil), linker.UnlinkDiscard)
		var validationErr *domain.ValidationError
		require.ErrorAs(t, err, &validationErr)
	})

	t.Run("Unknown Mode", func(t *testing.T) {
		ws := newWorkspace()
		l := linker.New(ws, ws)

		res, err := l.CreateLink(ctx, "q-1", unlinkedConfig(nil), "page-1")
		require.NoError(t, err)

		_, err = l.Unlink(ctx, "q-1", res.Config, linker.UnlinkMode("truncate"))
		var validationErr *domain.ValidationError
		require.ErrorAs(t, err, &validationErr)
	})
}

func TestLinker_Replace(t *testing.T) {
	ctx := context.Background()

	t.Run("Reset Creates Fresh Block And Preserves Base", func(t *testing.T) {
		ws := newWorkspace()
		l := linker.New(ws, ws)

		res, err := l.CreateLink(ctx, "q-1", unlinkedConfig(nil), "page-1")
		require.NoError(t, err)

		oldBlockID := res.CreatedBlock.ID
		sorted := &domain.TransformConfig{
			Sort: []domain.SortKey{{Field: "lastName", Direction: domain.SortDesc}},
		}
		require.NoError(t, ws.SetBlockConfig(oldBlockID, sorted))

		out, err := l.Replace(ctx, "q-1", res.Config, linker.ReplaceReset, "page-1")
		require.NoError(t, err)
		require.NotNil(t, out.CreatedBlock)
		assert.NotEqual(t, oldBlockID, out.CreatedBlock.ID)
		assert.NotEqual(t, res.CreatedBlock.OutputListVariable, out.CreatedBlock.OutputListVariable)

		newBlock, ok := ws.Block(out.CreatedBlock.ID)
		require.True(t, ok)
		assert.True(t, newBlock.Config.IsEmpty(), "reset seeds an empty config")
		assert.Equal(t, "applicants", newBlock.SourceListVariable, "replacement reads the original source")

		base, ok := out.Config.BaseListVar()
		require.True(t, ok)
		assert.Equal(t, "applicants", base, "base survives replacement")

		// The old block is left exactly as it was.
		oldBlock, ok := ws.Block(oldBlockID)
		require.True(t, ok, "old block must not be deleted")
		assert.True(t, sorted.Equal(oldBlock.Config), "old block config must not be mutated")
	})

	t.Run("Migrate Copies Old Config", func(t *testing.T) {
		ws := newWorkspace()
		l := linker.New(ws, ws)

		limit := 10
		res, err := l.CreateLink(ctx, "q-1", unlinkedConfig(&domain.TransformConfig{Limit: &limit}), "page-1")
		require.NoError(t, err)

		out, err := l.Replace(ctx, "q-1", res.Config, linker.ReplaceMigrate, "page-1")
		require.NoError(t, err)
		assert.Empty(t, out.Warnings)

		newBlock, ok := ws.Block(out.CreatedBlock.ID)
		require.True(t, ok)
		require.NotNil(t, newBlock.Config)
		require.NotNil(t, newBlock.Config.Limit)
		assert.Equal(t, limit, *newBlock.Config.Limit)
	})

	t.Run("Migrate With Dangling Reference Seeds Empty", func(t *testing.T) {
		ws := newWorkspace()
		l := linker.New(ws, ws)

		limit := 10
		res, err := l.CreateLink(ctx, "q-1", unlinkedConfig(&domain.TransformConfig{Limit: &limit}), "page-1")
		require.NoError(t, err)

		ws.RemoveBlock(res.CreatedBlock.ID)

		out, err := l.Replace(ctx, "q-1", res.Config, linker.ReplaceMigrate, "page-1")
		require.NoError(t, err)
		require.Len(t, out.Warnings, 1)
		assert.Equal(t, domain.WarningDanglingReference, out.Warnings[0].Kind)

		newBlock, ok := ws.Block(out.CreatedBlock.ID)
		require.True(t, ok)
		assert.True(t, newBlock.Config.IsEmpty())
	})

	t.Run("Missing Base Is An Invariant Violation", func(t *testing.T) {
		ws := newWorkspace()
		l := linker.New(ws, ws)

		cfg := &domain.DynamicOptionsConfig{
			ListVariable: "applicants_view",
			ValuePath:    "id",
			Link:         domain.Linked{BlockID: "lt-corrupt", BaseListVar: ""},
		}
		_, err := l.Replace(ctx, "q-1", cfg, linker.ReplaceReset, "page-1")

		var invariantErr *domain.InvariantViolation
		require.ErrorAs(t, err, &invariantErr)
	})
}

func TestLinker_ChangeListVariable(t *testing.T) {
	ctx := context.Background()

	t.Run("Updates Source And Resets Paths", func(t *testing.T) {
		ws := newWorkspace()
		l := linker.New(ws, ws)

		res, err := l.ChangeListVariable(ctx, "q-1", unlinkedConfig(nil), "employees")
		require.NoError(t, err)
		assert.Equal(t, "employees", res.Config.ListVariable)
		assert.Empty(t, res.Config.LabelPath, "column paths are schema specific")
		assert.Empty(t, res.Config.ValuePath)
	})

	t.Run("Rejected While Linked", func(t *testing.T) {
		ws := newWorkspace()
		l := linker.New(ws, ws)

		res, err := l.CreateLink(ctx, "q-1", unlinkedConfig(nil), "page-1")
		require.NoError(t, err)

		_, err = l.ChangeListVariable(ctx, "q-1", res.Config, "employees")
		var validationErr *domain.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "listVariable", validationErr.Field)
	})

	t.Run("Missing List Variable", func(t *testing.T) {
		ws := newWorkspace()
		l := linker.New(ws, ws)

		_, err := l.ChangeListVariable(ctx, "q-1", unlinkedConfig(nil), "")
		var validationErr *domain.ValidationError
		require.ErrorAs(t, err, &validationErr)
	})
}

// Unlink("keep") immediately after CreateLink must restore a transform
// structurally equal to the one that existed before the link was created.
func TestLinker_RoundTrip(t *testing.T) {
	ctx := context.Background()
	ws := newWorkspace()
	l := linker.New(ws, ws)

	offset := 5
	before := &domain.TransformConfig{
		Filters: []domain.FilterRule{{"column": "status", "op": "eq", "value": "active"}},
		Sort:    []domain.SortKey{{Field: "lastName", Direction: domain.SortAsc}},
		Offset:  &offset,
		Dedupe:  &domain.DedupeRule{FieldPath: "email"},
	}

	linked, err := l.CreateLink(ctx, "q-1", unlinkedConfig(before.Clone()), "page-1")
	require.NoError(t, err)

	out, err := l.Unlink(ctx, "q-1", linked.Config, linker.UnlinkKeep)
	require.NoError(t, err)

	assert.True(t, before.Equal(out.Config.Transform()), "round trip must restore the pre-link transform")
	assert.Equal(t, "applicants", out.Config.ListVariable)
}
