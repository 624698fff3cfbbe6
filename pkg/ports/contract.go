package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunConfigStoreContract runs a suite of tests to verify that a ConfigStore
// implementation adheres to the defined interface contract.
func RunConfigStoreContract(t *testing.T, store ConfigStore) {
	ctx := context.Background()
	questionID := "contract-test-question-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		limit := 25
		cfg := &domain.DynamicOptionsConfig{
			ListVariable: "applicants",
			LabelPath:    "fullName",
			ValuePath:    "id",
			Link: domain.Unlinked{Transform: &domain.TransformConfig{
				Sort:  []domain.SortKey{{Field: "fullName", Direction: domain.SortAsc}},
				Limit: &limit,
			}},
		}

		err := store.Save(ctx, questionID, cfg)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, questionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, cfg.ListVariable, loaded.ListVariable)
		assert.Equal(t, cfg.ValuePath, loaded.ValuePath)
		assert.Equal(t, domain.StatusInlineTransform, loaded.Status())
		assert.True(t, cfg.Transform().Equal(loaded.Transform()), "inline transform should round-trip")
	})

	t.Run("Linked Round Trip", func(t *testing.T) {
		cfg := &domain.DynamicOptionsConfig{
			ListVariable: "lt_out_1",
			ValuePath:    "id",
			Link:         domain.Linked{BlockID: "block-1", BaseListVar: "applicants"},
		}
		id := questionID + "-linked"

		require.NoError(t, store.Save(ctx, id, cfg))
		defer func() { _ = store.Delete(ctx, id) }()

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusLinked, loaded.Status())
		blockID, ok := loaded.LinkedBlockID()
		require.True(t, ok)
		assert.Equal(t, "block-1", blockID)
		base, ok := loaded.BaseListVar()
		require.True(t, ok)
		assert.Equal(t, "applicants", base)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+questionID)
		assert.ErrorIs(t, err, domain.ErrConfigNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		cfg := &domain.DynamicOptionsConfig{ListVariable: "applicants", ValuePath: "id"}
		err := store.Save(ctx, questionID, cfg)
		require.NoError(t, err)

		err = store.Delete(ctx, questionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, questionID)
		assert.ErrorIs(t, err, domain.ErrConfigNotFound, "Load after Delete should return ErrConfigNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := questionID + "-1"
		id2 := questionID + "-2"
		_ = store.Save(ctx, id1, &domain.DynamicOptionsConfig{ListVariable: "a", ValuePath: "id"})
		_ = store.Save(ctx, id2, &domain.DynamicOptionsConfig{ListVariable: "b", ValuePath: "id"})

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		questions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, questions, id1)
		assert.Contains(t, questions, id2)
	})
}
