package domain_test

import (
	"testing"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestDynamicOptionsConfig_Status(t *testing.T) {
	t.Run("Nil Link Reads As Unlinked", func(t *testing.T) {
		cfg := &domain.DynamicOptionsConfig{ListVariable: "applicants"}
		assert.Equal(t, domain.StatusUnlinked, cfg.Status())
		assert.Nil(t, cfg.Transform())
	})

	t.Run("Empty Inline Transform Reads As Unlinked", func(t *testing.T) {
		cfg := &domain.DynamicOptionsConfig{
			ListVariable: "applicants",
			Link:         domain.Unlinked{Transform: &domain.TransformConfig{}},
		}
		assert.Equal(t, domain.StatusUnlinked, cfg.Status())
		assert.Nil(t, cfg.Transform(), "empty transform normalizes to absent")
	})

	t.Run("Inline Transform", func(t *testing.T) {
		cfg := &domain.DynamicOptionsConfig{
			ListVariable: "applicants",
			Link: domain.Unlinked{Transform: &domain.TransformConfig{
				Select: []string{"id"},
			}},
		}
		assert.Equal(t, domain.StatusInlineTransform, cfg.Status())
	})

	t.Run("Linked", func(t *testing.T) {
		cfg := &domain.DynamicOptionsConfig{
			ListVariable: "applicants_view",
			Link:         domain.Linked{BlockID: "lt-1", BaseListVar: "applicants"},
		}
		assert.Equal(t, domain.StatusLinked, cfg.Status())
		assert.Nil(t, cfg.Transform(), "a linked question has no inline transform")

		blockID, ok := cfg.LinkedBlockID()
		assert.True(t, ok)
		assert.Equal(t, "lt-1", blockID)

		base, ok := cfg.BaseListVar()
		assert.True(t, ok)
		assert.Equal(t, "applicants", base)
	})
}

func TestDynamicOptionsConfig_CloneIsDeep(t *testing.T) {
	cfg := &domain.DynamicOptionsConfig{
		ListVariable: "applicants",
		LabelPath:    "fullName",
		Link: domain.Unlinked{Transform: &domain.TransformConfig{
			Select: []string{"id"},
		}},
	}

	clone := cfg.Clone()
	clone.ListVariable = "tampered"
	clone.Transform().Select[0] = "tampered"

	assert.Equal(t, "applicants", cfg.ListVariable)
	assert.Equal(t, "id", cfg.Transform().Select[0])
}

func TestPosition_Before(t *testing.T) {
	onEnter0 := domain.Position{Phase: domain.PhaseOnEnter, Order: 0}
	onEnter1 := domain.Position{Phase: domain.PhaseOnEnter, Order: 1}
	onSubmit0 := domain.Position{Phase: domain.PhaseOnSubmit, Order: 0}

	assert.True(t, onEnter0.Before(onEnter1))
	assert.True(t, onEnter1.Before(onSubmit0), "entry phase runs before submit regardless of order")
	assert.False(t, onEnter0.Before(onEnter0), "a position is not strictly before itself")
	assert.False(t, onSubmit0.Before(onEnter1))
}
