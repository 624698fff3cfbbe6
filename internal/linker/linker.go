// Package linker implements the link state machine governing the relationship
// between a choice question's dynamic option source and an external List
// Tools block.
//
// Every transition is a pure read-modify-write over one DynamicOptionsConfig:
// it either returns the full new config (plus, for CreateLink and Replace, the
// freshly created block) or returns an error and leaves the input untouched.
// Block creation happens before the config is rewritten, never after, so a
// failed or canceled creation cannot leave a link pointing at nothing.
package linker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/espalier/internal/logging"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
)

// UnlinkMode selects what happens to the linked block's transform on unlink.
type UnlinkMode string

const (
	// UnlinkKeep copies the linked block's config back into the question.
	UnlinkKeep UnlinkMode = "keep"
	// UnlinkDiscard drops the transform entirely.
	UnlinkDiscard UnlinkMode = "discard"
)

// ReplaceMode selects the seed config for the replacement block.
type ReplaceMode string

const (
	// ReplaceMigrate seeds the new block with a copy of the old block's config.
	ReplaceMigrate ReplaceMode = "migrate"
	// ReplaceReset seeds the new block with an empty config.
	ReplaceReset ReplaceMode = "reset"
)

// Result is the outcome of a successful transition.
type Result struct {
	// Config is the full replacement DynamicOptionsConfig.
	Config *domain.DynamicOptionsConfig

	// CreatedBlock is set by CreateLink and Replace.
	CreatedBlock *domain.BlockRef

	// Warnings are non-fatal degradations (e.g. a dangling block reference).
	Warnings []domain.Warning
}

// Linker applies link transitions. It holds no per-question state; the caller
// is responsible for serializing writes per question (see pkg/session).
type Linker struct {
	registry ports.BlockRegistry
	creator  ports.BlockCreator
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
}

// Option configures the Linker.
type Option func(*Linker)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Linker) {
		l.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(l *Linker) {
		l.hooks = hooks
	}
}

// New creates a Linker over the given registry and block creator.
func New(registry ports.BlockRegistry, creator ports.BlockCreator, opts ...Option) *Linker {
	l := &Linker{
		registry: registry,
		creator:  creator,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// CreateLink moves an unlinked question's transform (if any) into a new List
// Tools block and repoints the question at the block's output.
func (l *Linker) CreateLink(ctx context.Context, questionID string, cfg *domain.DynamicOptionsConfig, sectionID string) (*Result, error) {
	if _, linked := cfg.Link.(domain.Linked); linked {
		return nil, &domain.ValidationError{Field: "linkedBlockId", Reason: "already linked; use replace instead"}
	}
	if cfg.ListVariable == "" {
		return nil, &domain.ValidationError{Field: "listVariable", Reason: "missing list variable"}
	}

	// The inline transform (empty from the plain-unlinked state) seeds the block.
	initial := cfg.Transform().Clone()

	ref, err := l.creator.CreateListToolsBlock(ctx, cfg.ListVariable, initial, sectionID)
	if err != nil {
		return nil, fmt.Errorf("create list tools block: %w", err)
	}

	next := cfg.Clone()
	next.Link = domain.Linked{BlockID: ref.ID, BaseListVar: cfg.ListVariable}
	next.ListVariable = ref.OutputListVariable

	l.emitTransition(ctx, domain.OpCreateLink, questionID, next, 0)
	return &Result{Config: next, CreatedBlock: &ref}, nil
}

// Unlink detaches the question from its linked block, restoring the pre-link
// source. With UnlinkKeep the block's config is copied back inline; if the
// block reference is dangling, the copy is skipped and a warning attached.
// The block itself is never touched.
func (l *Linker) Unlink(ctx context.Context, questionID string, cfg *domain.DynamicOptionsConfig, mode UnlinkMode) (*Result, error) {
	link, err := l.requireLinked(cfg)
	if err != nil {
		return nil, err
	}
	if mode != UnlinkKeep && mode != UnlinkDiscard {
		return nil, &domain.ValidationError{Field: "mode", Reason: fmt.Sprintf("unknown unlink mode %q", mode)}
	}

	var kept *domain.TransformConfig
	var warnings []domain.Warning
	if mode == UnlinkKeep {
		block, err := l.registry.ResolveBlock(ctx, link.BlockID)
		switch {
		case errors.Is(err, domain.ErrBlockNotFound):
			warnings = append(warnings, domain.Warning{
				Kind:    domain.WarningDanglingReference,
				Message: "link target missing, transforms could not be preserved",
			})
			l.logger.Warn("unlink found dangling block reference", "question", questionID, "block", link.BlockID)
		case err != nil:
			return nil, fmt.Errorf("resolve linked block: %w", err)
		default:
			kept = block.Config.Clone().Normalize()
		}
	}

	next := cfg.Clone()
	next.ListVariable = link.BaseListVar
	next.Link = domain.Unlinked{Transform: kept}

	l.emitTransition(ctx, domain.OpUnlink, questionID, next, len(warnings))
	return &Result{Config: next, Warnings: warnings}, nil
}

// Replace creates a brand-new List Tools block reading the original pre-link
// source and repoints the question at it. The previously linked block is left
// in place untouched; cleanup of now-unreferenced blocks is the workflow
// owner's concern.
func (l *Linker) Replace(ctx context.Context, questionID string, cfg *domain.DynamicOptionsConfig, mode ReplaceMode, sectionID string) (*Result, error) {
	link, err := l.requireLinked(cfg)
	if err != nil {
		return nil, err
	}
	if mode != ReplaceMigrate && mode != ReplaceReset {
		return nil, &domain.ValidationError{Field: "mode", Reason: fmt.Sprintf("unknown replace mode %q", mode)}
	}

	var initial *domain.TransformConfig
	var warnings []domain.Warning
	if mode == ReplaceMigrate {
		block, err := l.registry.ResolveBlock(ctx, link.BlockID)
		switch {
		case errors.Is(err, domain.ErrBlockNotFound):
			warnings = append(warnings, domain.Warning{
				Kind:    domain.WarningDanglingReference,
				Message: "link target missing, transforms could not be migrated",
			})
			l.logger.Warn("replace found dangling block reference", "question", questionID, "block", link.BlockID)
		case err != nil:
			return nil, fmt.Errorf("resolve linked block: %w", err)
		default:
			initial = block.Config.Clone().Normalize()
		}
	}

	ref, err := l.creator.CreateListToolsBlock(ctx, link.BaseListVar, initial, sectionID)
	if err != nil {
		return nil, fmt.Errorf("create list tools block: %w", err)
	}

	next := cfg.Clone()
	// BaseListVar survives the replacement: the new block reads the same
	// original source the old one did.
	next.Link = domain.Linked{BlockID: ref.ID, BaseListVar: link.BaseListVar}
	next.ListVariable = ref.OutputListVariable

	l.emitTransition(ctx, domain.OpReplace, questionID, next, len(warnings))
	return &Result{Config: next, CreatedBlock: &ref, Warnings: warnings}, nil
}

// ChangeListVariable repoints an unlinked question at a different source and
// resets the schema-specific column paths. While linked this is rejected:
// repointing under an attached block would silently desynchronize the block's
// sourceListVariable, so the caller must unlink first.
func (l *Linker) ChangeListVariable(ctx context.Context, questionID string, cfg *domain.DynamicOptionsConfig, listVariable string) (*Result, error) {
	if _, linked := cfg.Link.(domain.Linked); linked {
		return nil, &domain.ValidationError{Field: "listVariable", Reason: "source is linked; unlink before changing it"}
	}
	if listVariable == "" {
		return nil, &domain.ValidationError{Field: "listVariable", Reason: "missing list variable"}
	}

	next := cfg.Clone()
	next.ListVariable = listVariable
	// Column paths are schema specific and cannot carry over to a new source.
	next.LabelPath = ""
	next.ValuePath = ""

	l.emitTransition(ctx, domain.OpChangeSource, questionID, next, 0)
	return &Result{Config: next}, nil
}

// requireLinked asserts the config is in the linked state with an intact
// base source. A linked config without a base source is impossible by
// construction, so finding one means the stored data is corrupt; it is
// reported, never patched with a guess.
func (l *Linker) requireLinked(cfg *domain.DynamicOptionsConfig) (domain.Linked, error) {
	link, ok := cfg.Link.(domain.Linked)
	if !ok {
		return domain.Linked{}, &domain.ValidationError{Field: "linkedBlockId", Reason: "not linked"}
	}
	if link.BaseListVar == "" {
		return domain.Linked{}, &domain.InvariantViolation{Reason: "linkedBlockId set without baseListVar"}
	}
	return link, nil
}

func (l *Linker) emitTransition(ctx context.Context, op domain.TransitionOp, questionID string, next *domain.DynamicOptionsConfig, warnings int) {
	l.logger.Debug("link transition applied",
		"op", string(op),
		"question", questionID,
		"status", string(next.Status()),
		"warnings", warnings,
	)
	if l.hooks.OnTransition != nil {
		l.hooks.OnTransition(ctx, &domain.TransitionEvent{
			Timestamp:  time.Now(),
			Op:         op,
			QuestionID: questionID,
			Status:     next.Status(),
			Warnings:   warnings,
		})
	}
}
