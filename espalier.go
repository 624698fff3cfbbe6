package espalier

import (
	"context"
	"log/slog"

	"github.com/aretw0/espalier/internal/checker"
	"github.com/aretw0/espalier/internal/linker"
	"github.com/aretw0/espalier/internal/logging"
	"github.com/aretw0/espalier/pkg/adapters/memory"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
	"github.com/aretw0/espalier/pkg/session"
)

// Workspace is the composite read/create surface the editor needs from the
// surrounding workflow model.
type Workspace interface {
	ports.SchemaResolver
	ports.BlockRegistry
	ports.BlockCreator
}

// Re-exported transition modes, so typical hosts only import the root package.
type (
	UnlinkMode  = linker.UnlinkMode
	ReplaceMode = linker.ReplaceMode
	Result      = linker.Result
)

const (
	UnlinkKeep     = linker.UnlinkKeep
	UnlinkDiscard  = linker.UnlinkDiscard
	ReplaceMigrate = linker.ReplaceMigrate
	ReplaceReset   = linker.ReplaceReset
)

// Editor is the high-level entry point for the Espalier library.
// It wraps the link state machine and the consistency checker and serializes
// edits per question through a session manager.
type Editor struct {
	workspace Workspace
	linker    *linker.Linker
	checker   *checker.Checker
	sessions  *session.Manager

	store  ports.ConfigStore
	locker ports.DistributedLocker
	hooks  domain.LifecycleHooks
	logger *slog.Logger
}

// Option defines a functional option for configuring the Editor.
type Option func(*Editor)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Editor) {
		e.hooks = hooks
	}
}

// WithStore injects a custom config store (default: in-memory).
func WithStore(store ports.ConfigStore) Option {
	return func(e *Editor) {
		e.store = store
	}
}

// WithLocker enables distributed per-question locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(e *Editor) {
		e.locker = locker
	}
}

// New creates an Editor over the given workspace.
func New(workspace Workspace, opts ...Option) *Editor {
	e := &Editor{
		workspace: workspace,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.store == nil {
		e.store = memory.NewStore()
	}

	e.linker = linker.New(workspace, workspace,
		linker.WithLogger(e.logger),
		linker.WithLifecycleHooks(e.hooks),
	)
	e.checker = checker.New(workspace, workspace,
		checker.WithLogger(e.logger),
		checker.WithLifecycleHooks(e.hooks),
	)

	sessionOpts := []session.Option{session.WithLogger(e.logger)}
	if e.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(e.locker))
	}
	e.sessions = session.NewManager(e.store, sessionOpts...)

	return e
}

// SetOptions stores a question's options config, replacing any previous value.
func (e *Editor) SetOptions(ctx context.Context, questionID string, cfg *domain.DynamicOptionsConfig) error {
	return e.sessions.Save(ctx, questionID, cfg)
}

// Options returns the stored config for a question.
func (e *Editor) Options(ctx context.Context, questionID string) (*domain.DynamicOptionsConfig, error) {
	return e.sessions.Load(ctx, questionID)
}

// CreateLink moves the question's inline transform into a new List Tools
// block and links the question to it.
func (e *Editor) CreateLink(ctx context.Context, questionID, sectionID string) (*Result, error) {
	return e.apply(ctx, questionID, func(ctx context.Context, cfg *domain.DynamicOptionsConfig) (*Result, error) {
		return e.linker.CreateLink(ctx, questionID, cfg, sectionID)
	})
}

// Unlink detaches the question from its linked block.
func (e *Editor) Unlink(ctx context.Context, questionID string, mode UnlinkMode) (*Result, error) {
	return e.apply(ctx, questionID, func(ctx context.Context, cfg *domain.DynamicOptionsConfig) (*Result, error) {
		return e.linker.Unlink(ctx, questionID, cfg, mode)
	})
}

// Replace swaps the linked block for a freshly created one reading the
// original pre-link source. The old block is left in place.
func (e *Editor) Replace(ctx context.Context, questionID string, mode ReplaceMode, sectionID string) (*Result, error) {
	return e.apply(ctx, questionID, func(ctx context.Context, cfg *domain.DynamicOptionsConfig) (*Result, error) {
		return e.linker.Replace(ctx, questionID, cfg, mode, sectionID)
	})
}

// ChangeListVariable repoints an unlinked question at a different source.
func (e *Editor) ChangeListVariable(ctx context.Context, questionID, listVariable string) (*Result, error) {
	return e.apply(ctx, questionID, func(ctx context.Context, cfg *domain.DynamicOptionsConfig) (*Result, error) {
		return e.linker.ChangeListVariable(ctx, questionID, cfg, listVariable)
	})
}

// Check returns the advisory consistency findings for a question's stored
// config. Findings never block a save.
func (e *Editor) Check(ctx context.Context, questionID string) ([]domain.Finding, error) {
	cfg, err := e.sessions.Load(ctx, questionID)
	if err != nil {
		return nil, err
	}
	return e.checker.Check(ctx, questionID, cfg)
}

// Sessions returns the underlying session manager.
func (e *Editor) Sessions() *session.Manager {
	return e.sessions
}

// apply runs one transition under the question's lock: load latest, apply,
// persist the result. On error nothing is written.
func (e *Editor) apply(ctx context.Context, questionID string, fn func(context.Context, *domain.DynamicOptionsConfig) (*Result, error)) (*Result, error) {
	var res *Result
	err := e.sessions.Update(ctx, questionID, func(ctx context.Context, cfg *domain.DynamicOptionsConfig) (*domain.DynamicOptionsConfig, error) {
		var err error
		res, err = fn(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return res.Config, nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
