// Package checker derives advisory findings for a question's dynamic options
// configuration by cross-referencing the workflow's block layout and the
// schema backing the option source.
//
// Findings are informational: they never block a save. They are recomputed on
// every call and never cached, since the block registry and schemas can change
// independently of the question.
package checker

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

// Checker cross-references a DynamicOptionsConfig against the workflow.
type Checker struct {
	schemas  ports.SchemaResolver
	registry ports.BlockRegistry
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
}

// Option configures the Checker.
type Option func(*Checker)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Checker) {
		c.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Checker) {
		c.hooks = hooks
	}
}

// New creates a Checker over the given schema source and block registry.
func New(schemas ports.SchemaResolver, registry ports.BlockRegistry, opts ...Option) *Checker {
	c := &Checker{
		schemas:  schemas,
		registry: registry,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check returns the advisory findings for one question's config.
// An error is returned only for unexpected resolver failures; "unknown" and
// "unresolved" answers are part of the normal result.
func (c *Checker) Check(ctx context.Context, questionID string, cfg *domain.DynamicOptionsConfig) ([]domain.Finding, error) {
	findings := []domain.Finding{}

	timing, err := c.checkTiming(ctx, questionID, cfg)
	if err != nil {
		return nil, err
	}
	findings = append(findings, timing...)

	schema, err := c.checkSchema(ctx, cfg)
	if err != nil {
		return nil, err
	}
	findings = append(findings, schema...)

	for i := range findings {
		c.emitFinding(ctx, questionID, findings[i].Kind)
	}
	return findings, nil
}

// checkTiming verifies the producer of the option source runs strictly before
// the consuming question. An unresolvable producer or consumer produces no
// finding: absence of information is not evidence of a problem.
func (c *Checker) checkTiming(ctx context.Context, questionID string, cfg *domain.DynamicOptionsConfig) ([]domain.Finding, error) {
	if cfg.ListVariable == "" {
		return nil, nil
	}

	producer, err := c.registry.ResolveProducer(ctx, cfg.ListVariable)
	if errors.Is(err, domain.ErrProducerUnknown) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve producer: %w", err)
	}

	consumer, err := c.registry.ResolveConsumerPosition(ctx, questionID)
	if errors.Is(err, domain.ErrProducerUnknown) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve consumer position: %w", err)
	}

	if !producer.Before(consumer) {
		return []domain.Finding{{
			Kind: domain.FindingTiming,
			Message: fmt.Sprintf("list variable %q is produced in phase %q which does not run before this question",
				cfg.ListVariable, producer.Phase),
		}}, nil
	}
	return nil, nil
}

// checkSchema verifies the configured column paths against the table backing
// the option source.
func (c *Checker) checkSchema(ctx context.Context, cfg *domain.DynamicOptionsConfig) ([]domain.Finding, error) {
	if cfg.ListVariable == "" {
		return nil, nil
	}

	schema, err := c.schemas.ResolveSchema(ctx, cfg.ListVariable)
	if errors.Is(err, domain.ErrSchemaUnresolved) {
		return []domain.Finding{{
			Kind:    domain.FindingSourceUnresolved,
			Message: fmt.Sprintf("could not resolve the table behind list variable %q; column checks skipped", cfg.ListVariable),
		}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve schema: %w", err)
	}

	var findings []domain.Finding
	if cfg.LabelPath != "" && !schema.HasColumn(cfg.LabelPath) {
		findings = append(findings, domain.Finding{
			Kind:    domain.FindingLabelColumn,
			Message: fmt.Sprintf("label column %q does not exist in the source table", cfg.LabelPath),
		})
	}
	if cfg.ValuePath != "" && !schema.HasColumn(cfg.ValuePath) {
		findings = append(findings, domain.Finding{
			Kind:    domain.FindingValueColumn,
			Message: fmt.Sprintf("value column %q does not exist in the source table", cfg.ValuePath),
		})
	}
	return findings, nil
}

func (c *Checker) emitFinding(ctx context.Context, questionID string, kind domain.FindingKind) {
	c.logger.Debug("consistency finding", "question", questionID, "kind", string(kind))
	if c.hooks.OnFinding != nil {
		c.hooks.OnFinding(ctx, &domain.FindingEvent{
			Timestamp:  time.Now(),
			QuestionID: questionID,
			Kind:       kind,
		})
	}
}
