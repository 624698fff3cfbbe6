// Package memory provides in-memory implementations of the Espalier ports.
// They back the CLI, the HTTP adapter, and tests.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/google/uuid"
)

// Workspace is an in-memory view of one workflow. It implements
// ports.SchemaResolver, ports.BlockRegistry and ports.BlockCreator.
// Safe for concurrent use.
type Workspace struct {
	mu sync.RWMutex

	tables    map[string]domain.TableSchema   // table name -> schema
	varTables map[string]string               // list variable -> backing table
	producers map[string]domain.Position      // list variable -> producer position
	consumers map[string]domain.Position      // question id -> position
	blocks    map[string]*domain.ListToolsBlock // list tools blocks by id
	nextOrder map[string]int                  // page id -> next block order
}

// NewWorkspace builds a workspace from a workflow definition.
// A nil workflow yields an empty workspace that can be populated through the
// Add* methods.
func NewWorkspace(wf *domain.Workflow) *Workspace {
	w := &Workspace{
		tables:    make(map[string]domain.TableSchema),
		varTables: make(map[string]string),
		producers: make(map[string]domain.Position),
		consumers: make(map[string]domain.Position),
		blocks:    make(map[string]*domain.ListToolsBlock),
		nextOrder: make(map[string]int),
	}
	if wf == nil {
		return w
	}

	for _, t := range wf.Tables {
		w.tables[t.Name] = t.Schema
	}
	for _, page := range wf.Pages {
		for _, b := range page.Blocks {
			pos := domain.Position{Phase: b.Phase, Order: b.Order}
			if b.Order >= w.nextOrder[page.ID] {
				w.nextOrder[page.ID] = b.Order + 1
			}
			switch b.Type {
			case domain.BlockTypeInput:
				w.producers[b.OutputListVariable] = pos
				if b.Table != "" {
					w.varTables[b.OutputListVariable] = b.Table
				}
			case domain.BlockTypeListTools:
				w.producers[b.OutputListVariable] = pos
				w.blocks[b.ID] = &domain.ListToolsBlock{
					ID:                 b.ID,
					Phase:              b.Phase,
					SourceListVariable: b.SourceListVariable,
					OutputListVariable: b.OutputListVariable,
					Config:             b.Config.Clone(),
				}
				// The output keeps the source's backing table; transforms
				// narrow rows, not the table they come from.
				if table, ok := w.varTables[b.SourceListVariable]; ok {
					w.varTables[b.OutputListVariable] = table
				}
			case domain.BlockTypeChoice:
				w.consumers[b.ID] = pos
			}
		}
	}
	return w
}

// AddTable registers a table schema.
func (w *Workspace) AddTable(name string, schema domain.TableSchema) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.tables[name] = schema
}

// AddProducer registers the position at which a list variable is published,
// optionally bound to a backing table.
func (w *Workspace) AddProducer(listVariable, table string, pos domain.Position) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.producers[listVariable] = pos
	if table != "" {
		w.varTables[listVariable] = table
	}
}

// AddConsumer registers a question's position.
func (w *Workspace) AddConsumer(questionID string, pos domain.Position) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.consumers[questionID] = pos
}

// Block returns the stored List Tools block, if present.
func (w *Workspace) Block(blockID string) (*domain.ListToolsBlock, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	block, ok := w.blocks[blockID]
	if !ok {
		return nil, false
	}
	return block.Clone(), true
}

// SetBlockConfig replaces the stored config of a List Tools block.
func (w *Workspace) SetBlockConfig(blockID string, cfg *domain.TransformConfig) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	block, ok := w.blocks[blockID]
	if !ok {
		return domain.ErrBlockNotFound
	}
	block.Config = cfg.Clone()
	return nil
}

// RemoveBlock drops a block, leaving any references to it dangling.
func (w *Workspace) RemoveBlock(blockID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.blocks, blockID)
}

// ResolveSchema implements ports.SchemaResolver.
func (w *Workspace) ResolveSchema(ctx context.Context, listVariable string) (*domain.TableSchema, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	table, ok := w.varTables[listVariable]
	if !ok {
		return nil, domain.ErrSchemaUnresolved
	}
	schema, ok := w.tables[table]
	if !ok {
		return nil, domain.ErrSchemaUnresolved
	}
	out := domain.TableSchema{Columns: append([]domain.Column(nil), schema.Columns...)}
	return &out, nil
}

// ResolveBlock implements ports.BlockRegistry.
func (w *Workspace) ResolveBlock(ctx context.Context, blockID string) (*domain.ListToolsBlock, error) {
	block, ok := w.Block(blockID)
	if !ok {
		return nil, domain.ErrBlockNotFound
	}
	return block, nil
}

// ResolveProducer implements ports.BlockRegistry.
func (w *Workspace) ResolveProducer(ctx context.Context, listVariable string) (domain.Position, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	pos, ok := w.producers[listVariable]
	if !ok {
		return domain.Position{}, domain.ErrProducerUnknown
	}
	return pos, nil
}

// ResolveConsumerPosition implements ports.BlockRegistry.
func (w *Workspace) ResolveConsumerPosition(ctx context.Context, questionID string) (domain.Position, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	pos, ok := w.consumers[questionID]
	if !ok {
		return domain.Position{}, domain.ErrProducerUnknown
	}
	return pos, nil
}

// CreateListToolsBlock implements ports.BlockCreator. The block is placed in
// the page's entry phase so its output exists before inputs render.
func (w *Workspace) CreateListToolsBlock(ctx context.Context, sourceListVariable string, initialConfig *domain.TransformConfig, sectionID string) (domain.BlockRef, error) {
	if sourceListVariable == "" {
		return domain.BlockRef{}, &domain.ValidationError{Field: "sourceListVariable", Reason: "missing list variable"}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	short := strings.Split(uuid.NewString(), "-")[0]
	blockID := "lt-" + short
	output := fmt.Sprintf("%s_view_%s", sourceListVariable, short)

	order := w.nextOrder[sectionID]
	w.nextOrder[sectionID] = order + 1

	block := &domain.ListToolsBlock{
		ID:                 blockID,
		Phase:              domain.PhaseOnEnter,
		SourceListVariable: sourceListVariable,
		OutputListVariable: output,
		Config:             initialConfig.Clone(),
	}
	w.blocks[blockID] = block
	w.producers[output] = domain.Position{Phase: block.Phase, Order: order}
	if table, ok := w.varTables[sourceListVariable]; ok {
		w.varTables[output] = table
	}

	return domain.BlockRef{ID: blockID, OutputListVariable: output}, nil
}
