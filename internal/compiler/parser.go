// Package compiler parses workflow documents into the domain model.
package compiler

import (
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/espalier/internal/dto"
	"github.com/aretw0/espalier/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Document shapes. Field names follow the persisted contract in internal/dto.

type columnDoc struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	IsPrimary bool   `yaml:"isPrimary"`
}

type tableDoc struct {
	Name    string      `yaml:"name"`
	Columns []columnDoc `yaml:"columns"`
}

type blockDoc struct {
	ID    string `yaml:"id"`
	Type  string `yaml:"type"`
	Phase string `yaml:"phase"`
	Order int    `yaml:"order"`

	OutputListVariable string `yaml:"outputListVariable"`
	Table              string `yaml:"table"`

	SourceListVariable string               `yaml:"sourceListVariable"`
	Config             *dto.TransformConfig `yaml:"config"`

	DynamicOptions *dto.DynamicOptions `yaml:"dynamicOptions"`
}

type pageDoc struct {
	ID     string     `yaml:"id"`
	Blocks []blockDoc `yaml:"blocks"`
}

type workflowDoc struct {
	Workflow string     `yaml:"workflow"`
	Tables   []tableDoc `yaml:"tables"`
	Pages    []pageDoc  `yaml:"pages"`
}

// Parser converts workflow documents into domain.Workflow values.
type Parser struct{}

// NewParser creates a Parser.
func NewParser() *Parser {
	return &Parser{}
}

// ParseFile reads and parses a workflow document from disk.
func (p *Parser) ParseFile(path string) (*domain.Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workflow document: %w", err)
	}
	return p.Parse(data)
}

// Parse parses a YAML workflow document and validates its structure.
func (p *Parser) Parse(data []byte) (*domain.Workflow, error) {
	var doc workflowDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse workflow document: %w", err)
	}

	wf := &domain.Workflow{Name: doc.Workflow}
	for _, t := range doc.Tables {
		table := domain.Table{Name: t.Name}
		for _, col := range t.Columns {
			table.Schema.Columns = append(table.Schema.Columns, domain.Column{
				ID:        col.ID,
				Name:      col.Name,
				IsPrimary: col.IsPrimary,
			})
		}
		wf.Tables = append(wf.Tables, table)
	}

	var problems []string
	seenBlocks := make(map[string]bool)
	seenOutputs := make(map[string]bool)

	for _, pg := range doc.Pages {
		page := domain.Page{ID: pg.ID}
		for _, b := range pg.Blocks {
			if b.ID == "" {
				problems = append(problems, fmt.Sprintf("page %q: block with empty id", pg.ID))
				continue
			}
			if seenBlocks[b.ID] {
				problems = append(problems, fmt.Sprintf("duplicate block id %q", b.ID))
			}
			seenBlocks[b.ID] = true

			block := domain.PageBlock{
				ID:                 b.ID,
				Type:               domain.BlockType(b.Type),
				Phase:              domain.Phase(b.Phase),
				Order:              b.Order,
				OutputListVariable: b.OutputListVariable,
				Table:              b.Table,
				SourceListVariable: b.SourceListVariable,
			}

			switch block.Type {
			case domain.BlockTypeInput:
				if b.OutputListVariable == "" {
					problems = append(problems, fmt.Sprintf("input block %q publishes no list variable", b.ID))
				}
				if _, ok := wf.TableByName(b.Table); b.Table != "" && !ok {
					problems = append(problems, fmt.Sprintf("input block %q references unknown table %q", b.ID, b.Table))
				}
			case domain.BlockTypeListTools:
				if b.SourceListVariable == "" {
					problems = append(problems, fmt.Sprintf("list tools block %q has no source list variable", b.ID))
				}
				if b.OutputListVariable == "" {
					problems = append(problems, fmt.Sprintf("list tools block %q publishes no list variable", b.ID))
				}
				if b.Config != nil {
					block.Config = blockTransform(b.Config)
				}
			case domain.BlockTypeChoice:
				if b.DynamicOptions != nil {
					opts, err := b.DynamicOptions.ToDomain()
					if err != nil {
						problems = append(problems, fmt.Sprintf("choice block %q: %v", b.ID, err))
					} else {
						block.Options = opts
					}
				}
			default:
				problems = append(problems, fmt.Sprintf("block %q has unknown type %q", b.ID, b.Type))
			}

			if block.OutputListVariable != "" {
				if seenOutputs[block.OutputListVariable] {
					problems = append(problems, fmt.Sprintf("list variable %q is published more than once", block.OutputListVariable))
				}
				seenOutputs[block.OutputListVariable] = true
			}

			page.Blocks = append(page.Blocks, block)
		}
		wf.Pages = append(wf.Pages, page)
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("found %d problems:\n- %s", len(problems), strings.Join(problems, "\n- "))
	}
	return wf, nil
}

func blockTransform(t *dto.TransformConfig) *domain.TransformConfig {
	// Round-trip through the wire block shape to reuse dto's conversion.
	wire := &dto.ListToolsBlock{Config: t}
	return wire.ToDomain().Config
}
