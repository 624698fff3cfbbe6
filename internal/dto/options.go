// Package dto holds the wire shapes for option-sourcing configuration.
//
// The field names here (listVariable, baseListVar, transform, linkedBlockId,
// ...) are the storage contract other tooling round-trips; the domain types
// are the tagged redesign of the same data. Decoding is where the two meet:
// a payload carrying both transform and linkedBlockId has no domain
// representation and is rejected outright.
package dto

import (
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// SortKey mirrors domain.SortKey on the wire.
type SortKey struct {
	Field     string `json:"field" yaml:"field" mapstructure:"field"`
	Direction string `json:"direction" yaml:"direction" mapstructure:"direction"`
}

// DedupeRule mirrors domain.DedupeRule on the wire.
type DedupeRule struct {
	FieldPath string `json:"fieldPath" yaml:"fieldPath" mapstructure:"fieldPath"`
}

// TransformConfig is the persisted shape of a list transformation.
type TransformConfig struct {
	Filters []map[string]any `json:"filters,omitempty" yaml:"filters,omitempty" mapstructure:"filters"`
	Sort    []SortKey        `json:"sort,omitempty" yaml:"sort,omitempty" mapstructure:"sort"`
	Limit   *int             `json:"limit,omitempty" yaml:"limit,omitempty" mapstructure:"limit"`
	Offset  *int             `json:"offset,omitempty" yaml:"offset,omitempty" mapstructure:"offset"`
	Select  []string         `json:"select,omitempty" yaml:"select,omitempty" mapstructure:"select"`
	Dedupe  *DedupeRule      `json:"dedupe,omitempty" yaml:"dedupe,omitempty" mapstructure:"dedupe"`
}

// DynamicOptions is the persisted shape of a question's option sourcing.
type DynamicOptions struct {
	ListVariable       string           `json:"listVariable" yaml:"listVariable" mapstructure:"listVariable"`
	BaseListVar        string           `json:"baseListVar,omitempty" yaml:"baseListVar,omitempty" mapstructure:"baseListVar"`
	LabelPath          string           `json:"labelPath,omitempty" yaml:"labelPath,omitempty" mapstructure:"labelPath"`
	ValuePath          string           `json:"valuePath,omitempty" yaml:"valuePath,omitempty" mapstructure:"valuePath"`
	LabelTemplate      string           `json:"labelTemplate,omitempty" yaml:"labelTemplate,omitempty" mapstructure:"labelTemplate"`
	IncludeBlankOption bool             `json:"includeBlankOption,omitempty" yaml:"includeBlankOption,omitempty" mapstructure:"includeBlankOption"`
	BlankLabel         string           `json:"blankLabel,omitempty" yaml:"blankLabel,omitempty" mapstructure:"blankLabel"`
	Transform          *TransformConfig `json:"transform,omitempty" yaml:"transform,omitempty" mapstructure:"transform"`
	LinkedBlockID      string           `json:"linkedBlockId,omitempty" yaml:"linkedBlockId,omitempty" mapstructure:"linkedBlockId"`
}

// ListToolsBlock is the persisted shape of a List Tools block.
type ListToolsBlock struct {
	ID                 string           `json:"id" yaml:"id" mapstructure:"id"`
	Phase              string           `json:"phase" yaml:"phase" mapstructure:"phase"`
	SourceListVariable string           `json:"sourceListVariable" yaml:"sourceListVariable" mapstructure:"sourceListVariable"`
	OutputListVariable string           `json:"outputListVariable" yaml:"outputListVariable" mapstructure:"outputListVariable"`
	Config             *TransformConfig `json:"config,omitempty" yaml:"config,omitempty" mapstructure:"config"`
}

// DecodeDynamicOptions decodes a loosely typed map (editor payloads, document
// metadata) into the wire shape.
func DecodeDynamicOptions(raw map[string]any) (*DynamicOptions, error) {
	var d DynamicOptions
	if err := mapstructure.Decode(raw, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// ToDomain converts the wire shape to the domain config.
//
// A payload with both transform and linkedBlockId set is unrepresentable in
// the tagged domain model and is rejected as an InvariantViolation. A linked
// payload missing baseListVar is representable (the base is simply empty) and
// is passed through so the state machine can report it at transition time.
func (d *DynamicOptions) ToDomain() (*domain.DynamicOptionsConfig, error) {
	cfg := &domain.DynamicOptionsConfig{
		ListVariable:       d.ListVariable,
		LabelPath:          d.LabelPath,
		ValuePath:          d.ValuePath,
		LabelTemplate:      d.LabelTemplate,
		IncludeBlankOption: d.IncludeBlankOption,
		BlankLabel:         d.BlankLabel,
	}

	if d.LinkedBlockID != "" {
		if !d.Transform.toDomain().IsEmpty() {
			return nil, &domain.InvariantViolation{Reason: "transform and linkedBlockId are both set"}
		}
		cfg.Link = domain.Linked{BlockID: d.LinkedBlockID, BaseListVar: d.BaseListVar}
		return cfg, nil
	}

	cfg.Link = domain.Unlinked{Transform: d.Transform.toDomain().Normalize()}
	return cfg, nil
}

// FromDomain converts a domain config to its wire shape. The tagged domain
// model cannot express illegal field combinations, so this never fails.
func FromDomain(cfg *domain.DynamicOptionsConfig) *DynamicOptions {
	d := &DynamicOptions{
		ListVariable:       cfg.ListVariable,
		LabelPath:          cfg.LabelPath,
		ValuePath:          cfg.ValuePath,
		LabelTemplate:      cfg.LabelTemplate,
		IncludeBlankOption: cfg.IncludeBlankOption,
		BlankLabel:         cfg.BlankLabel,
	}
	switch link := cfg.Link.(type) {
	case domain.Linked:
		d.LinkedBlockID = link.BlockID
		d.BaseListVar = link.BaseListVar
	case domain.Unlinked:
		d.Transform = fromDomainTransform(link.Transform.Normalize())
	}
	return d
}

// ToDomain converts the wire block shape to the domain block.
func (b *ListToolsBlock) ToDomain() *domain.ListToolsBlock {
	return &domain.ListToolsBlock{
		ID:                 b.ID,
		Phase:              domain.Phase(b.Phase),
		SourceListVariable: b.SourceListVariable,
		OutputListVariable: b.OutputListVariable,
		Config:             b.Config.toDomain().Normalize(),
	}
}

// BlockFromDomain converts a domain block to its wire shape.
func BlockFromDomain(block *domain.ListToolsBlock) *ListToolsBlock {
	return &ListToolsBlock{
		ID:                 block.ID,
		Phase:              string(block.Phase),
		SourceListVariable: block.SourceListVariable,
		OutputListVariable: block.OutputListVariable,
		Config:             fromDomainTransform(block.Config.Normalize()),
	}
}

func (t *TransformConfig) toDomain() *domain.TransformConfig {
	if t == nil {
		return nil
	}
	out := &domain.TransformConfig{
		Limit:  t.Limit,
		Offset: t.Offset,
		Select: t.Select,
	}
	for _, f := range t.Filters {
		out.Filters = append(out.Filters, domain.FilterRule(f))
	}
	for _, s := range t.Sort {
		out.Sort = append(out.Sort, domain.SortKey{Field: s.Field, Direction: domain.SortDirection(s.Direction)})
	}
	if t.Dedupe != nil {
		out.Dedupe = &domain.DedupeRule{FieldPath: t.Dedupe.FieldPath}
	}
	return out
}

func fromDomainTransform(t *domain.TransformConfig) *TransformConfig {
	if t == nil {
		return nil
	}
	out := &TransformConfig{
		Limit:  t.Limit,
		Offset: t.Offset,
		Select: t.Select,
	}
	for _, f := range t.Filters {
		out.Filters = append(out.Filters, map[string]any(f))
	}
	for _, s := range t.Sort {
		out.Sort = append(out.Sort, SortKey{Field: s.Field, Direction: string(s.Direction)})
	}
	if t.Dedupe != nil {
		out.Dedupe = &DedupeRule{FieldPath: t.Dedupe.FieldPath}
	}
	return out
}
