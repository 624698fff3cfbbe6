package domain

import "reflect"

// SortDirection orders a sort key ascending or descending.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortKey is one {field, direction} pair. Slice order is sort precedence:
// the first key is the primary sort, the second breaks ties, and so on.
type SortKey struct {
	Field     string        `json:"field"`
	Direction SortDirection `json:"direction"`
}

// FilterRule is a single filter expression. Espalier never evaluates filters;
// it carries them as opaque payloads and only ever counts or copies them.
type FilterRule map[string]any

// DedupeRule collapses rows that share a value at FieldPath. At most one
// dedupe key per transform.
type DedupeRule struct {
	FieldPath string `json:"fieldPath"`
}

// TransformConfig is the declarative shape of a list transformation.
// It is a pure value: construction, equality, and emptiness checks only.
// Execution belongs to the workflow runtime, not to the editor.
type TransformConfig struct {
	Filters []FilterRule `json:"filters,omitempty"`
	Sort    []SortKey    `json:"sort,omitempty"`
	Limit   *int         `json:"limit,omitempty"`
	Offset  *int         `json:"offset,omitempty"`
	Select  []string     `json:"select,omitempty"`
	Dedupe  *DedupeRule  `json:"dedupe,omitempty"`
}

// IsEmpty reports whether no sub-field is meaningfully set.
// An empty config is equivalent to no config at all.
func (c *TransformConfig) IsEmpty() bool {
	if c == nil {
		return true
	}
	return len(c.Filters) == 0 &&
		len(c.Sort) == 0 &&
		c.Limit == nil &&
		c.Offset == nil &&
		len(c.Select) == 0 &&
		c.Dedupe == nil
}

// Normalize collapses an all-empty config to nil (the stored representation
// of "no transformation"). Normalizing an already normalized value is a no-op.
func (c *TransformConfig) Normalize() *TransformConfig {
	if c.IsEmpty() {
		return nil
	}
	return c
}

// Clone returns a deep copy. A nil receiver clones to nil.
func (c *TransformConfig) Clone() *TransformConfig {
	if c == nil {
		return nil
	}
	out := &TransformConfig{}
	if c.Filters != nil {
		out.Filters = make([]FilterRule, len(c.Filters))
		for i, f := range c.Filters {
			rule := make(FilterRule, len(f))
			for k, v := range f {
				rule[k] = v
			}
			out.Filters[i] = rule
		}
	}
	if c.Sort != nil {
		out.Sort = append([]SortKey(nil), c.Sort...)
	}
	if c.Limit != nil {
		v := *c.Limit
		out.Limit = &v
	}
	if c.Offset != nil {
		v := *c.Offset
		out.Offset = &v
	}
	if c.Select != nil {
		out.Select = append([]string(nil), c.Select...)
	}
	if c.Dedupe != nil {
		d := *c.Dedupe
		out.Dedupe = &d
	}
	return out
}

// Equal reports structural equality. Two empty configs are equal regardless
// of which sub-fields are nil versus zero-length.
func (c *TransformConfig) Equal(other *TransformConfig) bool {
	if c.IsEmpty() || other.IsEmpty() {
		return c.IsEmpty() && other.IsEmpty()
	}
	if len(c.Filters) != len(other.Filters) || len(c.Sort) != len(other.Sort) || len(c.Select) != len(other.Select) {
		return false
	}
	// Filters are opaque, so deep comparison is the only meaningful check.
	for i := range c.Filters {
		if !reflect.DeepEqual(c.Filters[i], other.Filters[i]) {
			return false
		}
	}
	for i := range c.Sort {
		if c.Sort[i] != other.Sort[i] {
			return false
		}
	}
	for i := range c.Select {
		if c.Select[i] != other.Select[i] {
			return false
		}
	}
	if !intPtrEqual(c.Limit, other.Limit) || !intPtrEqual(c.Offset, other.Offset) {
		return false
	}
	if (c.Dedupe == nil) != (other.Dedupe == nil) {
		return false
	}
	if c.Dedupe != nil && *c.Dedupe != *other.Dedupe {
		return false
	}
	return true
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
