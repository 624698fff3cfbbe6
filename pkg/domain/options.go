package domain

// LinkStatus summarizes the link relationship for logging and metrics.
type LinkStatus string

const (
	// StatusUnlinked: no external block, no inline transform.
	StatusUnlinked LinkStatus = "unlinked"
	// StatusInlineTransform: no external block, transform embedded in the question.
	StatusInlineTransform LinkStatus = "inline_transform"
	// StatusLinked: options are routed through an external List Tools block.
	StatusLinked LinkStatus = "linked"
)

// LinkState is the tagged relationship between a question and an optional
// external List Tools block. Exactly one variant is in effect; the variant
// shape makes an inline transform and a block link mutually exclusive, and
// forces a linked question to retain its pre-link source.
type LinkState interface {
	linkVariant()
}

// Unlinked means the question owns its option transform inline.
// A nil Transform means no transformation at all.
type Unlinked struct {
	Transform *TransformConfig
}

// Linked means the question's options flow through the List Tools block
// identified by BlockID. BaseListVar is the list variable that fed the
// question before the link was created; it is retained for the whole
// lifetime of the link so the link can be undone.
type Linked struct {
	BlockID     string
	BaseListVar string
}

func (Unlinked) linkVariant() {}
func (Linked) linkVariant()   {}

// DynamicOptionsConfig is a choice question's option-sourcing configuration.
// The question owns this value exclusively; a referenced List Tools block is
// owned by the page and only weakly referenced by id.
type DynamicOptionsConfig struct {
	// ListVariable names the list currently supplying raw rows.
	// While linked this is the linked block's output variable.
	ListVariable string

	// LabelPath and ValuePath are column identifiers within the row shape of
	// ListVariable. LabelTemplate, when set, supersedes LabelPath for display;
	// ValuePath is still required for persistence.
	LabelPath     string
	ValuePath     string
	LabelTemplate string

	// IncludeBlankOption injects an empty "unselected" choice labelled BlankLabel.
	IncludeBlankOption bool
	BlankLabel         string

	// Link is the current relationship. A nil Link reads as Unlinked with no
	// transform.
	Link LinkState
}

// Status classifies the config into one of the three link states.
func (c *DynamicOptionsConfig) Status() LinkStatus {
	switch link := c.Link.(type) {
	case Linked:
		return StatusLinked
	case Unlinked:
		if !link.Transform.IsEmpty() {
			return StatusInlineTransform
		}
	}
	return StatusUnlinked
}

// Transform returns the inline transform, or nil when absent or linked.
func (c *DynamicOptionsConfig) Transform() *TransformConfig {
	if link, ok := c.Link.(Unlinked); ok {
		return link.Transform.Normalize()
	}
	return nil
}

// LinkedBlockID returns the referenced block id when linked.
func (c *DynamicOptionsConfig) LinkedBlockID() (string, bool) {
	if link, ok := c.Link.(Linked); ok {
		return link.BlockID, true
	}
	return "", false
}

// BaseListVar returns the retained pre-link source when linked.
func (c *DynamicOptionsConfig) BaseListVar() (string, bool) {
	if link, ok := c.Link.(Linked); ok {
		return link.BaseListVar, true
	}
	return "", false
}

// Clone returns a deep copy, including any inline transform.
func (c *DynamicOptionsConfig) Clone() *DynamicOptionsConfig {
	out := *c
	if link, ok := c.Link.(Unlinked); ok {
		out.Link = Unlinked{Transform: link.Transform.Clone()}
	}
	return &out
}
