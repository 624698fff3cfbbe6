package domain

// Phase is the point in a page's execution lifecycle at which a block runs.
type Phase string

const (
	// PhaseOnEnter runs when the page is entered, before inputs render.
	PhaseOnEnter Phase = "onEnter"
	// PhaseOnSubmit runs when the page is submitted.
	PhaseOnSubmit Phase = "onSubmit"
)

// rank orders phases within a page; unknown phases sort last.
func (p Phase) rank() int {
	switch p {
	case PhaseOnEnter:
		return 0
	case PhaseOnSubmit:
		return 1
	default:
		return 2
	}
}

// Position locates a block or question within a page's execution order.
type Position struct {
	Phase Phase
	Order int
}

// Before reports whether p executes strictly before other.
func (p Position) Before(other Position) bool {
	if p.Phase.rank() != other.Phase.rank() {
		return p.Phase.rank() < other.Phase.rank()
	}
	return p.Order < other.Order
}

// ListToolsBlock applies a transform pipeline to one list variable and
// publishes the result under a new name. It is owned by the page; questions
// reference it weakly by id and must never assume exclusive lifetime control.
type ListToolsBlock struct {
	ID                 string
	Phase              Phase
	SourceListVariable string
	OutputListVariable string
	Config             *TransformConfig
}

// Clone returns a deep copy.
func (b *ListToolsBlock) Clone() *ListToolsBlock {
	out := *b
	out.Config = b.Config.Clone()
	return &out
}

// BlockRef identifies a freshly created List Tools block: its id and the
// list variable it publishes.
type BlockRef struct {
	ID                 string
	OutputListVariable string
}

// Column is one column of a table schema.
type Column struct {
	ID        string
	Name      string
	IsPrimary bool
}

// TableSchema is the resolved shape of the table backing a list variable.
type TableSchema struct {
	Columns []Column
}

// HasColumn reports whether a column with the given id exists.
func (s *TableSchema) HasColumn(id string) bool {
	for _, col := range s.Columns {
		if col.ID == id {
			return true
		}
	}
	return false
}
