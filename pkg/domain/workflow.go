package domain

// BlockType classifies a page block.
type BlockType string

const (
	// BlockTypeInput publishes a list variable from a backing table.
	BlockTypeInput BlockType = "input"
	// BlockTypeListTools transforms one list variable into another.
	BlockTypeListTools BlockType = "listTools"
	// BlockTypeChoice is a choice question consuming a list variable.
	BlockTypeChoice BlockType = "choice"
)

// Table couples a table name with its column schema.
type Table struct {
	Name   string
	Schema TableSchema
}

// PageBlock is one element of a page: a logic block or a question.
// Only the fields matching Type are meaningful.
type PageBlock struct {
	ID    string
	Type  BlockType
	Phase Phase
	Order int

	// Producer metadata: the list variable this block publishes (input and
	// listTools blocks) and the table backing it (input blocks).
	OutputListVariable string
	Table              string

	// List Tools config (Type == BlockTypeListTools).
	SourceListVariable string
	Config             *TransformConfig

	// Choice config (Type == BlockTypeChoice).
	Options *DynamicOptionsConfig
}

// Page is an ordered set of blocks sharing a lifecycle.
type Page struct {
	ID     string
	Blocks []PageBlock
}

// Workflow is the editable multi-page workflow definition. Espalier never
// executes it; the model exists so the registry and schema leaves can answer
// questions about block layout and column shapes.
type Workflow struct {
	Name   string
	Tables []Table
	Pages  []Page
}

// TableByName returns the named table, if present.
func (w *Workflow) TableByName(name string) (*Table, bool) {
	for i := range w.Tables {
		if w.Tables[i].Name == name {
			return &w.Tables[i], true
		}
	}
	return nil, false
}
