package domain

// FindingKind is a stable tag identifying a consistency finding.
type FindingKind string

const (
	// FindingTiming: the producer of the list variable does not run strictly
	// before the consuming question.
	FindingTiming FindingKind = "timing"
	// FindingSourceUnresolved: the list variable has no resolvable table schema.
	FindingSourceUnresolved FindingKind = "source_unresolved"
	// FindingLabelColumn: labelPath does not name an existing column.
	FindingLabelColumn FindingKind = "label_column"
	// FindingValueColumn: valuePath does not name an existing column.
	FindingValueColumn FindingKind = "value_column"
)

// Finding is a single advisory result from the consistency checker.
// Findings never block a save.
type Finding struct {
	Kind    FindingKind `json:"kind"`
	Message string      `json:"message"`
}

// WarningKind tags non-fatal degradations reported by link transitions.
type WarningKind string

const (
	// WarningDanglingReference: a linked block id could not be resolved at
	// transition time. The transition degrades gracefully but the caller must
	// be told, so a broken link is distinguishable from a clean discard.
	WarningDanglingReference WarningKind = "dangling_reference"
)

// Warning is a non-fatal condition attached to an otherwise successful
// transition result.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Message string      `json:"message"`
}
