package domain

import (
	"context"
	"time"
)

// TransitionOp names a link state machine operation.
type TransitionOp string

const (
	OpCreateLink   TransitionOp = "create_link"
	OpUnlink       TransitionOp = "unlink"
	OpReplace      TransitionOp = "replace"
	OpChangeSource TransitionOp = "change_source"
)

// TransitionEvent reports a completed link transition.
type TransitionEvent struct {
	Timestamp  time.Time    `json:"timestamp"`
	Op         TransitionOp `json:"op"`
	QuestionID string       `json:"question_id"`
	Status     LinkStatus   `json:"status"`
	Warnings   int          `json:"warnings,omitempty"`
}

// FindingEvent reports one consistency finding emitted during a check.
type FindingEvent struct {
	Timestamp  time.Time   `json:"timestamp"`
	QuestionID string      `json:"question_id"`
	Kind       FindingKind `json:"kind"`
}

// LifecycleHooks defines callbacks for editor observability.
type LifecycleHooks struct {
	OnTransition func(context.Context, *TransitionEvent)
	OnFinding    func(context.Context, *FindingEvent)
}
