package domain

import (
	"fmt"
	"time"
)

// ActionStatus records whether an indexing action is currently permitted to
// make progress. It is orthogonal to ActionStage.
type ActionStatus string

const (
	// StatusProcessing means the controller is actively working the action.
	StatusProcessing ActionStatus = "processing"

	// StatusPaused means work is suspended at a stage checkpoint; the stage
	// and counters are frozen and the action is resumable.
	StatusPaused ActionStatus = "paused"

	// StatusCanceled is the terminal status for operator-directed termination.
	StatusCanceled ActionStatus = "canceled"

	// StatusDone is the terminal status of a completed run.
	StatusDone ActionStatus = "done"

	// StatusError is the terminal status of a run stopped by a job-level fault.
	StatusError ActionStatus = "error"
)

// Terminal reports whether the status permits no further transitions.
// A terminal action is never reopened; a new run creates a new action.
func (s ActionStatus) Terminal() bool {
	return s == StatusCanceled || s == StatusDone || s == StatusError
}

// statusTransitions is the fixed status transition table. Absence means the
// transition is rejected with ErrInvalidTransition (or ErrActionTerminal
// when the source status is terminal).
var statusTransitions = map[ActionStatus]map[ActionStatus]bool{
	StatusProcessing: {
		StatusPaused:   true,
		StatusCanceled: true,
		StatusDone:     true,
		StatusError:    true,
	},
	StatusPaused: {
		StatusProcessing: true,
		StatusCanceled:   true,
		StatusError:      true,
	},
}

// CanTransitionStatus reports whether the status transition is permitted.
func CanTransitionStatus(from, to ActionStatus) bool {
	return statusTransitions[from][to]
}

// ActionStage records what work an indexing action is doing, distinct from
// whether it may proceed.
type ActionStage string

const (
	StageInitializing       ActionStage = "initializing"
	StageCreatingCollection ActionStage = "creating_collection"
	StageChunking           ActionStage = "chunking"
	StageVectorizing        ActionStage = "vectorizing"
	StageUploading          ActionStage = "uploading"
	StageVerifying          ActionStage = "verifying"
	StageCompleted          ActionStage = "completed"
	StageError              ActionStage = "error"
)

// stageOrder fixes the forward progression of stages.
var stageOrder = []ActionStage{
	StageInitializing,
	StageCreatingCollection,
	StageChunking,
	StageVectorizing,
	StageUploading,
	StageVerifying,
	StageCompleted,
}

// CanAdvanceStage reports whether a stage transition is permitted: one step
// forward along the fixed progression, or any stage to StageError.
func CanAdvanceStage(from, to ActionStage) bool {
	if to == StageError {
		return from != StageError
	}
	for i, s := range stageOrder {
		if s == from {
			return i+1 < len(stageOrder) && stageOrder[i+1] == to
		}
	}
	return false
}

// ActionProgress is the progress payload of an indexing action. Document
// and chunk counters are monotonically non-decreasing within a run; failed
// documents are excluded from ProcessedDocuments.
type ActionProgress struct {
	ProcessedDocuments int `json:"processed_documents"`
	TotalDocuments     int `json:"total_documents"`
	ProcessedChunks    int `json:"processed_chunks"`
	TotalChunks        int `json:"total_chunks"`
	FailedDocuments    int `json:"failed_documents"`

	// Percent is 0 unless explicitly supplied by an upstream stage; use
	// PercentComplete for the effective value.
	Percent int `json:"percent"`

	// DisplayText is the operator-facing progress line.
	DisplayText string `json:"display_text"`
}

// PercentComplete returns the explicit percent when supplied, otherwise the
// rounded processed/total document ratio.
func (p ActionProgress) PercentComplete() int {
	if p.Percent > 0 {
		return p.Percent
	}
	if p.TotalDocuments == 0 {
		return 0
	}
	return int(float64(p.ProcessedDocuments)/float64(p.TotalDocuments)*100 + 0.5)
}

// IndexingAction is the durable record of one indexing job. It is created
// when a run starts, mutated by the controller on every stage transition and
// progress tick, and becomes terminal exactly once.
type IndexingAction struct {
	// ID is the action identifier.
	ID string `json:"id"`

	// BaseID is the owning knowledge base.
	BaseID string `json:"base_id"`

	// Status records whether work may proceed.
	Status ActionStatus `json:"status"`

	// Stage records what work is being done.
	Stage ActionStage `json:"stage"`

	// Progress is the counters payload.
	Progress ActionProgress `json:"payload"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Terminal reports whether the action reached a terminal status.
func (a *IndexingAction) Terminal() bool {
	return a.Status.Terminal()
}

// TransitionStatus applies a status change after validating it against the
// transition table. Terminal sources are rejected with ErrActionTerminal.
func (a *IndexingAction) TransitionStatus(to ActionStatus) error {
	if a.Status.Terminal() {
		return fmt.Errorf("%w: action %s is %s", ErrActionTerminal, a.ID, a.Status)
	}
	if !CanTransitionStatus(a.Status, to) {
		return fmt.Errorf("%w: status %s -> %s", ErrInvalidTransition, a.Status, to)
	}
	a.Status = to
	return nil
}

// AdvanceStage moves the action one stage forward (or to StageError) after
// validating against the stage progression.
func (a *IndexingAction) AdvanceStage(to ActionStage) error {
	if !CanAdvanceStage(a.Stage, to) {
		return fmt.Errorf("%w: stage %s -> %s", ErrInvalidTransition, a.Stage, to)
	}
	a.Stage = to
	return nil
}
