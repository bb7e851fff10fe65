package domain

// Stage is a step of the personalization pipeline.
type Stage string

const (
	StageChunking    Stage = "chunking"
	StageRetrieving  Stage = "retrieving"
	StageAssembling  Stage = "assembling"
	StageGenerating  Stage = "generating"
	StageValidating  Stage = "validating"
	StageFallingBack Stage = "falling_back"
	StageDone        Stage = "done"
)

// RetrievalMode describes how document context was selected.
type RetrievalMode string

const (
	RetrievalNone   RetrievalMode = "none"   // no document supplied
	RetrievalRanked RetrievalMode = "ranked" // similarity ranking
	RetrievalSliced RetrievalMode = "sliced" // embeddings unavailable, first chunks used
)

// Outcome records how a pipeline run completed. It never carries a failure
// for the caller; every run ends in StageDone.
type Outcome struct {
	Stage          Stage         `json:"stage"`
	Fallback       bool          `json:"fallback"`
	FallbackReason string        `json:"fallbackReason,omitempty"`
	FailedStage    Stage         `json:"failedStage,omitempty"`
	Retrieval      RetrievalMode `json:"retrieval"`
	RetrievalError string        `json:"retrievalError,omitempty"`
	Chunks         int           `json:"chunks"`
	EmbeddedChunks int           `json:"embeddedChunks"`
	ContextChunks  int           `json:"contextChunks"`
}

// NewOutcome starts a run at the chunking stage.
func NewOutcome() *Outcome {
	return &Outcome{Stage: StageChunking, Retrieval: RetrievalNone}
}

// Advance moves the run to stage.
func (o *Outcome) Advance(stage Stage) {
	o.Stage = stage
}

// FallBack records err as the reason the fallback provider was used.
func (o *Outcome) FallBack(err error) {
	o.FailedStage = o.Stage
	o.Stage = StageFallingBack
	o.Fallback = true
	o.FallbackReason = FallbackReason(err)
}

// Finish marks the run complete.
func (o *Outcome) Finish() {
	o.Stage = StageDone
}
