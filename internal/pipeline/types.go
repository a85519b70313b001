package pipeline

import (
	"github.com/google/uuid"

	"github.com/strataworks/lithos/internal/guidance"
	"github.com/strataworks/lithos/internal/rockid"
)

// State bag keys shared across graph nodes.
const (
	KeyRequest        = "request"
	KeySession        = "session"
	KeyAttempt        = "attempt_number"
	KeyCandidate      = "candidate"
	KeyClassifyFailed = "classify_failed"
	KeyRetry          = "retry_prompt"
	KeyResult         = "result"
	KeyAttemptOut     = "attempt_out"
)

// Request is one identification attempt submission: a single photograph with
// its capture context. The same session id is reused across retries so the
// attempt counter and dual-verify cache carry over.
type Request struct {
	Image     string
	SessionID uuid.UUID
	Location  *rockid.LocationContext
	Zoom      float64
	Pro       bool
}

// Attempt is the outcome of one pipeline run. Exactly one of Retry and
// Result is set: Retry asks the caller to submit another photo, Result is
// terminal for the session.
type Attempt struct {
	SessionID uuid.UUID             `json:"session_id"`
	Number    int                   `json:"attempt_number"`
	Retry     *guidance.RetryPrompt `json:"retry,omitempty"`
	Result    *rockid.Result        `json:"result,omitempty"`
}

// Observation is the parsed primary classification before confidence
// gating, alongside the retry-guidance hints the model volunteered.
type Observation struct {
	Result            *rockid.Result
	UncertaintyReason string
	RetryGuidance     string
}
