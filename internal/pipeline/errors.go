// Package pipeline implements the confidence-gated identification
// orchestrator: a state graph that classifies a photograph, gates the score
// into retry, cross-check, or fallback branches, and always resolves to a
// structured attempt.
package pipeline

import "errors"

// Sentinel errors for pipeline operations. These surface only through logs;
// the pipeline contract is to degrade, never to raise.
var (
	ErrClassifyFailed = errors.New("vision classification failed")
	ErrGraphFailed    = errors.New("identification graph failed")
	ErrBadState       = errors.New("malformed pipeline state")
)
