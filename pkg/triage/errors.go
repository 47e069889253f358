package triage

import "errors"

var (
	ErrProviderTimeout      = errors.New("provider call timed out")
	ErrProvider             = errors.New("provider call failed")
	ErrAllProvidersFailed   = errors.New("all providers failed")
	ErrJudgeFailure         = errors.New("judge arbitration failed")
	ErrMalformedModelOutput = errors.New("malformed model output")
	ErrSessionNotFound      = errors.New("session not found")
	ErrInvalidState         = errors.New("invalid session state")
)
