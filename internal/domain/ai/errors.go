package ai

import "errors"

// ErrMissingCredential indicates the upstream API key was absent at
// orchestration start; the run fails before any query is issued.
var ErrMissingCredential = errors.New("ai credential missing")

// ErrQuotaExceeded indicates the provider returned a quota/limit error
// (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("ai quota exceeded")
