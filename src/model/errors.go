package model

import "errors"

// Sentinel errors shared across the execution pipeline.
//
// ErrStorageUnavailable and ErrPublishFailure are transient: the processing
// unit that hit them must not acknowledge its inbound event, so the broker
// redelivers it. ErrMalformedEvent is permanent: retrying can never succeed,
// so the event is dead-lettered and acknowledged instead.
var (
	ErrStorageUnavailable = errors.New("order storage unavailable")
	ErrPublishFailure     = errors.New("event publish failed")
	ErrMalformedEvent     = errors.New("malformed inbound event")
)
