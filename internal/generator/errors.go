package generator

import "fmt"

// ParseError means the model answered but no domain list could be extracted.
// Callers treat it as zero candidates.
type ParseError struct {
	Content string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse domain names: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// TransportError means the request itself failed: network, HTTP status,
// an open circuit breaker or an undecodable response envelope.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("generator request failed with status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("generator request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
