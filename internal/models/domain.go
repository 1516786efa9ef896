package models

import "time"

// DomainStatus represents the availability status of a domain
type DomainStatus string

const (
	StatusAvailable DomainStatus = "available"
	StatusTaken     DomainStatus = "taken"
	StatusError     DomainStatus = "error"
)

// DomainResult holds the result of a domain check
type DomainResult struct {
	Domain    string       `json:"domain"`
	Status    DomainStatus `json:"status"`
	CheckedAt time.Time    `json:"checked_at"`
	Attempts  int          `json:"attempts,omitempty"`
	Error     string       `json:"error,omitempty"`
}

// IsAvailable reports whether the domain is confirmed available.
// The second value is false when availability could not be determined.
func (r DomainResult) IsAvailable() (available bool, known bool) {
	switch r.Status {
	case StatusAvailable:
		return true, true
	case StatusTaken:
		return false, true
	default:
		return false, false
	}
}

// BatchResult splits one batch of candidates by outcome
type BatchResult struct {
	Available    []string `json:"available"`
	Unavailable  []string `json:"unavailable"`
	Undetermined []string `json:"undetermined,omitempty"`
	Skipped      int      `json:"skipped"`
	AlreadyKnown int      `json:"already_known"`
}
