package models

import "time"

// SearchEntry records what one search round added to a query record
type SearchEntry struct {
	Timestamp             time.Time `json:"timestamp"`
	NewAvailableDomains   []string  `json:"new_available_domains"`
	NewUnavailableDomains []string  `json:"new_unavailable_domains"`
}

// QueryRecord is the cached state for one normalized query
type QueryRecord struct {
	Query              string        `json:"query"`
	AvailableDomains   []string      `json:"available_domains"`
	UnavailableDomains []string      `json:"unavailable_domains"`
	Searches           []SearchEntry `json:"searches"`
}

// NewQueryRecord returns an empty record for query
func NewQueryRecord(query string) *QueryRecord {
	return &QueryRecord{
		Query:              query,
		AvailableDomains:   []string{},
		UnavailableDomains: []string{},
		Searches:           []SearchEntry{},
	}
}

// Known returns the union of available and unavailable domains.
func (r *QueryRecord) Known() []string {
	known := make([]string, 0, len(r.AvailableDomains)+len(r.UnavailableDomains))
	known = append(known, r.AvailableDomains...)
	known = append(known, r.UnavailableDomains...)
	return known
}
