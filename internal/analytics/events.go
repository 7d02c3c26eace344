// Package analytics defines the events emitted by the indexer and searcher,
// publishes them to Kafka and keeps an in-process summary of query traffic.
package analytics

import "time"

type EventType string

const (
	EventSearch        EventType = "search"
	EventZeroResult    EventType = "zero_result"
	EventIndexComplete EventType = "index_complete"
)

// SearchEvent describes one answered query.
type SearchEvent struct {
	Type      EventType `json:"type"`
	Query     string    `json:"query"`
	Terms     []string  `json:"terms"`
	TotalHits int       `json:"total_hits"`
	Returned  int       `json:"returned"`
	TopDocID  string    `json:"top_doc_id,omitempty"`
	LatencyMs int64     `json:"latency_ms"`
	CacheHit  bool      `json:"cache_hit"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// IndexCompleteEvent is published once a build has been persisted.
type IndexCompleteEvent struct {
	Type       EventType `json:"type"`
	Collection string    `json:"collection"`
	Documents  int       `json:"documents"`
	Terms      int       `json:"terms"`
	Pairs      int       `json:"pairs"`
	DurationMs int64     `json:"duration_ms"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewSearchEvent fills in the event type from the hit count.
func NewSearchEvent(query string, terms []string, totalHits, returned int, topDocID string, latency time.Duration, cacheHit bool, requestID string) SearchEvent {
	eventType := EventSearch
	if totalHits == 0 {
		eventType = EventZeroResult
	}
	return SearchEvent{
		Type:      eventType,
		Query:     query,
		Terms:     terms,
		TotalHits: totalHits,
		Returned:  returned,
		TopDocID:  topDocID,
		LatencyMs: latency.Milliseconds(),
		CacheHit:  cacheHit,
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
	}
}
