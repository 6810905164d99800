package pipeline

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"github.com/mfenderov/sitegen/pkg/models"
)

// BatchEntry records one batch request.
type BatchEntry struct {
	RunID string       `json:"run_id"`
	Topic string       `json:"topic"`
	Count int          `json:"count"`
	Style models.Style `json:"style"`
	At    time.Time    `json:"timestamp"`
}

// TopicCount is a topic and the number of batches requested for it.
type TopicCount struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

// Stats summarises the history.
type Stats struct {
	TotalSites        int                  `json:"total_sites_generated"`
	TotalRequests     int                  `json:"total_requests"`
	StyleDistribution map[models.Style]int `json:"style_distribution"`
	TopTopics         []TopicCount         `json:"top_topics"`
}

const topTopics = 10

// History is the process-wide, append-only log of assembled documents.
// Documents are never modified after Append.
type History struct {
	mu      sync.RWMutex
	docs    []*models.Document
	byID    map[string]*models.Document
	batches []BatchEntry
}

// NewHistory creates an empty History.
func NewHistory() *History {
	return &History{byID: make(map[string]*models.Document)}
}

// Append records an assembled document.
func (h *History) Append(doc *models.Document) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.byID[doc.SiteID]; ok {
		return
	}
	h.docs = append(h.docs, doc)
	h.byID[doc.SiteID] = doc
}

// Load appends previously stored documents, skipping known ids.
func (h *History) Load(docs []*models.Document) {
	for _, d := range docs {
		h.Append(d)
	}
}

// AppendBatch records a finished batch.
func (h *History) AppendBatch(e BatchEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.batches = append(h.batches, e)
}

// Lookup returns the document with the given site id.
func (h *History) Lookup(siteID string) (*models.Document, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	d, ok := h.byID[siteID]
	return d, ok
}

// Documents returns the documents in append order.
func (h *History) Documents() []*models.Document {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.docs)
}

// Batches returns the batch entries in append order.
func (h *History) Batches() []BatchEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.batches)
}

// Stats computes totals, the style distribution of documents and the
// ten most requested topics.
func (h *History) Stats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	s := Stats{
		TotalSites:        len(h.docs),
		TotalRequests:     len(h.batches),
		StyleDistribution: make(map[models.Style]int),
	}
	for _, d := range h.docs {
		s.StyleDistribution[d.Style]++
	}

	counts := make(map[string]int)
	for _, b := range h.batches {
		counts[b.Topic]++
	}
	for topic, n := range counts {
		s.TopTopics = append(s.TopTopics, TopicCount{Topic: topic, Count: n})
	}
	slices.SortFunc(s.TopTopics, func(a, b TopicCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Topic, b.Topic)
	})
	if len(s.TopTopics) > topTopics {
		s.TopTopics = s.TopTopics[:topTopics]
	}
	return s
}
