// Package activity keeps a bounded feed of recent user actions for the
// dashboard.
package activity

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Item types.
const (
	StudyCreated    = "study_created"
	PatientEnrolled = "patient_enrolled"
	FormSubmitted   = "form_submitted"
	MatchReviewed   = "match_reviewed"
)

type Item struct {
	ID          string    `json:"id" yaml:"id"`
	Type        string    `json:"type" yaml:"type"`
	Description string    `json:"description" yaml:"description"`
	Timestamp   time.Time `json:"timestamp" yaml:"timestamp"`
	UserID      string    `json:"userId" yaml:"userId"`
	StudyID     string    `json:"studyId,omitempty" yaml:"studyId"`
}

// Feed is a fixed-capacity ring of items; the oldest are evicted first.
type Feed struct {
	mu    sync.Mutex
	items []Item
	max   int
	now   func() time.Time
}

func NewFeed(capacity int) *Feed {
	if capacity <= 0 {
		capacity = 100
	}
	return &Feed{max: capacity, now: time.Now}
}

// Record appends an item, filling in id and timestamp when empty.
func (f *Feed) Record(it Item) Item {
	f.mu.Lock()
	defer f.mu.Unlock()
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	if it.Timestamp.IsZero() {
		it.Timestamp = f.now().UTC()
	}
	f.items = append(f.items, it)
	if len(f.items) > f.max {
		f.items = append([]Item(nil), f.items[len(f.items)-f.max:]...)
	}
	return it
}

// Recent returns up to n items, newest first. Items sharing a timestamp come
// back most recently recorded first.
func (f *Feed) Recent(n int) []Item {
	f.mu.Lock()
	out := make([]Item, 0, len(f.items))
	for i := len(f.items) - 1; i >= 0; i-- {
		out = append(out, f.items[i])
	}
	f.mu.Unlock()

	slices.SortStableFunc(out, func(a, b Item) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Len reports how many items are held.
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}
