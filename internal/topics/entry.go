package topics

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/certifai/pkg/models"
)

// CacheKey is the storage key of the persisted topic list.
// The format version lives in the key so an incompatible record simply misses.
const CacheKey = "@CertifAI_TopicsCache_v3"

// StalenessWindow is how old a persisted topic list may get before a background refresh.
const StalenessWindow = 24 * time.Hour

// Entry is the persisted record: the topic list and when it was fetched (epoch milliseconds).
type Entry struct {
	Topics    []models.Topic `json:"topics"`
	Timestamp int64          `json:"timestamp"`
}

// NewEntry stamps topics with the fetch time
func NewEntry(topics []models.Topic, fetchedAt time.Time) Entry {
	if topics == nil {
		topics = []models.Topic{}
	}
	return Entry{Topics: topics, Timestamp: fetchedAt.UnixMilli()}
}

// FetchedAt returns the fetch time as a time.Time
func (e Entry) FetchedAt() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// IsStale reports whether the entry is strictly older than window at now.
func (e Entry) IsStale(now time.Time, window time.Duration) bool {
	return now.Sub(e.FetchedAt()) > window
}

// Encode serializes the entry for storage
func (e Entry) Encode() ([]byte, error) {
	if e.Topics == nil {
		e.Topics = []models.Topic{}
	}
	return json.Marshal(e)
}

// DecodeEntry parses a persisted record. A missing topic list decodes as empty.
func DecodeEntry(raw []byte) (Entry, error) {
	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return Entry{}, fmt.Errorf("malformed topic cache record: %w", err)
	}
	if e.Topics == nil {
		e.Topics = []models.Topic{}
	}
	return e, nil
}
