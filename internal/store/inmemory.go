package store

import (
	"sync"

	"github.com/localspark/growthcoach/internal/models"
)

// InMemoryStore keeps quota records in a map. Used for tests and for running
// without a database; records vanish on restart.
type InMemoryStore struct {
	mu      sync.Mutex
	records map[string]*models.QuotaRecord
}

// NewInMemoryStore creates an empty in-memory quota ledger.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]*models.QuotaRecord)}
}

func quotaKey(userID, date string) string {
	return userID + "|" + date
}

// ConsumeQuestion implements Store.
func (s *InMemoryStore) ConsumeQuestion(userID, date string, limit int) (models.QuotaRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[quotaKey(userID, date)]
	if !ok {
		rec = &models.QuotaRecord{UserID: userID, Date: date, Limit: limit}
		s.records[quotaKey(userID, date)] = rec
	}
	if rec.Used >= rec.Limit {
		return *rec, false, nil
	}
	rec.Used++
	return *rec, true, nil
}

// ReleaseQuestion implements Store.
func (s *InMemoryStore) ReleaseQuestion(userID, date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.records[quotaKey(userID, date)]; ok && rec.Used > 0 {
		rec.Used--
	}
	return nil
}

// GetQuota implements Store.
func (s *InMemoryStore) GetQuota(userID, date string) (*models.QuotaRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[quotaKey(userID, date)]
	if !ok {
		return nil, nil
	}
	out := *rec
	return &out, nil
}

// Close implements Store.
func (s *InMemoryStore) Close() error {
	return nil
}
