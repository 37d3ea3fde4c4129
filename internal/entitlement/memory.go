package entitlement

import (
	"context"
	"sort"
	"sync"
)

// Memory is an in-process ledger for development and tests. First-seen
// users start with the seed balance.
type Memory struct {
	mu      sync.Mutex
	credits map[string]int
	seed    int
}

var _ Gate = (*Memory)(nil)

func NewMemory(seed int) *Memory {
	return &Memory{credits: make(map[string]int), seed: seed}
}

// balance returns the user's credits, seeding first-seen users.
// Callers hold the lock.
func (m *Memory) balance(userID string) int {
	if v, ok := m.credits[userID]; ok {
		return v
	}
	m.credits[userID] = m.seed
	return m.seed
}

func (m *Memory) HasAllowance(ctx context.Context, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balance(userID) > 0, nil
}

func (m *Memory) Consume(ctx context.Context, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.balance(userID) <= 0 {
		return false, nil
	}
	m.credits[userID]--
	return true, nil
}

func (m *Memory) Grant(ctx context.Context, userID string, n int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.credits[userID] = m.balance(userID) + n
	return nil
}

func (m *Memory) Credits(ctx context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balance(userID), nil
}

// Users lists every user id in the ledger, sorted for stable output.
func (m *Memory) Users(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.credits))
	for id := range m.credits {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
