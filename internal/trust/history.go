package trust

import (
	"context"
	"sync"
)

// historyCap bounds how many samples are kept per player.
const historyCap = 10

// HistoryStore holds the recent location samples of each player. Append
// evicts the oldest entry once the per-player cap is reached. Recent
// returns up to n samples, oldest first.
type HistoryStore interface {
	Append(ctx context.Context, playerID string, sample LocationSample) error
	Recent(ctx context.Context, playerID string, n int) ([]LocationSample, error)
}

// MemoryHistory is the in-process HistoryStore. Entries are created lazily
// on first append and live for the process lifetime. Each player has its
// own lock so concurrent requests for different players never contend.
type MemoryHistory struct {
	mu      sync.RWMutex
	players map[string]*playerHistory
}

type playerHistory struct {
	mu      sync.Mutex
	samples []LocationSample
}

func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{players: make(map[string]*playerHistory)}
}

func (h *MemoryHistory) Append(_ context.Context, playerID string, sample LocationSample) error {
	p := h.player(playerID)

	p.mu.Lock()
	p.samples = append(p.samples, sample)
	if len(p.samples) > historyCap {
		p.samples = p.samples[len(p.samples)-historyCap:]
	}
	p.mu.Unlock()
	return nil
}

func (h *MemoryHistory) Recent(_ context.Context, playerID string, n int) ([]LocationSample, error) {
	h.mu.RLock()
	p, ok := h.players[playerID]
	h.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if n > len(p.samples) {
		n = len(p.samples)
	}
	out := make([]LocationSample, n)
	copy(out, p.samples[len(p.samples)-n:])
	return out, nil
}

func (h *MemoryHistory) player(playerID string) *playerHistory {
	h.mu.RLock()
	p, ok := h.players[playerID]
	h.mu.RUnlock()
	if ok {
		return p
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	// Double-check after acquiring write lock.
	if p, ok := h.players[playerID]; ok {
		return p
	}
	p = &playerHistory{}
	h.players[playerID] = p
	return p
}
