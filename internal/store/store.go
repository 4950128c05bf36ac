package store

import (
	"errors"
	"sync"
	"time"

	"CoinRadar/internal/model"
	"CoinRadar/internal/strategy"
)

var (
	// ErrNotReady is returned before the first board has been stored.
	ErrNotReady = errors.New("board not ready")
	// ErrNotFound is returned for an unknown asset.
	ErrNotFound = errors.New("asset not found")
)

// Source labels where a board's snapshots came from.
const (
	SourceLive    = "live"
	SourceArchive = "archive"
)

// Board is the outcome of one refresh cycle. It is replaced wholesale, never patched.
type Board struct {
	CycleID     string                `json:"cycle_id"`
	GeneratedAt time.Time             `json:"generated_at"`
	Source      string                `json:"source"`
	Scored      []model.ScoredAsset   `json:"scored"`
	Ranking     model.RankedSelection `json:"ranking"`
	Overview    *model.MarketOverview `json:"overview,omitempty"`
}

// Store holds the latest board in memory.
type Store struct {
	mu     sync.RWMutex
	board  *Board
	subs   map[int]chan *Board
	nextID int
}

// New returns an empty Store.
func New() *Store {
	return &Store{subs: make(map[int]chan *Board)}
}

// Replace swaps in a new board and notifies subscribers.
// A subscriber whose buffer is full loses its oldest pending board.
func (s *Store) Replace(b *Board) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.board = b

	for _, ch := range s.subs {
		select {
		case ch <- b:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- b:
			default:
			}
		}
	}
}

// Board returns the latest board.
func (s *Store) Board() (*Board, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.board == nil {
		return nil, ErrNotReady
	}
	b := *s.board
	return &b, nil
}

// Scored returns a copy of the latest scored batch.
func (s *Store) Scored() ([]model.ScoredAsset, error) {
	b, err := s.Board()
	if err != nil {
		return nil, err
	}
	out := make([]model.ScoredAsset, len(b.Scored))
	copy(out, b.Scored)
	return out, nil
}

// Asset finds one scored asset by symbol or id.
func (s *Store) Asset(symbol string) (model.ScoredAsset, error) {
	b, err := s.Board()
	if err != nil {
		return model.ScoredAsset{}, err
	}
	a, ok := strategy.Lookup(b.Scored, symbol)
	if !ok {
		return model.ScoredAsset{}, ErrNotFound
	}
	return a, nil
}

// Subscribe registers for board replacements. The returned func unsubscribes
// and closes the channel.
func (s *Store) Subscribe(buffer int) (<-chan *Board, func()) {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan *Board, buffer)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
}
