package storage

import (
	"errors"
	"fmt"
	"sync"

	"github.com/BetterCallFirewall/Cryptoscope/internal/models"
)

var ErrDuplicateExchange = errors.New("exchange already stored")

// Notifier receives store events. It is always called without the store lock held.
type Notifier interface {
	Notify(event models.Event)
}

// NotifierFunc adapts a plain function to Notifier.
type NotifierFunc func(event models.Event)

func (f NotifierFunc) Notify(event models.Event) { f(event) }

// MemoryStorage is the in-memory exchange store of a capture session.
// Insertion order is display order; selection either names a stored
// exchange or is empty.
type MemoryStorage struct {
	mu        sync.RWMutex
	exchanges []models.Exchange
	index     map[string]int
	selected  string
	epoch     uint64
	notifier  Notifier
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		index: make(map[string]int),
	}
}

func (s *MemoryStorage) SetNotifier(n Notifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifier = n
}

// Append stores a complete exchange. The first exchange of an empty
// selection becomes selected.
func (s *MemoryStorage) Append(exchange models.Exchange) error {
	if exchange.ID == "" {
		return errors.New("exchange id is empty")
	}

	s.mu.Lock()
	if _, ok := s.index[exchange.ID]; ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDuplicateExchange, exchange.ID)
	}

	stored := exchange.Clone()
	s.index[stored.ID] = len(s.exchanges)
	s.exchanges = append(s.exchanges, stored)

	events := []models.Event{{Type: models.EventExchangeAppended, Data: stored.Clone()}}
	if s.selected == "" {
		s.selected = stored.ID
		s.epoch++
		events = append(events, models.Event{Type: models.EventSelectionChanged, Data: stored.ID})
	}
	n := s.notifier
	s.mu.Unlock()

	s.notify(n, events...)
	return nil
}

// Select points the selection at id. Unknown ids are ignored.
func (s *MemoryStorage) Select(id string) bool {
	s.mu.Lock()
	if _, ok := s.index[id]; !ok {
		s.mu.Unlock()
		return false
	}
	s.selected = id
	s.epoch++
	n := s.notifier
	s.mu.Unlock()

	s.notify(n, models.Event{Type: models.EventSelectionChanged, Data: id})
	return true
}

// Clear drops every exchange and the selection.
func (s *MemoryStorage) Clear() {
	s.mu.Lock()
	s.exchanges = nil
	s.index = make(map[string]int)
	s.selected = ""
	s.epoch++
	n := s.notifier
	s.mu.Unlock()

	s.notify(n, models.Event{Type: models.EventExchangesCleared})
}

// Selection returns the selected exchange and the selection epoch. The epoch
// changes on every select and every clear.
func (s *MemoryStorage) Selection() (models.Exchange, uint64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.selected == "" {
		return models.Exchange{}, s.epoch, false
	}
	return s.exchanges[s.index[s.selected]].Clone(), s.epoch, true
}

func (s *MemoryStorage) SelectedID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

func (s *MemoryStorage) Get(id string) (models.Exchange, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return models.Exchange{}, false
	}
	return s.exchanges[i].Clone(), true
}

// All returns the exchanges in insertion order.
func (s *MemoryStorage) All() []models.Exchange {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Exchange, len(s.exchanges))
	for i, e := range s.exchanges {
		out[i] = e.Clone()
	}
	return out
}

func (s *MemoryStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.exchanges)
}

func (s *MemoryStorage) notify(n Notifier, events ...models.Event) {
	if n == nil {
		return
	}
	for _, ev := range events {
		n.Notify(ev)
	}
}
