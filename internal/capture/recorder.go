package capture

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/BetterCallFirewall/Cryptoscope/internal/models"
)

var (
	ErrUnknownRequest = errors.New("no pending capture for request")
	ErrAlreadyPending = errors.New("request is already pending")
)

// ContentFunc fetches the response body of a finished exchange.
type ContentFunc func(ctx context.Context) (string, error)

// Appender is the store side of the recorder.
type Appender interface {
	Append(exchange models.Exchange) error
}

// Recorder turns capture events into complete exchanges. A record only
// reaches the store once its response body is known.
type Recorder struct {
	mu      sync.Mutex
	filter  *Filter
	store   Appender
	pending map[string]models.Exchange
	now     func() time.Time
}

func NewRecorder(filter *Filter, store Appender) *Recorder {
	if filter == nil {
		filter = NewFilter(nil)
	}
	return &Recorder{
		filter:  filter,
		store:   store,
		pending: make(map[string]models.Exchange),
		now:     time.Now,
	}
}

// Observe appends ev when it passes the filter. The body comes from fetch
// when given, otherwise from the event itself. A failed fetch still records
// the exchange, with an empty body.
func (r *Recorder) Observe(ctx context.Context, ev Event, fetch ContentFunc) (bool, error) {
	if ok, _ := r.filter.Match(ev.Request.URL); !ok {
		return false, nil
	}

	e := ev.exchange(r.id(ev), r.now())
	switch {
	case fetch != nil:
		body, err := fetch(ctx)
		if err != nil {
			log.Printf("⚠️ Failed to fetch response body for %s: %v", e.URL, err)
			body = ""
		}
		e.ResponseBody = body
	case ev.Response != nil:
		e.ResponseBody = ev.Response.Content.Body()
	}

	if err := r.store.Append(e); err != nil {
		return false, fmt.Errorf("append exchange %s: %w", e.ID, err)
	}
	return true, nil
}

// Begin parks a filtered exchange until Complete delivers its body.
// It returns the id the exchange will be stored under, or "" when the
// filter rejected it.
func (r *Recorder) Begin(ev Event) (string, error) {
	if ok, _ := r.filter.Match(ev.Request.URL); !ok {
		return "", nil
	}

	e := ev.exchange(r.id(ev), r.now())

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.pending[e.ID]; ok {
		return "", fmt.Errorf("%w: %s", ErrAlreadyPending, e.ID)
	}
	r.pending[e.ID] = e
	return e.ID, nil
}

// Complete finishes a pending exchange and appends it.
func (r *Recorder) Complete(requestID, body string) error {
	r.mu.Lock()
	e, ok := r.pending[requestID]
	if ok {
		delete(r.pending, requestID)
	}
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRequest, requestID)
	}

	e.ResponseBody = body
	if err := r.store.Append(e); err != nil {
		return fmt.Errorf("append exchange %s: %w", e.ID, err)
	}
	return nil
}

func (r *Recorder) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// Reset drops every pending exchange.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = make(map[string]models.Exchange)
}

func (r *Recorder) Filter() *Filter {
	return r.filter
}

func (r *Recorder) id(ev Event) string {
	if ev.RequestID != "" {
		return ev.RequestID
	}
	return uuid.NewString()
}
