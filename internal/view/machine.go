package view

import (
	"log"
	"sync"

	"github.com/BetterCallFirewall/Cryptoscope/internal/jsonvalue"
	"github.com/BetterCallFirewall/Cryptoscope/internal/models"
)

const (
	noticeNoJSON  = "No JSON content."
	noticeNotJSON = "Not JSON (showing as text)."
)

// Selector is the part of the exchange store the machine reads from.
type Selector interface {
	Selection() (models.Exchange, uint64, bool)
}

// Decrypter is a fail-open codec.
type Decrypter interface {
	DecryptOrOriginal(wireText string) jsonvalue.Value
}

// Presentation is what the presentation layer draws for one field: either
// Text or Tree, with an optional Notice.
type Presentation struct {
	Field       Field           `json:"field"`
	Mode        Mode            `json:"mode"`
	Decryptable bool            `json:"decryptable"`
	Text        string          `json:"text,omitempty"`
	Tree        *jsonvalue.Node `json:"tree,omitempty"`
	Notice      string          `json:"notice,omitempty"`
	Fallback    bool            `json:"fallback,omitempty"`
}

type Snapshot struct {
	Exchange *models.Exchange `json:"exchange"`
	Fields   []Presentation   `json:"fields"`
}

// Machine holds the raw/decrypted mode of every field for the current
// selection. All modes fall back to raw as soon as the store reports a new
// selection epoch, so decrypted output never outlives its exchange.
type Machine struct {
	mu        sync.Mutex
	selector  Selector
	decrypter Decrypter
	epoch     uint64
	synced    bool
	decrypted map[Field]Presentation
}

func NewMachine(selector Selector, decrypter Decrypter) *Machine {
	return &Machine{
		selector:  selector,
		decrypter: decrypter,
		decrypted: make(map[Field]Presentation),
	}
}

// Toggle flips field between raw and decrypted and returns what is now shown.
// Without a selection or without raw content it changes nothing.
func (m *Machine) Toggle(field Field) Presentation {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sync()
	if !ok {
		return m.raw(field, rawSource{})
	}
	src := sourceFor(field, e)
	if !src.ok {
		return m.raw(field, src)
	}

	if _, on := m.decrypted[field]; on {
		delete(m.decrypted, field)
		return m.raw(field, src)
	}

	p := m.decrypt(field, src)
	m.decrypted[field] = p
	return p
}

// Render returns the current presentation of field.
func (m *Machine) Render(field Field) Presentation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.render(field)
}

func (m *Machine) Mode(field Field) Mode {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sync()
	if _, on := m.decrypted[field]; on {
		return ModeDecrypted
	}
	return ModeRaw
}

// Decryptable reports whether field has raw content on the current selection.
func (m *Machine) Decryptable(field Field) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sync()
	return ok && sourceFor(field, e).ok
}

// Snapshot renders every field of the current selection.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	var snap Snapshot
	if e, ok := m.sync(); ok {
		snap.Exchange = &e
	}
	for _, f := range Fields {
		snap.Fields = append(snap.Fields, m.render(f))
	}
	return snap
}

// Reset puts every field back to raw.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decrypted = make(map[Field]Presentation)
}

func (m *Machine) render(field Field) Presentation {
	e, ok := m.sync()
	if !ok {
		return m.raw(field, rawSource{})
	}
	if p, on := m.decrypted[field]; on {
		return p
	}
	return m.raw(field, sourceFor(field, e))
}

// sync drops decrypted state when the selection epoch moved.
func (m *Machine) sync() (models.Exchange, bool) {
	e, epoch, ok := m.selector.Selection()
	if !m.synced || epoch != m.epoch {
		m.epoch = epoch
		m.synced = true
		if len(m.decrypted) > 0 {
			m.decrypted = make(map[Field]Presentation)
		}
	}
	return e, ok
}

func (m *Machine) raw(field Field, src rawSource) Presentation {
	p := Presentation{Field: field, Mode: ModeRaw, Decryptable: src.ok, Text: src.text}
	if !src.ok {
		p.Text = placeholder(field)
	}
	return p
}

func (m *Machine) decrypt(field Field, src rawSource) Presentation {
	p := Presentation{Field: field, Mode: ModeDecrypted, Decryptable: true}

	input := src.decrypt
	if field == FieldPayload {
		body := jsonvalue.ParseLenient(src.decrypt)
		inner, ok := unwrapPayload(body)
		if !ok {
			log.Printf("⚠️ payload has no encrypted value under its first key, showing body as is")
			p.Fallback = true
			present(&p, body)
			return p
		}
		input = inner
	}

	present(&p, m.decrypter.DecryptOrOriginal(input))
	return p
}

// unwrapPayload returns the string stored under the first key of an object body.
func unwrapPayload(body jsonvalue.Value) (string, bool) {
	obj, ok := body.(jsonvalue.Object)
	if !ok || len(obj.Members) == 0 {
		return "", false
	}
	s, ok := obj.Members[0].Value.(jsonvalue.String)
	if !ok {
		return "", false
	}
	return string(s), true
}

func present(p *Presentation, v jsonvalue.Value) {
	if jsonvalue.IsContainer(v) {
		tree := jsonvalue.BuildTree(v)
		p.Tree = &tree
		return
	}

	switch t := v.(type) {
	case nil, jsonvalue.Null:
		p.Notice = noticeNoJSON
	case jsonvalue.String:
		if t == "" {
			p.Notice = noticeNoJSON
			return
		}
		p.Text = string(t)
		p.Notice = noticeNotJSON
	default:
		raw, _ := t.MarshalJSON()
		p.Text = string(raw)
		p.Notice = noticeNotJSON
	}
}
