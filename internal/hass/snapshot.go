package hass

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/tartampluch/anniversary-cards/internal/config"
)

// Snapshot is an immutable, insertion-ordered view of the host state.
// Iteration order is the order entities were first added, which is the
// tie-breaker used when sorting display records.
type Snapshot struct {
	ids    []string
	states map[string]Entity
}

// NewSnapshot builds a snapshot from the given entities.
// A repeated id replaces the earlier value but keeps its original position.
func NewSnapshot(entities ...Entity) Snapshot {
	s := Snapshot{
		ids:    make([]string, 0, len(entities)),
		states: make(map[string]Entity, len(entities)),
	}
	for _, e := range entities {
		if e.ID == "" {
			continue
		}
		if _, seen := s.states[e.ID]; !seen {
			s.ids = append(s.ids, e.ID)
		}
		s.states[e.ID] = e
	}
	return s
}

// Len returns the number of entities.
func (s Snapshot) Len() int { return len(s.ids) }

// Get looks up an entity by id.
func (s Snapshot) Get(id string) (Entity, bool) {
	e, ok := s.states[id]
	return e, ok
}

// IDs returns a copy of the ordered entity ids.
func (s Snapshot) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// All iterates the entities in snapshot order.
func (s Snapshot) All() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for _, id := range s.ids {
			if !yield(s.states[id]) {
				return
			}
		}
	}
}

// MarshalJSON encodes the snapshot as an ordered list of states.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	list := make([]Entity, 0, len(s.ids))
	for e := range s.All() {
		list = append(list, e)
	}
	return json.Marshal(list)
}

// UnmarshalJSON accepts either a state list ([{"entity_id":...}]) or an
// object keyed by entity id, preserving the document order in both cases.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	snap, err := DecodeSnapshot(bytes.NewReader(data))
	if err != nil {
		return err
	}
	*s = snap
	return nil
}

// DecodeSnapshot reads a JSON state dump from r.
func DecodeSnapshot(r io.Reader) (Snapshot, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return Snapshot{}, fmt.Errorf("%s: %w", config.ErrStateDecode, err)
	}

	var entities []Entity
	switch tok {
	case json.Delim('['):
		for dec.More() {
			var e Entity
			if err := dec.Decode(&e); err != nil {
				return Snapshot{}, fmt.Errorf("%s: %w", config.ErrStateDecode, err)
			}
			entities = append(entities, e)
		}
	case json.Delim('{'):
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return Snapshot{}, fmt.Errorf("%s: %w", config.ErrStateDecode, err)
			}
			key, _ := keyTok.(string)
			var e Entity
			if err := dec.Decode(&e); err != nil {
				return Snapshot{}, fmt.Errorf("%s: %w", config.ErrStateDecode, err)
			}
			if e.ID == "" {
				e.ID = key
			}
			entities = append(entities, e)
		}
	default:
		return Snapshot{}, errors.New(config.ErrStateShape)
	}

	// Consume the closing delimiter so trailing garbage is detected.
	if _, err := dec.Token(); err != nil {
		return Snapshot{}, fmt.Errorf("%s: %w", config.ErrStateDecode, err)
	}
	return NewSnapshot(entities...), nil
}
