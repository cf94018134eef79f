package match

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

type eventType struct {
	id   int
	name string
}

// EventTypeDictionary maps event-type ids to display names and back.
//
// The page serves it as {"name": id}; the inverse {"id": "name"} orientation is
// accepted too. Entries keep the order they were served in. When two names
// share an id, the first one served is the one Resolve returns, but every name
// still gets its own flag column.
type EventTypeDictionary struct {
	entries []eventType
	byID    map[int]string
}

// NewEventTypeDictionary builds a dictionary from an id to name mapping.
// Entries are ordered by id.
func NewEventTypeDictionary(names map[int]string) *EventTypeDictionary {
	d := &EventTypeDictionary{}
	for id, name := range names {
		d.entries = append(d.entries, eventType{id: id, name: name})
	}
	sort.Slice(d.entries, func(i, j int) bool {
		return d.entries[i].id < d.entries[j].id
	})
	d.index()
	return d
}

func (d *EventTypeDictionary) index() {
	d.byID = make(map[int]string, len(d.entries))
	for _, e := range d.entries {
		if _, ok := d.byID[e.id]; !ok {
			d.byID[e.id] = e.name
		}
	}
}

// UnmarshalJSON walks the object token by token so source order survives.
func (d *EventTypeDictionary) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if tok, err := dec.Token(); err != nil {
		return err
	} else if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("event type dictionary must be an object")
	}

	d.entries = nil
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key := tok.(string)

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("event type %q: %w", key, err)
		}

		var id int
		if err := json.Unmarshal(value, &id); err == nil {
			d.entries = append(d.entries, eventType{id: id, name: key})
			continue
		}

		var name string
		if err := json.Unmarshal(value, &name); err != nil {
			return fmt.Errorf("event type %q: value must be an id or a name", key)
		}
		id, err = strconv.Atoi(key)
		if err != nil {
			return fmt.Errorf("event type %q: key is not an id", key)
		}
		d.entries = append(d.entries, eventType{id: id, name: name})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	d.index()
	return nil
}

// MarshalJSON writes the dictionary in the page's {"name": id} orientation,
// keeping entry order.
func (d *EventTypeDictionary) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range d.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(e.id))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Len returns the number of known names.
func (d *EventTypeDictionary) Len() int {
	return len(d.entries)
}

// Name returns the display name for id.
func (d *EventTypeDictionary) Name(id int) (string, bool) {
	name, ok := d.byID[id]
	return name, ok
}

// Names returns every known name ordered by id. Names sharing an id keep
// their served order.
func (d *EventTypeDictionary) Names() []string {
	entries := make([]eventType, len(d.entries))
	copy(entries, d.entries)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].id < entries[j].id
	})

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}
	return names
}

// Resolve maps ids to names, failing on the first unknown id.
func (d *EventTypeDictionary) Resolve(ids []int) ([]string, error) {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		name, ok := d.byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrUnknownEventType, id)
		}
		names = append(names, name)
	}
	return names, nil
}
