package match

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
)

// IDList is a list of event-type ids. It accepts numbers or numeric strings.
type IDList []int

func (l *IDList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	ids := make(IDList, 0, len(raw))
	for _, item := range raw {
		var n json.Number
		if err := json.Unmarshal(item, &n); err != nil {
			return fmt.Errorf("event type id %s: %w", item, err)
		}
		id, err := strconv.Atoi(n.String())
		if err != nil {
			return fmt.Errorf("event type id %s: %w", item, err)
		}
		ids = append(ids, id)
	}
	*l = ids
	return nil
}

// Event is one raw element of a record's event stream.
type Event struct {
	ID              float64         `json:"id"`
	EventID         int             `json:"eventId"`
	Minute          int             `json:"minute"`
	Second          *int            `json:"second,omitempty"`
	TeamID          int             `json:"teamId"`
	PlayerID        *json.Number    `json:"playerId,omitempty"`
	X               float64         `json:"x"`
	Y               float64         `json:"y"`
	ExpandedMinute  int             `json:"expandedMinute"`
	Period          *Descriptor     `json:"period,omitempty"`
	Type            *Descriptor     `json:"type,omitempty"`
	OutcomeType     *Descriptor     `json:"outcomeType,omitempty"`
	Qualifiers      json.RawMessage `json:"qualifiers,omitempty"`
	SatisfiedTypes  IDList          `json:"satisfiedEventsTypes"`
	IsTouch         bool            `json:"isTouch"`
	EndX            *float64        `json:"endX,omitempty"`
	EndY            *float64        `json:"endY,omitempty"`
	RelatedEventID  *int            `json:"relatedEventId,omitempty"`
	RelatedPlayerID *float64        `json:"relatedPlayerId,omitempty"`
	BlockedX        *float64        `json:"blockedX,omitempty"`
	BlockedY        *float64        `json:"blockedY,omitempty"`
	GoalMouthZ      *float64        `json:"goalMouthZ,omitempty"`
	GoalMouthY      *float64        `json:"goalMouthY,omitempty"`
	IsShot          *bool           `json:"isShot,omitempty"`
	IsGoal          *bool           `json:"isGoal,omitempty"`
	IsOwnGoal       *bool           `json:"isOwnGoal,omitempty"`
	CardType        *Descriptor     `json:"cardType,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

var eventFields = fieldNames(reflect.TypeOf(Event{}))

func (e *Event) UnmarshalJSON(data []byte) error {
	type plain Event
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := extraFields(data, eventFields)
	if err != nil {
		return err
	}
	*e = Event(p)
	e.Extra = extra
	return nil
}

func (e Event) MarshalJSON() ([]byte, error) {
	type plain Event
	return withExtra(plain(e), e.Extra)
}

// qualifiersIterable reports whether the qualifiers value is a JSON array.
func (e *Event) qualifiersIterable() bool {
	q := bytes.TrimSpace(e.Qualifiers)
	return len(q) > 0 && q[0] == '['
}

// NormalizedPlayerID renders the player id as an integer string, or "" when
// the event has no player.
func (e *Event) NormalizedPlayerID() string {
	if e.PlayerID == nil || e.PlayerID.String() == "" {
		return ""
	}
	if id, err := e.PlayerID.Int64(); err == nil {
		return strconv.FormatInt(id, 10)
	}
	f, err := e.PlayerID.Float64()
	if err != nil {
		return e.PlayerID.String()
	}
	return strconv.FormatInt(int64(f), 10)
}
