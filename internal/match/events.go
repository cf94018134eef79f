package match

import (
	"encoding/json"
	"fmt"

	"github.com/pfrederiksen/matchcentre/internal/logger"
)

// Qualifier is an event qualifier with its type flattened to a display name.
type Qualifier struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

// TypeFlag records whether an event satisfied one known event type.
type TypeFlag struct {
	Name string
	Set  bool
}

// EventRow is one event enriched with match context and derived columns.
//
// Empty strings stand for unset cells: HA when the team is neither side,
// ShotBodyType and Situation for non-shots, CardType when the event has no card
// (the false value of the card column).
type EventRow struct {
	ID              int64
	EventID         int
	Minute          int
	Second          *int
	TeamID          int
	HA              string
	PlayerID        string
	PlayerName      string
	X               float64
	Y               float64
	ExpandedMinute  int
	Period          string
	Type            string
	OutcomeType     string
	Qualifiers      []Qualifier
	RawQualifiers   json.RawMessage
	SatisfiedTypes  []string
	IsTouch         bool
	EndX            *float64
	EndY            *float64
	RelatedEventID  *int
	RelatedPlayerID *float64
	BlockedX        *float64
	BlockedY        *float64
	GoalMouthZ      *float64
	GoalMouthY      *float64
	IsOwnGoal       *bool
	CardType        string

	MatchID   int64
	StartDate string
	StartTime string
	Score     string
	FTScore   string
	HTScore   string
	ETScore   string
	VenueName string
	MaxMinute int

	IsShot       bool
	IsGoal       bool
	ShotBodyType string
	Situation    string
	Flags        []TypeFlag

	Extra map[string]json.RawMessage
}

// Flag reports whether the row satisfied the named event type.
func (r *EventRow) Flag(name string) (set, known bool) {
	for _, f := range r.Flags {
		if f.Name == name {
			return f.Set, true
		}
	}
	return false, false
}

var shotBodyTypes = map[string]bool{
	"RightFoot":     true,
	"LeftFoot":      true,
	"Head":          true,
	"OtherBodyPart": true,
}

// shotSituations maps qualifier types to the situation label they record.
var shotSituations = map[string]string{
	"FromCorner":     "FromCorner",
	"SetPiece":       "SetPiece",
	"DirectFreekick": "DirectFreekick",
	"RegularPlay":    "OpenPlay",
}

// BuildEvents flattens a record's event stream into rows, preserving order.
func BuildEvents(rec *MatchRecord) ([]EventRow, error) {
	if err := rec.validateForEvents(); err != nil {
		return nil, err
	}

	hasCards := false
	qualifiersIterable := true
	for i := range rec.Events {
		if rec.Events[i].CardType != nil {
			hasCards = true
		}
		if !rec.Events[i].qualifiersIterable() {
			qualifiersIterable = false
		}
	}
	if !hasCards {
		logger.Debug("No cardType column, defaulting to false", logger.Fields{"match_id": rec.MatchID})
	}
	if !qualifiersIterable {
		logger.Warn("Qualifiers are not iterable for every event, leaving them unresolved", logger.Fields{
			"match_id": rec.MatchID,
		})
	}

	typeNames := rec.EventTypes.Names()
	rows := make([]EventRow, 0, len(rec.Events))
	for i := range rec.Events {
		evt := &rec.Events[i]

		row := newEventRow(evt)
		broadcast(&row, rec)

		row.Period = evt.Period.Name()
		row.Type = evt.Type.Name()
		row.OutcomeType = evt.OutcomeType.Name()
		row.CardType = evt.CardType.Name()

		satisfied, err := rec.EventTypes.Resolve(evt.SatisfiedTypes)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", evt.EventID, err)
		}
		row.SatisfiedTypes = satisfied

		if qualifiersIterable {
			quals, err := resolveQualifiers(evt.Qualifiers)
			if err != nil {
				return nil, fmt.Errorf("event %d: %w", evt.EventID, err)
			}
			row.Qualifiers = quals
		} else {
			row.RawQualifiers = evt.Qualifiers
		}

		row.IsShot = evt.IsShot != nil && *evt.IsShot
		row.IsGoal = evt.IsGoal != nil && *evt.IsGoal

		row.PlayerID = evt.NormalizedPlayerID()
		if row.PlayerID != "" {
			row.PlayerName = rec.PlayerIDNameDictionary[row.PlayerID]
		}

		row.HA = side(rec, evt.TeamID)

		if row.IsShot {
			row.ShotBodyType = shotBodyType(row.Qualifiers)
			row.Situation = shotSituation(row.Qualifiers)
		}

		row.Flags = typeFlags(typeNames, satisfied)
		rows = append(rows, row)
	}

	return rows, nil
}

// newEventRow copies the scalar fields of a raw event.
func newEventRow(evt *Event) EventRow {
	return EventRow{
		ID:              int64(evt.ID),
		EventID:         evt.EventID,
		Minute:          evt.Minute,
		Second:          evt.Second,
		TeamID:          evt.TeamID,
		X:               evt.X,
		Y:               evt.Y,
		ExpandedMinute:  evt.ExpandedMinute,
		IsTouch:         evt.IsTouch,
		EndX:            evt.EndX,
		EndY:            evt.EndY,
		RelatedEventID:  evt.RelatedEventID,
		RelatedPlayerID: evt.RelatedPlayerID,
		BlockedX:        evt.BlockedX,
		BlockedY:        evt.BlockedY,
		GoalMouthZ:      evt.GoalMouthZ,
		GoalMouthY:      evt.GoalMouthY,
		IsOwnGoal:       evt.IsOwnGoal,
		Extra:           evt.Extra,
	}
}

// broadcast copies match-level context onto a row.
func broadcast(row *EventRow, rec *MatchRecord) {
	row.MatchID = rec.MatchID
	row.StartDate = rec.StartDate
	row.StartTime = rec.StartTime
	row.Score = rec.Score
	row.FTScore = rec.FTScore
	row.HTScore = rec.HTScore
	row.ETScore = rec.ETScore
	row.VenueName = rec.VenueName
	row.MaxMinute = rec.MaxMinute
}

func resolveQualifiers(raw json.RawMessage) ([]Qualifier, error) {
	var items []struct {
		Type *struct {
			DisplayName *string `json:"displayName"`
		} `json:"type"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedQualifier, err)
	}

	quals := make([]Qualifier, 0, len(items))
	for i, item := range items {
		if item.Type == nil || item.Type.DisplayName == nil {
			return nil, fmt.Errorf("%w: qualifier %d has no type display name", ErrMalformedQualifier, i)
		}
		quals = append(quals, Qualifier{
			Type:  *item.Type.DisplayName,
			Value: qualifierValue(item.Value),
		})
	}
	return quals, nil
}

func qualifierValue(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func side(rec *MatchRecord, teamID int) string {
	switch teamID {
	case rec.Home.TeamID:
		return "h"
	case rec.Away.TeamID:
		return "a"
	}
	return ""
}

// shotBodyType returns the body part of a shot. If several qualifiers match,
// the last one wins.
func shotBodyType(quals []Qualifier) string {
	body := ""
	for _, q := range quals {
		if shotBodyTypes[q.Type] {
			body = q.Type
		}
	}
	return body
}

// shotSituation returns the situation of a shot. If several qualifiers match,
// the last one wins.
func shotSituation(quals []Qualifier) string {
	situation := ""
	for _, q := range quals {
		if label, ok := shotSituations[q.Type]; ok {
			situation = label
		}
	}
	return situation
}

func typeFlags(names, satisfied []string) []TypeFlag {
	set := make(map[string]struct{}, len(satisfied))
	for _, s := range satisfied {
		set[s] = struct{}{}
	}
	flags := make([]TypeFlag, len(names))
	for i, name := range names {
		_, ok := set[name]
		flags[i] = TypeFlag{Name: name, Set: ok}
	}
	return flags
}
