package match

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrInvalidRecord is returned when a record is missing data a transform needs.
	ErrInvalidRecord = errors.New("invalid match record")
	// ErrUnknownEventType is returned when an event references an id missing from
	// the record's event-type dictionary.
	ErrUnknownEventType = errors.New("unknown event type")
	// ErrMalformedQualifier is returned when a qualifier has no type display name.
	ErrMalformedQualifier = errors.New("malformed qualifier")
)

const (
	CompetitionLeague   = "League"
	CompetitionKnockOut = "Knock Out"
)

// Descriptor is the {value, displayName} pair the site uses for enumerations
// such as period, event type and outcome.
type Descriptor struct {
	Value       int    `json:"value"`
	DisplayName string `json:"displayName"`
}

// Name returns the display name, or "" for a nil descriptor.
func (d *Descriptor) Name() string {
	if d == nil {
		return ""
	}
	return d.DisplayName
}

// Official is a match official as listed in the record.
type Official struct {
	OfficialID int    `json:"officialId,omitempty"`
	FirstName  string `json:"firstName,omitempty"`
	LastName   string `json:"lastName,omitempty"`
	Name       string `json:"name,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

var officialFields = fieldNames(reflect.TypeOf(Official{}))

func (o *Official) UnmarshalJSON(data []byte) error {
	type plain Official
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := extraFields(data, officialFields)
	if err != nil {
		return err
	}
	*o = Official(p)
	o.Extra = extra
	return nil
}

func (o Official) MarshalJSON() ([]byte, error) {
	type plain Official
	return withExtra(plain(o), o.Extra)
}

// Team holds the team fields the transforms read. Players, formations and
// stats stay in Extra.
type Team struct {
	TeamID      int     `json:"teamId"`
	Name        string  `json:"name"`
	ManagerName string  `json:"managerName,omitempty"`
	CountryName string  `json:"countryName,omitempty"`
	Field       string  `json:"field,omitempty"`
	AverageAge  float64 `json:"averageAge,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

var teamFields = fieldNames(reflect.TypeOf(Team{}))

func (t *Team) UnmarshalJSON(data []byte) error {
	type plain Team
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := extraFields(data, teamFields)
	if err != nil {
		return err
	}
	*t = Team(p)
	t.Extra = extra
	return nil
}

func (t Team) MarshalJSON() ([]byte, error) {
	type plain Team
	return withExtra(plain(t), t.Extra)
}

// MatchRecord is one match as extracted from a match-centre page, merged with
// the page's breadcrumb metadata.
type MatchRecord struct {
	MatchID           int64     `json:"matchId"`
	Attendance        *int      `json:"attendance,omitempty"`
	VenueName         string    `json:"venueName,omitempty"`
	Referee           *Official `json:"referee,omitempty"`
	StartTime         string    `json:"startTime,omitempty"`
	StartDate         string    `json:"startDate,omitempty"`
	Score             string    `json:"score,omitempty"`
	HTScore           string    `json:"htScore,omitempty"`
	FTScore           string    `json:"ftScore,omitempty"`
	ETScore           string    `json:"etScore,omitempty"`
	PKScore           string    `json:"pkScore,omitempty"`
	Home              *Team     `json:"home,omitempty"`
	Away              *Team     `json:"away,omitempty"`
	MaxMinute         int       `json:"maxMinute,omitempty"`
	ExpandedMaxMinute int       `json:"expandedMaxMinute,omitempty"`
	Events            []Event   `json:"events"`

	PlayerIDNameDictionary  map[string]string    `json:"playerIdNameDictionary,omitempty"`
	EventTypes              *EventTypeDictionary `json:"matchCentreEventTypeJson,omitempty"`
	FormationIDNameMappings map[string]string    `json:"formationIdNameMappings,omitempty"`

	Region           string `json:"region"`
	League           string `json:"league"`
	Season           string `json:"season"`
	CompetitionType  string `json:"competitionType"`
	CompetitionStage string `json:"competitionStage"`

	// Extra holds every top-level field without a typed counterpart.
	Extra map[string]json.RawMessage `json:"-"`
}

var recordFields = fieldNames(reflect.TypeOf(MatchRecord{}))

func (r *MatchRecord) UnmarshalJSON(data []byte) error {
	type plain MatchRecord
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := extraFields(data, recordFields)
	if err != nil {
		return err
	}
	*r = MatchRecord(p)
	r.Extra = extra
	return nil
}

// MarshalJSON encodes the record with its extra fields merged back in and the
// top-level keys sorted.
func (r MatchRecord) MarshalJSON() ([]byte, error) {
	type plain MatchRecord
	return withExtra(plain(r), r.Extra)
}

// DecodeRecord decodes and validates a record.
func DecodeRecord(data []byte) (*MatchRecord, error) {
	var rec MatchRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decoding record: %w", err)
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Validate checks the fields every consumer relies on.
func (r *MatchRecord) Validate() error {
	if r.MatchID <= 0 {
		return fmt.Errorf("%w: matchId missing or not positive", ErrInvalidRecord)
	}
	return nil
}

// validateForEvents checks the fields BuildEvents dereferences.
func (r *MatchRecord) validateForEvents() error {
	if err := r.Validate(); err != nil {
		return err
	}
	switch {
	case r.Events == nil:
		return fmt.Errorf("%w: match %d has no events", ErrInvalidRecord, r.MatchID)
	case r.EventTypes == nil:
		return fmt.Errorf("%w: match %d has no event type dictionary", ErrInvalidRecord, r.MatchID)
	case r.Home == nil || r.Away == nil:
		return fmt.Errorf("%w: match %d is missing home or away team", ErrInvalidRecord, r.MatchID)
	}
	return nil
}
