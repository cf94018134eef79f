package match

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

const sampleRecord = `{
	"matchId": 1491995,
	"attendance": 0,
	"venueName": "Estadio Ramón Sánchez Pizjuán",
	"referee": {"officialId": 9, "firstName": "Jesús", "lastName": "Gil Manzano", "name": "Jesús Gil Manzano", "hasParticipatedMatches": true},
	"startTime": "2021-02-27T21:00:00",
	"startDate": "2021-02-27T00:00:00",
	"score": "0 : 2",
	"htScore": "0 : 0",
	"ftScore": "0 : 2",
	"etScore": "",
	"maxMinute": 94,
	"weatherCode": "",
	"home": {"teamId": 67, "name": "Sevilla", "managerName": "Julen Lopetegui", "players": [{"playerId": 1}]},
	"away": {"teamId": 65, "name": "Barcelona", "managerName": "Ronald Koeman"},
	"playerIdNameDictionary": {"11119": "Lionel Messi", "95408": "Ousmane Dembélé", "28944": "Jules Koundé"},
	"matchCentreEventTypeJson": {"pass": 1, "goal": 2, "shotOnTarget": 3, "tackle": 4},
	"formationIdNameMappings": {"2": "442"},
	"events": [
		{
			"id": 2253405343, "eventId": 3, "minute": 0, "second": 0, "teamId": 65,
			"playerId": 11119, "x": 50.1, "y": 49.2, "expandedMinute": 0,
			"period": {"value": 1, "displayName": "FirstHalf"},
			"type": {"value": 1, "displayName": "Pass"},
			"outcomeType": {"value": 1, "displayName": "Successful"},
			"qualifiers": [{"type": {"value": 213, "displayName": "Angle"}, "value": "3.1"}],
			"satisfiedEventsTypes": [1],
			"isTouch": true, "endX": 38.5, "endY": 50.9
		},
		{
			"id": 2253405399, "eventId": 77, "minute": 28, "second": 41, "teamId": 65,
			"playerId": 95408.0, "x": 88.0, "y": 40.1, "expandedMinute": 28,
			"period": {"value": 1, "displayName": "FirstHalf"},
			"type": {"value": 16, "displayName": "Goal"},
			"outcomeType": {"value": 1, "displayName": "Successful"},
			"qualifiers": [
				{"type": {"value": 22, "displayName": "RegularPlay"}},
				{"type": {"value": 72, "displayName": "LeftFoot"}},
				{"type": {"value": 20, "displayName": "RightFoot"}}
			],
			"satisfiedEventsTypes": [2, 3],
			"isTouch": true, "isShot": true, "isGoal": true, "goalMouthY": 46.2, "goalMouthZ": 3.8
		},
		{
			"id": 2253405420, "eventId": 90, "minute": 31, "second": 2, "teamId": 67,
			"playerId": 28944, "x": 30.0, "y": 70.0, "expandedMinute": 31,
			"period": {"value": 1, "displayName": "FirstHalf"},
			"type": {"value": 7, "displayName": "Tackle"},
			"outcomeType": {"value": 0, "displayName": "Unsuccessful"},
			"qualifiers": [],
			"satisfiedEventsTypes": [4],
			"isTouch": true, "cardType": {"value": 31, "displayName": "Yellow"}
		},
		{
			"id": 2253405500, "eventId": 2, "minute": 45, "second": 0, "teamId": 0,
			"x": 0, "y": 0, "expandedMinute": 45,
			"period": {"value": 1, "displayName": "FirstHalf"},
			"type": {"value": 30, "displayName": "End"},
			"outcomeType": {"value": 1, "displayName": "Successful"},
			"qualifiers": [],
			"satisfiedEventsTypes": [],
			"isTouch": false
		}
	]
}`

func mustDecode(t *testing.T, data string) *MatchRecord {
	t.Helper()
	rec, err := DecodeRecord([]byte(data))
	if err != nil {
		t.Fatalf("DecodeRecord() error: %v", err)
	}
	return rec
}

func TestDecodeRecord(t *testing.T) {
	rec := mustDecode(t, sampleRecord)

	if rec.MatchID != 1491995 {
		t.Errorf("MatchID = %d, want 1491995", rec.MatchID)
	}
	if rec.Attendance == nil || *rec.Attendance != 0 {
		t.Errorf("Attendance = %v, want pointer to 0", rec.Attendance)
	}
	if rec.Home == nil || rec.Home.TeamID != 67 || rec.Home.Name != "Sevilla" {
		t.Errorf("Home = %+v, want Sevilla (67)", rec.Home)
	}
	if _, ok := rec.Home.Extra["players"]; !ok {
		t.Error("Home.Extra should retain players")
	}
	if _, ok := rec.Extra["weatherCode"]; !ok {
		t.Error("Extra should retain weatherCode")
	}
	if len(rec.Events) != 4 {
		t.Fatalf("len(Events) = %d, want 4", len(rec.Events))
	}
	if rec.EventTypes.Len() != 4 {
		t.Errorf("EventTypes.Len() = %d, want 4", rec.EventTypes.Len())
	}
}

func TestDecodeRecord_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{name: "missing matchId", data: `{"events": []}`, wantErr: ErrInvalidRecord},
		{name: "zero matchId", data: `{"matchId": 0}`, wantErr: ErrInvalidRecord},
		{name: "not an object", data: `[1, 2]`},
		{name: "bad event types", data: `{"matchId": 1, "matchCentreEventTypeJson": {"pass": true}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRecord([]byte(tt.data))
			if err == nil {
				t.Fatal("DecodeRecord() expected error, got nil")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("DecodeRecord() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestMatchRecord_MarshalSortedWithExtras(t *testing.T) {
	rec := mustDecode(t, sampleRecord)
	rec.Region = "Spain"
	rec.League = "LaLiga"
	rec.Season = "2020/2021"
	rec.CompetitionType = CompetitionLeague

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	out := string(data)

	// Keys are sorted: "attendance" < "away" < ... < "weatherCode"
	for _, pair := range [][2]string{
		{`"attendance"`, `"away"`},
		{`"competitionStage"`, `"competitionType"`},
		{`"matchId"`, `"region"`},
		{`"season"`, `"weatherCode"`},
	} {
		if strings.Index(out, pair[0]) > strings.Index(out, pair[1]) {
			t.Errorf("key %s should come before %s", pair[0], pair[1])
		}
	}
	if !strings.Contains(out, `"weatherCode":""`) {
		t.Error("encoded record should carry extra field weatherCode")
	}
	if !strings.Contains(out, `"competitionStage":""`) {
		t.Error("encoded record should always carry competitionStage")
	}
	if !strings.Contains(out, `"hasParticipatedMatches":true`) {
		t.Error("encoded referee should carry extra field hasParticipatedMatches")
	}

	again, err := DecodeRecord(data)
	if err != nil {
		t.Fatalf("DecodeRecord() of encoded record error: %v", err)
	}
	if again.Region != "Spain" || len(again.Events) != len(rec.Events) {
		t.Errorf("re-decoded record lost data: region=%q events=%d", again.Region, len(again.Events))
	}
	if again.Referee == nil || again.Referee.Name != "Jesús Gil Manzano" {
		t.Errorf("re-decoded Referee = %+v", again.Referee)
	} else if _, ok := again.Referee.Extra["hasParticipatedMatches"]; !ok {
		t.Error("re-decoded Referee.Extra should retain hasParticipatedMatches")
	}
	if name, _ := again.EventTypes.Name(2); name != "goal" {
		t.Errorf("re-decoded EventTypes.Name(2) = %q, want goal", name)
	}
}

func TestEvent_NormalizedPlayerID(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`{"playerId": 11119}`, "11119"},
		{`{"playerId": 95408.0}`, "95408"},
		{`{"playerId": "28944"}`, "28944"},
		{`{}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var evt Event
			if err := json.Unmarshal([]byte(tt.raw), &evt); err != nil {
				t.Fatalf("Unmarshal() error: %v", err)
			}
			if got := evt.NormalizedPlayerID(); got != tt.want {
				t.Errorf("NormalizedPlayerID() = %q, want %q", got, tt.want)
			}
		})
	}
}
