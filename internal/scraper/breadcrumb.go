package scraper

import (
	"strings"

	"github.com/pfrederiksen/matchcentre/internal/match"
)

// competitionSep separates league, season and stage in the breadcrumb link.
const competitionSep = " - "

// Competition is the parsed breadcrumb link text, e.g.
// "Champions League - 2020/2021 - Final Stage".
type Competition struct {
	League string
	Season string
	Type   string
	Stage  string
	Parts  int
}

// ParseCompetition splits the breadcrumb link text. Two parts describe a
// league season, three a knock-out competition whose last part is the stage.
// ok is false for any other part count; League and Season are still filled
// from whatever parts exist, and Type and Stage stay empty.
func ParseCompetition(text string) (c Competition, ok bool) {
	parts := strings.Split(strings.TrimSpace(text), competitionSep)
	c.Parts = len(parts)

	c.League = parts[0]
	if len(parts) >= 2 {
		c.Season = parts[1]
	}

	switch len(parts) {
	case 2:
		c.Type = match.CompetitionLeague
	case 3:
		c.Type = match.CompetitionKnockOut
		c.Stage = parts[2]
	default:
		return c, false
	}
	return c, true
}

// apply copies the breadcrumb metadata onto rec.
func (c Competition) apply(rec *match.MatchRecord, region string) {
	rec.Region = region
	rec.League = c.League
	rec.Season = c.Season
	rec.CompetitionType = c.Type
	rec.CompetitionStage = c.Stage
}
