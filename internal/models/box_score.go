package models

import (
	"strconv"
	"strings"
)

// StatRow is one player's line in a box score
type StatRow struct {
	Team     string `json:"team"`
	Player   string `json:"player"`
	Points   string `json:"points"`
	Assists  string `json:"assists"`
	Rebounds string `json:"rebounds"`
}

// StatColumns is the fixed display order of a box score table
var StatColumns = []string{"team", "player", "points", "assists", "rebounds"}

// Values returns the row in StatColumns order with "?" for missing cells
func (r StatRow) Values() []string {
	return []string{
		orUnknown(r.Team),
		orUnknown(r.Player),
		orUnknown(r.Points),
		orUnknown(r.Assists),
		orUnknown(r.Rebounds),
	}
}

// StatRowInput is used for building rows from loosely typed source data
type StatRowInput struct {
	Team     string
	Player   string
	Points   interface{}
	Assists  interface{}
	Rebounds interface{}
}

// ToStatRow converts StatRowInput to a StatRow.
// Rows without a player name are rejected.
func (si *StatRowInput) ToStatRow() (StatRow, bool) {
	row := StatRow{
		Team:     strings.TrimSpace(si.Team),
		Player:   strings.TrimSpace(si.Player),
		Points:   statValue(si.Points),
		Assists:  statValue(si.Assists),
		Rebounds: statValue(si.Rebounds),
	}
	return row, row.Player != ""
}

// statValue renders numbers and strings uniformly
func statValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return UnknownScore
	case string:
		return orUnknown(strings.TrimSpace(val))
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return UnknownScore
	}
}

func orUnknown(s string) string {
	if s == "" {
		return UnknownScore
	}
	return s
}
