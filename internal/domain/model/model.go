// Package model contains domain models passed between the collector and the
// comparator.
package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// AbsentSentinel replaces missing numeric cells once drop rules ran.
const AbsentSentinel = "-1"

var seasonPattern = regexp.MustCompile(`^\d{4}-\d{4}$`)

// IsSeasonLabel reports whether s has the YYYY-YYYY season shape.
func IsSeasonLabel(s string) bool {
	return seasonPattern.MatchString(s)
}

// PlayerSource is one entry of the collector input.
type PlayerSource struct {
	URL  string
	Name string
}

// Category groups the raw columns averaged into one composite score.
type Category struct {
	Name    string
	Label   string
	Columns []string
}

// CompositeRow holds one composite score per category for a
// (season, age, team, player) group. Scores are aligned with the category
// slice the row was computed from.
type CompositeRow struct {
	Season string
	Age    string
	Team   string
	Player string
	Scores []float64
}

// PlayerSeason selects one side of a two-way comparison.
type PlayerSeason struct {
	Player string
	Season string
}

func (p PlayerSeason) String() string {
	return p.Player + ":" + p.Season
}

// ParsePlayerSeason parses "Player:YYYY-YYYY". The player part may itself
// contain colons; the season is taken after the last one.
func ParsePlayerSeason(s string) (PlayerSeason, error) {
	i := strings.LastIndex(s, ":")
	if i <= 0 || i == len(s)-1 {
		return PlayerSeason{}, fmt.Errorf("%w: %q, want PLAYER:YYYY-YYYY", ErrInvalidSelector, s)
	}
	ps := PlayerSeason{Player: strings.TrimSpace(s[:i]), Season: strings.TrimSpace(s[i+1:])}
	if ps.Player == "" || !IsSeasonLabel(ps.Season) {
		return PlayerSeason{}, fmt.Errorf("%w: %q, want PLAYER:YYYY-YYYY", ErrInvalidSelector, s)
	}
	return ps, nil
}

// DiagnosticKind classifies a non-fatal pipeline condition.
type DiagnosticKind string

// Diagnostic kinds.
const (
	KindFetch          DiagnosticKind = "fetch"
	KindHTTPStatus     DiagnosticKind = "http_status"
	KindTableMissing   DiagnosticKind = "table_missing"
	KindNoIntermediate DiagnosticKind = "no_intermediate"
	KindNoData         DiagnosticKind = "no_comparison_data"
	KindDuplicateInput DiagnosticKind = "duplicate_input"
	KindIO             DiagnosticKind = "io"
)

// Diagnostic records a condition that aborted one unit of work (a table, a
// player, a comparison) while the run continued.
type Diagnostic struct {
	Kind    DiagnosticKind
	Subject string
	Err     error
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s [%s]: %v", d.Subject, d.Kind, d.Err)
}

func (d Diagnostic) Unwrap() error { return d.Err }

// KindOf maps a wrapped sentinel to its diagnostic kind.
func KindOf(err error) DiagnosticKind {
	switch {
	case errors.Is(err, ErrHTTPStatus):
		return KindHTTPStatus
	case errors.Is(err, ErrFetch):
		return KindFetch
	case errors.Is(err, ErrTableMissing):
		return KindTableMissing
	case errors.Is(err, ErrNoIntermediates):
		return KindNoIntermediate
	case errors.Is(err, ErrNoComparisonData):
		return KindNoData
	case errors.Is(err, ErrDuplicateInput):
		return KindDuplicateInput
	default:
		return KindIO
	}
}
