// Package battle classifies battle-log records: win/loss/draw from crown
// totals, opponent identity, relative-time labels and aggregate stats.
package battle

import (
	"strconv"
	"strings"
	"time"

	"clash-hub/internal/domain"
)

type Outcome string

const (
	OutcomeWon  Outcome = "WON"
	OutcomeLost Outcome = "LOST"
	OutcomeDraw Outcome = "DRAW"
)

type Result struct {
	Outcome        Outcome
	PlayerCrowns   int
	OpponentCrowns int
}

// CrownWin is the maximum-margin shutout specifically, not any shutout.
func (r Result) CrownWin() bool {
	return r.Outcome == OutcomeWon && r.PlayerCrowns == 3 && r.OpponentCrowns == 0
}

func Analyze(b domain.Battle) Result {
	var player, opponent int
	for _, m := range b.Team {
		player += m.Crowns
	}
	for _, m := range b.Opponent {
		opponent += m.Crowns
	}

	outcome := OutcomeDraw
	if player > opponent {
		outcome = OutcomeWon
	} else if player < opponent {
		outcome = OutcomeLost
	}
	return Result{Outcome: outcome, PlayerCrowns: player, OpponentCrowns: opponent}
}

type OpponentInfo struct {
	Name     string
	ClanName string
}

// Opponent derives the display identity of the other side. Team battles
// join every opponent name with " & " and take the clan from the first
// entry only.
func Opponent(b domain.Battle) OpponentInfo {
	switch len(b.Opponent) {
	case 0:
		return OpponentInfo{Name: "Unknown"}
	case 1:
		name := b.Opponent[0].Name
		if name == "" {
			name = "Unknown"
		}
		return OpponentInfo{Name: name, ClanName: b.Opponent[0].ClanName}
	default:
		names := make([]string, len(b.Opponent))
		for i, op := range b.Opponent {
			names[i] = op.Name
		}
		return OpponentInfo{Name: strings.Join(names, " & "), ClanName: b.Opponent[0].ClanName}
	}
}

const battleTimeLayout = "20060102T150405"

// ParseBattleTime reads the leading "YYYYMMDDTHHMMSS" of an upstream
// battle timestamp as UTC, ignoring any fractional/zone suffix.
func ParseBattleTime(s string) (time.Time, bool) {
	if len(s) < len(battleTimeLayout) {
		return time.Time{}, false
	}
	t, err := time.Parse(battleTimeLayout, s[:len(battleTimeLayout)])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// TimeAgo renders the largest non-zero elapsed unit ("2d ago", "3h ago",
// "5m ago"), "just now" under a minute, and "recently" when the
// timestamp does not parse.
func TimeAgo(battleTime string, now time.Time) string {
	t, ok := ParseBattleTime(battleTime)
	if !ok {
		return "recently"
	}

	diff := now.UTC().Sub(t)
	if diff < 0 {
		diff = 0
	}
	mins := int(diff.Minutes())
	hrs := mins / 60
	days := hrs / 24

	switch {
	case days > 0:
		return strconv.Itoa(days) + "d ago"
	case hrs > 0:
		return strconv.Itoa(hrs) + "h ago"
	case mins > 0:
		return strconv.Itoa(mins) + "m ago"
	default:
		return "just now"
	}
}

type Summary struct {
	Total      int
	Wins       int
	Losses     int
	Draws      int
	CrownWins  int
	WinPercent int
}

// Summarize aggregates the returned battle log. Percentages are rounded
// to the nearest whole number.
func Summarize(battles []domain.Battle) Summary {
	s := Summary{Total: len(battles)}
	for _, b := range battles {
		r := Analyze(b)
		switch r.Outcome {
		case OutcomeWon:
			s.Wins++
			if r.CrownWin() {
				s.CrownWins++
			}
		case OutcomeLost:
			s.Losses++
		default:
			s.Draws++
		}
	}
	if s.Total > 0 {
		s.WinPercent = (s.Wins*100 + s.Total/2) / s.Total
	}
	return s
}

// Pattern letters the most recent n games, W/L/D, newest first.
func Pattern(battles []domain.Battle, n int) string {
	if n > len(battles) {
		n = len(battles)
	}
	var sb strings.Builder
	for _, b := range battles[:n] {
		switch Analyze(b).Outcome {
		case OutcomeWon:
			sb.WriteByte('W')
		case OutcomeLost:
			sb.WriteByte('L')
		default:
			sb.WriteByte('D')
		}
	}
	return sb.String()
}
