package pager

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"clash-hub/internal/battle"
	"clash-hub/internal/domain"
	"clash-hub/internal/tag"
)

// ClanCard is the pure view model for one clan search result. Fields are
// unescaped; escaping happens in HTML().
type ClanCard struct {
	Name             string `json:"name"`
	Tag              string `json:"tag"`
	Members          int    `json:"members"`
	Score            int    `json:"score"`
	WarTrophies      int    `json:"warTrophies"`
	RequiredTrophies int    `json:"requiredTrophies"`
	LocationName     string `json:"locationName"`
	Flag             string `json:"flag"`
	TypeLabel        string `json:"typeLabel"`
	TypeClass        string `json:"typeClass"`
	TypeIcon         string `json:"typeIcon"`
	Description      string `json:"description"`
}

func NewClanCard(c domain.Clan) ClanCard {
	locationName := "Unknown"
	if c.Location != nil && c.Location.Name != "" {
		locationName = c.Location.Name
	}
	description := c.Description
	if description == "" {
		description = "No description available"
	}
	name := c.Name
	if name == "" {
		name = "Unknown"
	}
	info := clanTypeInfo(c.Type)

	return ClanCard{
		Name:             name,
		Tag:              tag.Display(c.Tag),
		Members:          c.Members,
		Score:            c.Score,
		WarTrophies:      c.WarTrophies,
		RequiredTrophies: c.RequiredTrophies,
		LocationName:     locationName,
		Flag:             countryFlag(c.Location),
		TypeLabel:        info.label,
		TypeClass:        info.className,
		TypeIcon:         info.icon,
		Description:      description,
	}
}

func (c ClanCard) HTML() string {
	var sb strings.Builder
	sb.WriteString(`<div class="clan-card">`)
	fmt.Fprintf(&sb, `<h4 class="clan-name">%s</h4>`, html.EscapeString(c.Name))
	fmt.Fprintf(&sb, `<div class="clan-tag">%s</div>`, html.EscapeString(c.Tag))
	fmt.Fprintf(&sb, `<div class="clan-location">%s %s</div>`, c.Flag, html.EscapeString(c.LocationName))
	fmt.Fprintf(&sb, `<div class="clan-stat">%d/50 members</div>`, c.Members)
	fmt.Fprintf(&sb, `<div class="clan-stat">%s score</div>`, formatNumber(c.Score))
	fmt.Fprintf(&sb, `<div class="clan-stat">%d war</div>`, c.WarTrophies)
	fmt.Fprintf(&sb, `<div class="clan-stat">%d req. trophies</div>`, c.RequiredTrophies)
	fmt.Fprintf(&sb, `<div class="clan-type %s">%s %s</div>`, html.EscapeString(c.TypeClass), c.TypeIcon, html.EscapeString(c.TypeLabel))
	fmt.Fprintf(&sb, `<p class="clan-description">%s</p>`, html.EscapeString(c.Description))
	sb.WriteString(`</div>`)
	return sb.String()
}

// BattleCard is the view model for one analyzed battle-log entry.
type BattleCard struct {
	Outcome        string `json:"outcome"`
	PlayerCrowns   int    `json:"playerCrowns"`
	OpponentCrowns int    `json:"opponentCrowns"`
	CrownWin       bool   `json:"crownWin"`
	GameMode       string `json:"gameMode"`
	Arena          string `json:"arena"`
	OpponentName   string `json:"opponentName"`
	OpponentClan   string `json:"opponentClan"`
	TimeAgo        string `json:"timeAgo"`
}

func NewBattleCard(b domain.Battle, now time.Time) BattleCard {
	result := battle.Analyze(b)
	opponent := battle.Opponent(b)

	gameMode := b.GameMode
	if gameMode == "" {
		gameMode = "unknown mode"
	}

	return BattleCard{
		Outcome:        string(result.Outcome),
		PlayerCrowns:   result.PlayerCrowns,
		OpponentCrowns: result.OpponentCrowns,
		CrownWin:       result.CrownWin(),
		GameMode:       gameMode,
		Arena:          b.Arena,
		OpponentName:   opponent.Name,
		OpponentClan:   opponent.ClanName,
		TimeAgo:        battle.TimeAgo(b.BattleTime, now),
	}
}

func (c BattleCard) HTML() string {
	var sb strings.Builder
	sb.WriteString(`<div class="match-card">`)
	fmt.Fprintf(&sb, `<span class="result-badge %s">%s</span>`, strings.ToLower(c.Outcome), c.Outcome)
	fmt.Fprintf(&sb, `<span class="match-score">%d - %d</span>`, c.PlayerCrowns, c.OpponentCrowns)
	fmt.Fprintf(&sb, `<div class="match-time">%s</div>`, html.EscapeString(c.TimeAgo))
	fmt.Fprintf(&sb, `<div class="game-mode">%s</div>`, html.EscapeString(c.GameMode))
	fmt.Fprintf(&sb, `<div class="opponent-info"><strong>vs %s</strong>`, html.EscapeString(c.OpponentName))
	if c.OpponentClan != "" {
		fmt.Fprintf(&sb, `<span class="opponent-clan">[%s]</span>`, html.EscapeString(c.OpponentClan))
	}
	sb.WriteString(`</div>`)
	if c.Arena != "" {
		fmt.Fprintf(&sb, `<div class="arena-name">%s</div>`, html.EscapeString(c.Arena))
	}
	sb.WriteString(`</div>`)
	return sb.String()
}

// PlayerCard is the view model for the profile page header and stats.
type PlayerCard struct {
	Name              string `json:"name"`
	Tag               string `json:"tag"`
	ExpLevel          int    `json:"expLevel"`
	Trophies          string `json:"trophies"`
	BestTrophies      string `json:"bestTrophies"`
	ExpPoints         string `json:"expPoints"`
	Wins              string `json:"wins"`
	Losses            string `json:"losses"`
	ThreeCrownWins    string `json:"threeCrownWins"`
	Donations         string `json:"donations"`
	DonationsReceived string `json:"donationsReceived"`
	ClanName          string `json:"clanName"`
	ArenaName         string `json:"arenaName"`
}

func NewPlayerCard(p domain.Player) PlayerCard {
	name := p.Name
	if name == "" {
		name = "Unknown Player"
	}
	return PlayerCard{
		Name:              name,
		Tag:               tag.Display(p.Tag),
		ExpLevel:          p.ExpLevel,
		Trophies:          formatNumber(p.Trophies),
		BestTrophies:      formatNumber(p.BestTrophies),
		ExpPoints:         formatNumber(p.ExpPoints),
		Wins:              formatNumber(p.Wins),
		Losses:            formatNumber(p.Losses),
		ThreeCrownWins:    formatNumber(p.ThreeCrownWins),
		Donations:         formatNumber(p.Donations),
		DonationsReceived: formatNumber(p.DonationsReceived),
		ClanName:          p.ClanName,
		ArenaName:         p.ArenaName,
	}
}

func (c PlayerCard) HTML() string {
	var sb strings.Builder
	sb.WriteString(`<div class="player-card">`)
	fmt.Fprintf(&sb, `<h3 class="player-name">%s</h3>`, html.EscapeString(c.Name))
	fmt.Fprintf(&sb, `<div class="player-tag">%s</div>`, html.EscapeString(c.Tag))
	fmt.Fprintf(&sb, `<div class="player-level">Level %d</div>`, c.ExpLevel)
	fmt.Fprintf(&sb, `<div class="player-stat">%s trophies</div>`, c.Trophies)
	fmt.Fprintf(&sb, `<div class="player-stat">%s best</div>`, c.BestTrophies)
	if c.ClanName != "" {
		fmt.Fprintf(&sb, `<div class="player-clan">%s</div>`, html.EscapeString(c.ClanName))
	}
	if c.ArenaName != "" {
		fmt.Fprintf(&sb, `<div class="player-arena">%s</div>`, html.EscapeString(c.ArenaName))
	}
	sb.WriteString(`</div>`)
	return sb.String()
}

type typeInfo struct {
	className string
	icon      string
	label     string
}

func clanTypeInfo(t domain.ClanType) typeInfo {
	switch t {
	case domain.ClanTypeOpen:
		return typeInfo{className: "type-open", icon: "\U0001F513", label: "Open"}
	case domain.ClanTypeInviteOnly:
		return typeInfo{className: "type-invite", icon: "✉️", label: "Invite only"}
	case domain.ClanTypeClosed:
		return typeInfo{className: "type-closed", icon: "\U0001F512", label: "Closed"}
	default:
		label := string(t)
		if label == "" || label == string(domain.ClanTypeUnknown) {
			label = "Unknown"
		}
		return typeInfo{className: "type-unknown", icon: "❔", label: label}
	}
}

// countryFlag maps a two-letter country code to its regional-indicator
// emoji; anything else gets the globe.
func countryFlag(loc *domain.Location) string {
	if loc == nil || !loc.IsCountry || len(loc.CountryCode) < 2 {
		return "\U0001F310"
	}
	cc := strings.ToUpper(loc.CountryCode)
	var sb strings.Builder
	n := 0
	for _, r := range cc {
		if r < 'A' || r > 'Z' {
			continue
		}
		sb.WriteRune(rune(0x1F1E6 + (r - 'A')))
		n++
		if n == 2 {
			break
		}
	}
	if n < 2 {
		return "\U0001F310"
	}
	return sb.String()
}

// formatNumber renders n with thousands separators ("5,000").
func formatNumber(n int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	if neg {
		s = "-" + s
	}
	return s
}
