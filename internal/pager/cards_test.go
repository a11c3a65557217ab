package pager

import (
	"strings"
	"testing"
	"time"

	"clash-hub/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestNewClanCardDefaults(t *testing.T) {
	card := NewClanCard(domain.Clan{Tag: "ABC123"})

	assert.Equal(t, "Unknown", card.Name)
	assert.Equal(t, "#ABC123", card.Tag)
	assert.Equal(t, "Unknown", card.LocationName)
	assert.Equal(t, "No description available", card.Description)
	assert.Equal(t, "Unknown", card.TypeLabel)
	assert.Equal(t, "\U0001F310", card.Flag)
}

func TestNewClanCardTypes(t *testing.T) {
	open := NewClanCard(domain.Clan{Tag: "A1B", Type: domain.ClanTypeOpen})
	assert.Equal(t, "Open", open.TypeLabel)
	assert.Equal(t, "type-open", open.TypeClass)

	invite := NewClanCard(domain.Clan{Tag: "A1B", Type: domain.ClanTypeInviteOnly})
	assert.Equal(t, "Invite only", invite.TypeLabel)

	closed := NewClanCard(domain.Clan{Tag: "A1B", Type: domain.ClanTypeClosed})
	assert.Equal(t, "Closed", closed.TypeLabel)
}

func TestNewClanCardCountryFlag(t *testing.T) {
	card := NewClanCard(domain.Clan{
		Tag:      "A1B",
		Location: &domain.Location{Name: "Sweden", CountryCode: "SE", IsCountry: true},
	})
	assert.Equal(t, "\U0001F1F8\U0001F1EA", card.Flag)
	assert.Equal(t, "Sweden", card.LocationName)

	// International "locations" are not countries and get the globe.
	intl := NewClanCard(domain.Clan{
		Tag:      "A1B",
		Location: &domain.Location{Name: "International", IsCountry: false},
	})
	assert.Equal(t, "\U0001F310", intl.Flag)
}

func TestClanCardHTMLEscapes(t *testing.T) {
	card := NewClanCard(domain.Clan{
		Tag:         "A1B",
		Name:        `<script>alert("x")</script>`,
		Description: `it's a "clan" & <b>more</b>`,
	})
	html := card.HTML()

	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.NotContains(t, html, "<b>more</b>")
	assert.Contains(t, html, "&amp;")
	assert.Contains(t, html, "&#34;clan&#34;")
}

func TestNewBattleCard(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	card := NewBattleCard(domain.Battle{
		BattleTime: "20240615T090000.000Z",
		GameMode:   "Ladder",
		Arena:      "Legendary Arena",
		Team:       []domain.TeamMember{{Name: "Me", Crowns: 3}},
		Opponent:   []domain.TeamMember{{Name: "Ash", ClanName: "The Crushers", Crowns: 0}},
	}, now)

	assert.Equal(t, "WON", card.Outcome)
	assert.True(t, card.CrownWin)
	assert.Equal(t, 3, card.PlayerCrowns)
	assert.Equal(t, 0, card.OpponentCrowns)
	assert.Equal(t, "Ash", card.OpponentName)
	assert.Equal(t, "The Crushers", card.OpponentClan)
	assert.Equal(t, "3h ago", card.TimeAgo)
	assert.Equal(t, "Ladder", card.GameMode)
}

func TestBattleCardHTMLEscapesOpponent(t *testing.T) {
	now := time.Now()
	card := NewBattleCard(domain.Battle{
		BattleTime: "garbage",
		Opponent:   []domain.TeamMember{{Name: "<img src=x>", Crowns: 1}},
	}, now)

	html := card.HTML()
	assert.NotContains(t, html, "<img")
	assert.Contains(t, html, "&lt;img src=x&gt;")
	assert.Contains(t, html, "recently")
}

func TestNewPlayerCardFormatsNumbers(t *testing.T) {
	card := NewPlayerCard(domain.Player{
		Tag:      "9Q2YJ0U",
		Name:     "Ash",
		Trophies: 5000,
		Wins:     1234567,
	})

	assert.Equal(t, "#9Q2YJ0U", card.Tag)
	assert.Equal(t, "5,000", card.Trophies)
	assert.Equal(t, "1,234,567", card.Wins)
	assert.Equal(t, "0", card.Losses)
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "0", formatNumber(0))
	assert.Equal(t, "999", formatNumber(999))
	assert.Equal(t, "1,000", formatNumber(1000))
	assert.Equal(t, "-12,345", formatNumber(-12345))
}

func TestPlayerCardHTML(t *testing.T) {
	card := NewPlayerCard(domain.Player{Tag: "9Q2YJ0U", Name: "A & B"})
	html := card.HTML()
	assert.True(t, strings.Contains(html, "A &amp; B"))
}
