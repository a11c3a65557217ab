package domain

import (
	"time"
)

type Player struct {
	Tag               string
	Name              string
	ExpLevel          int
	Trophies          int
	BestTrophies      int
	ExpPoints         int
	Wins              int
	Losses            int
	ThreeCrownWins    int
	Donations         int
	DonationsReceived int
	ClanTag           string
	ClanName          string
	ArenaID           int
	ArenaName         string
	LastFetchAt       time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type ClanType string

const (
	ClanTypeOpen       ClanType = "open"
	ClanTypeInviteOnly ClanType = "inviteOnly"
	ClanTypeClosed     ClanType = "closed"
	ClanTypeUnknown    ClanType = "unknown"
)

type Location struct {
	Name        string
	CountryCode string
	IsCountry   bool
}

// Clan holds its tag in canonical form, without the leading '#'. The
// marker is added back only when a card is rendered.
type Clan struct {
	Tag              string
	Name             string
	Type             ClanType
	Members          int
	Score            int
	WarTrophies      int
	RequiredTrophies int
	Location         *Location
	Description      string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type TeamMember struct {
	Name     string
	ClanName string
	Crowns   int
}

// Battle is one completed match from a player's battle log. BattleTime
// keeps the upstream compact timestamp ("YYYYMMDDTHHMMSS.000Z") verbatim.
type Battle struct {
	BattleTime string
	GameMode   string
	Arena      string
	Team       []TeamMember
	Opponent   []TeamMember
}

type Preferences struct {
	ThemeInverted    bool
	FontScalePercent int
	SoundEnabled     bool
}
