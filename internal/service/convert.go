package service

import (
	"strings"

	"clash-hub/internal/api"
	"clash-hub/internal/domain"
)

func stripMarker(tag string) string {
	return strings.TrimPrefix(tag, "#")
}

func toDomainPlayer(p *api.PlayerResponse) *domain.Player {
	player := &domain.Player{
		Tag:               stripMarker(p.Tag),
		Name:              p.Name,
		ExpLevel:          p.ExpLevel,
		Trophies:          p.Trophies,
		BestTrophies:      p.BestTrophies,
		ExpPoints:         p.ExpPoints,
		Wins:              p.Wins,
		Losses:            p.Losses,
		ThreeCrownWins:    p.ThreeCrownWins,
		Donations:         p.Donations,
		DonationsReceived: p.DonationsReceived,
	}
	if p.Clan != nil {
		player.ClanTag = stripMarker(p.Clan.Tag)
		player.ClanName = p.Clan.Name
	}
	if p.Arena != nil {
		player.ArenaID = p.Arena.ID
		player.ArenaName = p.Arena.Name
	}
	return player
}

func toDomainClan(c api.ClanData) domain.Clan {
	score := c.ClanScore
	if score == 0 {
		score = c.Trophies
	}

	clanType := domain.ClanType(c.Type)
	switch clanType {
	case domain.ClanTypeOpen, domain.ClanTypeInviteOnly, domain.ClanTypeClosed:
	default:
		clanType = domain.ClanTypeUnknown
	}

	clan := domain.Clan{
		Tag:              stripMarker(c.Tag),
		Name:             c.Name,
		Type:             clanType,
		Members:          c.Members,
		Score:            score,
		WarTrophies:      c.ClanWarTrophies,
		RequiredTrophies: c.RequiredTrophies,
		Description:      c.Description,
	}
	if c.Location != nil {
		clan.Location = &domain.Location{
			Name:        c.Location.Name,
			CountryCode: c.Location.CountryCode,
			IsCountry:   c.Location.IsCountry,
		}
	}
	return clan
}

func toDomainClans(items []api.ClanData) []domain.Clan {
	clans := make([]domain.Clan, len(items))
	for i, item := range items {
		clans[i] = toDomainClan(item)
	}
	return clans
}

func toDomainBattles(log *api.BattleLogResponse) []domain.Battle {
	if log == nil {
		return nil
	}
	battles := make([]domain.Battle, len(*log))
	for i, b := range *log {
		battles[i] = domain.Battle{
			BattleTime: b.BattleTime,
			GameMode:   b.GameMode.Name,
			Arena:      b.Arena.Name,
			Team:       toDomainRoster(b.Team),
			Opponent:   toDomainRoster(b.Opponent),
		}
	}
	return battles
}

func toDomainRoster(members []api.BattleParticipant) []domain.TeamMember {
	roster := make([]domain.TeamMember, len(members))
	for i, m := range members {
		roster[i] = domain.TeamMember{Name: m.Name, Crowns: m.Crowns}
		if m.Clan != nil {
			roster[i].ClanName = m.Clan.Name
		}
	}
	return roster
}
