// Package loyalty tracks Club Matita point balances stored on member profiles.
package loyalty

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/matita-boutique/internal/pricing"
)

// Level is the membership tier derived from a point balance.
type Level string

const (
	LevelBronze Level = "Bronce"
	LevelSilver Level = "Plata"
	LevelGold   Level = "Oro"
)

const (
	// SilverThreshold is the balance at which a member becomes Plata.
	SilverThreshold int64 = 2000
	// GoldThreshold is the balance at which a member becomes Oro and the progress bar fills.
	GoldThreshold int64 = 5000
	// DefaultMemberName is shown when a profile has no name.
	DefaultMemberName = "Socio"
)

// LevelFor returns the tier for a balance.
func LevelFor(points int64) Level {
	switch {
	case points >= GoldThreshold:
		return LevelGold
	case points >= SilverThreshold:
		return LevelSilver
	default:
		return LevelBronze
	}
}

// Progress returns the percentage of the way to Oro, capped at 100.
func Progress(points int64) int {
	if points <= 0 {
		return 0
	}
	if points >= GoldThreshold {
		return 100
	}
	return int(points * 100 / GoldThreshold)
}

// Member is a profile row as seen by the club.
type Member struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Points int64  `json:"points"`
}

// DisplayName returns the member name or the generic fallback.
func (m Member) DisplayName() string {
	if m.Name == "" {
		return DefaultMemberName
	}
	return m.Name
}

// Status is the club card shown to a member.
type Status struct {
	Member
	Level       Level           `json:"level"`
	Progress    int             `json:"progress"`
	PointsValue decimal.Decimal `json:"pointsValue"`
}

// StatusFor builds the club card for a member.
func StatusFor(m Member) Status {
	m.Name = m.DisplayName()
	return Status{
		Member:      m,
		Level:       LevelFor(m.Points),
		Progress:    Progress(m.Points),
		PointsValue: decimal.NewFromInt(m.Points).Mul(pricing.PointValue),
	}
}
