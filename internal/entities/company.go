package entities

import (
	"strings"
	"time"
)

// CompanyIdentity is merge-only: aliases and domains accumulate, identities are never split.
type CompanyIdentity struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name"`
	EnglishName string    `json:"englishName"`
	Aliases     []string  `json:"aliases" gorm:"serializer:json"`
	Domains     []string  `json:"domains" gorm:"serializer:json"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// AddAlias appends alias unless an equal (case-insensitive) alias is known.
func (c *CompanyIdentity) AddAlias(alias string) bool {
	alias = strings.TrimSpace(alias)
	if alias == "" {
		return false
	}
	for _, known := range c.Aliases {
		if strings.EqualFold(known, alias) {
			return false
		}
	}
	c.Aliases = append(c.Aliases, alias)
	return true
}

func (c *CompanyIdentity) AddDomain(domain string) bool {
	if domain == "" {
		return false
	}
	for _, known := range c.Domains {
		if known == domain {
			return false
		}
	}
	c.Domains = append(c.Domains, domain)
	return true
}

// MatchReview is an ambiguous company match kept for manual review.
type MatchReview struct {
	ID           int
	ObservedName string
	Source       string
	CompanyID    string
	CompanyName  string
	Score        float64
	Merged       bool
	CreatedAt    time.Time
}
