package entities

import (
	"sort"
	"strings"
	"time"
)

// RawPosting is a source-shaped posting as returned by an adapter.
type RawPosting struct {
	Source        string
	SourceKind    string
	SourceID      string
	URL           string
	Title         string
	Company       string
	CompanyDomain string
	Location      string
	Salary        string
	Experience    string
	Skills        []string
	Description   string
	Remote        string
	Deadline      string
	PostedAt      string
	CategoryHint  string
	FetchedAt     time.Time
}

type ExperienceLevel string

const (
	LevelEntry  ExperienceLevel = "entry"
	LevelJunior ExperienceLevel = "junior"
	LevelMid    ExperienceLevel = "mid"
	LevelSenior ExperienceLevel = "senior"
	LevelAny    ExperienceLevel = "any"
)

const (
	CurrencyKRW = "KRW"
	CurrencyUSD = "USD"
	CurrencyEUR = "EUR"
)

const (
	PeriodAnnual  = "annual"
	PeriodMonthly = "monthly"
)

// ParsedSalary holds annual amounts in whole units of Currency.
type ParsedSalary struct {
	Min      *int64 `json:"min"`
	Max      *int64 `json:"max"`
	Currency string `json:"currency"`
	Period   string `json:"period"`
	Text     string `json:"text"`
}

type ParsedExperience struct {
	Level    ExperienceLevel `json:"level"`
	MinYears *int            `json:"minYears"`
	MaxYears *int            `json:"maxYears"`
	Text     string          `json:"text"`
}

// IsUnknown reports whether the experience carries no usable signal.
func (e ParsedExperience) IsUnknown() bool {
	return e.Level == "" || (e.Level == LevelAny && e.MinYears == nil && e.MaxYears == nil)
}

type ParsedFields struct {
	Salary     *ParsedSalary
	Experience ParsedExperience
	Skills     SkillSet
	IsRemote   bool
	Location   string
	RegionKey  string
	Deadline   *time.Time
	PostedAt   *time.Time
}

// SkillSet is a sorted list of unique canonical skill names.
type SkillSet []string

func NewSkillSet(skills ...string) SkillSet {
	seen := make(map[string]struct{}, len(skills))
	set := make(SkillSet, 0, len(skills))
	for _, skill := range skills {
		skill = strings.TrimSpace(skill)
		if skill == "" {
			continue
		}
		if _, ok := seen[skill]; ok {
			continue
		}
		seen[skill] = struct{}{}
		set = append(set, skill)
	}
	sort.Strings(set)
	return set
}

func (s SkillSet) Union(other SkillSet) SkillSet {
	return NewSkillSet(append(append([]string{}, s...), other...)...)
}

func (s SkillSet) Contains(skill string) bool {
	i := sort.SearchStrings(s, skill)
	return i < len(s) && s[i] == skill
}

type SourceRef struct {
	Source string `json:"source"`
	URL    string `json:"url"`
}

// CanonicalJobPosting is the de-duplicated posting handed to the storage sink.
type CanonicalJobPosting struct {
	ID          string           `json:"id" gorm:"primaryKey"`
	Title       string           `json:"title"`
	CompanyID   string           `json:"companyId" gorm:"index"`
	Category    Category         `json:"category" gorm:"index"`
	Skills      SkillSet         `json:"skills" gorm:"serializer:json"`
	Location    string           `json:"location"`
	IsRemote    bool             `json:"isRemote"`
	Salary      *ParsedSalary    `json:"salary,omitempty" gorm:"serializer:json"`
	Experience  ParsedExperience `json:"experience" gorm:"serializer:json"`
	Deadline    *time.Time       `json:"deadline,omitempty"`
	PostedAt    *time.Time       `json:"postedAt,omitempty"`
	CollectedAt time.Time        `json:"collectedAt" gorm:"index"`
	FirstSeenAt time.Time        `json:"firstSeenAt"`
	Source      string           `json:"source"`
	SourceURL   string           `json:"sourceUrl"`
	AlsoSeenIn  []SourceRef      `json:"alsoSeenIn" gorm:"serializer:json"`
	RegionKey   string           `json:"-"`
	UpdatedAt   time.Time        `json:"-"`
}
