package companies

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"
	"github.com/maxaizer/jobs-collector/internal/entities"
	"github.com/pkg/errors"
)

const (
	MatchThreshold  = 0.88
	AmbiguityMargin = 0.05
	// names shorter than this must match exactly after normalization
	minFuzzyRunes = 4
)

var ErrEmptyCompany = errors.New("company name and domain are empty")

var companyNamespace = uuid.MustParse("6f1c9a62-3d0e-5b8a-9f4c-2a7d51e0c3b4")

// CompanyID derives the identity id of a newly seen company from its normalized name.
func CompanyID(name string) string {
	key := NormalizeName(name)
	if key == "" {
		key = aliasKey(name)
	}
	return uuid.NewSHA1(companyNamespace, []byte(key)).String()
}

type Resolution struct {
	Company    entities.CompanyIdentity
	Created    bool
	AliasAdded bool
	// Ambiguous is set when the best fuzzy score was near the threshold.
	Ambiguous bool
	Candidate *entities.CompanyIdentity
	Score     float64
}

type Matcher struct {
	registry  *Registry
	threshold float64
	margin    float64
	dirty     map[string]struct{}
}

func NewMatcher(registry *Registry) *Matcher {
	return &Matcher{
		registry:  registry,
		threshold: MatchThreshold,
		margin:    AmbiguityMargin,
		dirty:     make(map[string]struct{}),
	}
}

// Resolve maps an observed company name and optional domain onto one identity:
// exact alias, then domain, then fuzzy name match, otherwise a new identity.
func (m *Matcher) Resolve(name, domain string) (Resolution, error) {
	name = strings.TrimSpace(name)
	domain = NormalizeDomain(domain)
	if name == "" && domain == "" {
		return Resolution{}, ErrEmptyCompany
	}

	if name != "" {
		if identity, ok := m.registry.byAlias(name); ok {
			aliasAdded := m.attachDomain(identity, domain)
			return m.resolved(identity, false, aliasAdded), nil
		}
	}

	if domain != "" {
		if identity, ok := m.registry.byDomain(domain); ok {
			aliasAdded := m.attachAlias(identity, name)
			return m.resolved(identity, false, aliasAdded), nil
		}
	}

	if name == "" {
		name = domain
	}

	candidate, score := m.bestCandidate(name)
	ambiguous := candidate != nil && score >= m.threshold-m.margin && score < m.threshold+m.margin

	if candidate != nil && score >= m.threshold {
		aliasAdded := m.attachAlias(candidate, name)
		aliasAdded = m.attachDomain(candidate, domain) || aliasAdded

		resolution := m.resolved(candidate, false, aliasAdded)
		resolution.Ambiguous = ambiguous
		resolution.Score = score
		return resolution, nil
	}

	identity, created := m.create(name, domain)
	resolution := m.resolved(identity, created, false)
	if ambiguous {
		nearest := *candidate
		resolution.Ambiguous = true
		resolution.Candidate = &nearest
		resolution.Score = score
	}
	return resolution, nil
}

// Dirty returns the identities that were created, extended or are not yet in
// storage, ordered by id.
func (m *Matcher) Dirty() []entities.CompanyIdentity {
	var result []entities.CompanyIdentity
	for _, identity := range m.registry.All() {
		if _, ok := m.dirty[identity.ID]; ok {
			result = append(result, identity)
		}
	}
	return result
}

func (m *Matcher) resolved(identity *entities.CompanyIdentity, created, aliasAdded bool) Resolution {
	if created || aliasAdded || !m.registry.isPersisted(identity.ID) {
		m.dirty[identity.ID] = struct{}{}
	}

	return Resolution{Company: *identity, Created: created, AliasAdded: aliasAdded}
}

func (m *Matcher) bestCandidate(name string) (*entities.CompanyIdentity, float64) {
	observed := NormalizeName(name)
	if observed == "" {
		return nil, 0
	}

	var best *entities.CompanyIdentity
	bestScore := 0.0
	for _, id := range m.registry.ids {
		identity := m.registry.identities[id]
		names := append([]string{identity.Name, identity.EnglishName}, identity.Aliases...)
		for _, known := range names {
			score := similarity(observed, NormalizeName(known))
			if score > bestScore {
				best, bestScore = identity, score
			}
		}
	}
	return best, bestScore
}

func (m *Matcher) create(name, domain string) (*entities.CompanyIdentity, bool) {
	id := CompanyID(name)
	if existing, ok := m.registry.identities[id]; ok {
		return existing, false
	}

	identity := entities.CompanyIdentity{ID: id, Name: name}
	identity.AddAlias(name)
	identity.AddDomain(domain)
	m.registry.put(identity, false)
	return m.registry.identities[id], true
}

func (m *Matcher) attachAlias(identity *entities.CompanyIdentity, name string) bool {
	if name == "" || !identity.AddAlias(name) {
		return false
	}
	m.registry.index(identity)
	return true
}

func (m *Matcher) attachDomain(identity *entities.CompanyIdentity, domain string) bool {
	if domain == "" {
		return false
	}
	if _, taken := m.registry.domains[domain]; taken {
		return false
	}
	if !identity.AddDomain(domain) {
		return false
	}
	m.registry.index(identity)
	return true
}

// similarity is the Levenshtein ratio of two normalized names. Short names
// only count when equal, so "카카오" never absorbs "카카오뱅크".
func similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	lenA, lenB := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	if lenA < minFuzzyRunes || lenB < minFuzzyRunes {
		return 0
	}

	longest := lenA
	if lenB > longest {
		longest = lenB
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}
