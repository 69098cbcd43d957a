package companies

import (
	"sort"

	"github.com/maxaizer/jobs-collector/internal/entities"
)

// Registry is an append-only set of company identities keyed by id. The alias
// and domain indexes are derived from each identity's lists and only grow.
// It is not safe for concurrent use; the collector holds it under its run lock.
type Registry struct {
	identities map[string]*entities.CompanyIdentity
	persisted  map[string]bool
	ids        []string
	aliases    map[string]string
	domains    map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		identities: make(map[string]*entities.CompanyIdentity),
		persisted:  make(map[string]bool),
		aliases:    make(map[string]string),
		domains:    make(map[string]string),
	}
}

// Load adds identities read back from storage.
func (r *Registry) Load(identities ...entities.CompanyIdentity) {
	for _, identity := range identities {
		r.put(identity, true)
	}
}

// Seed adds built-in identities unless storage already knows them.
func (r *Registry) Seed(identities ...entities.CompanyIdentity) {
	for _, identity := range identities {
		if _, ok := r.identities[identity.ID]; ok {
			continue
		}
		r.put(identity, false)
	}
}

func (r *Registry) Len() int {
	return len(r.identities)
}

// All returns the identities ordered by id.
func (r *Registry) All() []entities.CompanyIdentity {
	result := make([]entities.CompanyIdentity, 0, len(r.ids))
	for _, id := range r.ids {
		result = append(result, *r.identities[id])
	}
	return result
}

func (r *Registry) byAlias(name string) (*entities.CompanyIdentity, bool) {
	id, ok := r.aliases[aliasKey(name)]
	if !ok {
		return nil, false
	}
	return r.identities[id], true
}

func (r *Registry) byDomain(domain string) (*entities.CompanyIdentity, bool) {
	id, ok := r.domains[NormalizeDomain(domain)]
	if !ok {
		return nil, false
	}
	return r.identities[id], true
}

func (r *Registry) isPersisted(id string) bool {
	return r.persisted[id]
}

func (r *Registry) put(identity entities.CompanyIdentity, persisted bool) {
	stored := identity
	stored.Aliases = append([]string{}, identity.Aliases...)
	stored.Domains = append([]string{}, identity.Domains...)

	if _, ok := r.identities[stored.ID]; !ok {
		r.ids = append(r.ids, stored.ID)
		sort.Strings(r.ids)
	}
	r.identities[stored.ID] = &stored
	r.persisted[stored.ID] = persisted
	r.index(&stored)
}

func (r *Registry) index(identity *entities.CompanyIdentity) {
	names := append([]string{identity.Name, identity.EnglishName}, identity.Aliases...)
	for _, name := range names {
		key := aliasKey(name)
		if key == "" {
			continue
		}
		if _, taken := r.aliases[key]; !taken {
			r.aliases[key] = identity.ID
		}
	}

	for _, domain := range identity.Domains {
		key := NormalizeDomain(domain)
		if key == "" {
			continue
		}
		if _, taken := r.domains[key]; !taken {
			r.domains[key] = identity.ID
		}
	}
}
