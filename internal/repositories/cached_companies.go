package repositories

import (
	"context"
	"github.com/maxaizer/jobs-collector/internal/entities"
	gocache "github.com/patrickmn/go-cache"
	"time"
)

const allCompaniesKey = "all"

type companyRepository interface {
	All(ctx context.Context) ([]entities.CompanyIdentity, error)
}

// CachedCompanies keeps the full identity list between runs. The list must be
// invalidated whenever identities are written.
type CachedCompanies struct {
	repo  companyRepository
	cache *gocache.Cache
}

func NewCachedCompanies(repo companyRepository) *CachedCompanies {
	return &CachedCompanies{repo: repo, cache: gocache.New(10*time.Minute, 20*time.Minute)}
}

func (c CachedCompanies) All(ctx context.Context) ([]entities.CompanyIdentity, error) {
	if value, found := c.cache.Get(allCompaniesKey); found {
		return copyCompanies(value.([]entities.CompanyIdentity)), nil
	}

	companies, err := c.repo.All(ctx)
	if err != nil {
		return nil, err
	}

	c.cache.Set(allCompaniesKey, copyCompanies(companies), gocache.DefaultExpiration)
	return companies, nil
}

func (c CachedCompanies) Invalidate() {
	c.cache.Delete(allCompaniesKey)
}

func copyCompanies(companies []entities.CompanyIdentity) []entities.CompanyIdentity {
	copied := make([]entities.CompanyIdentity, len(companies))
	for i, company := range companies {
		company.Aliases = append([]string(nil), company.Aliases...)
		company.Domains = append([]string(nil), company.Domains...)
		copied[i] = company
	}
	return copied
}
