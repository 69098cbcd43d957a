package repositories

import (
	"context"
	"fmt"
	"github.com/maxaizer/jobs-collector/internal/entities"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"time"
)

type companiesCache interface {
	All(ctx context.Context) ([]entities.CompanyIdentity, error)
	Invalidate()
}

// Store is the storage sink of the collector: it reads what the pipeline needs
// to resolve companies and merge postings, and writes one run atomically.
type Store struct {
	db        *gorm.DB
	companies companiesCache
	postings  *Postings
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:        db,
		companies: NewCachedCompanies(NewCompaniesRepository(db)),
		postings:  NewPostingsRepository(db),
	}
}

func (s *Store) LoadCompanies(ctx context.Context) ([]entities.CompanyIdentity, error) {
	return s.companies.All(ctx)
}

func (s *Store) FindPostings(ctx context.Context, companyIDs []string,
	since time.Time) ([]entities.CanonicalJobPosting, error) {
	return s.postings.FindByCompanies(ctx, companyIDs, since)
}

// Commit upserts companies and then postings in one transaction. Nothing is
// written when any upsert fails or ctx is done.
func (s *Store) Commit(ctx context.Context, companies []entities.CompanyIdentity,
	postings []entities.CanonicalJobPosting) error {

	defer s.companies.Invalidate()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range companies {
			if err := UpsertCompany(tx, &companies[i]); err != nil {
				return fmt.Errorf("failed to upsert company %s: %w", companies[i].ID, err)
			}
		}
		for i := range postings {
			if err := UpsertPosting(tx, &postings[i]); err != nil {
				return fmt.Errorf("failed to upsert posting %s: %w", postings[i].ID, err)
			}
		}
		return nil
	})
}

func UpsertCompany(db *gorm.DB, company *entities.CompanyIdentity) error {
	return db.Clauses(clause.OnConflict{UpdateAll: true}).Create(company).Error
}

func UpsertPosting(db *gorm.DB, posting *entities.CanonicalJobPosting) error {
	return db.Clauses(clause.OnConflict{UpdateAll: true}).Create(posting).Error
}
