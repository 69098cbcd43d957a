package repositories

import (
	"context"
	"errors"
	"github.com/maxaizer/jobs-collector/internal/entities"
	"gorm.io/gorm"
	"time"
)

// sqlite caps bound parameters per statement.
const companyIDsChunk = 500

type Postings struct {
	db *gorm.DB
}

func NewPostingsRepository(db *gorm.DB) *Postings {
	return &Postings{db: db}
}

func (repo *Postings) Get(ctx context.Context, id string) (*entities.CanonicalJobPosting, error) {
	var posting entities.CanonicalJobPosting
	if err := repo.db.WithContext(ctx).First(&posting, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &posting, nil
}

// FindByCompanies returns postings of the given companies collected at or after since.
func (repo *Postings) FindByCompanies(ctx context.Context, companyIDs []string,
	since time.Time) ([]entities.CanonicalJobPosting, error) {

	var result []entities.CanonicalJobPosting
	for start := 0; start < len(companyIDs); start += companyIDsChunk {
		end := min(start+companyIDsChunk, len(companyIDs))

		var chunk []entities.CanonicalJobPosting
		err := repo.db.WithContext(ctx).
			Where("company_id IN ? AND collected_at >= ?", companyIDs[start:end], since.UTC()).
			Order("id").
			Find(&chunk).Error
		if err != nil {
			return nil, err
		}
		result = append(result, chunk...)
	}
	return result, nil
}

func (repo *Postings) Count(ctx context.Context) (int64, error) {
	var count int64
	err := repo.db.WithContext(ctx).Model(&entities.CanonicalJobPosting{}).Count(&count).Error
	return count, err
}
