package repositories

import (
	"context"
	"github.com/maxaizer/jobs-collector/internal/entities"
	"gorm.io/gorm"
	"time"
)

type MatchReviews struct {
	db *gorm.DB
}

func NewMatchReviewsRepository(db *gorm.DB) *MatchReviews {
	return &MatchReviews{db: db}
}

func (repo *MatchReviews) Add(ctx context.Context, review entities.MatchReview) error {
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now()
	}
	return repo.db.WithContext(ctx).Create(&review).Error
}

// Latest returns up to limit reviews, newest first.
func (repo *MatchReviews) Latest(ctx context.Context, limit int) ([]entities.MatchReview, error) {
	var reviews []entities.MatchReview
	err := repo.db.WithContext(ctx).Order("created_at DESC, id DESC").Limit(limit).Find(&reviews).Error
	return reviews, err
}

func (repo *MatchReviews) RemoveOlderThan(ctx context.Context, expirationTime time.Time) (int64, error) {
	res := repo.db.WithContext(ctx).Delete(&entities.MatchReview{}, "created_at < ?", expirationTime)
	return res.RowsAffected, res.Error
}
