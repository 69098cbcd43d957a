package repositories

import (
	"context"
	"github.com/maxaizer/jobs-collector/internal/entities"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Runs struct {
	db *gorm.DB
}

func NewRunsRepository(db *gorm.DB) *Runs {
	return &Runs{db: db}
}

func (repo *Runs) Save(ctx context.Context, report entities.RunReport) error {
	record := entities.NewRunRecord(report)
	return repo.db.WithContext(ctx).Create(&record).Error
}

func (repo *Runs) Last(ctx context.Context) (*entities.RunReport, error) {
	record := &entities.RunRecord{}
	err := repo.db.WithContext(ctx).Order("started_at DESC, id DESC").First(record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record.Report, nil
}
