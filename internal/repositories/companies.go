package repositories

import (
	"context"
	"github.com/maxaizer/jobs-collector/internal/entities"
	"gorm.io/gorm"
)

type Companies struct {
	db *gorm.DB
}

func NewCompaniesRepository(db *gorm.DB) *Companies {
	return &Companies{db: db}
}

func (repo *Companies) All(ctx context.Context) ([]entities.CompanyIdentity, error) {
	var companies []entities.CompanyIdentity
	err := repo.db.WithContext(ctx).Order("id").Find(&companies).Error
	return companies, err
}

func (repo *Companies) Count(ctx context.Context) (int64, error) {
	var count int64
	err := repo.db.WithContext(ctx).Model(&entities.CompanyIdentity{}).Count(&count).Error
	return count, err
}
