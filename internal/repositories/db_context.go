package repositories

import (
	"fmt"
	"github.com/glebarez/sqlite"
	"github.com/maxaizer/jobs-collector/internal/entities"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DbContext struct {
	DB *gorm.DB
}

func NewDbContext(connectionString string) (*DbContext, error) {
	db, err := gorm.Open(sqlite.Open(connectionString), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, err
	}

	return &DbContext{DB: db}, nil
}

func (c *DbContext) Migrate() error {
	err := c.DB.AutoMigrate(entities.CompanyIdentity{})
	if err != nil {
		return fmt.Errorf("failed to migrate CompanyIdentity entity: %w", err)
	}

	err = c.DB.AutoMigrate(entities.CanonicalJobPosting{})
	if err != nil {
		return fmt.Errorf("failed to migrate CanonicalJobPosting entity: %w", err)
	}

	err = c.DB.AutoMigrate(entities.MatchReview{})
	if err != nil {
		return fmt.Errorf("failed to migrate MatchReview entity: %w", err)
	}

	err = c.DB.AutoMigrate(entities.RunRecord{})
	if err != nil {
		return fmt.Errorf("failed to migrate RunRecord entity: %w", err)
	}

	if err = c.DB.Exec("CREATE INDEX IF NOT EXISTS idx_postings_company_collected " +
		"ON canonical_job_postings (company_id, collected_at);").Error; err != nil {
		return fmt.Errorf("failed to create postings index: %w", err)
	}

	return nil
}

func (c *DbContext) Close() error {
	db, err := c.DB.DB()
	if err != nil {
		return err
	}

	return db.Close()
}
