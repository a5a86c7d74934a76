package repository

import (
	"context"
	"errors"

	"backoffice-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ImportRunRepositoryInterface stores importer run history
type ImportRunRepositoryInterface interface {
	Create(ctx context.Context, run *models.ImportRun) error
	Update(ctx context.Context, run *models.ImportRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ImportRun, error)
	List(ctx context.Context, limit int) ([]models.ImportRun, error)
}

// ImportRunRepository handles database operations for import runs
type ImportRunRepository struct {
	db *gorm.DB
}

// NewImportRunRepository creates a new ImportRunRepository
func NewImportRunRepository(db *gorm.DB) *ImportRunRepository {
	return &ImportRunRepository{db: db}
}

func (r *ImportRunRepository) Create(ctx context.Context, run *models.ImportRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *ImportRunRepository) Update(ctx context.Context, run *models.ImportRun) error {
	return r.db.WithContext(ctx).Save(run).Error
}

func (r *ImportRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ImportRun, error) {
	var run models.ImportRun
	if err := r.db.WithContext(ctx).First(&run, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &run, nil
}

// List returns the most recent runs first
func (r *ImportRunRepository) List(ctx context.Context, limit int) ([]models.ImportRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var runs []models.ImportRun
	err := r.db.WithContext(ctx).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "started_at"}, Desc: true}).
		Limit(limit).
		Find(&runs).Error
	return runs, err
}
