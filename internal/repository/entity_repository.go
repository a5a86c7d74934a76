package repository

import (
	"context"
	"errors"
	"fmt"

	"backoffice-service/internal/schema"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicate     = errors.New("unique constraint violation")
	ErrInvalidEntity = errors.New("invalid entity")
)

// EntityRepositoryInterface is the persistence surface the importer works against
type EntityRepositoryInterface interface {
	FindByPK(ctx context.Context, s *schema.Schema, id int64) (any, error)
	Exists(ctx context.Context, s *schema.Schema, conds map[string]any) (bool, error)
	Create(ctx context.Context, entity any) error
}

// EntityRepository handles generic database operations on importable entities
type EntityRepository struct {
	db       *gorm.DB
	validate *validator.Validate
}

// NewEntityRepository creates a new EntityRepository
func NewEntityRepository(db *gorm.DB) *EntityRepository {
	return &EntityRepository{
		db:       db,
		validate: validator.New(),
	}
}

// FindByPK loads the row of kind s with the given primary key
func (r *EntityRepository) FindByPK(ctx context.Context, s *schema.Schema, id int64) (any, error) {
	row := s.New()
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return row, nil
}

// Exists reports whether a row of kind s matches every column = value condition
func (r *EntityRepository) Exists(ctx context.Context, s *schema.Schema, conds map[string]any) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(s.New()).
		Where(conds).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create validates and inserts an entity
func (r *EntityRepository) Create(ctx context.Context, entity any) error {
	if err := r.validate.Struct(entity); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEntity, err)
	}

	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return fmt.Errorf("%w: %v", ErrDuplicate, err)
		case errors.Is(err, gorm.ErrForeignKeyViolated):
			return fmt.Errorf("foreign key violation: %w", err)
		}
		return err
	}
	return nil
}
