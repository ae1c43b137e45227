package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"vendaflow/internal/model"
)

type OrganizationRepository interface {
	Create(ctx context.Context, o *model.Organization) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Organization, error)
	FindBySlug(ctx context.Context, slug string) (*model.Organization, error)
	List(ctx context.Context, includeInactive bool) ([]model.Organization, error)
	Update(ctx context.Context, o *model.Organization) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

type organizationRepo struct{ db *gorm.DB }

func NewOrganizationRepository(db *gorm.DB) OrganizationRepository {
	return &organizationRepo{db: db}
}

func (r *organizationRepo) Create(ctx context.Context, o *model.Organization) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *organizationRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Organization, error) {
	var o model.Organization
	err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error
	return &o, err
}

func (r *organizationRepo) FindBySlug(ctx context.Context, slug string) (*model.Organization, error) {
	var o model.Organization
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&o).Error
	return &o, err
}

func (r *organizationRepo) List(ctx context.Context, includeInactive bool) ([]model.Organization, error) {
	var orgs []model.Organization
	q := r.db.WithContext(ctx)
	if !includeInactive {
		q = q.Where("active")
	}
	err := q.Order("name").Find(&orgs).Error
	return orgs, err
}

func (r *organizationRepo) Update(ctx context.Context, o *model.Organization) error {
	return r.db.WithContext(ctx).Save(o).Error
}

func (r *organizationRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.db.WithContext(ctx).Model(&model.Organization{}).
		Where("id = ?", id).Update("active", active).Error
}
