package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"vendaflow/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// FindByPhoneVariants resolves a user whose phone matches any of the
	// normalized Brazilian variants of an inbound WhatsApp number.
	FindByPhoneVariants(ctx context.Context, variants []string) (*model.User, error)
	List(ctx context.Context, orgID uuid.UUID, includeInactive bool) ([]model.User, error)
	Update(ctx context.Context, u *model.User) error
	SoftDelete(ctx context.Context, orgID, id uuid.UUID) error
	Reactivate(ctx context.Context, orgID, id uuid.UUID) error
}

type userRepo struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepo{db: db} }

func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *userRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	return &u, err
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	return &u, err
}

func (r *userRepo) FindByPhoneVariants(ctx context.Context, variants []string) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).
		Where("phone IN ? AND active", variants).
		First(&u).Error
	return &u, err
}

func (r *userRepo) List(ctx context.Context, orgID uuid.UUID, includeInactive bool) ([]model.User, error) {
	var users []model.User
	q := r.db.WithContext(ctx).Where("organization_id = ?", orgID)
	if !includeInactive {
		q = q.Where("active")
	}
	err := q.Order("name").Find(&users).Error
	return users, err
}

func (r *userRepo) Update(ctx context.Context, u *model.User) error {
	return r.db.WithContext(ctx).Save(u).Error
}

func (r *userRepo) SoftDelete(ctx context.Context, orgID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND organization_id = ?", id, orgID).
		Update("active", false).Error
}

func (r *userRepo) Reactivate(ctx context.Context, orgID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND organization_id = ?", id, orgID).
		Update("active", true).Error
}
