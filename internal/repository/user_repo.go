package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"hostelms/internal/domain"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

type userModel struct {
	ID           int64     `gorm:"column:id;primaryKey"`
	Email        string    `gorm:"column:email;uniqueIndex;size:255"`
	FullName     string    `gorm:"column:full_name;size:255"`
	PasswordHash string    `gorm:"column:password_hash"`
	Phone        *string   `gorm:"column:phone;size:32"`
	Role         string    `gorm:"column:role;index;size:64"`
	Hostel       *string   `gorm:"column:hostel;size:64"`
	IsActive     bool      `gorm:"column:is_active"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (userModel) TableName() string { return "users" }

func toDomainUser(m userModel) *domain.User {
	var phone, hostel string
	if m.Phone != nil {
		phone = *m.Phone
	}
	if m.Hostel != nil {
		hostel = *m.Hostel
	}

	return &domain.User{
		ID:           m.ID,
		Email:        m.Email,
		FullName:     m.FullName,
		PasswordHash: m.PasswordHash,
		Phone:        phone,
		Role:         domain.Role(m.Role),
		Hostel:       hostel,
		IsActive:     m.IsActive,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func toUserModel(u *domain.User) userModel {
	email := strings.TrimSpace(strings.ToLower(u.Email))

	var phone, hostel *string
	if u.Phone != "" {
		v := u.Phone
		phone = &v
	}
	if u.Hostel != "" {
		v := u.Hostel
		hostel = &v
	}

	return userModel{
		ID:           u.ID,
		Email:        email,
		FullName:     u.FullName,
		PasswordHash: u.PasswordHash,
		Phone:        phone,
		Role:         string(u.Role),
		Hostel:       hostel,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	m := toUserModel(u)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	*u = *toDomainUser(m)
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var m userModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return toDomainUser(m), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var m userModel
	email = strings.TrimSpace(strings.ToLower(email))
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&m).Error; err != nil {
		return nil, err
	}
	return toDomainUser(m), nil
}
