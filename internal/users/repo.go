package users

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pepdine/pep-backend/pkg/db/models"
	"github.com/pepdine/pep-backend/pkg/enums"
	"github.com/pepdine/pep-backend/pkg/pagination"
)

// Repository persists user accounts, including guest users.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

// EnsureGuest returns the guest user bound to sessionID, creating it on first
// use. Concurrent first requests converge on one row.
func (r *Repository) EnsureGuest(ctx context.Context, sessionID string) (*models.User, error) {
	session := sessionID
	guest := &models.User{
		Name:           "Guest",
		Role:           enums.UserRoleGuest,
		IsGuest:        true,
		GuestSessionID: &session,
		IsActive:       true,
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "guest_session_id"}}, DoNothing: true}).
		Create(guest).Error; err != nil {
		return nil, err
	}

	var user models.User
	if err := r.db.WithContext(ctx).Where("guest_session_id = ?", sessionID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

type listQuery struct {
	Role         *enums.UserRole
	IncludeGuest bool
	Limit        int
	Cursor       *pagination.Cursor
}

// List pages users newest first.
func (r *Repository) List(ctx context.Context, q listQuery) ([]models.User, error) {
	tx := r.db.WithContext(ctx).Model(&models.User{})
	if q.Role != nil {
		tx = tx.Where("role = ?", *q.Role)
	}
	if !q.IncludeGuest {
		tx = tx.Where("is_guest = ?", false)
	}
	if q.Cursor != nil {
		at, err := q.Cursor.Time()
		if err != nil {
			return nil, err
		}
		tx = tx.Where("(created_at < ? OR (created_at = ? AND id < ?))", at, at, q.Cursor.ID)
	}
	var users []models.User
	err := tx.Order("created_at DESC").Order("id DESC").
		Limit(pagination.LimitWithBuffer(q.Limit)).
		Find(&users).Error
	return users, err
}
