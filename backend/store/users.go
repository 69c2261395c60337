package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ibam/backend/models"
)

// CreateUser inserts user, or returns ErrDuplicate when the email is taken.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	user.Email = normalizeEmail(user.Email)

	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
		Create(user)
	if res.Error != nil {
		return fmt.Errorf("create user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrDuplicate
	}
	return nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

func (s *Store) UserByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *Store) RecordLogin(ctx context.Context, userID uuid.UUID, ip, userAgent string, at time.Time) error {
	entry := models.LoginHistory{
		UserID:    userID,
		LoginTime: at,
		IP:        ip,
		UserAgent: userAgent,
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("record login: %w", err)
	}
	return nil
}

type LoginStats struct {
	Count     int64      `json:"count"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

func (s *Store) LoginStats(ctx context.Context, userID uuid.UUID) (LoginStats, error) {
	var stats LoginStats
	q := s.db.WithContext(ctx).Model(&models.LoginHistory{}).Where("user_id = ?", userID)
	if err := q.Count(&stats.Count).Error; err != nil {
		return LoginStats{}, fmt.Errorf("count logins: %w", err)
	}
	if stats.Count == 0 {
		return stats, nil
	}
	var last models.LoginHistory
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("login_time DESC").First(&last).Error; err != nil {
		return LoginStats{}, fmt.Errorf("last login: %w", err)
	}
	stats.LastLogin = &last.LoginTime
	return stats, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
