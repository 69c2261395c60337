// Package store is the GORM-backed data access layer for the dashboard.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ibam/backend/config"
	"ibam/backend/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func (s *Store) ListSessions(ctx context.Context) ([]models.Session, error) {
	var sessions []models.Session
	err := s.db.WithContext(ctx).
		Order("module_id ASC, session_number ASC").
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

func (s *Store) SessionByID(ctx context.Context, id int) (models.Session, error) {
	var session models.Session
	if err := s.db.WithContext(ctx).First(&session, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Session{}, ErrNotFound
		}
		return models.Session{}, fmt.Errorf("get session %d: %w", id, err)
	}
	return session, nil
}

func (s *Store) ListProgress(ctx context.Context, userID uuid.UUID) ([]models.UserProgress, error) {
	var progress []models.UserProgress
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&progress).Error
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	return progress, nil
}

type activityRow struct {
	SessionID            int
	CompletionPercentage int
	LastAccessedAt       time.Time
	Title                string
	ModuleID             int
	SessionNumber        int
}

// ListRecentActivity returns the user's most recently accessed progress rows with
// their session details. Rows whose session no longer exists are skipped.
func (s *Store) ListRecentActivity(ctx context.Context, userID uuid.UUID, limit int) ([]models.RecentActivity, error) {
	var rows []activityRow
	err := s.db.WithContext(ctx).
		Table("user_progress AS up").
		Select("up.session_id, up.completion_percentage, up.last_accessed_at, s.title, s.module_id, s.session_number").
		Joins("JOIN sessions AS s ON s.id = up.session_id").
		Where("up.user_id = ?", userID).
		Order("up.last_accessed_at DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list recent activity: %w", err)
	}

	out := make([]models.RecentActivity, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.RecentActivity{
			SessionID:            r.SessionID,
			CompletionPercentage: r.CompletionPercentage,
			LastAccessedAt:       r.LastAccessedAt,
			Session: models.ActivitySession{
				Title:         r.Title,
				ModuleID:      r.ModuleID,
				SessionNumber: r.SessionNumber,
			},
		})
	}
	return out, nil
}

// LastAccessedSession returns nil without error when the user has not opened any session.
func (s *Store) LastAccessedSession(ctx context.Context, userID uuid.UUID) (*models.ContinueSession, error) {
	var usp models.UserSessionProgress
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("last_accessed DESC").
		First(&usp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("last accessed session: %w", err)
	}
	return &models.ContinueSession{
		ModuleID:             usp.ModuleID,
		SessionID:            usp.SessionID,
		LastSection:          usp.LastSection,
		LastSubsection:       usp.LastSubsection,
		CompletionPercentage: usp.CompletionPercentage,
	}, nil
}

// ProgressUpdate is what a client reports while reading a session.
type ProgressUpdate struct {
	CompletionPercentage int
	LastSection          string
	LastSubsection       string
	QuizScore            *int
}

// RecordProgress upserts the user's progress and reading position for a session.
// Completion never goes backwards and completed_at is set once. Both writes are
// upserts on (user_id, session_id).
func (s *Store) RecordProgress(ctx context.Context, userID uuid.UUID, sessionID int, upd ProgressUpdate, now time.Time) (models.UserProgress, error) {
	var saved models.UserProgress
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var session models.Session
		if err := tx.First(&session, sessionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		up := models.UserProgress{
			UserID:               userID,
			SessionID:            sessionID,
			CompletionPercentage: upd.CompletionPercentage,
			LastAccessedAt:       now,
			QuizScore:            upd.QuizScore,
		}
		if upd.CompletionPercentage == 100 {
			at := now
			up.CompletedAt = &at
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "session_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"completion_percentage": maxCompletion("user_progress"),
				"completed_at":          gorm.Expr("COALESCE(user_progress.completed_at, excluded.completed_at)"),
				"quiz_score":            gorm.Expr("COALESCE(excluded.quiz_score, user_progress.quiz_score)"),
				"last_accessed_at":      now,
			}),
		}).Create(&up).Error; err != nil {
			return err
		}

		usp := models.UserSessionProgress{
			UserID:               userID,
			ModuleID:             session.ModuleID,
			SessionID:            sessionID,
			LastSection:          upd.LastSection,
			LastSubsection:       upd.LastSubsection,
			CompletionPercentage: upd.CompletionPercentage,
			LastAccessed:         now,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "session_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"module_id":             session.ModuleID,
				"last_section":          upd.LastSection,
				"last_subsection":       upd.LastSubsection,
				"completion_percentage": maxCompletion("user_session_progress"),
				"last_accessed":         now,
			}),
		}).Create(&usp).Error; err != nil {
			return err
		}

		return tx.Where("user_id = ? AND session_id = ?", userID, sessionID).First(&saved).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.UserProgress{}, err
		}
		return models.UserProgress{}, fmt.Errorf("record progress: %w", err)
	}
	return saved, nil
}

// maxCompletion keeps the larger of the stored and incoming completion.
// GREATEST is Postgres-only, so it is spelled out for SQLite as well.
func maxCompletion(table string) clause.Expr {
	return gorm.Expr(fmt.Sprintf(
		"CASE WHEN excluded.completion_percentage > %[1]s.completion_percentage THEN excluded.completion_percentage ELSE %[1]s.completion_percentage END",
		table,
	))
}

// SeedSessions creates any catalogue session missing from the sessions table.
// It returns the number of sessions created.
func (s *Store) SeedSessions(ctx context.Context, cur config.Curriculum) (int, error) {
	created := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range cur.Modules {
			for n := 1; n <= m.Sessions; n++ {
				var count int64
				if err := tx.Model(&models.Session{}).
					Where("module_id = ? AND session_number = ?", m.ID, n).
					Count(&count).Error; err != nil {
					return err
				}
				if count > 0 {
					continue
				}
				session := models.Session{
					ModuleID:      m.ID,
					SessionNumber: n,
					Title:         m.SessionTitle(n),
					Subtitle:      m.Title,
				}
				if err := tx.Create(&session).Error; err != nil {
					return err
				}
				created++
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("seed sessions: %w", err)
	}
	return created, nil
}

func (s *Store) SessionsByModule(ctx context.Context, moduleID int) ([]models.Session, error) {
	var sessions []models.Session
	err := s.db.WithContext(ctx).
		Where("module_id = ?", moduleID).
		Order("session_number ASC").
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("list module %d sessions: %w", moduleID, err)
	}
	return sessions, nil
}
