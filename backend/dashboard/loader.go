// Package dashboard assembles the learner's dashboard snapshot from the data
// store, falling back to fixture data whenever live data is unavailable.
package dashboard

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"ibam/backend/config"
	"ibam/backend/models"
	"ibam/backend/progress"
	"ibam/backend/utils"
)

// Identity resolves the user a load is made for. It returns an error when
// nobody is signed in.
type Identity interface {
	CurrentUserID(ctx context.Context) (uuid.UUID, error)
}

// IdentityFunc adapts a function to Identity.
type IdentityFunc func(ctx context.Context) (uuid.UUID, error)

func (f IdentityFunc) CurrentUserID(ctx context.Context) (uuid.UUID, error) {
	return f(ctx)
}

// Source is the read side of the data store used by the dashboard.
type Source interface {
	ListSessions(ctx context.Context) ([]models.Session, error)
	ListProgress(ctx context.Context, userID uuid.UUID) ([]models.UserProgress, error)
	ListRecentActivity(ctx context.Context, userID uuid.UUID, limit int) ([]models.RecentActivity, error)
	// LastAccessedSession returns nil, nil when the user has no reading position.
	LastAccessedSession(ctx context.Context, userID uuid.UUID) (*models.ContinueSession, error)
}

type DataSource string

const (
	DataSourceLive    DataSource = "live"
	DataSourceFixture DataSource = "fixture"
)

// Snapshot is the read-only view handed to the presentation layer.
type Snapshot struct {
	ModuleProgress  []progress.ModuleProgress `json:"module_progress"`
	Modules         []progress.ModuleState    `json:"modules"`
	RecentActivity  []models.RecentActivity   `json:"recent_activity"`
	DataSource      DataSource                `json:"data_source"`
	ContinueSession *models.ContinueSession   `json:"continue_session"`
}

type Loader struct {
	src Source
	cur config.Curriculum
	log *utils.Logger
}

func NewLoader(src Source, cur config.Curriculum, log *utils.Logger) *Loader {
	return &Loader{src: src, cur: cur, log: log.With("component", "dashboard")}
}

// Load builds a snapshot for the current user. The boolean is false when no
// user is signed in; in that case the snapshot is empty. Store failures never
// surface: each one degrades its part of the snapshot to fixture or empty data.
func (l *Loader) Load(ctx context.Context, id Identity) (Snapshot, bool) {
	var (
		userID      uuid.UUID
		userErr     error
		sessions    []models.Session
		sessionsErr error
	)

	// The catalogue does not depend on the user, so both lookups run together.
	var g errgroup.Group
	g.Go(func() error {
		userID, userErr = id.CurrentUserID(ctx)
		return nil
	})
	g.Go(func() error {
		sessions, sessionsErr = l.src.ListSessions(ctx)
		return nil
	})
	_ = g.Wait()

	if userErr != nil {
		if !errors.Is(userErr, utils.ErrUnauthenticated) {
			l.log.Warn("resolve current user", "error", userErr)
		}
		return Snapshot{}, false
	}
	log := l.log.With("user_id", userID.String())

	var snap Snapshot
	var cont errgroup.Group
	cont.Go(func() error {
		snap.ContinueSession = l.continueSession(ctx, log, userID)
		return nil
	})

	switch {
	case sessionsErr != nil:
		log.Warn("session catalogue unavailable, using fixture data", "error", sessionsErr)
		l.useFixtures(&snap)
	case len(sessions) == 0:
		log.Info("session catalogue empty, using fixture data")
		l.useFixtures(&snap)
	default:
		l.loadLive(ctx, log, userID, sessions, &snap)
	}

	_ = cont.Wait()
	snap.Modules = progress.States(l.cur, snap.ModuleProgress)
	return snap, true
}

func (l *Loader) useFixtures(snap *Snapshot) {
	snap.DataSource = DataSourceFixture
	snap.ModuleProgress = FixtureModuleProgress()
	snap.RecentActivity = FixtureRecentActivity()
}

func (l *Loader) loadLive(ctx context.Context, log *utils.Logger, userID uuid.UUID, sessions []models.Session, snap *Snapshot) {
	records, err := l.src.ListProgress(ctx, userID)
	if err != nil {
		log.Warn("progress unavailable, reporting zero progress", "error", err)
		records = nil
	}

	snap.ModuleProgress = progress.Aggregate(l.cur, sessions, records)
	snap.DataSource = DataSourceLive

	activity, err := l.src.ListRecentActivity(ctx, userID, RecentActivityLimit)
	switch {
	case err != nil:
		log.Warn("recent activity unavailable, using fixture activity", "error", err)
		snap.RecentActivity = FixtureRecentActivity()
	case len(activity) == 0:
		snap.RecentActivity = FixtureRecentActivity()
	default:
		snap.RecentActivity = activity
	}
}

func (l *Loader) continueSession(ctx context.Context, log *utils.Logger, userID uuid.UUID) *models.ContinueSession {
	cs, err := l.src.LastAccessedSession(ctx, userID)
	if err != nil {
		log.Warn("last accessed session unavailable", "error", err)
		return nil
	}
	return cs
}
