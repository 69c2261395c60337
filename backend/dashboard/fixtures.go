package dashboard

import (
	"time"

	"ibam/backend/models"
	"ibam/backend/progress"
)

// RecentActivityLimit is how many activity rows the dashboard shows.
const RecentActivityLimit = 5

// FixtureModuleProgress is shown when the session catalogue cannot be read.
func FixtureModuleProgress() []progress.ModuleProgress {
	return []progress.ModuleProgress{
		{ModuleID: 1, TotalSessions: 4, CompletedSessions: 4, CompletionPercentage: 100},
		{ModuleID: 2, TotalSessions: 4, CompletedSessions: 2, CompletionPercentage: 50},
		{ModuleID: 3, TotalSessions: 5, CompletedSessions: 0, CompletionPercentage: 0},
		{ModuleID: 4, TotalSessions: 4, CompletedSessions: 0, CompletionPercentage: 0},
		{ModuleID: 5, TotalSessions: 3, CompletedSessions: 0, CompletionPercentage: 0},
	}
}

// FixtureRecentActivity is shown when live activity is missing.
func FixtureRecentActivity() []models.RecentActivity {
	return []models.RecentActivity{
		{
			SessionID:            26,
			CompletionPercentage: 75,
			LastAccessedAt:       time.Date(2025, 6, 27, 18, 30, 0, 0, time.UTC),
			Session:              models.ActivitySession{Title: "Reasons for Success - Faith-Driven Principles", ModuleID: 2, SessionNumber: 2},
		},
		{
			SessionID:            25,
			CompletionPercentage: 100,
			LastAccessedAt:       time.Date(2025, 6, 26, 14, 20, 0, 0, time.UTC),
			Session:              models.ActivitySession{Title: "Reasons for Failure - Learning from Mistakes", ModuleID: 2, SessionNumber: 1},
		},
		{
			SessionID:            4,
			CompletionPercentage: 100,
			LastAccessedAt:       time.Date(2025, 6, 25, 16, 45, 0, 0, time.UTC),
			Session:              models.ActivitySession{Title: "Faith-Driven Business - The AVODAH Model", ModuleID: 1, SessionNumber: 4},
		},
	}
}
