// Package progress derives per-module completion and unlock state from
// session and progress rows. Everything here is pure.
package progress

import (
	"math"
	"sort"

	"ibam/backend/config"
	"ibam/backend/models"
)

// ModuleProgress is the per-module summary shown on the dashboard.
type ModuleProgress struct {
	ModuleID             int `json:"module_id"`
	TotalSessions        int `json:"total_sessions"`
	CompletedSessions    int `json:"completed_sessions"`
	CompletionPercentage int `json:"completion_percentage"`
}

type tally struct {
	configured int
	observed   int
	completed  map[int]bool
}

// Aggregate groups completed sessions by module.
//
// The configured session count is the denominator unless sessions were observed
// for the module, in which case the observed count wins. Modules missing from the
// curriculum are still reported. Records for unknown sessions are ignored, and a
// session counts once no matter how many of its records reached 100.
func Aggregate(cur config.Curriculum, sessions []models.Session, records []models.UserProgress) []ModuleProgress {
	tallies := make(map[int]*tally, len(cur.Modules))
	get := func(moduleID int) *tally {
		t, ok := tallies[moduleID]
		if !ok {
			t = &tally{completed: map[int]bool{}}
			tallies[moduleID] = t
		}
		return t
	}

	for _, m := range cur.Modules {
		get(m.ID).configured = m.Sessions
	}

	byID := make(map[int]models.Session, len(sessions))
	for _, s := range sessions {
		if _, dup := byID[s.ID]; dup {
			continue
		}
		byID[s.ID] = s
		get(s.ModuleID).observed++
	}

	for _, r := range records {
		s, ok := byID[r.SessionID]
		if !ok || r.CompletionPercentage != 100 {
			continue
		}
		get(s.ModuleID).completed[s.ID] = true
	}

	out := make([]ModuleProgress, 0, len(tallies))
	for id, t := range tallies {
		total := t.configured
		if t.observed > 0 {
			total = t.observed
		}
		completed := len(t.completed)
		out = append(out, ModuleProgress{
			ModuleID:             id,
			TotalSessions:        total,
			CompletedSessions:    completed,
			CompletionPercentage: percent(completed, total),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ModuleID < out[j].ModuleID })
	return out
}

func percent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}
