package progress

import (
	"sort"

	"ibam/backend/config"
)

type Status string

const (
	StatusCompleted  Status = "completed"
	StatusInProgress Status = "in-progress"
	StatusAvailable  Status = "available"
	StatusLocked     Status = "locked"
)

// Resolver answers unlock questions over one set of module progress.
type Resolver struct {
	order []int
	pct   map[int]int
}

// NewResolver builds the unlock chain: curriculum order first, then any
// unconfigured modules present in modules by ascending id.
func NewResolver(cur config.Curriculum, modules []ModuleProgress) *Resolver {
	r := &Resolver{pct: make(map[int]int, len(modules))}
	inChain := make(map[int]bool, len(cur.Modules))
	for _, m := range cur.Modules {
		r.order = append(r.order, m.ID)
		inChain[m.ID] = true
	}

	var extra []int
	for _, mp := range modules {
		r.pct[mp.ModuleID] = mp.CompletionPercentage
		if !inChain[mp.ModuleID] {
			inChain[mp.ModuleID] = true
			extra = append(extra, mp.ModuleID)
		}
	}
	sort.Ints(extra)
	r.order = append(r.order, extra...)
	return r
}

// Order returns the module ids in unlock order.
func (r *Resolver) Order() []int {
	return append([]int(nil), r.order...)
}

func (r *Resolver) Status(moduleID int) Status {
	p := r.pct[moduleID]
	if p == 100 {
		return StatusCompleted
	}
	if p > 0 {
		return StatusInProgress
	}
	for i, id := range r.order {
		if id != moduleID {
			continue
		}
		if i == 0 {
			return StatusAvailable
		}
		if r.pct[r.order[i-1]] == 100 {
			return StatusAvailable
		}
		return StatusLocked
	}
	return StatusLocked
}

// Resolve is a one-shot form of NewResolver(cur, modules).Status(moduleID).
func Resolve(cur config.Curriculum, modules []ModuleProgress, moduleID int) Status {
	return NewResolver(cur, modules).Status(moduleID)
}

// ModuleState joins catalogue metadata, progress and unlock status for one module.
type ModuleState struct {
	ModuleID             int    `json:"module_id"`
	Title                string `json:"title"`
	Description          string `json:"description"`
	Color                string `json:"color"`
	TotalSessions        int    `json:"total_sessions"`
	CompletedSessions    int    `json:"completed_sessions"`
	CompletionPercentage int    `json:"completion_percentage"`
	Status               Status `json:"status"`
}

// States lists every module in unlock order.
func States(cur config.Curriculum, modules []ModuleProgress) []ModuleState {
	r := NewResolver(cur, modules)
	byID := make(map[int]ModuleProgress, len(modules))
	for _, mp := range modules {
		byID[mp.ModuleID] = mp
	}

	out := make([]ModuleState, 0, len(r.order))
	for _, id := range r.order {
		st := ModuleState{ModuleID: id, Status: r.Status(id)}
		if m, ok := cur.Module(id); ok {
			st.Title = m.Title
			st.Description = m.Description
			st.Color = m.Color
			st.TotalSessions = m.Sessions
		}
		if mp, ok := byID[id]; ok {
			st.TotalSessions = mp.TotalSessions
			st.CompletedSessions = mp.CompletedSessions
			st.CompletionPercentage = mp.CompletionPercentage
		}
		out = append(out, st)
	}
	return out
}
