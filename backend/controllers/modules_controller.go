package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"ibam/backend/config"
	"ibam/backend/middleware"
	"ibam/backend/progress"
	"ibam/backend/store"
	"ibam/backend/utils"
)

type ModulesController struct {
	Store      *store.Store
	Curriculum config.Curriculum
	Log        *utils.Logger
}

func NewModulesController(s *store.Store, cur config.Curriculum, log *utils.Logger) *ModulesController {
	return &ModulesController{Store: s, Curriculum: cur, Log: log.With("component", "modules")}
}

type sessionEntry struct {
	ID                   int    `json:"id"`
	SessionNumber        int    `json:"session_number"`
	Title                string `json:"title"`
	Subtitle             string `json:"subtitle"`
	CompletionPercentage int    `json:"completion_percentage"`
	Completed            bool   `json:"completed"`
}

// GetModuleDetails godoc
// @Summary Get a module with its sessions
// @Description Returns the module's catalogue entry, unlock status and the caller's progress per session
// @Tags modules
// @Produce json
// @Param id path int true "Module ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /modules/{id} [get]
func (mc *ModulesController) GetModuleDetails(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	moduleID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid module ID")
	}

	ctx := c.UserContext()
	rows, err := mc.Store.SessionsByModule(ctx, moduleID)
	if err != nil {
		mc.Log.Error("list module sessions", "module_id", moduleID, "error", err)
		return utils.InternalServerError(c, "Could not query database")
	}
	module, configured := mc.Curriculum.Module(moduleID)
	if !configured && len(rows) == 0 {
		return utils.NotFound(c, "Module not found")
	}

	sessions := make([]sessionEntry, 0, len(rows))
	for _, s := range rows {
		sessions = append(sessions, sessionEntry{
			ID:            s.ID,
			SessionNumber: s.SessionNumber,
			Title:         s.Title,
			Subtitle:      s.Subtitle,
		})
	}
	records, err := mc.Store.ListProgress(ctx, userID)
	if err != nil {
		mc.Log.Error("list progress", "user_id", userID.String(), "error", err)
		return utils.InternalServerError(c, "Could not query database")
	}
	best := make(map[int]int, len(records))
	for _, r := range records {
		if r.CompletionPercentage > best[r.SessionID] {
			best[r.SessionID] = r.CompletionPercentage
		}
	}
	for i := range sessions {
		sessions[i].CompletionPercentage = best[sessions[i].ID]
		sessions[i].Completed = sessions[i].CompletionPercentage == 100
	}

	all, err := mc.Store.ListSessions(ctx)
	if err != nil {
		mc.Log.Error("list sessions", "error", err)
		return utils.InternalServerError(c, "Could not query database")
	}
	summary := progress.Aggregate(mc.Curriculum, all, records)
	var mp progress.ModuleProgress
	for _, m := range summary {
		if m.ModuleID == moduleID {
			mp = m
		}
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"module": fiber.Map{
			"id":          moduleID,
			"title":       module.Title,
			"description": module.Description,
			"color":       module.Color,
		},
		"progress": mp,
		"status":   progress.Resolve(mc.Curriculum, summary, moduleID),
		"sessions": sessions,
	})
}
