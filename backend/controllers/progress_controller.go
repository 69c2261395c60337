package controllers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"ibam/backend/middleware"
	"ibam/backend/store"
	"ibam/backend/utils"
)

type ProgressController struct {
	Store *store.Store
	Log   *utils.Logger
}

func NewProgressController(s *store.Store, log *utils.Logger) *ProgressController {
	return &ProgressController{Store: s, Log: log.With("component", "progress")}
}

type SessionProgressRequest struct {
	CompletionPercentage *int   `json:"completion_percentage" validate:"required,min=0,max=100"`
	LastSection          string `json:"last_section" validate:"max=64"`
	LastSubsection       string `json:"last_subsection" validate:"max=64"`
	QuizScore            *int   `json:"quiz_score" validate:"omitempty,min=0"`
}

// RecordSessionProgress godoc
// @Summary Record progress in a session
// @Description Upserts the caller's completion and reading position for a session
// @Tags progress
// @Accept json
// @Produce json
// @Param id path int true "Session ID"
// @Param input body SessionProgressRequest true "Progress"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress/sessions/{id} [put]
func (pc *ProgressController) RecordSessionProgress(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	sessionID, err := strconv.Atoi(c.Params("id"))
	if err != nil || sessionID <= 0 {
		return utils.BadRequest(c, "Invalid session ID")
	}

	var input SessionProgressRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.Validate(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	saved, err := pc.Store.RecordProgress(c.UserContext(), userID, sessionID, store.ProgressUpdate{
		CompletionPercentage: *input.CompletionPercentage,
		LastSection:          input.LastSection,
		LastSubsection:       input.LastSubsection,
		QuizScore:            input.QuizScore,
	}, time.Now().UTC())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.NotFound(c, "Session not found")
		}
		pc.Log.Error("record progress", "user_id", userID.String(), "session", sessionID, "error", err)
		return utils.InternalServerError(c, "Could not save progress")
	}

	return utils.Success(c, fiber.StatusOK, saved)
}
