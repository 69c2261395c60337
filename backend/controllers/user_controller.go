package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"ibam/backend/middleware"
	"ibam/backend/store"
	"ibam/backend/utils"
)

type UserController struct {
	Store *store.Store
}

func NewUserController(s *store.Store) *UserController {
	return &UserController{Store: s}
}

// GetProfile godoc
// @Summary Get user profile
// @Description Returns the authenticated user's profile and login history summary
// @Tags users
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/profile [get]
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	user, err := uc.Store.UserByID(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.NotFound(c, "User not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	logins, err := uc.Store.LoginStats(c.UserContext(), userID)
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"id":         user.ID,
		"email":      user.Email,
		"full_name":  user.FullName,
		"role":       user.Role,
		"created_at": user.CreatedAt,
		"logins":     logins,
	})
}
