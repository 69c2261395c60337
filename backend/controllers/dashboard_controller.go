package controllers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"ibam/backend/config"
	"ibam/backend/dashboard"
	"ibam/backend/store"
	"ibam/backend/utils"
)

type DashboardController struct {
	Loader     *dashboard.Loader
	Store      *store.Store
	Cfg        *config.Config
	Curriculum config.Curriculum
}

func NewDashboardController(loader *dashboard.Loader, s *store.Store, cfg *config.Config, cur config.Curriculum) *DashboardController {
	return &DashboardController{Loader: loader, Store: s, Cfg: cfg, Curriculum: cur}
}

// GetDashboard godoc
// @Summary Get the learner dashboard
// @Description Module progress and unlock state, recent activity and the session to continue
// @Tags dashboard
// @Produce json
// @Success 200 {object} dashboard.Snapshot
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /dashboard [get]
func (dc *DashboardController) GetDashboard(c *fiber.Ctx) error {
	snap, ok := dc.Loader.Load(c.UserContext(), dc.identity(c))
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}
	return utils.Success(c, fiber.StatusOK, snap)
}

// GetCurriculum godoc
// @Summary Get the module catalogue
// @Tags dashboard
// @Produce json
// @Success 200 {object} config.Curriculum
// @Router /curriculum [get]
func (dc *DashboardController) GetCurriculum(c *fiber.Ctx) error {
	return utils.Success(c, fiber.StatusOK, dc.Curriculum)
}

// identity checks the request token and that its user still exists. The token
// is read up front because the loader may call it from another goroutine.
func (dc *DashboardController) identity(c *fiber.Ctx) dashboard.Identity {
	token := utils.TokenFromRequest(c)
	return dashboard.IdentityFunc(func(ctx context.Context) (uuid.UUID, error) {
		id, err := utils.ParseJWTToken(token, dc.Cfg)
		if err != nil {
			return uuid.Nil, err
		}
		if _, err := dc.Store.UserByID(ctx, id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return uuid.Nil, utils.ErrUnauthenticated
			}
			return uuid.Nil, err
		}
		return id, nil
	})
}
