package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"ibam/backend/config"
	"ibam/backend/models"
	"ibam/backend/store"
	"ibam/backend/utils"
)

// authCookieMaxAge matches the browser session lifetime of the login screen.
const authCookieMaxAge = 7 * 24 * 60 * 60

type AuthController struct {
	Store *store.Store
	Cfg   *config.Config
	Log   *utils.Logger
}

func NewAuthController(s *store.Store, cfg *config.Config, log *utils.Logger) *AuthController {
	return &AuthController{Store: s, Cfg: cfg, Log: log.With("component", "auth")}
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"full_name" validate:"max=120"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param input body RegisterRequest true "Registration data"
// @Success 201 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /auth/register [post]
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var input RegisterRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.Validate(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.InternalServerError(c, "Could not hash password")
	}

	user := models.User{
		Email:        input.Email,
		FullName:     input.FullName,
		PasswordHash: string(hashedPassword),
	}
	if err := ac.Store.CreateUser(c.UserContext(), &user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return utils.Conflict(c, "Email already registered")
		}
		ac.Log.Error("create user", "error", err)
		return utils.InternalServerError(c, "Could not create user")
	}

	return ac.startSession(c, user, fiber.StatusCreated)
}

// Login godoc
// @Summary Sign in with email and password
// @Description Issues an access token and sets the auth cookie
// @Tags auth
// @Accept json
// @Produce json
// @Param input body LoginRequest true "Login credentials"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /auth/login [post]
func (ac *AuthController) Login(c *fiber.Ctx) error {
	// Any previous session is dropped, even if this attempt fails.
	c.ClearCookie(utils.AuthCookie)

	var input LoginRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.Validate(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	user, err := ac.Store.UserByEmail(c.UserContext(), input.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.Unauthorized(c, "Invalid login credentials")
		}
		ac.Log.Error("find user", "error", err)
		return utils.InternalServerError(c, "Could not query database")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return utils.Unauthorized(c, "Invalid login credentials")
	}

	if err := ac.Store.RecordLogin(c.UserContext(), user.ID, c.IP(), c.Get(fiber.HeaderUserAgent), time.Now().UTC()); err != nil {
		ac.Log.Warn("record login", "user_id", user.ID.String(), "error", err)
	}

	return ac.startSession(c, user, fiber.StatusOK)
}

// Logout godoc
// @Summary Sign out
// @Tags auth
// @Success 200 {object} utils.SuccessResponse
// @Router /auth/logout [post]
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	c.ClearCookie(utils.AuthCookie)
	return utils.Message(c, fiber.StatusOK, "Logged out")
}

func (ac *AuthController) startSession(c *fiber.Ctx, user models.User, status int) error {
	token, expiresAt, err := utils.GenerateJWTToken(user.ID, ac.Cfg)
	if err != nil {
		return utils.InternalServerError(c, "Could not generate token")
	}

	c.Cookie(&fiber.Cookie{
		Name:     utils.AuthCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   authCookieMaxAge,
		Secure:   ac.Cfg.CookieSecure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})

	return utils.Success(c, status, fiber.Map{
		"user": fiber.Map{
			"id":         user.ID,
			"email":      user.Email,
			"full_name":  user.FullName,
			"created_at": user.CreatedAt,
		},
		"session": fiber.Map{
			"access_token": token,
			"expires_at":   expiresAt.Unix(),
		},
		"login_time": time.Now().UTC(),
	})
}
