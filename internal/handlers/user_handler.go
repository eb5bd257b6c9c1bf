package handlers

import (
	"fmt"
	"strings"
	"time"

	"usermgmt/internal/metrics"
	"usermgmt/internal/models"
	"usermgmt/internal/services"
	"usermgmt/pkg/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// UserHandler handles HTTP requests for users.
type UserHandler struct {
	service  *services.UserService
	metrics  *metrics.Metrics
	validate *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService, m *metrics.Metrics) *UserHandler {
	return &UserHandler{
		service:  service,
		metrics:  m,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the user routes. The token route stays anonymous;
// every other route sits behind auth.
func (h *UserHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	userRoutes := router.Group("/users")
	userRoutes.Post("/token", h.HandleToken)

	protected := userRoutes.Group("", auth)
	protected.Get("/", h.HandleGetUsers)
	protected.Get("/:id", h.HandleGetUser)
	protected.Post("/", h.HandleCreateUser)
	protected.Put("/:id", h.HandleUpdateUser)
	protected.Delete("/:id", h.HandleDeleteUser)
}

// HandleGetUsers returns all users.
func (h *UserHandler) HandleGetUsers(c *fiber.Ctx) error {
	users, err := h.service.ListUsers(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// HandleGetUser returns a single user.
func (h *UserHandler) HandleGetUser(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return respondError(c, apperror.BadRequest("Invalid user ID"))
	}

	user, err := h.service.GetUser(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// HandleCreateUser creates a user and points Location at it.
func (h *UserHandler) HandleCreateUser(c *fiber.Ctx) error {
	var user models.User
	if err := c.BodyParser(&user); err != nil {
		return respondError(c, apperror.BadRequest("Invalid request body"))
	}
	if err := h.validate.Struct(user); err != nil {
		return respondValidationError(c, err)
	}

	created, err := h.service.CreateUser(c.UserContext(), &user)
	if err != nil {
		return respondError(c, err)
	}

	c.Location(fmt.Sprintf("%s/%d", strings.TrimSuffix(c.Path(), "/"), created.ID))
	return c.Status(fiber.StatusCreated).JSON(created)
}

// HandleUpdateUser replaces a user. The body ID must match the path ID.
func (h *UserHandler) HandleUpdateUser(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return respondError(c, apperror.BadRequest("Invalid user ID"))
	}

	var user models.User
	if err := c.BodyParser(&user); err != nil {
		return respondError(c, apperror.BadRequest("Invalid request body"))
	}
	if err := h.validate.Struct(user); err != nil {
		return respondValidationError(c, err)
	}

	if err := h.service.UpdateUser(c.UserContext(), id, &user); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleDeleteUser deletes a user.
func (h *UserHandler) HandleDeleteUser(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return respondError(c, apperror.BadRequest("Invalid user ID"))
	}

	if err := h.service.DeleteUser(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// TokenResponse is returned by a successful login.
type TokenResponse struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// HandleToken exchanges a username and password for a bearer token.
func (h *UserHandler) HandleToken(c *fiber.Ctx) error {
	var login models.UserLoginModel
	if err := c.BodyParser(&login); err != nil {
		return respondError(c, apperror.BadRequest("Invalid login model"))
	}
	if err := h.validate.Struct(login); err != nil {
		return respondError(c, apperror.BadRequest("Invalid login model"))
	}

	token, expires, err := h.service.Login(c.UserContext(), login)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindUnauthorized {
			h.metrics.RecordLogin(metrics.LoginUnauthorized)
		} else {
			h.metrics.RecordLogin(metrics.LoginError)
		}
		return respondError(c, err)
	}

	h.metrics.RecordLogin(metrics.LoginSuccess)
	return c.JSON(TokenResponse{
		Token:   token,
		Expires: expires,
	})
}
