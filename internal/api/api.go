package api

import (
	"context"
	"errors"
	"net/http"
	"user-management-service/internal/entity"
	"user-management-service/internal/service"

	"github.com/labstack/echo/v4"
)

const headerIdempotencyKey = "Idempotency-Key"

// UserService is implemented by *service.UserService.
type UserService interface {
	ListUsers(ctx context.Context) ([]*entity.User, error)
	GetUser(ctx context.Context, id int64) (*entity.User, error)
	CreateUser(ctx context.Context, req entity.CreateUserRequest, idempotencyKey string) (*entity.User, error)
	UpdateUser(ctx context.Context, id int64, req entity.UpdateUserRequest) error
	DeleteUser(ctx context.Context, id int64) error
}

type UserHandler struct {
	userService UserService
}

// NewUserHandler creates a new instance of UserHandler
func NewUserHandler(userService UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// CreateUser creates a new user --> POST /users
func (h *UserHandler) CreateUser(c echo.Context) error {
	req := entity.CreateUserRequest{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}

	key := c.Request().Header.Get(headerIdempotencyKey)
	if _, err := h.userService.CreateUser(c.Request().Context(), req, key); err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]string{"message": "User created successfully"})
}

// ListUsers returns every user --> GET /users
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.userService.ListUsers(c.Request().Context())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// GetUserByID retrieves a user by ID --> GET /users/:id
func (h *UserHandler) GetUserByID(c echo.Context) error {
	id, err := service.SanitizeUserID(c.Param("id"))
	if err != nil {
		return errorResponse(c, err)
	}

	user, err := h.userService.GetUser(c.Request().Context(), id)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateUser applies a partial update --> PUT /users/:id
func (h *UserHandler) UpdateUser(c echo.Context) error {
	id, err := service.SanitizeUserID(c.Param("id"))
	if err != nil {
		return errorResponse(c, err)
	}

	req := entity.UpdateUserRequest{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}

	if err := h.userService.UpdateUser(c.Request().Context(), id, req); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "User updated successfully"})
}

// DeleteUser removes a user --> DELETE /users/:id
func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := service.SanitizeUserID(c.Param("id"))
	if err != nil {
		return errorResponse(c, err)
	}

	err = h.userService.DeleteUser(c.Request().Context(), id)
	var storeErr *service.StoreError
	if errors.As(err, &storeErr) {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Database error: " + storeErr.Error()})
	}
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "User deleted successfully"})
}

// errorResponse maps service errors to a status code and {"error": ...} body.
func errorResponse(c echo.Context, err error) error {
	status, message := http.StatusInternalServerError, err.Error()

	switch {
	case errors.Is(err, service.ErrMissingFields):
		status, message = http.StatusBadRequest, "Missing required fields"
	case errors.Is(err, service.ErrInvalidIdentifier):
		status, message = http.StatusBadRequest, "Invalid user ID"
	case errors.Is(err, service.ErrWeakPassword):
		status, message = http.StatusBadRequest, "Password must be at least 8 characters long and include a number and a special character"
	case errors.Is(err, service.ErrNoUpdateFields):
		status, message = http.StatusBadRequest, "No data provided for update"
	case errors.Is(err, service.ErrNotFound):
		status, message = http.StatusNotFound, "User not found"
	case errors.Is(err, service.ErrDuplicateRequest):
		status, message = http.StatusConflict, "Duplicate request"
	case errors.Is(err, service.ErrHashPassword):
		message = "Failed to hash password"
	}

	return c.JSON(status, map[string]string{"error": message})
}
