package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"coachdesk-backend/internal/platform/apierr"
)

type AuthHandler struct{ svc AuthService }

// RegisterRoutes mounts login on public and account management on admin.
func RegisterRoutes(public, admin gin.IRoutes, svc AuthService) {
	h := &AuthHandler{svc: svc}
	public.POST("/auth/login", h.Login)

	admin.POST("/accounts", h.Register)
	admin.DELETE("/accounts/:id", h.DeleteAccount)
	admin.PATCH("/accounts/:id", h.ChangeUsername)
}

type LoginRequest struct {
	ID       string `json:"id" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}

// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "invalid request"))
		return
	}

	token, err := h.svc.Login(c.Request.Context(), req.ID, req.Password)
	switch {
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrDisabled):
		apierr.Respond(c, apierr.Unauthenticated("invalid id or password"))
		return
	case err != nil:
		apierr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{Token: token, Message: "Login successful"})
}

type RegisterRequest struct {
	ID       string  `json:"id" binding:"required"`
	Password string  `json:"password" binding:"required,min=8"`
	Role     string  `json:"role,omitempty"` // defaults to coach
	StaffID  *string `json:"staff_id,omitempty"`
}

// POST /accounts
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "invalid request"))
		return
	}

	err := h.svc.Register(c.Request.Context(), RegisterInput{
		ID:       req.ID,
		Password: req.Password,
		Role:     req.Role,
		StaffID:  req.StaffID,
	})
	switch {
	case errors.Is(err, ErrAlreadyExists):
		apierr.Respond(c, apierr.Conflict("id already exists"))
		return
	case errors.Is(err, ErrInvalidRole):
		apierr.Respond(c, apierr.Invalid("role must be coach or admin"))
		return
	case err != nil:
		apierr.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "registered"})
}

// DELETE /accounts/:id
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			apierr.Respond(c, apierr.NotFound("account not found"))
			return
		}
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

type ChangeUsernameRequest struct {
	NewID string `json:"new_id" binding:"required"`
}

// PATCH /accounts/:id
func (h *AuthHandler) ChangeUsername(c *gin.Context) {
	var req ChangeUsernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "invalid request"))
		return
	}

	if err := h.svc.ChangeID(c.Request.Context(), c.Param("id"), req.NewID); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			apierr.Respond(c, apierr.NotFound("account not found"))
		case errors.Is(err, ErrAlreadyExists):
			apierr.Respond(c, apierr.Conflict("new id already exists"))
		default:
			apierr.Respond(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "username changed"})
}
