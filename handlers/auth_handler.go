package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"sessionpulse/middleware"
	"sessionpulse/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	_, token, err := h.authService.Register(&req)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Printf("Error creating account: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred while creating account"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": token})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, err := h.authService.Login(&req)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"token": token, "role": user.Role})
	case errors.Is(err, services.ErrIsAdmin):
		// Client redirects admins to the admin login.
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "admin": true})
	case errors.Is(err, services.ErrUserNotFound), errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not log in with the provided credentials"})
	default:
		log.Printf("Error logging in: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred while logging in"})
	}
}

func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, err := h.authService.AdminLogin(&req)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"token": token, "role": user.Role})
	case errors.Is(err, services.ErrNotAdmin):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "presenter": true})
	case errors.Is(err, services.ErrUserNotFound), errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not log in with the provided credentials"})
	default:
		log.Printf("Error logging in admin: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred while logging in"})
	}
}

func (h *AuthHandler) GetProfile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"email":        user.Email,
		"role":         user.Role,
		"first_name":   user.FirstName,
		"last_name":    user.LastName,
		"organization": user.Organization,
	})
}

type resetTokenRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (h *AuthHandler) GetResetPasswordToken(c *gin.Context) {
	var req resetTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, role, err := h.authService.IssueResetToken(req.Email)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Couldn't find an existing account with that email"})
			return
		}
		log.Printf("Error issuing reset token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred while generating reset password token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "role": role})
}

type resetPasswordRequest struct {
	ResetToken string `json:"reset_token" binding:"required"`
	Password   string `json:"password" binding:"required,min=6"`
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role, err := h.authService.ResetPassword(req.ResetToken, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidResetToken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Token is invalid"})
			return
		}
		log.Printf("Error resetting password: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred while resetting password"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"role": role})
}

func (h *AuthHandler) UpgradeAccount(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	updated, err := h.authService.UpgradeToAdmin(user.ID)
	if err != nil {
		log.Printf("Error upgrading account: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred while updating user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": updated})
}

func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if err := h.authService.DeleteUser(user.ID); err != nil {
		log.Printf("Error deleting account: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred while deleting account"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account deleted successfully"})
}

// Admin user management

func (h *AuthHandler) GetUsers(c *gin.Context) {
	users, err := h.authService.GetUsers()
	if err != nil {
		log.Printf("Error fetching users: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred while fetching users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *AuthHandler) GetUser(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	user, err := h.authService.GetUserByID(uint(userID))
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Could not find associated user"})
			return
		}
		log.Printf("Error fetching user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred while fetching user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

type updateUserRequest struct {
	Role string `json:"role" binding:"required"`
}

func (h *AuthHandler) UpdateUser(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authService.UpdateUserRole(uint(userID), req.Role)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Couldn't find a matching user"})
			return
		}
		log.Printf("Error updating user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred while updating user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *AuthHandler) DeleteUser(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	if err := h.authService.DeleteUser(uint(userID)); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Couldn't find a matching user"})
			return
		}
		log.Printf("Error deleting user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred while deleting user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}
