package api

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"expensetracker/config"
	"expensetracker/database"
	"expensetracker/middleware"
	"expensetracker/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler serves registration, login and profile routes.
type AuthHandler struct {
	cfg *config.Config
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(cfg *config.Config) *AuthHandler {
	return &AuthHandler{cfg: cfg}
}

// RegisterRequest is the signup payload.
type RegisterRequest struct {
	FullName        string `json:"full_name" binding:"required,min=1,max=100" example:"Alice Doe"`
	Email           string `json:"email" binding:"required,email" example:"alice@example.com"`
	Password        string `json:"password" binding:"required,min=8,max=72" example:"password123"`
	ProfileImageURL string `json:"profile_image_url" binding:"omitempty,max=255"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"alice@example.com"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	ID    uint        `json:"id"`
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

// Register creates an account
// @Summary Register a new account
// @Description Creates a user and returns a signed token so the client is logged in immediately.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "signup payload"
// @Success 200 {object} Response{data=AuthResponse} "registered"
// @Failure 400 {object} Response "invalid payload or email already in use"
// @Failure 500 {object} Response "server error"
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var existing models.User
	if err := database.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		BadRequest(c, "email already in use")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		InternalError(c, "failed to hash password")
		return
	}

	user := models.User{
		FullName:        req.FullName,
		Email:           email,
		Password:        string(hashed),
		ProfileImageURL: req.ProfileImageURL,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "failed to create user"))
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.FullName, h.cfg.JWT.ExpireTime)
	if err != nil {
		InternalError(c, "failed to issue token")
		return
	}

	SuccessWithMessage(c, "registered", AuthResponse{
		ID:    user.ID,
		User:  user,
		Token: token,
	})
}

// Login authenticates a user
// @Summary Log in
// @Description Verifies email and password and returns a short-lived token.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "login payload"
// @Success 200 {object} Response{data=AuthResponse} "logged in"
// @Failure 400 {object} Response "invalid payload"
// @Failure 401 {object} Response "invalid credentials"
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := database.DB.Where("email = ?", email).First(&user).Error; err != nil {
		// Same message as a bad password so the response does not reveal
		// which accounts exist.
		Unauthorized(c, "invalid email or password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		Unauthorized(c, "invalid email or password")
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.FullName, h.cfg.JWT.ExpireTime)
	if err != nil {
		InternalError(c, "failed to issue token")
		return
	}

	Success(c, AuthResponse{
		ID:    user.ID,
		User:  user,
		Token: token,
	})
}

// GetUser returns the authenticated user's profile
// @Summary Get current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=models.User} "profile"
// @Failure 401 {object} Response "unauthorized"
// @Failure 404 {object} Response "user not found"
// @Router /api/v1/auth/getUser [get]
func (h *AuthHandler) GetUser(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		NotFound(c, "user not found")
		return
	}

	Success(c, user)
}

// UpdateProfileRequest is the profile update payload.
type UpdateProfileRequest struct {
	FullName        string `json:"full_name" binding:"required,min=1,max=100"`
	ProfileImageURL string `json:"profile_image_url" binding:"omitempty,max=255"`
}

// UpdateProfile updates the display name and avatar
// @Summary Update profile
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateProfileRequest true "profile fields"
// @Success 200 {object} Response{data=models.User} "updated"
// @Failure 400 {object} Response "invalid payload"
// @Failure 404 {object} Response "user not found"
// @Router /api/v1/auth/update [put]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		NotFound(c, "user not found")
		return
	}

	updates := map[string]interface{}{
		"full_name":         req.FullName,
		"profile_image_url": req.ProfileImageURL,
	}
	if err := database.DB.Model(&user).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "failed to update profile"))
		return
	}

	SuccessWithMessage(c, "profile updated", user)
}

// ChangePasswordRequest is the password change payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=72"`
}

// ChangePassword replaces the user's password
// @Summary Change password
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ChangePasswordRequest true "password fields"
// @Success 200 {object} Response "changed"
// @Failure 400 {object} Response "invalid payload"
// @Failure 401 {object} Response "wrong current password"
// @Router /api/v1/auth/change-password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		NotFound(c, "user not found")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		Unauthorized(c, "current password is incorrect")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		InternalError(c, "failed to hash password")
		return
	}

	if err := database.DB.Model(&user).Update("password", string(hashed)).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "failed to update password"))
		return
	}

	SuccessWithMessage(c, "password changed", nil)
}

// allowed upload extensions, lowercase
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// UploadImage stores a profile image and records its public URL
// @Summary Upload profile image
// @Tags auth
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param image formData file true "image file"
// @Success 200 {object} Response "uploaded"
// @Failure 400 {object} Response "missing or unsupported file"
// @Router /api/v1/auth/upload-image [post]
func (h *AuthHandler) UploadImage(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	file, err := c.FormFile("image")
	if err != nil {
		BadRequest(c, "image file is required")
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !imageExtensions[ext] {
		BadRequest(c, "unsupported image type")
		return
	}

	filename := fmt.Sprintf("%d_%d%s", userID, time.Now().UnixNano(), ext)
	dst := filepath.Join("uploads", filename)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		InternalError(c, SafeErrorMessage(err, "failed to store image"))
		return
	}

	imageURL := strings.TrimRight(h.cfg.Server.BaseURL, "/") + "/uploads/" + filename
	if err := database.DB.Model(&models.User{}).Where("id = ?", userID).
		Update("profile_image_url", imageURL).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "failed to save image url"))
		return
	}

	SuccessWithMessage(c, "image uploaded", gin.H{"image_url": imageURL})
}
