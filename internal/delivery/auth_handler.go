package delivery

import (
	"net/http"
	"strconv"

	"github.com/Anniix/kisanx-backend/internal/domain"
	"github.com/Anniix/kisanx-backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	useCase domain.AuthUseCase
	log     *logrus.Logger
}

func NewAuthHandler(uc domain.AuthUseCase, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *AuthHandler) RegisterRoutes(router gin.IRouter, protect gin.HandlerFunc) {
	auth := router.Group("/auth")
	{
		auth.POST("/send-registration-otp", h.SendRegistrationOTP)
		auth.POST("/verify-registration-otp", h.VerifyRegistrationOTP)
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/forgot-password", h.ForgotPassword)
		auth.POST("/reset-password", h.ResetPassword)

		auth.GET("/me", protect, h.Me)
		auth.PUT("/update", protect, h.Update)
		auth.DELETE("/delete-user/:id", protect, h.DeleteUser)
	}
}

func (h *AuthHandler) SendRegistrationOTP(c *gin.Context) {
	var body struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Email == "" {
		ErrorResponse(c, http.StatusBadRequest, "Email is required")
		return
	}

	if err := h.useCase.SendRegistrationOTP(c.Request.Context(), body.Email); err != nil {
		h.log.Warnf("Handler: Failed to send registration OTP to %s: %v", body.Email, err)
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "OTP sent successfully", nil)
}

func (h *AuthHandler) VerifyRegistrationOTP(c *gin.Context) {
	var body struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := h.useCase.VerifyRegistrationOTP(c.Request.Context(), body.Email, body.OTP); err != nil {
		ErrorResponse(c, mapErrorToStatus(err), "Invalid or expired OTP")
		return
	}

	SuccessResponse(c, http.StatusOK, "Email verified successfully", nil)
}

func (h *AuthHandler) Register(c *gin.Context) {
	var input domain.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.useCase.Register(c.Request.Context(), input)
	if err != nil {
		h.log.Warnf("Handler: Registration failed for %s: %v", input.Email, err)
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}

	SuccessResponse(c, http.StatusCreated, "Registration successful", resp)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.useCase.Login(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		ErrorResponse(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	SuccessResponse(c, http.StatusOK, "Login successful", resp)
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var body struct {
		Contact string `json:"contact"`
		Method  string `json:"method"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Contact == "" {
		ErrorResponse(c, http.StatusBadRequest, "Contact is required")
		return
	}

	if err := h.useCase.ForgotPassword(c.Request.Context(), body.Contact, body.Method); err != nil {
		h.log.Warnf("Handler: Forgot-password failed for %s: %v", body.Contact, err)
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "OTP sent successfully", nil)
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var body struct {
		Contact     string `json:"contact"`
		OTP         string `json:"otp"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := h.useCase.ResetPassword(c.Request.Context(), body.Contact, body.OTP, body.NewPassword); err != nil {
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "Password reset successful", nil)
}

func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)

	profile, err := h.useCase.GetProfile(c.Request.Context(), user.ID)
	if err != nil {
		h.log.Errorf("Handler: Failed to fetch profile for user %d: %v", user.ID, err)
		ErrorResponse(c, mapErrorToStatus(err), "Error fetching profile")
		return
	}

	SuccessResponse(c, http.StatusOK, "Profile retrieved successfully", profile)
}

func (h *AuthHandler) Update(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	updated, err := h.useCase.UpdateProfile(c.Request.Context(), user.ID, updates)
	if err != nil {
		h.log.Warnf("Handler: Profile update failed for user %d: %v", user.ID, err)
		ErrorResponse(c, mapErrorToStatus(err), "Update failed")
		return
	}

	SuccessResponse(c, http.StatusOK, "Profile updated successfully", updated)
}

func (h *AuthHandler) DeleteUser(c *gin.Context) {
	user := middleware.CurrentUser(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		ErrorResponse(c, http.StatusBadRequest, "Invalid user ID format")
		return
	}
	if user.ID != id {
		ErrorResponse(c, http.StatusForbidden, "Access denied. You can only delete your own account.")
		return
	}

	if err := h.useCase.DeleteAccount(c.Request.Context(), id); err != nil {
		h.log.Errorf("Handler: Account deletion failed for user %d: %v", id, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to delete user account")
		return
	}

	SuccessResponse(c, http.StatusOK, "User account deleted successfully", nil)
}
