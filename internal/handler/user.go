package handler

import (
	"errors"
	"net/http"

	"github.com/VidyaQuest-Labs/portal/internal/constants"
	"github.com/VidyaQuest-Labs/portal/internal/dto"
	apperrors "github.com/VidyaQuest-Labs/portal/internal/errors"
	"github.com/VidyaQuest-Labs/portal/internal/middleware"
	"github.com/VidyaQuest-Labs/portal/internal/service"
	ctxutil "github.com/VidyaQuest-Labs/portal/pkg/context"
	"github.com/VidyaQuest-Labs/portal/pkg/logger"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(service *service.UserService) *UserHandler {
	return &UserHandler{userService: service}
}

// CreateUser exchanges an identity token for an account and a fresh session.
// The same endpoint serves first sign-in and repeat sign-in.
func (h *UserHandler) CreateUser(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "CreateUser")

	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid request body for user creation").
			Err(err).
			Log()
		c.JSON(http.StatusBadRequest, gin.H{"error": "identityToken is required"})
		return
	}

	logger.InfoWithContext(ctx, "Create user request").Log()

	user, err := h.userService.CreateOrGetUser(ctx, req.IdentityToken)
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		logger.ErrorWithContext(ctx, "Failed to create or fetch user").
			Int("http_status", status).
			Err(err).
			Log()

		var errorMessage string
		switch {
		case errors.Is(err, apperrors.ErrInvalidToken):
			errorMessage = "Invalid identity token"
		case errors.Is(err, apperrors.ErrProviderUnavailable):
			errorMessage = "Identity provider unavailable"
		default:
			errorMessage = "Failed to create user"
		}

		c.JSON(status, gin.H{"error": errorMessage})
		return
	}

	logger.InfoWithContext(ctx, "User created or fetched successfully").
		Int("user_id", int(user.ID)).
		Bool("profile_complete", user.IsProfileComplete).
		Log()

	c.JSON(http.StatusOK, constants.BuildUserResponse(user))
}

// GetProfile returns the full profile of the session owner.
func (h *UserHandler) GetProfile(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "GetProfile")

	token := c.GetString(middleware.CtxSessionToken)

	user, err := h.userService.GetProfile(ctx, token)
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		logger.ErrorWithContext(ctx, "Failed to fetch profile").
			Int("http_status", status).
			Err(err).
			Log()
		c.JSON(status, constants.BuildErrorResponse("Failed to fetch profile", apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusOK, constants.BuildUserResponse(user))
}

// UpdateProfile completes or overwrites the profile of the session owner.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "UpdateProfile")

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid request body for profile update").
			Err(err).
			Log()
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Invalid request format", err.Error()))
		return
	}

	token := c.GetString(middleware.CtxSessionToken)

	logger.InfoWithContext(ctx, "Update profile request").
		String("email", req.Email).
		Log()

	user, err := h.userService.CompleteProfile(ctx, token, &req)
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		logger.ErrorWithContext(ctx, "Failed to update profile").
			Int("http_status", status).
			Err(err).
			Log()

		var errorMessage string
		switch {
		case errors.Is(err, apperrors.ErrEmailExists):
			errorMessage = "Email is already in use"
		case errors.Is(err, apperrors.ErrInvalidInput):
			errorMessage = "Full name and email are required"
		default:
			errorMessage = "Failed to update profile"
		}

		c.JSON(status, constants.BuildErrorResponse(errorMessage, apperrors.GetErrorMessage(err)))
		return
	}

	logger.InfoWithContext(ctx, "Profile updated successfully").
		Int("user_id", int(user.ID)).
		Log()

	c.JSON(http.StatusOK, constants.BuildUserResponse(user))
}

// UpdateXP adds the submitted amount to the session owner's experience
// points and returns the new total.
func (h *UserHandler) UpdateXP(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "UpdateXP")

	var req dto.UpdateXPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid request body for xp update").
			Err(err).
			Log()
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("xp must be a number", err.Error()))
		return
	}

	token := c.GetString(middleware.CtxSessionToken)
	delta := *req.XP

	newXP, err := h.userService.AddXP(ctx, token, delta)
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		logger.ErrorWithContext(ctx, "Failed to update xp").
			Int64("delta", delta).
			Int("http_status", status).
			Err(err).
			Log()
		c.JSON(status, constants.BuildErrorResponse("Failed to update xp", apperrors.GetErrorMessage(err)))
		return
	}

	logger.InfoWithContext(ctx, "XP updated").
		Int64("delta", delta).
		Int64("new_xp", newXP).
		Log()

	c.JSON(http.StatusOK, dto.UpdateXPResponse{Success: true, NewXP: newXP})
}

// Logout deactivates the current session.
func (h *UserHandler) Logout(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Logout")

	token := c.GetString(middleware.CtxSessionToken)

	if err := h.userService.Logout(ctx, token); err != nil {
		status := apperrors.ToHTTPStatus(err)
		logger.ErrorWithContext(ctx, "Failed to logout").
			Int("http_status", status).
			Err(err).
			Log()
		c.JSON(status, constants.BuildErrorResponse("Failed to logout", apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse("Logged out successfully"))
}

// DeleteAccount removes the account from the identity provider and the
// local store, then deactivates every session the user holds.
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "DeleteAccount")

	token := c.GetString(middleware.CtxSessionToken)

	logger.InfoWithContext(ctx, "Delete account request").Log()

	if err := h.userService.DeleteAccount(ctx, token); err != nil {
		status := apperrors.ToHTTPStatus(err)
		logger.ErrorWithContext(ctx, "Failed to delete account").
			Int("http_status", status).
			Err(err).
			Log()
		c.JSON(status, constants.BuildErrorResponse("Failed to delete account", apperrors.GetErrorMessage(err)))
		return
	}

	logger.InfoWithContext(ctx, "Account deleted").Log()

	c.JSON(http.StatusOK, constants.BuildSuccessResponse("Account deleted successfully"))
}

// Leaderboard returns the top players ordered by experience points.
func (h *UserHandler) Leaderboard(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Leaderboard")

	entries, err := h.userService.Leaderboard(ctx)
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		logger.ErrorWithContext(ctx, "Failed to fetch leaderboard").
			Int("http_status", status).
			Err(err).
			Log()
		c.JSON(status, constants.BuildErrorResponse("Failed to fetch leaderboard", apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusOK, dto.LeaderboardResponse{Success: true, Leaderboard: entries})
}

// MiniGames returns the static arcade catalog.
func (h *UserHandler) MiniGames(c *gin.Context) {
	c.JSON(http.StatusOK, dto.MiniGamesResponse{Success: true, MiniGames: service.MiniGames()})
}
