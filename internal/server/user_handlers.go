package server

import (
	"strings"

	"vidtube/internal/models"
	"vidtube/internal/service"

	"github.com/gofiber/fiber/v2"
)

// sessionResponse is the body of login and refresh responses.
type sessionResponse struct {
	User         *models.User `json:"user,omitempty"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

// Register handles POST /api/v1/users/register
// @Summary Register a user
// @Description Multipart form with an avatar and an optional cover image
// @Tags users
// @Accept mpfd
// @Produce json
// @Param username formData string true "Username"
// @Param email formData string true "Email"
// @Param fullName formData string true "Full name"
// @Param password formData string true "Password"
// @Param avatar formData file true "Avatar image"
// @Param coverImage formData file false "Cover image"
// @Success 201 {object} models.APIResponse{data=models.User}
// @Failure 400 {object} models.APIResponse
// @Failure 409 {object} models.APIResponse
// @Router /users/register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	uploads := &stagedUploads{}
	defer uploads.cleanup()

	avatar, err := s.stage(c, uploads, "avatar")
	if err != nil {
		return err
	}
	cover, err := s.stage(c, uploads, "coverImage")
	if err != nil {
		return err
	}

	user, err := s.userService.Register(c.UserContext(), service.RegisterInput{
		Username:       c.FormValue("username"),
		Email:          c.FormValue("email"),
		FullName:       c.FormValue("fullName"),
		Password:       c.FormValue("password"),
		AvatarPath:     avatar,
		CoverImagePath: cover,
	})
	if err != nil {
		return err
	}
	return models.Created(c, user, "User Registered Successfully")
}

// Login handles POST /api/v1/users/login
// @Summary Log in
// @Description Accepts a username or an email. Tokens are also set as http-only cookies.
// @Tags users
// @Accept json
// @Produce json
// @Param request body object{usernameOrEmail=string,username=string,email=string,password=string} true "Credentials"
// @Success 200 {object} models.APIResponse{data=sessionResponse}
// @Failure 400 {object} models.APIResponse
// @Failure 401 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /users/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		UsernameOrEmail string `json:"usernameOrEmail" form:"usernameOrEmail"`
		Username        string `json:"username" form:"username"`
		Email           string `json:"email" form:"email"`
		Password        string `json:"password" form:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.NewValidationError("Invalid request body")
	}

	session, err := s.userService.Login(c.UserContext(), service.LoginInput{
		UsernameOrEmail: req.UsernameOrEmail,
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
	})
	if err != nil {
		return err
	}

	s.setSessionCookies(c, session.Tokens)
	return models.OK(c, sessionResponse{
		User:         session.User,
		AccessToken:  session.Tokens.AccessToken,
		RefreshToken: session.Tokens.RefreshToken,
	}, "User logged in successfully")
}

// Logout handles POST /api/v1/users/logout
// @Summary Log out
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse
// @Failure 401 {object} models.APIResponse
// @Router /users/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	if err := s.userService.Logout(c.UserContext(), currentUserID(c), currentClaims(c)); err != nil {
		return err
	}
	s.clearSessionCookies(c)
	return models.OK(c, fiber.Map{}, "User logged out successfully")
}

// RefreshToken handles POST /api/v1/users/refresh-token
// @Summary Rotate the session tokens
// @Description Reads the refresh token from the refreshToken cookie or the request body
// @Tags users
// @Accept json
// @Produce json
// @Param request body object{refreshToken=string} false "Refresh token"
// @Success 200 {object} models.APIResponse{data=sessionResponse}
// @Failure 401 {object} models.APIResponse
// @Router /users/refresh-token [post]
func (s *Server) RefreshToken(c *fiber.Ctx) error {
	presented := strings.TrimSpace(c.Cookies(refreshTokenCookie))
	if presented == "" {
		var req struct {
			RefreshToken string `json:"refreshToken" form:"refreshToken"`
		}
		_ = c.BodyParser(&req)
		presented = req.RefreshToken
	}

	session, err := s.userService.RefreshSession(c.UserContext(), presented)
	if err != nil {
		return err
	}

	s.setSessionCookies(c, session.Tokens)
	return models.OK(c, sessionResponse{
		AccessToken:  session.Tokens.AccessToken,
		RefreshToken: session.Tokens.RefreshToken,
	}, "Access token refreshed")
}

// ChangePassword handles PATCH /api/v1/users/change-password
// @Summary Change password
// @Description Ends the current session on success
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{oldPassword=string,newPassword=string} true "Passwords"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Router /users/change-password [patch]
func (s *Server) ChangePassword(c *fiber.Ctx) error {
	var req struct {
		OldPassword string `json:"oldPassword" form:"oldPassword"`
		NewPassword string `json:"newPassword" form:"newPassword"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.NewValidationError("Invalid request body")
	}

	ctx := c.UserContext()
	userID := currentUserID(c)
	if err := s.userService.ChangePassword(ctx, service.ChangePasswordInput{
		UserID:      userID,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	}); err != nil {
		return err
	}

	if err := s.userService.Logout(ctx, userID, currentClaims(c)); err != nil {
		return err
	}
	s.clearSessionCookies(c)
	return models.OK(c, fiber.Map{}, "Password changed successfully")
}

// GetMyProfile handles GET /api/v1/users/my-profile
// @Summary Current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse{data=models.User}
// @Router /users/my-profile [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	return models.OK(c, c.Locals("user"), "User profile retrieved successfully")
}

// UpdateProfile handles PATCH /api/v1/users/update-profile
// @Summary Update full name and email
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{fullName=string,email=string} true "Profile"
// @Success 200 {object} models.APIResponse{data=models.User}
// @Failure 400 {object} models.APIResponse
// @Failure 409 {object} models.APIResponse
// @Router /users/update-profile [patch]
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	var req struct {
		FullName string `json:"fullName" form:"fullName"`
		Email    string `json:"email" form:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.NewValidationError("Invalid request body")
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID:   currentUserID(c),
		FullName: req.FullName,
		Email:    req.Email,
	})
	if err != nil {
		return err
	}
	return models.OK(c, user, "Account details updated successfully")
}

// UpdateAvatar handles PATCH /api/v1/users/update-avatar
// @Summary Replace the avatar
// @Tags users
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param avatar formData file true "Avatar image"
// @Success 200 {object} models.APIResponse{data=models.User}
// @Router /users/update-avatar [patch]
func (s *Server) UpdateAvatar(c *fiber.Ctx) error {
	uploads := &stagedUploads{}
	defer uploads.cleanup()

	path, err := s.stage(c, uploads, "avatar")
	if err != nil {
		return err
	}
	user, err := s.userService.UpdateAvatar(c.UserContext(), currentUserID(c), path)
	if err != nil {
		return err
	}
	return models.OK(c, user, "Avatar updated successfully")
}

// UpdateCoverImage handles PATCH /api/v1/users/update-cover-image
// @Summary Replace the cover image
// @Tags users
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param coverImage formData file true "Cover image"
// @Success 200 {object} models.APIResponse{data=models.User}
// @Router /users/update-cover-image [patch]
func (s *Server) UpdateCoverImage(c *fiber.Ctx) error {
	uploads := &stagedUploads{}
	defer uploads.cleanup()

	path, err := s.stage(c, uploads, "coverImage")
	if err != nil {
		return err
	}
	user, err := s.userService.UpdateCoverImage(c.UserContext(), currentUserID(c), path)
	if err != nil {
		return err
	}
	return models.OK(c, user, "Cover image updated successfully")
}

// GetChannelProfile handles GET /api/v1/users/channel/:username
// @Summary Channel profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param username path string true "Channel username"
// @Success 200 {object} models.APIResponse{data=models.ChannelProfile}
// @Failure 404 {object} models.APIResponse
// @Router /users/channel/{username} [get]
func (s *Server) GetChannelProfile(c *fiber.Ctx) error {
	profile, err := s.userService.ChannelProfile(c.UserContext(), c.Params("username"), currentUserID(c))
	if err != nil {
		return err
	}
	return models.OK(c, profile, "User channel fetched successfully")
}

// GetWatchHistory handles GET /api/v1/users/watch-history
// @Summary Watch history
// @Description Most recently watched first
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse{data=[]models.Video}
// @Router /users/watch-history [get]
func (s *Server) GetWatchHistory(c *fiber.Ctx) error {
	videos, err := s.userService.WatchHistory(c.UserContext(), currentUserID(c))
	if err != nil {
		return err
	}
	return models.OK(c, videos, "Watch history fetched successfully")
}
