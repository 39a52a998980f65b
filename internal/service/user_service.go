package service

import (
	"context"
	"strings"

	"vidtube/internal/auth"
	"vidtube/internal/media"
	"vidtube/internal/models"
	"vidtube/internal/repository"
	"vidtube/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	userRepo repository.UserRepository
	sessions SessionManager
	media    MediaStore
}

type RegisterInput struct {
	Username       string
	Email          string
	FullName       string
	Password       string
	AvatarPath     string
	CoverImagePath string
}

type LoginInput struct {
	// UsernameOrEmail is matched against both columns. Username and Email
	// are used when it is empty.
	UsernameOrEmail string
	Username        string
	Email           string
	Password        string
}

type ChangePasswordInput struct {
	UserID      uint
	OldPassword string
	NewPassword string
}

type UpdateProfileInput struct {
	UserID   uint
	FullName string
	Email    string
}

// Session is the result of a successful login or refresh.
type Session struct {
	User   *models.User
	Tokens auth.TokenPair
}

func NewUserService(userRepo repository.UserRepository, sessions SessionManager, mediaStore MediaStore) *UserService {
	return &UserService{
		userRepo: userRepo,
		sessions: sessions,
		media:    mediaStore,
	}
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	username := validation.NormalizeUsername(in.Username)
	email := validation.NormalizeEmail(in.Email)
	fullName := strings.TrimSpace(in.FullName)
	if username == "" || email == "" || fullName == "" || strings.TrimSpace(in.Password) == "" {
		return nil, models.NewValidationError("Please provide all the required fields")
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	existing, err := s.userRepo.FindByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("User already exists")
	}

	if in.AvatarPath == "" {
		return nil, models.NewValidationError("Please provide an avatar image")
	}
	avatar, err := s.media.Store(ctx, media.Upload{Path: in.AvatarPath, Kind: media.KindImage})
	if err != nil {
		return nil, models.NewInternalErrorMsg("An error occurred while uploading the image", err)
	}
	cover, err := s.media.Store(ctx, media.Upload{Path: in.CoverImagePath, Kind: media.KindImage})
	if err != nil {
		s.media.Remove(ctx, avatar.URL)
		return nil, models.NewInternalErrorMsg("An error occurred while uploading the image", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		FullName: fullName,
		Avatar:   avatar.URL,
		Password: string(hash),
	}
	if cover != nil {
		user.CoverImage = cover.URL
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		s.media.Remove(ctx, user.Avatar)
		if user.CoverImage != "" {
			s.media.Remove(ctx, user.CoverImage)
		}
		return nil, err
	}

	return s.userRepo.GetProfile(ctx, user.ID)
}

func (s *UserService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	username := validation.NormalizeUsername(in.Username)
	email := validation.NormalizeEmail(in.Email)
	if id := strings.TrimSpace(in.UsernameOrEmail); id != "" {
		username = validation.NormalizeUsername(id)
		email = validation.NormalizeEmail(id)
	}
	if username == "" && email == "" {
		return nil, models.NewValidationError("Username or email is required")
	}
	if in.Password == "" {
		return nil, models.NewValidationError("Password is required")
	}

	user, err := s.userRepo.FindByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User does not exist")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid user credentials")
	}

	tokens, err := s.sessions.IssueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	profile, err := s.userRepo.GetProfile(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{User: profile, Tokens: tokens}, nil
}

// Logout clears the stored refresh token and, when claims are given, revokes
// the access token that made the request.
func (s *UserService) Logout(ctx context.Context, userID uint, claims *auth.AccessClaims) error {
	if err := s.sessions.Revoke(ctx, userID); err != nil {
		return err
	}
	if claims != nil {
		return s.sessions.RevokeAccessToken(ctx, claims)
	}
	return nil
}

func (s *UserService) RefreshSession(ctx context.Context, presented string) (*Session, error) {
	tokens, user, err := s.sessions.Refresh(ctx, strings.TrimSpace(presented))
	if err != nil {
		return nil, err
	}
	profile, err := s.userRepo.GetProfile(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{User: profile, Tokens: tokens}, nil
}

// ChangePassword replaces the password and ends the current session.
func (s *UserService) ChangePassword(ctx context.Context, in ChangePasswordInput) error {
	if in.OldPassword == "" || in.NewPassword == "" {
		return models.NewValidationError("Old password and new password are required")
	}
	if err := validation.ValidatePassword(in.NewPassword); err != nil {
		return models.NewValidationError(err.Error())
	}

	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.OldPassword)); err != nil {
		return models.NewValidationError("Invalid old password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.NewInternalError(err)
	}
	if err := s.userRepo.UpdateFields(ctx, user.ID, map[string]any{"password": string(hash)}); err != nil {
		return err
	}
	return s.sessions.Revoke(ctx, user.ID)
}

func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	return s.userRepo.GetProfile(ctx, userID)
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	fullName := strings.TrimSpace(in.FullName)
	email := validation.NormalizeEmail(in.Email)
	if fullName == "" || email == "" {
		return nil, models.NewValidationError("Full name and email are required")
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if err := s.userRepo.UpdateFields(ctx, in.UserID, map[string]any{
		"full_name": fullName,
		"email":     email,
	}); err != nil {
		return nil, err
	}
	return s.userRepo.GetProfile(ctx, in.UserID)
}

func (s *UserService) UpdateAvatar(ctx context.Context, userID uint, stagedPath string) (*models.User, error) {
	return s.replaceImage(ctx, userID, stagedPath, "avatar", "Avatar file is missing")
}

func (s *UserService) UpdateCoverImage(ctx context.Context, userID uint, stagedPath string) (*models.User, error) {
	return s.replaceImage(ctx, userID, stagedPath, "cover_image", "Cover image file is missing")
}

// replaceImage stores the new image, points column at it and drops the old one.
func (s *UserService) replaceImage(ctx context.Context, userID uint, stagedPath, column, missing string) (*models.User, error) {
	if stagedPath == "" {
		return nil, models.NewValidationError(missing)
	}
	current, err := s.userRepo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	asset, err := s.media.Store(ctx, media.Upload{Path: stagedPath, Kind: media.KindImage})
	if err != nil {
		return nil, models.NewInternalErrorMsg("An error occurred while uploading the image", err)
	}
	if err := s.userRepo.UpdateFields(ctx, userID, map[string]any{column: asset.URL}); err != nil {
		s.media.Remove(ctx, asset.URL)
		return nil, err
	}

	old := current.Avatar
	if column == "cover_image" {
		old = current.CoverImage
	}
	if old != "" {
		s.media.Remove(ctx, old)
	}
	return s.userRepo.GetProfile(ctx, userID)
}

func (s *UserService) ChannelProfile(ctx context.Context, username string, viewerID uint) (*models.ChannelProfile, error) {
	username = validation.NormalizeUsername(username)
	if username == "" {
		return nil, models.NewValidationError("Username is missing")
	}
	return s.userRepo.ChannelProfile(ctx, username, viewerID)
}

func (s *UserService) WatchHistory(ctx context.Context, userID uint) ([]*models.Video, error) {
	return s.userRepo.WatchHistory(ctx, userID)
}
