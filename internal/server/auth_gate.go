package server

import (
	"strings"

	"vidtube/internal/auth"
	"vidtube/internal/middleware"
	"vidtube/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"
)

// bearerToken returns the access token from the cookie, falling back to the
// Authorization header.
func bearerToken(c *fiber.Ctx) string {
	if token := strings.TrimSpace(c.Cookies(accessTokenCookie)); token != "" {
		return token
	}
	header := c.Get(fiber.HeaderAuthorization)
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// AuthRequired returns the authentication middleware
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return models.NewUnauthorizedError("Unauthorized request")
		}

		claims, err := s.issuer.ParseAccessToken(token)
		if err != nil {
			return err
		}

		revoked, err := s.issuer.IsAccessTokenRevoked(c.UserContext(), claims.ID)
		if err == nil && revoked {
			return models.NewUnauthorizedError("Token has been revoked")
		}

		userID, _ := claims.UserID()
		user, err := s.userRepo.GetProfile(c.UserContext(), userID)
		if err != nil {
			if models.IsNotFound(err) {
				return models.NewUnauthorizedError("Invalid access token")
			}
			return err
		}

		c.Locals("user", user)
		c.Locals("userID", user.ID)
		c.Locals("claims", claims)
		c.SetUserContext(middleware.WithUserID(c.UserContext(), user.ID))
		return c.Next()
	}
}

func currentUserID(c *fiber.Ctx) uint {
	id, _ := c.Locals("userID").(uint)
	return id
}

func currentClaims(c *fiber.Ctx) *auth.AccessClaims {
	claims, _ := c.Locals("claims").(*auth.AccessClaims)
	return claims
}
