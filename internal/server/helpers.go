package server

import (
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"vidtube/internal/auth"
	"vidtube/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// parseID extracts a route parameter by name as a positive uint.
// The error message is derived from the parameter name (e.g. "videoId" -> "Invalid video ID").
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(param), 10, 64)
	if err != nil || id == 0 {
		return 0, models.NewValidationError("Invalid " + humanizeParam(param))
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "videoId" -> "video ID", "subscriberId" -> "subscriber ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		return strings.ToLower(strings.Join(splitCamel(param[:len(param)-2]), " ")) + " ID"
	}
	return param
}

func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	return append(words, s[start:])
}

func queryPage(c *fiber.Ctx) (page, limit int) {
	return c.QueryInt("page", 1), c.QueryInt("limit", 10)
}

// setSessionCookies writes both tokens as http-only cookies.
func (s *Server) setSessionCookies(c *fiber.Ctx, tokens auth.TokenPair) {
	c.Cookie(s.sessionCookie(accessTokenCookie, tokens.AccessToken))
	c.Cookie(s.sessionCookie(refreshTokenCookie, tokens.RefreshToken))
}

func (s *Server) clearSessionCookies(c *fiber.Ctx) {
	for _, name := range []string{accessTokenCookie, refreshTokenCookie} {
		cookie := s.sessionCookie(name, "")
		cookie.MaxAge = -1
		c.Cookie(cookie)
	}
}

func (s *Server) sessionCookie(name, value string) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HTTPOnly: true,
		Secure:   s.config.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}

// stagedUploads tracks multipart files written to the temp dir for one request.
// Files the media relay did not consume are removed by cleanup.
type stagedUploads struct {
	paths []string
}

func (u *stagedUploads) cleanup() {
	for _, p := range u.paths {
		_ = os.Remove(p)
	}
}

// stage saves the multipart file field to the upload temp dir and returns its
// path. A missing field returns "".
func (s *Server) stage(c *fiber.Ctx, u *stagedUploads, field string) (string, error) {
	file, err := c.FormFile(field)
	if err != nil || file == nil {
		return "", nil
	}
	return s.saveUpload(c, u, file)
}

func (s *Server) saveUpload(c *fiber.Ctx, u *stagedUploads, file *multipart.FileHeader) (string, error) {
	dir := s.config.UploadTempDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", models.NewInternalErrorMsg("Failed to stage upload", err)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	path := filepath.Join(dir, uuid.NewString()+ext)
	if err := c.SaveFile(file, path); err != nil {
		return "", models.NewInternalErrorMsg("Failed to stage upload", err)
	}
	u.paths = append(u.paths, path)
	return path, nil
}

// optionalString returns a pointer to the trimmed form value, or nil when the
// field was not sent.
func optionalString(c *fiber.Ctx, field string) *string {
	if form, err := c.MultipartForm(); err == nil {
		if values, ok := form.Value[field]; ok && len(values) > 0 {
			v := values[0]
			return &v
		}
		return nil
	}
	raw := c.FormValue(field)
	if raw == "" {
		return nil
	}
	return &raw
}
