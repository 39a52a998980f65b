// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	minPasswordLen = 8
	// bcrypt rejects longer inputs.
	maxPasswordLen = 72
	maxTitleLen    = 200
	maxContentLen  = 5000
	maxTags        = 20
)

var (
	usernameRegex = regexp.MustCompile(`^[a-z0-9_.-]{3,30}$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// NormalizeUsername lowercases the name and strips every space.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(username), " ", ""))
}

// NormalizeEmail lowercases and trims the address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateUsername checks a normalized username.
func ValidateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("Username must be 3-30 characters of letters, numbers, dots, underscores or hyphens")
	}
	return nil
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if len(email) > 254 || !emailRegex.MatchString(email) {
		return fmt.Errorf("Please provide a valid email address")
	}
	return nil
}

// ValidatePassword checks password length bounds.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLen {
		return fmt.Errorf("Password must be at least %d characters long", minPasswordLen)
	}
	if len(password) > maxPasswordLen {
		return fmt.Errorf("Password must not exceed %d bytes", maxPasswordLen)
	}
	return nil
}

// ValidateTitle bounds a video title.
func ValidateTitle(title string) error {
	if utf8.RuneCountInString(title) > maxTitleLen {
		return fmt.Errorf("Title must not exceed %d characters", maxTitleLen)
	}
	return nil
}

// ValidateContent bounds comment and tweet bodies.
func ValidateContent(content string) error {
	if utf8.RuneCountInString(content) > maxContentLen {
		return fmt.Errorf("Content must not exceed %d characters", maxContentLen)
	}
	return nil
}

// ParseTags splits a comma separated list, trimming entries and dropping
// empty ones and duplicates.
func ParseTags(raw string) ([]string, error) {
	tags := make([]string, 0)
	seen := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		tag := strings.TrimSpace(part)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		tags = append(tags, tag)
	}
	if len(tags) > maxTags {
		return nil, fmt.Errorf("At most %d tags are allowed", maxTags)
	}
	return tags, nil
}
