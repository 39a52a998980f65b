// Package featureflags evaluates FEATURE_FLAGS entries such as
// "webp_images=on,new_search=25%".
package featureflags

import (
	"hash/fnv"
	"strconv"
	"strings"
)

// Flags known to the application.
const (
	// WebPImages re-encodes uploaded images as WebP before storing them.
	WebPImages = "webp_images"
)

// Set holds parsed flag values.
type Set struct {
	values map[string]string
}

// Parse reads a comma separated list of name=value pairs. Malformed pairs are ignored.
func Parse(raw string) *Set {
	values := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		name, value = normalize(name), normalize(value)
		if name == "" || value == "" {
			continue
		}
		values[name] = value
	}
	return &Set{values: values}
}

// On reports whether a flag is switched on globally. Percentage rollouts are
// only on at 100%.
func (s *Set) On(name string) bool {
	return s.For(name, 0)
}

// For evaluates a flag for one user. "on", "true" and "1" enable it; "N%"
// enables it for a stable N percent of users.
func (s *Set) For(name string, userID uint) bool {
	if s == nil {
		return false
	}
	value, ok := s.values[normalize(name)]
	if !ok {
		return false
	}
	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}

	pct, err := strconv.Atoi(strings.TrimSuffix(value, "%"))
	if err != nil || !strings.HasSuffix(value, "%") || pct <= 0 {
		return false
	}
	if pct >= 100 {
		return true
	}
	if userID == 0 {
		return false
	}
	return bucket(name, userID) < pct
}

// Enabled lists every flag that is on for userID.
func (s *Set) Enabled(userID uint) []string {
	if s == nil {
		return nil
	}
	var out []string
	for name := range s.values {
		if s.For(name, userID) {
			out = append(out, name)
		}
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func bucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(normalize(name) + ":" + strconv.FormatUint(uint64(userID), 10)))
	return int(h.Sum32() % 100)
}
