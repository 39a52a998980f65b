// Package media relays staged uploads to the object store and removes them again.
package media

import (
	"bytes"
	"context"
	"log/slog"
	"mime"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"vidtube/internal/models"
	"vidtube/internal/observability"

	"github.com/google/uuid"
)

// Kind tells the relay how to treat a file.
type Kind int

const (
	KindVideo Kind = iota
	KindImage
)

// Upload is a staged local file waiting to be relayed.
type Upload struct {
	Path string
	Kind Kind
	// Duration is the client-reported length in seconds; videos only.
	Duration float64
}

// Asset is a stored object.
type Asset struct {
	URL      string
	Key      string
	Duration float64
}

// Relay moves staged files into an ObjectStore.
type Relay struct {
	store   ObjectStore
	baseURL string
	// webp reports whether image uploads are re-encoded before storing.
	webp func() bool
}

// NewRelay creates a Relay. webpEnabled may be nil.
func NewRelay(store ObjectStore, baseURL string, webpEnabled func() bool) *Relay {
	if webpEnabled == nil {
		webpEnabled = func() bool { return false }
	}
	return &Relay{store: store, baseURL: strings.TrimSuffix(baseURL, "/"), webp: webpEnabled}
}

// Store uploads the staged file under a random key that keeps its extension. The
// local file is removed whatever the outcome. An empty path stores nothing.
func (r *Relay) Store(ctx context.Context, up Upload) (*Asset, error) {
	if up.Path == "" {
		return nil, nil
	}
	defer func() {
		if err := os.Remove(up.Path); err != nil && !os.IsNotExist(err) {
			slog.WarnContext(ctx, "failed to remove staged upload",
				slog.String("path", up.Path),
				slog.String("error", err.Error()),
			)
		}
	}()

	raw, err := os.ReadFile(up.Path)
	if err != nil {
		observability.MediaOperations.WithLabelValues("store", "error").Inc()
		return nil, models.NewInternalErrorMsg("Failed to read uploaded file", err)
	}

	ext := strings.ToLower(filepath.Ext(up.Path))
	body := raw
	if up.Kind == KindImage && r.webp() {
		if encoded, err := transcodeToWebP(raw); err == nil {
			body, ext = encoded, ".webp"
		} else {
			slog.WarnContext(ctx, "webp re-encode skipped", slog.String("error", err.Error()))
		}
	}

	key := uuid.NewString() + ext
	if err := r.store.Put(ctx, key, mime.TypeByExtension(ext), bytes.NewReader(body)); err != nil {
		observability.MediaOperations.WithLabelValues("store", "error").Inc()
		return nil, models.NewInternalErrorMsg("Failed to upload file", err)
	}
	observability.MediaOperations.WithLabelValues("store", "ok").Inc()

	asset := &Asset{URL: r.baseURL + "/" + key, Key: key}
	if up.Kind == KindVideo {
		asset.Duration = up.Duration
	}
	return asset, nil
}

// ObjectID derives the stored object id from its public URL: the last path segment
// without its extension.
func ObjectID(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		p = u.Path
	}
	base := path.Base(p)
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, path.Ext(base))
}

// Remove deletes every stored object sharing the URL's object id. Failures are
// logged, never returned.
func (r *Relay) Remove(ctx context.Context, rawURL string) {
	id := ObjectID(rawURL)
	if id == "" {
		return
	}

	keys, err := r.store.Keys(ctx, id)
	if err != nil {
		observability.MediaOperations.WithLabelValues("remove", "error").Inc()
		slog.ErrorContext(ctx, "failed to list media for removal",
			slog.String("object_id", id),
			slog.String("error", err.Error()),
		)
		return
	}

	for _, key := range keys {
		if strings.TrimSuffix(key, path.Ext(key)) != id {
			continue
		}
		if err := r.store.Delete(ctx, key); err != nil {
			observability.MediaOperations.WithLabelValues("remove", "error").Inc()
			slog.ErrorContext(ctx, "failed to delete media",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
			continue
		}
		observability.MediaOperations.WithLabelValues("remove", "ok").Inc()
	}
}
