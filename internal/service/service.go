// Package service holds the business rules between HTTP handlers and repositories.
package service

import (
	"context"

	"vidtube/internal/auth"
	"vidtube/internal/media"
	"vidtube/internal/models"
	"vidtube/internal/notifications"
)

// MediaStore relays staged uploads to the media host and removes them again.
type MediaStore interface {
	Store(ctx context.Context, up media.Upload) (*media.Asset, error)
	Remove(ctx context.Context, url string)
}

// EventPublisher delivers a notification to one user.
type EventPublisher interface {
	Publish(ctx context.Context, userID uint, ev notifications.Event)
}

// SessionManager issues and revokes login sessions.
type SessionManager interface {
	IssueTokens(ctx context.Context, user *models.User) (auth.TokenPair, error)
	Refresh(ctx context.Context, presented string) (auth.TokenPair, *models.User, error)
	Revoke(ctx context.Context, userID uint) error
	RevokeAccessToken(ctx context.Context, claims *auth.AccessClaims) error
}

// notify publishes ev to recipient unless the actor is acting on their own content.
func notify(ctx context.Context, events EventPublisher, recipient uint, ev notifications.Event) {
	if events == nil || recipient == ev.ActorID {
		return
	}
	events.Publish(ctx, recipient, ev)
}
