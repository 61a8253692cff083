package domain

import (
	"context"
	"time"
)

// Session is an authenticated caller bound to a bearer token.
type Session struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionStore persists login sessions with a TTL.
type SessionStore interface {
	Create(ctx context.Context, s Session, ttl time.Duration) error
	Get(ctx context.Context, token string) (Session, error)
	Delete(ctx context.Context, token string) error
}

// SignalBus provides publish/subscribe messaging for live state fan-out.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	// Subscribe returns a channel of raw payloads. The subscription closes
	// when the context is cancelled; the returned channel is closed then too.
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}

// RateLimiter limits the rate of operations per key.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
