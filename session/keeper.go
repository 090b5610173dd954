package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Keeper starts and ends the local session on a [Store].
type Keeper struct {
	store *Store
	ttl   time.Duration
	now   func() time.Time
	newID func() string
}

type KeeperOption func(*Keeper)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) KeeperOption {
	return func(k *Keeper) {
		if now != nil {
			k.now = now
		}
	}
}

// WithIDGenerator overrides the uuid session id generator.
func WithIDGenerator(newID func() string) KeeperOption {
	return func(k *Keeper) {
		if newID != nil {
			k.newID = newID
		}
	}
}

// NewKeeper returns a Keeper whose sessions live for ttl. A non-positive ttl
// keeps sessions until EndSession.
func NewKeeper(store *Store, ttl time.Duration, opts ...KeeperOption) *Keeper {
	k := &Keeper{
		store: store,
		ttl:   ttl,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

func (k *Keeper) StartSession(ctx context.Context, accessToken, refreshToken, userID string) error {
	now := k.now()
	sess := &Session{
		SessionID:    k.newID(),
		UserID:       userID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		CreatedAt:    now.Unix(),
	}
	if k.ttl > 0 {
		sess.ExpiresAt = now.Add(k.ttl).Unix()
	}
	return k.store.Save(ctx, sess, k.ttl)
}

// EndSession removes the current session. It is idempotent.
func (k *Keeper) EndSession(ctx context.Context) error {
	_, err := k.store.Delete(ctx)
	return err
}

// Current returns the signed-in session.
func (k *Keeper) Current(ctx context.Context) (*Session, error) {
	return k.store.Current(ctx)
}
