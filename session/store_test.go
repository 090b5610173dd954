package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newSessionStoreTest(t *testing.T) (*Store, *miniredis.Miniredis, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewStore(rdb, "oa")
	return store, mr, func() {
		rdb.Close()
		mr.Close()
	}
}

func testSession(id string) *Session {
	now := time.Now()
	return &Session{
		SessionID:    id,
		UserID:       "user-1",
		AccessToken:  "h." + strings.Repeat("p", 600) + ".s",
		RefreshToken: "refresh-1",
		CreatedAt:    now.Unix(),
		ExpiresAt:    now.Add(time.Hour).Unix(),
	}
}

func TestStoreSaveCurrentDelete(t *testing.T) {
	store, _, done := newSessionStoreTest(t)
	defer done()
	ctx := context.Background()

	if _, err := store.Current(ctx); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession before save, got %v", err)
	}

	sess := testSession("sid-1")
	if err := store.Save(ctx, sess, time.Hour); err != nil {
		t.Fatalf("save session: %v", err)
	}
	got, err := store.Current(ctx)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if *got != *sess {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, sess)
	}

	existed, err := store.Delete(ctx)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !existed {
		t.Fatal("expected delete to report an existing session")
	}
	if _, err := store.Current(ctx); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession after delete, got %v", err)
	}
}

func TestStoreDeleteIdempotent(t *testing.T) {
	store, _, done := newSessionStoreTest(t)
	defer done()
	ctx := context.Background()

	if err := store.Save(ctx, testSession("sid-1"), time.Hour); err != nil {
		t.Fatalf("save session: %v", err)
	}
	if _, err := store.Delete(ctx); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	existed, err := store.Delete(ctx)
	if err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if existed {
		t.Fatal("second delete should report nothing removed")
	}
}

func TestStoreSaveReplacesPreviousSession(t *testing.T) {
	store, mr, done := newSessionStoreTest(t)
	defer done()
	ctx := context.Background()

	if err := store.Save(ctx, testSession("sid-1"), time.Hour); err != nil {
		t.Fatalf("save first: %v", err)
	}
	if err := store.Save(ctx, testSession("sid-2"), time.Hour); err != nil {
		t.Fatalf("save second: %v", err)
	}

	if mr.Exists("oa:s:sid-1") {
		t.Fatal("previous session blob should be removed on replace")
	}
	got, err := store.Current(ctx)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if got.SessionID != "sid-2" {
		t.Fatalf("expected sid-2 current, got %s", got.SessionID)
	}
}

func TestStoreTTL(t *testing.T) {
	store, mr, done := newSessionStoreTest(t)
	defer done()
	ctx := context.Background()

	if err := store.Save(ctx, testSession("sid-1"), time.Minute); err != nil {
		t.Fatalf("save: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if _, err := store.Current(ctx); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected session to expire, got %v", err)
	}

	if err := store.Save(ctx, testSession("sid-2"), 0); err != nil {
		t.Fatalf("save without ttl: %v", err)
	}
	if ttl := mr.TTL("oa:s:sid-2"); ttl != 0 {
		t.Fatalf("expected no expiry, got %v", ttl)
	}
}

func TestStoreRedisUnavailable(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()
	store := NewStore(rdb, "oa")
	mr.Close()

	if err := store.Save(context.Background(), testSession("sid-1"), time.Hour); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable, got %v", err)
	}
}

func TestKeeperLifecycle(t *testing.T) {
	store, _, done := newSessionStoreTest(t)
	defer done()
	ctx := context.Background()

	fixed := time.Unix(1700000000, 0)
	keeper := NewKeeper(store, time.Hour,
		WithClock(func() time.Time { return fixed }),
		WithIDGenerator(func() string { return "sid-fixed" }),
	)

	if err := keeper.StartSession(ctx, "acc", "ref", "user-9"); err != nil {
		t.Fatalf("start session: %v", err)
	}
	sess, err := keeper.Current(ctx)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if sess.SessionID != "sid-fixed" || sess.UserID != "user-9" || sess.AccessToken != "acc" || sess.RefreshToken != "ref" {
		t.Fatalf("unexpected session %+v", sess)
	}
	if sess.ExpiresAt != fixed.Add(time.Hour).Unix() {
		t.Fatalf("unexpected expiry %d", sess.ExpiresAt)
	}

	if err := keeper.EndSession(ctx); err != nil {
		t.Fatalf("end session: %v", err)
	}
	if err := keeper.EndSession(ctx); err != nil {
		t.Fatalf("second end session: %v", err)
	}
	if _, err := keeper.Current(ctx); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestKeeperGeneratesUUIDs(t *testing.T) {
	store, _, done := newSessionStoreTest(t)
	defer done()
	ctx := context.Background()

	keeper := NewKeeper(store, 0)
	if err := keeper.StartSession(ctx, "acc", "", "user-1"); err != nil {
		t.Fatalf("start session: %v", err)
	}
	sess, err := keeper.Current(ctx)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if len(sess.SessionID) != 36 {
		t.Fatalf("expected uuid session id, got %q", sess.SessionID)
	}
	if sess.ExpiresAt != 0 {
		t.Fatalf("expected no expiry without ttl, got %d", sess.ExpiresAt)
	}
}
