package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps any Redis transport failure.
var ErrRedisUnavailable = errors.New("redis unavailable")

// ErrNoSession is returned by Current when nobody is signed in.
var ErrNoSession = errors.New("no current session")

const replaceSessionScript = `
local old = redis.call("GET", KEYS[1])
if old then
  redis.call("DEL", ARGV[1] .. old)
end
local ttl = tonumber(ARGV[4])
if ttl > 0 then
  redis.call("SET", ARGV[1] .. ARGV[2], ARGV[3], "PX", ttl)
  redis.call("SET", KEYS[1], ARGV[2], "PX", ttl)
else
  redis.call("SET", ARGV[1] .. ARGV[2], ARGV[3])
  redis.call("SET", KEYS[1], ARGV[2])
end
return 1
`

const deleteCurrentScript = `
local sid = redis.call("GET", KEYS[1])
if not sid then
  return 0
end
redis.call("DEL", KEYS[1])
return redis.call("DEL", ARGV[1] .. sid)
`

var (
	replaceSessionLua = redis.NewScript(replaceSessionScript)
	deleteCurrentLua  = redis.NewScript(deleteCurrentScript)
)

// Store keeps session blobs under "<prefix>:s:<id>" and the current session
// id under "<prefix>:current".
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

func NewStore(rdb redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "oauth"
	}
	return &Store{redis: rdb, prefix: prefix}
}

func (s *Store) sessionKeyPrefix() string {
	return s.prefix + ":s:"
}

func (s *Store) currentKey() string {
	return s.prefix + ":current"
}

// Save stores sess and makes it current, removing any previous current
// session in the same script. A non-positive ttl stores without expiry.
func (s *Store) Save(ctx context.Context, sess *Session, ttl time.Duration) error {
	if sess == nil || sess.SessionID == "" {
		return errors.New("session: save requires a session id")
	}
	data, err := Encode(sess)
	if err != nil {
		return err
	}

	err = replaceSessionLua.Run(ctx, s.redis,
		[]string{s.currentKey()},
		s.sessionKeyPrefix(), sess.SessionID, data, ttl.Milliseconds(),
	).Err()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Current returns the current session or ErrNoSession.
func (s *Store) Current(ctx context.Context) (*Session, error) {
	sid, err := s.redis.Get(ctx, s.currentKey()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	data, err := s.redis.Get(ctx, s.sessionKeyPrefix()+sid).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	sess, err := Decode(data)
	if err != nil {
		return nil, err
	}
	sess.SessionID = sid
	return sess, nil
}

// Delete removes the current session. It reports whether a session blob
// existed; deleting with nothing current is not an error.
func (s *Store) Delete(ctx context.Context) (bool, error) {
	n, err := deleteCurrentLua.Run(ctx, s.redis, []string{s.currentKey()}, s.sessionKeyPrefix()).Int64()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return n == 1, nil
}
