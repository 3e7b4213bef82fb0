// Package pending provides a Redis-backed store for in-flight registrations.
//
// Each email maps to exactly one key, which keeps the at-most-one-live-record
// invariant trivially true: a new registration attempt plainly overwrites the
// previous one. The key TTL reaps abandoned records in the background, but
// expiry is also checked explicitly against the stored expires_at on every
// consume, so correctness never depends on the reaper.
package pending

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/emotify/accounts/internal/server/models"
)

var (
	ErrPendingNotFound  = errors.New("pending registration not found")
	ErrCodeMismatch     = errors.New("pending registration code mismatch")
	ErrRedisUnavailable = errors.New("pending store redis unavailable")
	ErrRecordCorrupt    = errors.New("pending registration record corrupt")
)

// consumeLua atomically performs GET -> expiry check -> code check -> DEL.
// KEYS[1] = record key
// ARGV[1] = submitted code
// ARGV[2] = current unix timestamp
//
// A code mismatch leaves the record untouched so the user may retry with the
// correct code; a match deletes it in the same round trip, which is what
// makes a second verify with the consumed code fail.
var consumeLua = redis.NewScript(`
local data = redis.call('GET', KEYS[1])
if not data then
  return {err='not_found'}
end
local rec = cjson.decode(data)
if tonumber(ARGV[2]) > tonumber(rec['expires_at']) then
  redis.call('DEL', KEYS[1])
  return {err='expired'}
end
if rec['code'] ~= ARGV[1] then
  return {err='code_mismatch'}
end
redis.call('DEL', KEYS[1])
return data
`)

// refreshLua atomically replaces the code on an existing record and restarts
// its expiry window. It never creates a record from nothing.
// KEYS[1] = record key
// ARGV[1] = new code
// ARGV[2] = new expires_at unix timestamp
// ARGV[3] = ttl in milliseconds
var refreshLua = redis.NewScript(`
local data = redis.call('GET', KEYS[1])
if not data then
  return {err='not_found'}
end
local rec = cjson.decode(data)
rec['code'] = ARGV[1]
rec['expires_at'] = tonumber(ARGV[2])
local encoded = cjson.encode(rec)
redis.call('SET', KEYS[1], encoded, 'PX', ARGV[3])
return encoded
`)

// RedisRepository implements Repository on a Redis client.
type RedisRepository struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisRepository constructs a store using the given client and key prefix.
// An empty prefix defaults to "otp".
func NewRedisRepository(client redis.UniversalClient, prefix string) *RedisRepository {
	if prefix == "" {
		prefix = "otp"
	}
	return &RedisRepository{redis: client, prefix: prefix}
}

func (r *RedisRepository) key(email string) string {
	return r.prefix + ":" + email
}

// Save writes the record under its email key with the given TTL, replacing
// any record a previous registration attempt left behind.
func (r *RedisRepository) Save(ctx context.Context, rec *models.PendingRegistration, ttl time.Duration) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRecordCorrupt, err)
	}
	if err := r.redis.Set(ctx, r.key(rec.Email), payload, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Consume validates the submitted code against the stored record and deletes
// the record on a match. Missing and expired records both come back as
// ErrPendingNotFound; a mismatch returns ErrCodeMismatch and leaves the
// record in place.
func (r *RedisRepository) Consume(ctx context.Context, email, code string) (*models.PendingRegistration, error) {
	result, err := consumeLua.Run(ctx, r.redis,
		[]string{r.key(email)},
		code,
		time.Now().Unix(),
	).Result()
	if err != nil {
		switch err.Error() {
		case "not_found", "expired":
			return nil, ErrPendingNotFound
		case "code_mismatch":
			return nil, ErrCodeMismatch
		default:
			return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}
	return decodeRecord(result)
}

// Refresh swaps in a new code and restarts the expiry window on an existing
// record, returning the updated record. A missing record (expired or never
// created) returns ErrPendingNotFound.
func (r *RedisRepository) Refresh(ctx context.Context, email, code string, ttl time.Duration) (*models.PendingRegistration, error) {
	result, err := refreshLua.Run(ctx, r.redis,
		[]string{r.key(email)},
		code,
		time.Now().Add(ttl).Unix(),
		ttl.Milliseconds(),
	).Result()
	if err != nil {
		if err.Error() == "not_found" {
			return nil, ErrPendingNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return decodeRecord(result)
}

func decodeRecord(result any) (*models.PendingRegistration, error) {
	data, ok := result.(string)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected lua result type", ErrRedisUnavailable)
	}
	rec := &models.PendingRegistration{}
	if err := json.Unmarshal([]byte(data), rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecordCorrupt, err)
	}
	return rec, nil
}
