package sink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/rueidis"

	"fjacquet/sms-ledger/internal/models"
)

// DefaultRedisKeyPrefix namespaces every key the Redis store writes.
const DefaultRedisKeyPrefix = "smsledger:"

// upsertScript records a new fingerprint in the order list and stores the
// transaction body in one step. The push runs first so a failing push
// leaves nothing behind. Returns 1 on insert and 0 when the key exists.
var upsertScript = rueidis.NewLuaScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  return 0
end
redis.call('RPUSH', KEYS[2], ARGV[2])
redis.call('SET', KEYS[1], ARGV[1])
return 1
`)

// RedisStore keeps transactions as JSON strings keyed by user and
// fingerprint. A Lua script decides between insert and duplicate and
// indexes the insert in a per-user list that records insertion order.
// A per-user hash holds accounts.
type RedisStore struct {
	client rueidis.Client
	prefix string

	// runUpsert executes upsertScript; replaced in tests.
	runUpsert func(ctx context.Context, keys, args []string) (int64, error)
}

// NewRedisStore connects to addr and pings the server.
func NewRedisStore(ctx context.Context, addr string) (*RedisStore, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:      []string{addr},
		ConnWriteTimeout: 3 * time.Second,
		MaxFlushDelay:    100 * time.Microsecond,
	})
	if err != nil {
		return nil, fmt.Errorf("redis: failed to create client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Do(pingCtx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis: failed to ping server: %w", err)
	}
	return NewRedisStoreWithClient(client, DefaultRedisKeyPrefix), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client rueidis.Client, prefix string) *RedisStore {
	r := &RedisStore{client: client, prefix: prefix}
	r.runUpsert = func(ctx context.Context, keys, args []string) (int64, error) {
		return upsertScript.Exec(ctx, r.client, keys, args).AsInt64()
	}
	return r
}

// Transaction and order keys share the {userID} hash tag so the upsert
// script touches a single cluster slot.
func (r *RedisStore) txKey(userID, fingerprint string) string {
	return r.prefix + "tx:{" + userID + "}:" + fingerprint
}

func (r *RedisStore) orderKey(userID string) string {
	return r.prefix + "txorder:{" + userID + "}"
}

func (r *RedisStore) accountsKey(userID string) string {
	return r.prefix + "accounts:" + userID
}

// Name returns the driver name.
func (r *RedisStore) Name() string {
	return "redis"
}

// Upsert implements Sink.
func (r *RedisStore) Upsert(ctx context.Context, tx models.Transaction) (UpsertResult, error) {
	data, err := json.Marshal(tx)
	if err != nil {
		return Inserted, fmt.Errorf("redis upsert: failed to marshal: %w", err)
	}

	keys := []string{r.txKey(tx.UserID, tx.Fingerprint), r.orderKey(tx.UserID)}
	inserted, err := r.runUpsert(ctx, keys, []string{string(data), tx.Fingerprint})
	if err != nil {
		return Inserted, fmt.Errorf("redis upsert: %w", err)
	}
	if inserted == 0 {
		return Duplicate, nil
	}
	return Inserted, nil
}

// List implements Sink.
func (r *RedisStore) List(ctx context.Context, userID string) ([]models.Transaction, error) {
	fingerprints, err := r.client.Do(ctx, r.client.B().Lrange().Key(r.orderKey(userID)).Start(0).Stop(-1).Build()).AsStrSlice()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis list: %w", err)
	}
	if len(fingerprints) == 0 {
		return nil, nil
	}

	cmds := make([]rueidis.Completed, len(fingerprints))
	for i, fp := range fingerprints {
		cmds[i] = r.client.B().Get().Key(r.txKey(userID, fp)).Build()
	}

	out := make([]models.Transaction, 0, len(fingerprints))
	var errs []error
	for i, resp := range r.client.DoMulti(ctx, cmds...) {
		data, err := resp.AsBytes()
		if err != nil {
			if !rueidis.IsRedisNil(err) {
				errs = append(errs, fmt.Errorf("fingerprint %s: %w", fingerprints[i], err))
			}
			continue
		}
		var tx models.Transaction
		if err := json.Unmarshal(data, &tx); err != nil {
			errs = append(errs, fmt.Errorf("fingerprint %s: failed to unmarshal: %w", fingerprints[i], err))
			continue
		}
		out = append(out, tx)
	}
	if len(errs) > 0 {
		return out, fmt.Errorf("redis list: %w", errors.Join(errs...))
	}
	return out, nil
}

// Accounts implements AccountStore.
func (r *RedisStore) Accounts(ctx context.Context, userID string) ([]models.Account, error) {
	fields, err := r.client.Do(ctx, r.client.B().Hgetall().Key(r.accountsKey(userID)).Build()).AsStrMap()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis accounts: %w", err)
	}

	ids := make([]string, 0, len(fields))
	for id := range fields {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]models.Account, 0, len(ids))
	for _, id := range ids {
		var a models.Account
		if err := json.Unmarshal([]byte(fields[id]), &a); err != nil {
			return nil, fmt.Errorf("redis accounts: account %s: %w", id, err)
		}
		out = append(out, a)
	}
	return out, nil
}

// SaveAccount implements AccountStore.
func (r *RedisStore) SaveAccount(ctx context.Context, a models.Account) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("redis save account: failed to marshal: %w", err)
	}
	cmd := r.client.B().Hset().Key(r.accountsKey(a.UserID)).FieldValue().FieldValue(a.ID, string(data)).Build()
	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("redis save account: %w", err)
	}
	return nil
}

// Close closes the client.
func (r *RedisStore) Close() error {
	r.client.Close()
	return nil
}
