package historystore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/label-insight/internal/domain/history"
)

// ValkeyStore keeps each user's history as a capped list.
type ValkeyStore struct {
	client valkey.Client
	prefix string
	ttl    time.Duration
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string, ttl time.Duration) *ValkeyStore {
	if prefix == "" {
		prefix = "history"
	}
	return &ValkeyStore{client: client, prefix: prefix, ttl: ttl}
}

// Append pushes entry to the head of the list, trims it and refreshes the TTL in one round trip.
func (s *ValkeyStore) Append(ctx context.Context, userID int64, entry history.Entry, limit int) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	key := s.key(userID)
	cmds := valkey.Commands{
		s.client.B().Lpush().Key(key).Element(string(payload)).Build(),
	}
	if limit > 0 {
		cmds = append(cmds, s.client.B().Ltrim().Key(key).Start(0).Stop(int64(limit-1)).Build())
	}
	if s.ttl > 0 {
		seconds := int64(s.ttl / time.Second)
		if seconds < 1 {
			seconds = 1
		}
		cmds = append(cmds, s.client.B().Expire().Key(key).Seconds(seconds).Build())
	}
	for _, resp := range s.client.DoMulti(ctx, cmds...) {
		if err := resp.Error(); err != nil {
			return err
		}
	}
	return nil
}

// Recent returns up to limit entries, newest first. Undecodable items are skipped.
func (s *ValkeyStore) Recent(ctx context.Context, userID int64, limit int) ([]history.Entry, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	items, err := s.client.Do(ctx, s.client.B().Lrange().Key(s.key(userID)).Start(0).Stop(stop).Build()).AsStrSlice()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, nil
		}
		return nil, err
	}
	out := make([]history.Entry, 0, len(items))
	for _, item := range items {
		var entry history.Entry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

func (s *ValkeyStore) key(userID int64) string {
	return fmt.Sprintf("%s:%d", s.prefix, userID)
}

var _ history.Store = (*ValkeyStore)(nil)
