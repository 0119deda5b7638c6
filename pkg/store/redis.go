package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-redis/redis/v8"

	"github.com/netreclaim/reclaim/pkg/util"
)

// Redis key layout.
const (
	redisPrefix     = "reclaim:"
	redisDevicesKey = redisPrefix + "devices"
	// redisHistoryLen bounds the per-device history list.
	redisHistoryLen = 100
)

func redisLatestKey(device string) string  { return redisPrefix + "snapshot:" + device }
func redisHistoryKey(device string) string { return redisPrefix + "history:" + device }

// Redis keeps the latest entry per device as a string key, a bounded history
// list per device and a set of device names.
type Redis struct {
	client *redis.Client
	tunnel *sshTunnel
}

// OpenRedis connects to url and checks the connection. A redis+ssh:// url
// reaches Redis through an SSH jump host.
func OpenRedis(url string) (*Redis, error) {
	ctx := context.Background()
	var tunnel *sshTunnel
	if strings.HasPrefix(url, "redis+ssh://") {
		c, err := parseTunnelURL(url)
		if err != nil {
			return nil, err
		}
		if tunnel, err = dialTunnel(ctx, c); err != nil {
			return nil, err
		}
		url = c.redisURL
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		if tunnel != nil {
			tunnel.Close()
		}
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	if tunnel != nil {
		opts.Dialer = tunnel.Dial
	}
	r := &Redis{client: redis.NewClient(opts), tunnel: tunnel}
	if err := r.client.Ping(ctx).Err(); err != nil {
		r.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return r, nil
}

func (r *Redis) Save(ctx context.Context, e Entry) error {
	if err := validate(e); err != nil {
		return err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding entry: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, redisLatestKey(e.Device), data, 0)
		p.LPush(ctx, redisHistoryKey(e.Device), data)
		p.LTrim(ctx, redisHistoryKey(e.Device), 0, redisHistoryLen-1)
		p.SAdd(ctx, redisDevicesKey, e.Device)
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving %s: %w", e.Device, err)
	}
	return nil
}

func (r *Redis) Latest(ctx context.Context, device string) (Entry, error) {
	data, err := r.client.Get(ctx, redisLatestKey(device)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, fmt.Errorf("device %q: %w", device, util.ErrNotFound)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("loading %s: %w", device, err)
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, fmt.Errorf("decoding %s: %w", device, err)
	}
	return e, nil
}

func (r *Redis) History(ctx context.Context, device string, limit int) ([]Entry, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	items, err := r.client.LRange(ctx, redisHistoryKey(device), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("loading history of %s: %w", device, err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("device %q: %w", device, util.ErrNotFound)
	}
	out := make([]Entry, 0, len(items))
	for _, it := range items {
		var e Entry
		if err := json.Unmarshal([]byte(it), &e); err != nil {
			return nil, fmt.Errorf("decoding history of %s: %w", device, err)
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *Redis) Devices(ctx context.Context) ([]string, error) {
	names, err := r.client.SMembers(ctx, redisDevicesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

func (r *Redis) Close() error {
	err := r.client.Close()
	if r.tunnel != nil {
		if terr := r.tunnel.Close(); err == nil {
			err = terr
		}
	}
	return err
}
