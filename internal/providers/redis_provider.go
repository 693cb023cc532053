package providers

import (
	"context"
	"reployer/internal/models"
	"reployer/internal/services/interfaces"
	"reployer/internal/structures"
	"time"

	"github.com/go-redis/redis/v8"
	json "github.com/goccy/go-json"
)

const (
	defaultRedisKey     = "reployer:snapshot"
	defaultRedisChannel = "reployer:snapshots"
	redisQueueSize      = 32
	redisWriteTimeout   = 3 * time.Second
)

// RedisPublisher mirrors snapshots into Redis: the latest one under Key and
// every one on Channel. Writes happen on a dedicated goroutine; when the
// queue is full the snapshot is dropped.
type RedisPublisher struct {
	client  *redis.Client
	key     string
	channel string
	ttl     time.Duration
	queue   chan models.Snapshot
	done    chan struct{}
	logger  Logger
}

func NewRedisProvider(conf *structures.Config, logger Logger) interfaces.SnapshotSinkInterface {
	if !conf.Redis.Enabled {
		return &noopSink{}
	}

	key, channel := redisNames(conf.Redis)
	p := &RedisPublisher{
		client: redis.NewClient(&redis.Options{
			Addr:         conf.Redis.Addr,
			Password:     conf.Redis.Password,
			DB:           conf.Redis.DB,
			DialTimeout:  5 * time.Second,
			WriteTimeout: redisWriteTimeout,
		}),
		key:     key,
		channel: channel,
		ttl:     max(conf.Poll.Interval*3, time.Second),
		queue:   make(chan models.Snapshot, redisQueueSize),
		done:    make(chan struct{}),
		logger:  logger,
	}
	logger.Infof(TypeApp, "Redis snapshot publisher on %s (key=%s channel=%s)", conf.Redis.Addr, key, channel)
	go p.loop()
	return p
}

func redisNames(c structures.RedisConfig) (string, string) {
	key, channel := c.Key, c.Channel
	if key == "" {
		key = defaultRedisKey
	}
	if channel == "" {
		channel = defaultRedisChannel
	}
	return key, channel
}

func (p *RedisPublisher) Publish(snapshot models.Snapshot) {
	select {
	case p.queue <- snapshot:
	default:
		p.logger.Warnf(TypeApp, "Redis queue full, dropping snapshot %d", snapshot.Sequence)
	}
}

func (p *RedisPublisher) loop() {
	defer close(p.done)
	for snapshot := range p.queue {
		data, err := json.Marshal(snapshot)
		if err != nil {
			p.logger.Errorf(TypeApp, "Encode snapshot for redis: %s", err)
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), redisWriteTimeout)
		if err := p.client.Set(ctx, p.key, data, p.ttl).Err(); err != nil {
			p.logger.Warnf(TypeApp, "Redis SET %s: %s", p.key, err)
		}
		if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
			p.logger.Warnf(TypeApp, "Redis PUBLISH %s: %s", p.channel, err)
		}
		cancel()
	}
}

// Close drains the queue and closes the client.
func (p *RedisPublisher) Close() error {
	close(p.queue)
	<-p.done
	return p.client.Close()
}

type noopSink struct{}

func (n *noopSink) Publish(_ models.Snapshot) {}
