// Package netbus is the device bus connection, carried over Redis:
// the device catalogue lives in a hash and device updates travel over pub/sub.
package netbus

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"shelter-guard/internal/config"
)

// Message is a single payload received on a bus channel.
type Message struct {
	Channel string
	Payload string
}

// ErrClosed is returned by a Subscription once it has been closed.
var ErrClosed = errors.New("subscription closed")

type Subscription interface {
	ReceiveMessage(ctx context.Context) (Message, error)
	Close() error
}

// Bus is what the device registry needs from a bus connection.
type Bus interface {
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	// Subscribe listens on exact channels and glob patterns; it returns once the server confirmed.
	Subscribe(ctx context.Context, channels, patterns []string) (Subscription, error)
}

var _ Bus = (*Conn)(nil)

type Conn struct {
	id  string
	cli *redis.Client
}

// Connect dials the bus at cfg.Address, announcing itself as cfg.ID, and pings it.
func Connect(ctx context.Context, cfg config.BusConfig) (*Conn, error) {
	if cfg.ID == "" || cfg.Address == "" {
		return nil, errors.New("bus id and address are required")
	}
	opts := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		OnConnect: func(ctx context.Context, cn *redis.Conn) error {
			return cn.ClientSetName(ctx, cfg.ID).Err()
		},
	}
	c := redis.NewClient(opts)
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("bus %s at %s: %w", cfg.ID, cfg.Address, err)
	}
	return &Conn{id: cfg.ID, cli: c}, nil
}

func (c *Conn) ID() string { return c.id }

func (c *Conn) Ping(ctx context.Context) error { return c.cli.Ping(ctx).Err() }

func (c *Conn) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	return c.cli.HGetAll(ctx, key).Result()
}

func (c *Conn) Subscribe(ctx context.Context, channels, patterns []string) (Subscription, error) {
	if len(channels) == 0 && len(patterns) == 0 {
		return nil, errors.New("nothing to subscribe to")
	}

	ps := c.cli.Subscribe(ctx)
	if len(patterns) > 0 {
		if err := ps.PSubscribe(ctx, patterns...); err != nil {
			_ = ps.Close()
			return nil, err
		}
	}
	if len(channels) > 0 {
		if err := ps.Subscribe(ctx, channels...); err != nil {
			_ = ps.Close()
			return nil, err
		}
	}

	sub := &subscription{ps: ps}
	if err := sub.awaitConfirmations(ctx, len(channels)+len(patterns)); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	return sub, nil
}

func (c *Conn) Close() error { return c.cli.Close() }

type subscription struct {
	ps *redis.PubSub
	// messages that arrived while confirmations were still pending
	pending []Message
}

// awaitConfirmations blocks until the server acknowledged n channels or patterns.
func (s *subscription) awaitConfirmations(ctx context.Context, n int) error {
	for n > 0 {
		v, err := s.ps.Receive(ctx)
		if err != nil {
			return err
		}
		switch m := v.(type) {
		case *redis.Subscription:
			n--
		case *redis.Message:
			s.pending = append(s.pending, Message{Channel: m.Channel, Payload: m.Payload})
		}
	}
	return nil
}

func (s *subscription) ReceiveMessage(ctx context.Context) (Message, error) {
	if len(s.pending) > 0 {
		m := s.pending[0]
		s.pending = s.pending[1:]
		return m, nil
	}
	m, err := s.ps.ReceiveMessage(ctx)
	if err != nil {
		if errors.Is(err, redis.ErrClosed) {
			return Message{}, ErrClosed
		}
		return Message{}, err
	}
	return Message{Channel: m.Channel, Payload: m.Payload}, nil
}

func (s *subscription) Close() error { return s.ps.Close() }
