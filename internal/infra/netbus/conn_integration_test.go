//go:build integration

package netbus

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"shelter-guard/internal/config"
)

// Requires a reachable Redis; BUS defaults to localhost:6379.
func connectIT(ctx context.Context, t *testing.T) *Conn {
	t.Helper()
	addr := os.Getenv("BUS")
	if addr == "" {
		addr = "localhost:6379"
	}
	conn, err := Connect(ctx, config.BusConfig{ID: "guard-it", Address: addr})
	if err != nil {
		t.Skipf("bus unavailable: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestConn_SubscribeReceives(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	conn := connectIT(ctx, t)

	if err := conn.cli.HSet(ctx, "it:catalogue", "lumi.door", `{"id":"lumi.door"}`).Err(); err != nil {
		t.Fatal(err)
	}
	defer conn.cli.Del(context.Background(), "it:catalogue")

	entries, err := conn.HGetAll(ctx, "it:catalogue")
	if err != nil {
		t.Fatal(err)
	}
	if entries["lumi.door"] == "" {
		t.Fatalf("catalogue entry missing: %v", entries)
	}

	sub, err := conn.Subscribe(ctx, []string{"it:announce"}, []string{"it:device:*:update"})
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Close()

	name, err := conn.cli.ClientGetName(ctx).Result()
	if err != nil || name != "guard-it" {
		t.Errorf("expected client name guard-it, got %q (%v)", name, err)
	}

	if err := conn.cli.Publish(ctx, "it:device:lumi.door:update", `{"magnet":{"open":true}}`).Err(); err != nil {
		t.Fatal(err)
	}
	msg, err := sub.ReceiveMessage(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if msg.Channel != "it:device:lumi.door:update" || msg.Payload != `{"magnet":{"open":true}}` {
		t.Errorf("unexpected message %+v", msg)
	}
}

func TestConn_SubscribeConfirmsEveryChannel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	conn := connectIT(ctx, t)

	sub, err := conn.Subscribe(ctx, []string{"it:announce"}, []string{"it:device:*:update"})
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Close()

	// published right after Subscribe returns; only reaches us if SUBSCRIBE was confirmed too
	n, err := conn.cli.Publish(ctx, "it:announce", `{"id":"lumi.new"}`).Result()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected 1 receiver on announce channel, got %d", n)
	}
	msg, err := sub.ReceiveMessage(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if msg.Channel != "it:announce" {
		t.Errorf("unexpected message %+v", msg)
	}
}

func TestConn_ReceiveAfterClose(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	conn := connectIT(ctx, t)

	sub, err := conn.Subscribe(ctx, []string{"it:announce"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	_ = sub.Close()
	if _, err := sub.ReceiveMessage(ctx); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}
