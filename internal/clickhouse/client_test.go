package clickhouse

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
)

type fakeSource struct {
	adp map[string]float64
	err error
}

func (f fakeSource) FetchADP(context.Context) (map[string]float64, error) { return f.adp, f.err }
func (f fakeSource) Close() error                                         { return nil }

func TestSync(t *testing.T) {
	src := fakeSource{adp: map[string]float64{"a": 3.5, "b": 40, "ghost": 99, "broken": 12}}
	got := map[string]float64{}

	n, err := Sync(context.Background(), src, func(id string, adp float64) error {
		switch id {
		case "ghost":
			return fmt.Errorf("player %s: %w", id, ErrUnknownPlayer)
		case "broken":
			return errors.New("write failed")
		}
		got[id] = adp
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("updated %d players, want 2", n)
	}
	if got["a"] != 3.5 || got["b"] != 40 {
		t.Errorf("updates = %v", got)
	}
}

func TestSyncFetchError(t *testing.T) {
	boom := errors.New("clickhouse down")
	n, err := Sync(context.Background(), fakeSource{err: boom}, func(string, float64) error {
		t.Error("update must not run when the fetch fails")
		return nil
	})
	if !errors.Is(err, boom) || n != 0 {
		t.Errorf("Sync = %d, %v", n, err)
	}
}

func TestClientFetchADP(t *testing.T) {
	addr := os.Getenv("CLICKHOUSE_ADDR")
	if addr == "" {
		t.Skip("CLICKHOUSE_ADDR not set")
	}
	c, err := NewClient(addr, "default", "default", os.Getenv("CLICKHOUSE_PASSWORD"))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer c.Close()

	if _, err := c.FetchADP(context.Background()); err != nil {
		t.Errorf("FetchADP: %v", err)
	}
}
