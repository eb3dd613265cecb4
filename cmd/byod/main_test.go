package main

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"byod/internal/cache"
	"byod/internal/config"
)

func TestUnreadCacheSelection(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := context.Background()

	cases := []struct {
		url  string
		want string
	}{
		{"", "noop"},
		{"memory", "memory"},
		{"not a url", "noop"},
	}
	for _, c := range cases {
		got, closeFn := unreadCache(ctx, config.Config{RedisURL: c.url}, logger)
		closeFn()
		kind := "other"
		switch got.(type) {
		case cache.Noop:
			kind = "noop"
		case *cache.Memory:
			kind = "memory"
		}
		if kind != c.want {
			t.Fatalf("REDIS_URL=%q selected %s, want %s", c.url, kind, c.want)
		}
	}
}
