package cli

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/matzehuels/chartdeck/pkg/cache"
	"github.com/matzehuels/chartdeck/pkg/config"
	"github.com/matzehuels/chartdeck/pkg/errors"
)

func TestServeCache(t *testing.T) {
	c := newTestCLI(t)
	ctx := context.Background()

	cc, err := c.serveCache(ctx, "", true)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := cc.(*cache.NullCache); !ok {
		t.Errorf("--no-cache gave %T", cc)
	}

	cc, _ = c.serveCache(ctx, "", false)
	if _, ok := cc.(*cache.MemoryCache); !ok {
		t.Errorf("default cache is %T", cc)
	}

	mr := miniredis.RunT(t)
	cc, err = c.serveCache(ctx, mr.Addr(), false)
	if err != nil {
		t.Fatal(err)
	}
	defer cc.Close()
	if _, ok := cc.(*cache.RedisCache); !ok {
		t.Errorf("--redis gave %T", cc)
	}
}

func TestServeRejectsBadConfig(t *testing.T) {
	c := newTestCLI(t)
	cfg, err := config.Parse([]byte(`kinds = ["pie"]`))
	if err != nil {
		t.Fatal(err)
	}
	c.Config = cfg

	err = c.runServe(context.Background(), "127.0.0.1:0", "", true)
	if !errors.Is(err, errors.ErrCodeInvalidKind) {
		t.Errorf("runServe() error = %v, want INVALID_KIND", err)
	}
}

func TestDisplayAddr(t *testing.T) {
	tests := map[string]string{
		":8080":          "localhost:8080",
		"0.0.0.0:9000":   "0.0.0.0:9000",
		"localhost:8080": "localhost:8080",
	}
	for in, want := range tests {
		if got := displayAddr(in); got != want {
			t.Errorf("displayAddr(%q) = %q, want %q", in, got, want)
		}
	}
}
