package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/chartdeck/pkg/cache"
	"github.com/matzehuels/chartdeck/pkg/server"
)

// serveCommand creates the serve command for the HTTP front-end.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		redisAddr string
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chart page over HTTP",
		Long: `Serve the chart page over HTTP.

Every browser gets its own session: the charts it generated, kept until the
session has been idle for two hours. Conversions are cached in memory and
shared between sessions. With --redis the cache lives in Redis instead, so
several instances can share it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") && c.Config.Addr != "" {
				addr = c.Config.Addr
			}
			if !cmd.Flags().Changed("redis") {
				redisAddr = c.Config.RedisAddr
			}
			return c.runServe(cmd.Context(), addr, redisAddr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "Redis address for a shared conversion cache")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the conversion cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr, redisAddr string, noCache bool) error {
	opts := c.baseOptions()
	if err := server.ValidateOptions(opts); err != nil {
		return err
	}

	cc, err := c.serveCache(ctx, redisAddr, noCache)
	if err != nil {
		return err
	}
	defer cc.Close()

	srv := server.New(
		server.WithCache(cc),
		server.WithOptions(opts),
		server.WithLogger(c.Logger),
	)

	printInfo("Listening on %s", StyleLink.Render("http://"+displayAddr(addr)))
	err = srv.ListenAndServe(ctx, addr)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	printSuccess("Server stopped")
	return ctx.Err()
}

// serveCache picks the conversion cache shared by all sessions.
func (c *CLI) serveCache(ctx context.Context, redisAddr string, noCache bool) (cache.Cache, error) {
	switch {
	case noCache:
		return cache.NewNullCache(), nil
	case redisAddr != "":
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: redisAddr})
		if err != nil {
			return nil, fmt.Errorf("connect to redis at %s: %w", redisAddr, err)
		}
		c.Logger.Info("using redis cache", "addr", redisAddr)
		return rc, nil
	}
	return cache.NewMemoryCache(), nil
}

// displayAddr turns ":8080" into "localhost:8080".
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
