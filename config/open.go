package config

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"code.byted.org/khicago/webstore"
	"code.byted.org/khicago/webstore/redisdriver"
	"code.byted.org/khicago/webstore/sqlitedriver"
)

// Open builds the configured drivers and returns a Store over them with a
// function that releases every driver connection. log receives the store's
// warnings and errors.
func Open(ctx context.Context, cfg *Config, log zerolog.Logger) (*webstore.Store, func() error, error) {
	kind, err := webstore.ParseKind(cfg.DefaultKind)
	if err != nil {
		return nil, nil, err
	}

	var closers []io.Closer
	closeAll := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i].Close())
		}
		return errors.Join(errs...)
	}

	opts := []webstore.Option{
		webstore.WithLogger(webstore.NewZerologLogger(log)),
		webstore.WithLogTag(cfg.LogTag),
		webstore.WithNamespace(cfg.Namespace),
		webstore.WithDefaultKind(kind),
	}
	if cfg.StrictNamespace {
		opts = append(opts, webstore.WithStrictNamespaceMatch())
	}

	backends := []struct {
		kind webstore.Kind
		cfg  BackendConfig
	}{
		{webstore.Primary, cfg.Primary},
		{webstore.Session, cfg.Session},
	}
	for _, b := range backends {
		d, closer, err := openDriver(ctx, b.cfg)
		if err != nil {
			_ = closeAll()
			return nil, nil, fmt.Errorf("open %s driver: %w", b.kind, err)
		}
		if closer != nil {
			closers = append(closers, closer)
		}
		log.Debug().Str("kind", b.kind.String()).Str("driver", b.cfg.Driver).Msg("driver opened")
		opts = append(opts, webstore.WithDriver(b.kind, d))
	}

	return webstore.New(opts...), closeAll, nil
}

func openDriver(ctx context.Context, b BackendConfig) (webstore.Driver, io.Closer, error) {
	switch b.Driver {
	case DriverMemory, "":
		return webstore.NewMemory(), nil, nil
	case DriverRedis:
		d, err := redisdriver.New(b.Redis)
		if err != nil {
			return nil, nil, err
		}
		if err := d.Ping(ctx); err != nil {
			_ = d.Close()
			return nil, nil, err
		}
		return d, d, nil
	case DriverSQLite:
		d, err := sqlitedriver.Open(b.SQLite)
		if err != nil {
			return nil, nil, err
		}
		return d, d, nil
	default:
		return nil, nil, fmt.Errorf("unknown driver %q", b.Driver)
	}
}
