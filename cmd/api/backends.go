package main

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/agenda-engine/internal/config"
	domain "github.com/BruksfildServices01/agenda-engine/internal/domain/appointment"
	"github.com/BruksfildServices01/agenda-engine/internal/infra/kv"
	"github.com/BruksfildServices01/agenda-engine/internal/infra/remote"
)

func openKV(cfg *config.Config, db *gorm.DB, log *zap.Logger) (kv.Store, func(), error) {
	noop := func() {}

	switch cfg.KVBackend {
	case config.KVMemory:
		log.Warn("using in-memory kv store, data is lost on restart")
		return kv.NewMemory(), noop, nil
	case config.KVRedis:
		r, err := kv.NewRedis(kv.RedisConfig{
			Address:  cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, noop, err
		}
		return r, func() { _ = r.Close() }, nil
	case config.KVGorm:
		return kv.NewGorm(db), noop, nil
	}
	return nil, noop, fmt.Errorf("unknown kv backend %q", cfg.KVBackend)
}

// openRemote returns nil for REMOTE_BACKEND=none.
func openRemote(cfg *config.Config, log *zap.Logger) (domain.RemoteAppointmentAPI, error) {
	log = log.Named("remote")

	switch cfg.RemoteBackend {
	case config.RemoteHTTP:
		return remote.NewHTTPClient(remote.HTTPConfig{
			BaseURL: cfg.RemoteBaseURL,
			Timeout: cfg.RemoteTimeout,
			Breaker: remote.DefaultBreakerConfig(),
		}, log)
	case config.RemoteSupabase:
		return remote.NewSupabaseClient(remote.SupabaseConfig{
			URL:     cfg.SupabaseURL,
			APIKey:  cfg.SupabaseKey,
			Table:   cfg.SupabaseTable,
			Breaker: remote.DefaultBreakerConfig(),
		}, log)
	case config.RemoteNone:
		return nil, nil
	}
	return nil, fmt.Errorf("unknown remote backend %q", cfg.RemoteBackend)
}
