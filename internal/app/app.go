// Package app wires configuration into a runnable application.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	rdb "github.com/redis/go-redis/v9"

	"github.com/sgarciam/vibra/internal/config"
	authctrl "github.com/sgarciam/vibra/internal/http/controllers/auth"
	healthctrl "github.com/sgarciam/vibra/internal/http/controllers/health"
	onbctrl "github.com/sgarciam/vibra/internal/http/controllers/onboarding"
	socialctrl "github.com/sgarciam/vibra/internal/http/controllers/social"
	"github.com/sgarciam/vibra/internal/http/helpers"
	"github.com/sgarciam/vibra/internal/http/router"
	authsvc "github.com/sgarciam/vibra/internal/http/services/auth"
	onbsvc "github.com/sgarciam/vibra/internal/http/services/onboarding"
	socialsvc "github.com/sgarciam/vibra/internal/http/services/social"
	"github.com/sgarciam/vibra/internal/identity"
	"github.com/sgarciam/vibra/internal/metrics"
	"github.com/sgarciam/vibra/internal/observability/logger"
	"github.com/sgarciam/vibra/internal/rate"
	"github.com/sgarciam/vibra/internal/storage"
	"github.com/sgarciam/vibra/internal/store/pg"
)

// App is the wired application: one process-wide set of clients built once
// at startup and injected everywhere.
type App struct {
	Handler http.Handler

	db    *pg.Store
	redis *rdb.Client
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logger.With(logger.Layer("app"), logger.Op("wire"))

	// identity clients: the anonymous one for user-facing calls, the
	// privileged one for the /admin surface
	anon := identity.New(cfg.Identity.URL, cfg.Identity.AnonKey)
	service := identity.NewService(cfg.Identity.URL, cfg.Identity.ServiceKey)

	db, err := pg.New(ctx, cfg.DB.DSN, pg.Config{
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("app: connecting profile directory: %w", err)
	}

	store := storage.New(cfg.Storage.URL, cfg.Identity.ServiceKey)

	cookies := helpers.SessionCookies{
		Domain: cfg.Cookies.Domain,
		Secure: cfg.IsProd(),
	}

	a := &App{db: db}

	var resetLimiter rate.Limiter
	if cfg.Rate.Enabled {
		if cfg.Redis.Addr != "" {
			a.redis = rdb.NewClient(&rdb.Options{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
			resetLimiter = rate.NewRedisLimiter(a.redis, cfg.Redis.Prefix, cfg.Rate.Reset.Limit, cfg.ResetWindow())
			log.Info("rate limiting backed by redis", logger.String("addr", cfg.Redis.Addr))
		} else {
			resetLimiter = rate.NewMemoryLimiter(cfg.Rate.Reset.Limit, cfg.ResetWindow())
			log.Info("rate limiting in memory, single replica only")
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if err := metrics.Register(reg); err != nil {
		return nil, fmt.Errorf("app: registering metrics: %w", err)
	}

	auths := authsvc.NewServices(authsvc.Deps{
		Anon:      anon,
		Service:   service,
		Directory: db,
		AppURL:    cfg.AppURL,
	})
	socials := socialsvc.NewServices(socialsvc.Deps{
		Anon:      anon,
		Directory: db,
		Origins:   cfg.Server.AllowedOrigins,
		AppURL:    cfg.AppURL,
		Prod:      cfg.IsProd(),
	})
	onboarding := onbsvc.NewService(onbsvc.Deps{
		Directory:        db,
		Storage:          store,
		Admin:            service,
		Anon:             anon,
		Bucket:           cfg.Storage.Bucket,
		AllowedMimeTypes: cfg.Onboarding.AllowedMimeTypes,
	})

	a.Handler = router.New(router.Deps{
		Auth: authctrl.NewControllers(auths, authctrl.ControllerDeps{
			Cookies:  cookies,
			Resolver: anon,
		}),
		Social: socialctrl.NewControllers(socials, socialctrl.ControllerDeps{
			Cookies: cookies,
			AppURL:  cfg.AppURL,
		}),
		Onboarding:     onbctrl.NewController(onboarding, cookies, cfg.Onboarding.MaxAvatarBytes),
		Health:         healthctrl.NewController(db),
		Resolver:       anon,
		ResetLimiter:   resetLimiter,
		Metrics:        promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Prod:           cfg.IsProd(),
	})

	return a, nil
}

// Close releases the durable connections.
func (a *App) Close() error {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}
