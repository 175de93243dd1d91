package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/airwave/internal/config"
	"github.com/MrSnakeDoc/airwave/internal/httpserver"
	"github.com/MrSnakeDoc/airwave/internal/httpserver/deps"
	"github.com/MrSnakeDoc/airwave/internal/locale"
	"github.com/MrSnakeDoc/airwave/internal/logger"
	"github.com/MrSnakeDoc/airwave/internal/mirror"
	"github.com/MrSnakeDoc/airwave/internal/observe"
	"github.com/MrSnakeDoc/airwave/internal/redis"
	"github.com/MrSnakeDoc/airwave/internal/scheduler"
	"github.com/MrSnakeDoc/airwave/internal/skill"
	"github.com/MrSnakeDoc/airwave/internal/stations"
	redisstore "github.com/MrSnakeDoc/airwave/internal/store/redis"
	"github.com/MrSnakeDoc/airwave/internal/version"
	"github.com/MrSnakeDoc/airwave/internal/vocab"
)

// discoveryTimeout bounds the startup mirror discovery.
const discoveryTimeout = 10 * time.Second

type App struct {
	cfg             *config.Config
	logger          logger.Logger
	server          *httpserver.Server
	redisClient     *goredis.Client
	refresher       *scheduler.StationRefresher
	metricsShutdown func(context.Context) error
}

func New() (*App, error) {
	if err := config.LoadDotenv(); err != nil {
		return nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)
	ctx := context.Background()

	// Metrics
	var (
		metrics         *observe.Metrics
		metricsShutdown func(context.Context) error
		metricsHandler  http.Handler
	)
	if cfg.MetricsEnabled {
		metrics, metricsShutdown, err = observe.InitProvider(ctx, observe.ProviderConfig{
			ServiceName:    "airwave",
			ServiceVersion: version.Version,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to init metrics: %w", err)
		}
		metricsHandler = promhttp.Handler()
	}

	// Redis is optional: without it the mirror list is simply rediscovered.
	var (
		redisClient *goredis.Client
		store       *redisstore.Store
	)
	if cfg.RedisAddr != "" {
		redisClient, err = redis.Connect(ctx, redis.Options{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			DB:             cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
		}, loggerClient.With(logger.Component("redis")))
		if err != nil {
			loggerClient.Warn("continuing without redis", logger.Error(err))
		} else {
			store = redisstore.NewStore(redisClient)
		}
	}

	// Mirror discovery: stored list, then DNS SRV, then seed hosts.
	mirrorLog := loggerClient.With(logger.Component("mirror"))
	var primary mirror.Discoverer = mirror.NewSRVDiscoverer(cfg.SRVName, cfg.DNSServer, cfg.DNSTimeout)
	var forgetter scheduler.Forgetter
	if store != nil {
		cached := mirror.NewCachedDiscoverer(store, primary, cfg.MirrorTTL, mirrorLog)
		primary, forgetter = cached, cached
	}
	chain := mirror.NewChain(mirrorLog, primary, mirror.StaticDiscoverer(cfg.SeedHosts))

	pool := mirror.NewPool(nil, mirror.NewHTTPProber(cfg.UserAgent, mirror.ProbeTimeout), mirrorLog, mirror.PoolOptions{
		Metrics: metrics,
	})
	syncer := scheduler.NewMirrorSyncer(chain, forgetter, pool, mirrorLog)

	discoverCtx, cancel := context.WithTimeout(ctx, discoveryTimeout)
	if err := syncer.Sync(discoverCtx, false); err != nil {
		loggerClient.Warn("no mirrors at startup, will retry on first reload", logger.Error(err))
	}
	cancel()

	// Stations and skill
	cache := stations.NewCache(
		pool,
		stations.NewHTTPFetcher(cfg.UserAgent, stations.ConnectTimeout, stations.ReadTimeout),
		loggerClient.With(logger.Component("stations")),
		stations.CacheOptions{Metrics: metrics},
	)

	vocabCfg, err := vocab.NewLoader(cfg.VocabFile).Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load vocabulary: %w", err)
	}

	sk := skill.New(
		cache,
		locale.NewExtractor(cfg.Languages...),
		vocab.NewMatcher(vocabCfg),
		loggerClient.With(logger.Component("skill")),
		skill.Options{
			IconPath:       cfg.IconPath,
			DefaultLang:    cfg.DefaultLang,
			DefaultCountry: cfg.DefaultCountry,
			MaxResults:     cfg.MaxResults,
			Metrics:        metrics,
		},
	)

	reloadTrigger := make(chan struct{}, 1)
	refresher := scheduler.NewStationRefresher(
		sk,
		syncer,
		loggerClient.With(logger.Component("refresher")),
		cfg.RefreshInterval,
		reloadTrigger,
	)

	d := deps.Deps{
		Logger:         loggerClient,
		StartTime:      time.Now(),
		Version:        version.Version,
		Commit:         version.Commit,
		BuildDate:      version.BuildDate,
		GoVersion:      version.GoVersion,
		AllowedHosts:   cfg.AllowedHosts,
		AllowedCIDRS:   cfg.AllowedCIDRS,
		TrustProxy:     cfg.TrustProxy,
		RateBurst:      cfg.RateBurst,
		RatePerMin:     cfg.RatePerMin,
		Searcher:       sk,
		Stations:       cache,
		Mirrors:        pool,
		ReloadTrigger:  reloadTrigger,
		MetricsHandler: metricsHandler,
	}
	if store != nil {
		d.Redis = store
	}

	return &App{
		cfg:             cfg,
		logger:          loggerClient,
		server:          httpserver.New(cfg, loggerClient, d),
		redisClient:     redisClient,
		refresher:       refresher,
		metricsShutdown: metricsShutdown,
	}, nil
}

func (a *App) Run() error {
	a.logger.Infof("Starting %s on %s", version.String(), a.cfg.ListenPort)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Warm-up runs in the background so probes answer while stations load.
	a.refresher.Start(ctx)
	a.logger.Info("station refresher started",
		logger.Duration("interval", a.cfg.RefreshInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutting down gracefully")
	case runErr = <-errCh:
	}
	stop()

	a.refresher.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	var errs []error
	if runErr != nil {
		errs = append(errs, runErr)
	}
	if err := a.server.Stop(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("failed to stop server: %w", err))
	}
	if a.metricsShutdown != nil {
		if err := a.metricsShutdown(shutdownCtx); err != nil {
			a.logger.Warn("failed to flush metrics", logger.Error(err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", logger.Error(err))
		} else {
			a.logger.Info("redis closed cleanly")
		}
	}

	a.logger.Info("airwave stopped")
	_ = a.logger.Sync()
	return errors.Join(errs...)
}
