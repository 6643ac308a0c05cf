package cli

import (
	"context"
	"net"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/VisionGate/internal/config"
	"github.com/turtacn/VisionGate/internal/inference"
	rediscache "github.com/turtacn/VisionGate/internal/infrastructure/database/redis"
	"github.com/turtacn/VisionGate/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/VisionGate/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/VisionGate/internal/infrastructure/monitoring/prometheus"
	grpcserver "github.com/turtacn/VisionGate/internal/interfaces/grpc"
	httpserver "github.com/turtacn/VisionGate/internal/interfaces/http"
	"github.com/turtacn/VisionGate/internal/interfaces/http/handlers"
	"github.com/turtacn/VisionGate/internal/interfaces/http/middleware"
)

const (
	cacheOpTimeout = 250 * time.Millisecond
	closeTimeout   = 5 * time.Second
)

// gateway is the assembled serving stack.
type gateway struct {
	cfg    *config.Config
	logger logging.Logger

	registry *inference.Registry
	router   *inference.Router
	metrics  *prometheus.GatewayMetrics

	httpServer *httpserver.Server
	grpcServer *grpcserver.Server
	monitor    *grpcserver.HealthMonitor

	redis     *rediscache.Client
	publisher *kafka.RegistryEventPublisher
}

// buildGateway wires every component named by cfg. Optional integrations
// that cannot reach their infrastructure are disabled with a warning.
func buildGateway(ctx context.Context, cfg *config.Config, logger logging.Logger) (_ *gateway, err error) {
	g := &gateway{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			g.close()
		}
	}()

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            cfg.Metrics.Namespace,
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, logger.Named("metrics"))
	if err != nil {
		return nil, err
	}
	g.metrics = prometheus.NewGatewayMetrics(collector)

	var cache inference.PredictionCache
	if cfg.Cache.Enabled {
		cache = g.buildCache(ctx)
	}

	hooks := []inference.RegistryOption{
		inference.WithRegistryLogger(logger.Named("registry")),
		inference.WithDefaultChangeHook(g.metrics.DefaultModelChanged),
	}
	if cfg.Events.Enabled {
		if g.publisher, err = g.buildPublisher(); err != nil {
			return nil, err
		}
		hooks = append(hooks, inference.WithDefaultChangeHook(g.publisher.DefaultModelChanged))
	}

	g.registry, err = inference.NewRegistryFromConfig(cfg, hooks...)
	if err != nil {
		return nil, err
	}
	g.metrics.InitDefaultModel(g.registry.List(), g.registry.Default())

	backend, err := inference.NewHTTPBackend(cfg.Backend.BaseURL,
		inference.WithPredictTimeout(cfg.Backend.PredictTimeout),
		inference.WithProbeTimeout(cfg.Backend.ProbeTimeout),
		inference.WithBackendLogger(logger.Named("backend")),
	)
	if err != nil {
		return nil, err
	}

	agg := inference.NewAggregator()
	routerOpts := []inference.RouterOption{
		inference.WithOutcomeRecorder(g.metrics),
		inference.WithRouterLogger(logger.Named("router")),
	}
	if cache != nil {
		routerOpts = append(routerOpts, inference.WithPredictionCache(cache))
	}
	g.router = inference.NewRouter(g.registry, backend, agg, routerOpts...)

	logCfg := middleware.DefaultLoggingConfig()
	routerCfg := httpserver.RouterConfig{
		PredictHandler:    handlers.NewPredictHandler(g.router, cfg.Server.MaxBodySize, logger.Named("predict")),
		HealthHandler:     handlers.NewHealthHandler(g.router, agg.Uptime, cfg.Server.Name, Version, g.metrics),
		ManagementHandler: handlers.NewManagementHandler(g.registry, logger.Named("management")),
		InfoHandler:       handlers.NewInfoHandler(cfg.Group, agg),
		Logging:           &logCfg,
		HTTPObserver:      g.metrics,
		Logger:            logger.Named("http"),
	}
	if len(cfg.CORS.AllowedOrigins) > 0 {
		corsCfg := middleware.DefaultCORSConfig()
		corsCfg.AllowedOrigins = cfg.CORS.AllowedOrigins
		if cfg.CORS.MaxAge > 0 {
			corsCfg.MaxAge = cfg.CORS.MaxAge
		}
		routerCfg.CORS = &corsCfg
	}
	if cfg.Metrics.PrometheusEnabled {
		routerCfg.PrometheusHandler = collector.Handler()
		routerCfg.PrometheusPath = cfg.Metrics.Path
	}
	g.httpServer = httpserver.NewServer(cfg.Server, httpserver.NewRouter(routerCfg), logger.Named("http"))

	if cfg.GRPC.Enabled {
		g.grpcServer, err = grpcserver.NewServer(&cfg.GRPC,
			grpcserver.WithLogger(logger.Named("grpc")),
			grpcserver.WithHost(cfg.Server.Host),
			grpcserver.WithGracefulTimeout(cfg.Server.ShutdownTimeout),
		)
		if err != nil {
			return nil, err
		}
		g.monitor = grpcserver.NewHealthMonitor(g.grpcServer.Health(), g.router, cfg.GRPC.HealthInterval, g.metrics, logger.Named("grpc.health"))
	}

	return g, nil
}

func (g *gateway) buildCache(ctx context.Context) inference.PredictionCache {
	cc := g.cfg.Cache
	log := g.logger.Named("cache")
	client, err := rediscache.NewClient(ctx, rediscache.ClientConfig{
		Addr:        cc.Addr,
		Password:    cc.Password,
		DB:          cc.DB,
		PoolSize:    cc.PoolSize,
		DialTimeout: cc.DialTimeout,
	}, log)
	if err != nil {
		log.Warn("prediction cache disabled", logging.String("addr", cc.Addr), logging.Err(err))
		return nil
	}
	g.redis = client
	store := rediscache.NewRedisCache(client, log, rediscache.WithPrefix(cc.KeyPrefix), rediscache.WithDefaultTTL(cc.TTL))
	return rediscache.NewPredictionCache(store, cc.TTL, cacheOpTimeout, g.metrics, log)
}

func (g *gateway) buildPublisher() (*kafka.RegistryEventPublisher, error) {
	ec := g.cfg.Events
	log := g.logger.Named("events")
	producer, err := kafka.NewProducer(kafka.ProducerConfig{
		Brokers:      ec.Brokers,
		WriteTimeout: ec.WriteTimeout,
	}, log)
	if err != nil {
		return nil, err
	}
	log.Info("registry events enabled", logging.Strings("brokers", ec.Brokers), logging.String("topic", ec.Topic))
	return kafka.NewRegistryEventPublisher(producer, ec.Topic, ec.WriteTimeout, g.metrics, log), nil
}

// run serves until ctx is done and then shuts every server down. A nil ln
// makes the HTTP server listen on its configured address.
func (g *gateway) run(ctx context.Context, ln net.Listener) error {
	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		if ln != nil {
			return g.httpServer.Serve(ln)
		}
		return g.httpServer.Start()
	})

	if g.grpcServer != nil {
		eg.Go(g.grpcServer.Start)
		eg.Go(func() error { return g.monitor.Run(egCtx) })
	}

	eg.Go(func() error {
		<-egCtx.Done()
		g.logger.Info("shutting down gateway")

		stopCtx, cancel := context.WithTimeout(context.Background(), g.cfg.Server.ShutdownTimeout+time.Second)
		defer cancel()

		var firstErr error
		if err := g.httpServer.Stop(stopCtx); err != nil {
			firstErr = err
		}
		if g.grpcServer != nil {
			if err := g.grpcServer.Stop(stopCtx); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	})

	err := eg.Wait()
	g.close()
	return err
}

// close releases the optional integrations. It is safe on a partially
// built gateway.
func (g *gateway) close() {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	if g.publisher != nil {
		if err := g.publisher.Close(ctx); err != nil {
			g.logger.Warn("closing registry event publisher", logging.Err(err))
		}
		g.publisher = nil
	}
	if g.redis != nil {
		if err := g.redis.Close(); err != nil {
			g.logger.Warn("closing redis client", logging.Err(err))
		}
		g.redis = nil
	}
}

//Personal.AI order the ending
