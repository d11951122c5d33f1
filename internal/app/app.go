package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/gotd/td/tg"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/pavelc4/aether-media-bot/config"
	"github.com/pavelc4/aether-media-bot/internal/bot"
	"github.com/pavelc4/aether-media-bot/internal/cache"
	"github.com/pavelc4/aether-media-bot/internal/cpu"
	"github.com/pavelc4/aether-media-bot/internal/downloader"
	"github.com/pavelc4/aether-media-bot/internal/engine"
	"github.com/pavelc4/aether-media-bot/internal/handler"
	"github.com/pavelc4/aether-media-bot/internal/middleware"
	"github.com/pavelc4/aether-media-bot/internal/search"
	"github.com/pavelc4/aether-media-bot/internal/session"
	"github.com/pavelc4/aether-media-bot/internal/stats"
	"github.com/pavelc4/aether-media-bot/internal/storage"
	"github.com/pavelc4/aether-media-bot/internal/telegram"
	"github.com/pavelc4/aether-media-bot/pkg/logger"
	"github.com/pavelc4/aether-media-bot/pkg/utils"
	"github.com/pavelc4/aether-media-bot/pkg/worker"
)

const rateLimiterIdleTTL = 10 * time.Minute

type App struct {
	cfg        *config.Config
	bot        *bot.Bot
	pool       *worker.Pool
	dispatcher *engine.Dispatcher
	collector  *stats.Collector
	closers    []func() error
}

// New builds every component once. ctx bounds the lifetime of event
// handling started by the dispatcher.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{cfg: cfg}

	sessions, err := a.openSessions(ctx)
	if err != nil {
		return nil, err
	}

	var (
		recorder engine.Recorder
		totals   handler.TotalsSource
	)
	if cfg.DatabaseURL != "" {
		store, err := storage.Open(cfg.DatabaseURL)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		recorder, totals = store, store
	} else {
		logger.Info("DATABASE_URL not set, activity is not persisted")
	}

	dispatcher := tg.NewUpdateDispatcher()
	client := telegram.NewClient(cfg, dispatcher, logger.Zap(cfg.LogLevel))
	api := client.API()
	peers := telegram.NewPeers()
	transport := telegram.NewTransport(api, peers, cache.New(cfg.MediaCacheTTL))
	transport.TuneThreads(cpu.NewTuner(cfg.UploadThreadsMin, cfg.UploadThreadsMax).Threads)

	a.collector = stats.NewCollector(func() int {
		if a.dispatcher == nil {
			return 0
		}
		return a.dispatcher.Pending()
	})

	var ytOpts []downloader.Option
	if cfg.YtdlpCookies != "" {
		ytOpts = append(ytOpts, downloader.WithCookies(cfg.YtdlpCookies))
	}
	ytdlp := downloader.NewYtDlp(cfg.YtdlpPath, cfg.TempDir, ytOpts...)
	vk := downloader.NewVK(cfg.VKStoryToken, cfg.TempDir)
	vkMusic := downloader.NewVK(cfg.VKMusicToken, cfg.TempDir)

	eng := engine.New(engine.Config{
		MaxUploadSize:   cfg.MaxUploadSize,
		DevID:           cfg.DevID,
		FormatsTimeout:  cfg.FormatsTimeout,
		MetadataTimeout: cfg.MetadataTimeout,
		DownloadTimeout: cfg.DownloadTimeout,
		SearchTimeout:   cfg.SearchTimeout,
		DeliveryTimeout: cfg.DeliveryTimeout,
		PromptTimeout:   cfg.PromptTimeout,
		TempDir:         cfg.TempDir,
	}, engine.Deps{
		Sessions:  sessions,
		Extractor: ytdlp,
		Stories:   vk,
		Tracks:    vkMusic,
		Searcher: search.NewService(
			search.NewYouTube(cfg.YtdlpPath, downloader.ExecRunner),
			search.NewVKMusic(cfg.VKMusicToken),
		),
		Transport: transport,
		Recorder:  recorder,
		Metrics:   a.collector,
		Reuser:    transport,
	})

	a.pool = worker.NewPool(cfg.Workers)
	handle := middleware.Chain(eng.Handle, middleware.Recover, middleware.Logger("engine"))
	a.dispatcher = engine.NewDispatcher(ctx, a.pool, handle)

	router := bot.NewRouter(
		a.dispatcher.Dispatch,
		middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst, rateLimiterIdleTTL),
		peers,
		handler.NewAdminHandler(api, cfg.DevID, a.collector, totals, a.dispatcher.Pending, cfg.TempDir),
		handler.NewBasicHandler(api),
		a.collector.RateLimited,
	)
	router.Register(dispatcher)

	a.bot = bot.New(client, router)

	logger.Info("Application initialized",
		"workers", a.pool.Size(),
		"max_upload", utils.FormatFileSize(cfg.MaxUploadSize),
		"temp_dir", cfg.TempDir,
	)
	return a, nil
}

func (a *App) openSessions(ctx context.Context) (session.Store, error) {
	if a.cfg.RedisURL == "" {
		logger.Info("Using in-memory sessions", "ttl", a.cfg.SessionTTL)
		return session.NewMemoryStore(a.cfg.SessionTTL), nil
	}
	store, err := session.NewRedisStore(ctx, a.cfg.RedisURL, a.cfg.SessionTTL)
	if err != nil {
		return nil, errors.Wrap(err, "connect redis")
	}
	a.closers = append(a.closers, store.Close)
	logger.Info("Using Redis sessions", "ttl", a.cfg.SessionTTL)
	return store, nil
}

// Run serves until ctx is cancelled or a component fails.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.bot.Run(gctx, a.cfg.BotToken, func(context.Context) error {
			logger.Info("Bot is ready")
			return nil
		})
	})

	if a.cfg.MetricsAddr != "" {
		g.Go(func() error { return a.serveMetrics(gctx) })
	}

	g.Go(func() error { return a.runJanitor(gctx) })

	err := g.Wait()
	a.pool.Stop()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (a *App) serveMetrics(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.collector.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              a.cfg.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Metrics server shutdown failed", "error", err)
		}
	}()

	logger.Info("Metrics server listening", "addr", a.cfg.MetricsAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "metrics server")
	}
	return nil
}

// runJanitor removes stale download artifacts at startup and then on the
// configured schedule.
func (a *App) runJanitor(ctx context.Context) error {
	sweep := func() {
		utils.CleanupTempFilesByPattern(ctx, a.cfg.TempDir, downloader.TempPatterns, a.cfg.CleanupMaxAge)
	}
	sweep()

	c := cron.New()
	if _, err := c.AddFunc(a.cfg.CleanupSchedule, sweep); err != nil {
		return errors.Wrapf(err, "cleanup schedule %q", a.cfg.CleanupSchedule)
	}
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.Warn("Close failed", "error", err)
		}
	}
	a.closers = nil
}
