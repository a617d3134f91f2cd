package main

import (
	"context"
	"database/sql"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"review_analyzer/internal/adapters/csvdata"
	server "review_analyzer/internal/adapters/http_server"
	kafkaad "review_analyzer/internal/adapters/kafka"
	"review_analyzer/internal/adapters/observability"
	redisad "review_analyzer/internal/adapters/redis"
	"review_analyzer/internal/adapters/sentiment"
	"review_analyzer/internal/app"
	"review_analyzer/internal/domain"
	"review_analyzer/internal/shared"
	"review_analyzer/internal/storage/memory"
	mysqlrepo "review_analyzer/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)
	observability.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// store
	var repo domain.ReviewRepository
	switch cfg.Store {
	case "mysql":
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		r := mysqlrepo.New(db)
		if err := r.Migrate(ctx); err != nil {
			log.Fatal().Err(err).Msg("migrate failed")
		}
		log.Info().Msg("database connection ok")
		repo = r
	default:
		seed, err := csvdata.Load(cfg.DataFile)
		if err != nil {
			log.Fatal().Err(err).Str("file", cfg.DataFile).Msg("load reviews failed")
		}
		log.Info().Str("file", cfg.DataFile).Int("reviews", len(seed)).Msg("reviews loaded")
		repo = memory.New(seed)
	}

	// sentiment
	var scorer domain.SentimentScorer = sentiment.NewLexicon()
	if cfg.SentimentURL != "" {
		cl, err := sentiment.NewClient(cfg.SentimentURL, cfg.SentimentKey, cfg.SentimentRPS)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize sentiment client")
		}
		scorer = cl
		log.Info().Str("base", cfg.SentimentURL).Msg("using remote sentiment scorer")
	}

	// optional cache and events
	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer rc.Close()
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, cache errors will be ignored")
		}
		cache = rc
	}
	var events domain.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		p := kafkaad.New(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer p.Close()
		events = p
	}

	q := app.NewQueryService(repo, scorer, cache, cfg.CacheTTL)
	c := app.NewCommandService(repo, scorer, events, clockwork.NewRealClock(), shared.AllowedLocations)

	// http
	srv := server.New(server.Options{CORSOrigins: cfg.CORSOrigins, RequestTimeout: cfg.RequestTimeout})
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Q: q, C: c})

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
	<-drained
	// flush review.created events before the publisher is closed
	c.Wait()
	log.Info().Msg("API stopped")
}
