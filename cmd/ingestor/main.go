package main

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"review_analyzer/internal/adapters/csvdata"
	"review_analyzer/internal/adapters/observability"
	"review_analyzer/internal/domain"
	"review_analyzer/internal/shared"
	mysqlrepo "review_analyzer/internal/storage/mysql"
)

// ingestor seeds the MySQL store from the review data file.
func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)
	observability.SetLevel(cfg.LogLevel)

	log.Info().
		Str("file", cfg.DataFile).
		Int("workers", cfg.Workers).
		Int("batch", cfg.BatchSize).
		Msg("ingestor starting")

	reviews, err := csvdata.Load(cfg.DataFile)
	if err != nil {
		log.Fatal().Err(err).Msg("load reviews failed")
	}

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	if err := repo.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("migrate failed")
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup
	var failed atomic.Int64

	for i, batch := range batches(reviews, cfg.BatchSize) {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(n int, rs []domain.Review) {
			defer wg.Done()
			defer sem.Release(1)

			if err := repo.AppendBatch(ctx, rs); err != nil {
				failed.Add(1)
				log.Warn().Int("batch", n).Int("rows", len(rs)).Err(err).Msg("batch insert failed")
				return
			}
			log.Debug().Int("batch", n).Int("rows", len(rs)).Msg("batch ok")
		}(i, batch)
	}

	wg.Wait()
	if n := failed.Load(); n > 0 {
		log.Fatal().Int64("failed_batches", n).Msg("ingestion finished with errors")
	}
	log.Info().Int("reviews", len(reviews)).Msg("ingestion completed")
}

func batches(rs []domain.Review, size int) [][]domain.Review {
	if size <= 0 {
		size = 500
	}
	var out [][]domain.Review
	for len(rs) > 0 {
		n := min(size, len(rs))
		out = append(out, rs[:n])
		rs = rs[n:]
	}
	return out
}
