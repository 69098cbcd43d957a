package main

import (
	"context"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/jobs-collector/internal/config"
	"github.com/maxaizer/jobs-collector/internal/logger"
	"github.com/maxaizer/jobs-collector/internal/metrics"
	"github.com/maxaizer/jobs-collector/internal/parsing"
	"github.com/maxaizer/jobs-collector/internal/repositories"
	"github.com/maxaizer/jobs-collector/internal/services"
	"github.com/maxaizer/jobs-collector/internal/sources"
	log "github.com/sirupsen/logrus"
	"os"
	"os/signal"
	"syscall"
)

func runScheduler(ctx context.Context, cfg *config.Config, collector *services.Collector,
	reviews *repositories.MatchReviews) {

	scheduler, err := services.NewCollectionScheduler(ctx, collector, cfg.Pipeline.Schedule)
	if err != nil {
		log.Fatalf("can't create collection scheduler: %v", err)
	}

	if cfg.Pipeline.ReviewRetentionDays > 0 {
		if err = scheduler.AddReviewCleanup(reviews, cfg.Pipeline.ReviewRetentionDays); err != nil {
			log.Fatalf("can't schedule review cleanup: %v", err)
		}
	}

	scheduler.Start()
	if cfg.Pipeline.RunOnStart {
		go scheduler.RunOnce()
	}

	<-ctx.Done()

	log.Info("Shutting down scheduler...")
	scheduler.Stop()
	log.Info("Scheduler stopped.")
}

// runOnce serves the external-trigger mode: one run, exit code reflects hard failures.
func runOnce(ctx context.Context, collector *services.Collector, sourceNames []string) int {
	report, err := collector.RunCollection(ctx, sourceNames...)
	if err != nil {
		log.Errorf("collection run failed: %v", err)
		return 1
	}

	log.Infof("collection run finished with state %s", report.State)
	return 0
}

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Get()

	logger.Setup(cfg.Logger)
	defer logger.Cleanup()

	metrics.StartMetricsServer(cfg.Metrics.Address)

	dbContext, err := repositories.NewDbContext(cfg.DB.ConnectionString)
	if err != nil {
		log.Fatalf("can't create db context: %v", err)
	}
	defer dbContext.Close()

	err = dbContext.Migrate()
	if err != nil {
		log.Fatalf("can't migrate db context: %v", err)
	}

	reviews := repositories.NewMatchReviewsRepository(dbContext.DB)
	runs := repositories.NewRunsRepository(dbContext.DB)
	bus := EventBus.New()

	if _, err = services.NewEventRecorder(bus, reviews, runs); err != nil {
		log.Fatalf("can't subscribe event recorder: %v", err)
	}

	adapters, err := sources.Build(cfg.Sources)
	if err != nil {
		log.Fatalf("can't build source adapters: %v", err)
	}
	log.Infof("configured %d source adapters", len(adapters))

	var vocabulary *parsing.Vocabulary
	if cfg.Pipeline.SkillsVocabulary != "" {
		vocabulary, err = parsing.LoadVocabulary(cfg.Pipeline.SkillsVocabulary)
		if err != nil {
			log.Fatalf("can't load skills vocabulary: %v", err)
		}
		log.Infof("loaded skills vocabulary from %s", cfg.Pipeline.SkillsVocabulary)
	}

	collector := services.NewCollector(adapters, parsing.NewParser(vocabulary), repositories.NewStore(dbContext.DB),
		bus, cfg.Pipeline)

	if cfg.Pipeline.Schedule == "" || len(os.Args) > 1 {
		code := runOnce(ctx, collector, os.Args[1:])
		logger.Cleanup()
		_ = dbContext.Close()
		os.Exit(code)
	}

	runScheduler(ctx, cfg, collector, reviews)
}
