package cmd

import (
	"context"
	"log"
	"time"

	"jobsieve/internal/dedup"
	"jobsieve/internal/jobtech"
	"jobsieve/internal/logger"
	"jobsieve/internal/pipeline"
	"jobsieve/internal/snapshot"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch the day's postings from the job-search API and snapshot the deduplicated batch",
	Run: func(cmd *cobra.Command, _ []string) {
		fetch(cmd)
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().String("date", "", "fetch date in 2006-01-02 format (default is today, UTC)")
}

func fetch(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	runDate, err := resolveRunDate(cmd)
	if err != nil {
		logger.Fatal("resolving fetch date", zap.Error(err))
	}

	store, err := buildStore(config)
	if err != nil {
		logger.Fatal("building the snapshot store", zap.Error(err))
	}
	defer store.Close()

	client := jobtech.New(ctx, logger)
	if config != nil && config.UserAgent != "" {
		client.UserAgent = config.UserAgent
	}

	params := config.searchParams()

	logger.Info("starting the fetch",
		zap.String("run_date", runDate),
		zap.String("query", params.Query),
	)

	// The API fetch and the previous-day snapshot read do not depend on each
	// other, so they overlap.
	var (
		today     []*jobtech.JobPosting
		yesterday []*jobtech.JobPosting
	)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		jobs, err := client.Search(params, runDate)
		if err != nil {
			return err
		}
		today = jobs

		return nil
	})

	group.Go(func() error {
		key := snapshot.JobsKey(previousDay(runDate))

		found, err := store.Read(groupCtx, key, &yesterday)
		if err != nil {
			logger.Warn("ignoring unreadable previous-day snapshot", zap.String("key", key), zap.Error(err))
			yesterday = nil

			return nil
		}
		if !found {
			logger.Info("no previous-day snapshot, treating every posting as new", zap.String("key", key))
		}

		return nil
	})

	if err := group.Wait(); err != nil {
		logger.Fatal("fetching postings", zap.Error(err))
	}

	fresh := dedup.NewPostings(today, yesterday)

	if err := store.Write(ctx, snapshot.JobsKey(runDate), today); err != nil {
		logger.Fatal("writing the jobs snapshot", zap.Error(err))
	}

	if err := store.Write(ctx, snapshot.NewJobsKey(runDate), fresh); err != nil {
		logger.Fatal("writing the deduplicated snapshot", zap.Error(err))
	}

	logger.Info("fetch complete",
		zap.String("run_date", runDate),
		zap.Int("jobs_today", len(today)),
		zap.Int("new_jobs", len(fresh)),
		zap.Int("duplicates_skipped", len(today)-len(fresh)),
	)
}

func previousDay(date string) string {
	day, err := time.Parse(pipeline.DateLayout, date)
	if err != nil {
		return ""
	}

	return day.AddDate(0, 0, -1).Format(pipeline.DateLayout)
}
