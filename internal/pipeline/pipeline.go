// Package pipeline drives a day's postings from raw to decided through a
// staged state machine: LoadProfile, LoadJobs, then MatchJobs or a skip edge
// when the batch is empty, then SaveResults.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"jobsieve/internal/ai"
	"jobsieve/internal/jobtech"
	"jobsieve/internal/prefilter"
	"jobsieve/internal/profile"
	"jobsieve/internal/snapshot"
)

// DateLayout is the calendar-date format runs are keyed by.
const DateLayout = "2006-01-02"

// jobsSourceNone marks a run that found no jobs snapshot for its date.
const jobsSourceNone = "NONE"

// Stage identifies a node of the run state machine.
type Stage int

const (
	StageLoadProfile Stage = iota
	StageLoadJobs
	StageMatchJobs
	StageSaveResults
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageLoadProfile:
		return "load_profile"
	case StageLoadJobs:
		return "load_jobs"
	case StageMatchJobs:
		return "match_jobs"
	case StageSaveResults:
		return "save_results"
	case StageDone:
		return "done"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Judge is the model judgment boundary consumed by the matching stage.
// Implementations are failure-closed and never return an error.
type Judge interface {
	Evaluate(ctx context.Context, prof *profile.Document, posting *jobtech.JobPosting) *ai.Decision
}

// Pipeline wires the snapshot store and the judge into the run state machine.
type Pipeline struct {
	store       snapshot.Store
	profilePath string
	judge       Judge
	logger      *zap.Logger
}

func New(store snapshot.Store, profilePath string, judge Judge, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Pipeline{
		store:       store,
		profilePath: profilePath,
		judge:       judge,
		logger:      logger,
	}
}

// Run executes one full pass for runDate (today UTC when empty) and returns
// the persisted result. Only a profile that cannot be loaded or an artifact
// that cannot be written aborts a run; everything else degrades.
func (p *Pipeline) Run(ctx context.Context, runDate string) (*RunResult, error) {
	state := State{RunDate: strings.TrimSpace(runDate)}

	var result *RunResult
	for stage := StageLoadProfile; stage != StageDone; {
		p.logger.Debug("entering stage", zap.Stringer("stage", stage))

		var (
			next Stage
			err  error
		)

		switch stage {
		case StageLoadProfile:
			state, err = p.loadProfile(state)
			next = StageLoadJobs
		case StageLoadJobs:
			state, err = p.loadJobs(ctx, state)
			next = routeAfterLoadJobs(state)
		case StageMatchJobs:
			state, err = p.matchJobs(ctx, state)
			next = StageSaveResults
		case StageSaveResults:
			result, err = p.saveResults(ctx, state)
			next = StageDone
		default:
			return nil, fmt.Errorf("unknown stage %v", stage)
		}

		if err != nil {
			return nil, fmt.Errorf("%s: %w", stage, err)
		}

		stage = next
	}

	return result, nil
}

func (p *Pipeline) loadProfile(state State) (State, error) {
	if state.RunDate == "" {
		state.RunDate = time.Now().UTC().Format(DateLayout)
	}

	doc, err := profile.Load(p.profilePath)
	if err != nil {
		return state, err
	}

	state.Profile = doc
	state.Stats.ProfileLoaded = true

	p.logger.Info("profile loaded",
		zap.String("path", p.profilePath),
		zap.String("run_date", state.RunDate),
	)

	return state, nil
}

// loadJobs prefers the deduplicated batch for the date and falls back to the
// full one. A missing or unreadable snapshot degrades to the next source; the
// stage itself never fails.
func (p *Pipeline) loadJobs(ctx context.Context, state State) (State, error) {
	state.Jobs = nil
	state.Matches = make([]*DecisionRecord, 0)
	state.Rejected = make([]*DecisionRecord, 0)
	state.Stats.JobsSource = jobsSourceNone

	for _, key := range []string{snapshot.NewJobsKey(state.RunDate), snapshot.JobsKey(state.RunDate)} {
		var jobs []*jobtech.JobPosting
		found, err := p.store.Read(ctx, key, &jobs)
		if err != nil {
			p.logger.Warn("skipping unreadable jobs snapshot", zap.String("key", key), zap.Error(err))
			continue
		}
		if found {
			state.Jobs = compactPostings(jobs)
			state.Stats.JobsSource = key
			break
		}
	}

	state.Stats.JobsLoaded = len(state.Jobs)

	p.logger.Info("jobs loaded",
		zap.String("source", state.Stats.JobsSource),
		zap.Int("count", state.Stats.JobsLoaded),
	)

	return state, nil
}

// routeAfterLoadJobs is the conditional edge of the machine: an empty batch
// skips matching entirely, so no model call is ever spent on nothing.
func routeAfterLoadJobs(state State) Stage {
	if len(state.Jobs) == 0 {
		return StageSaveResults
	}

	return StageMatchJobs
}

func (p *Pipeline) matchJobs(ctx context.Context, state State) (State, error) {
	threshold := state.Profile.ExperienceThreshold()
	total := len(state.Jobs)

	p.logger.Info("matching jobs",
		zap.Int("count", total),
		zap.Int("exp_threshold", threshold),
	)

	for i, job := range state.Jobs {
		decision := prefilter.Evaluate(job, threshold)
		decidedBy := "prefilter"
		if decision == nil {
			decision = p.judge.Evaluate(ctx, state.Profile, job)
			decidedBy = "model"
		}

		record := &DecisionRecord{JobPosting: job, Decision: decision}
		if decision.Matched() {
			state.Matches = append(state.Matches, record)
		} else {
			state.Rejected = append(state.Rejected, record)
		}

		p.logger.Info("posting evaluated",
			zap.Int("index", i+1),
			zap.Int("total", total),
			zap.String("job_id", job.ID),
			zap.String("title", job.Title),
			zap.String("decided_by", decidedBy),
			zap.String("match", decision.Match),
			zap.Int("score", decision.Score),
		)
	}

	state.Stats.MatchingRan = true
	state.Stats.MatchesCount = len(state.Matches)
	state.Stats.RejectedCount = len(state.Rejected)
	state.Stats.ExpThreshold = threshold

	return state, nil
}

func (p *Pipeline) saveResults(ctx context.Context, state State) (*RunResult, error) {
	result := &RunResult{
		RunDate:  state.RunDate,
		Stats:    state.Stats,
		Matches:  state.Matches,
		Rejected: state.Rejected,
	}
	if result.Matches == nil {
		result.Matches = make([]*DecisionRecord, 0)
	}
	if result.Rejected == nil {
		result.Rejected = make([]*DecisionRecord, 0)
	}

	if err := validateResult(result); err != nil {
		return nil, err
	}

	key := snapshot.MatchesKey(state.RunDate)
	if err := p.store.Write(ctx, key, result); err != nil {
		return nil, err
	}

	p.logger.Info("run complete",
		zap.String("run_date", state.RunDate),
		zap.Int("jobs_loaded", state.Stats.JobsLoaded),
		zap.Int("matches", len(result.Matches)),
		zap.Int("rejected", len(result.Rejected)),
		zap.String("output", key),
	)

	return result, nil
}

// compactPostings drops null entries a hand-edited snapshot may carry.
func compactPostings(jobs []*jobtech.JobPosting) []*jobtech.JobPosting {
	kept := jobs[:0]
	for _, job := range jobs {
		if job != nil {
			kept = append(kept, job)
		}
	}

	return kept
}
