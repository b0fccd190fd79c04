package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"jobsieve/internal/jobtech"
	"jobsieve/internal/logger"
	"jobsieve/internal/profile"
)

//go:embed prompts/system.md
var systemPrompt string

//go:embed prompts/user.md
var userPromptTemplate string

const defaultMaxLogLength = 200

// Generator produces raw model output for a system instruction and a user
// message. Implementations wrap a concrete model backend.
type Generator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
}

// Judge turns postings into decisions through an external model. Calls are
// spaced by a rate limiter sized for backends with strict per-minute quotas,
// and every failure degrades to the failure-closed fallback: Evaluate never
// returns an error.
type Judge struct {
	generator Generator
	limiter   *rate.Limiter
	logger    *zap.Logger
	maxLogLen int
}

// NewJudge builds a Judge. minInterval is the minimum spacing between model
// calls; zero or negative disables the gate.
func NewJudge(generator Generator, minInterval time.Duration, maxLogLength int, log *zap.Logger) *Judge {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Judge{
		generator: generator,
		limiter:   rate.NewLimiter(rate.Every(minInterval), 1),
		logger:    log,
		maxLogLen: maxLogLength,
	}
}

// Evaluate produces exactly one Decision for the posting. Model errors and
// unparseable responses yield the fallback decision instead of an error so a
// single bad posting cannot abort the batch.
func (j *Judge) Evaluate(ctx context.Context, prof *profile.Document, posting *jobtech.JobPosting) *Decision {
	prompt, err := j.buildPrompt(prof, posting)
	if err != nil {
		j.logger.Warn("building judgment prompt failed",
			zap.String("job_id", posting.ID),
			zap.Error(err),
		)
		return FallbackDecision("prompt build failed: " + err.Error())
	}

	if err := j.limiter.Wait(ctx); err != nil {
		j.logger.Warn("model call gate interrupted",
			zap.String("job_id", posting.ID),
			zap.Error(err),
		)
		return FallbackDecision("model call interrupted: " + err.Error())
	}

	j.logger.Debug("model judgment request",
		zap.String("job_id", posting.ID),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, j.maxLogLen)),
	)

	raw, err := j.generator.GenerateContent(ctx, systemPrompt, prompt)
	if err != nil {
		j.logger.Warn("model invocation failed",
			zap.String("job_id", posting.ID),
			zap.Error(err),
		)
		return FallbackDecision("model invocation failed: " + err.Error())
	}

	j.logger.Debug("model judgment response",
		zap.String("job_id", posting.ID),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, j.maxLogLen)),
	)

	decision, err := ParseDecision(raw)
	if err != nil {
		j.logger.Warn("model response not parseable",
			zap.String("job_id", posting.ID),
			zap.Error(err),
			zap.String("response_preview", logger.TruncateForLog(raw, j.maxLogLen)),
		)
		return FallbackDecision(err.Error())
	}

	return decision
}

func (j *Judge) buildPrompt(prof *profile.Document, posting *jobtech.JobPosting) (string, error) {
	profileJSON, err := prof.JSON()
	if err != nil {
		return "", err
	}

	jobJSON, err := json.MarshalIndent(posting, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal posting payload: %w", err)
	}

	template := userPromptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Candidate profile:\n{{PROFILE_JSON}}\n\nJob posting:\n{{JOB_JSON}}\n\nJSON decision:"
	}

	prompt := strings.ReplaceAll(template, "{{PROFILE_JSON}}", profileJSON)
	prompt = strings.ReplaceAll(prompt, "{{JOB_JSON}}", string(jobJSON))

	return prompt, nil
}
