package cvparse

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"techconnect-matcher/internal/ai"
	"techconnect-matcher/internal/cv"
	"techconnect-matcher/internal/extract"
	"techconnect-matcher/internal/models"
	"techconnect-matcher/internal/skills"
	"techconnect-matcher/internal/storage/postgres"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Quota scopes. Each scope has its own bucket counters.
const (
	scopeParseAI = "cv_ai"
	scopeAnalyze = "cv_analyze"
)

const (
	maxSectionChars    = 6000
	maxFullTextChars   = 200000
	fallbackSummaryMax = 1800
)

// Storage is the slice of the persistence layer the pipeline needs.
// *postgres.Store satisfies it; tests substitute a fake.
type Storage interface {
	GetCandidate(ctx context.Context, candidateID string) (*models.Candidate, error)
	ClaimParseRequest(ctx context.Context, candidateID, requestID string) error
	CurrentParseRequestID(ctx context.Context, candidateID string) (string, error)
	SetParseError(ctx context.Context, candidateID, requestID, message string) error
	ApplyCvSkills(ctx context.Context, candidateID, requestID string, fromCv, effective, normalized []string, outcome models.ParseOutcome) error
	SetAIState(ctx context.Context, candidateID, requestID, status, aiError string) error
	SetProfileSummary(ctx context.Context, candidateID, requestID, summary string) error
	SaveParseArtifact(ctx context.Context, p *models.CvParse) error
	AttachAIReport(ctx context.Context, requestID, aiRequestID string, report models.RawJSON) error
	ConsumeAiQuota(ctx context.Context, scope, userID string, perMinute, perDay int) error

	GetAnalysis(ctx context.Context, analysisID string) (*models.CvAnalysis, error)
	ClaimAnalysis(ctx context.Context, analysisID string) error
	FinishAnalysis(ctx context.Context, a *models.CvAnalysis) error
}

// Fetcher downloads CV documents.
type Fetcher interface {
	Download(ctx context.Context, url string) (data []byte, contentType string, err error)
}

// AIClient is the JSON completion surface of the AI layer.
type AIClient interface {
	CompleteJSON(ctx context.Context, system, user string, dest interface{}) error
}

// Publisher feeds change events back into the work queue.
type Publisher interface {
	Publish(ctx context.Context, event *models.ChangeEvent) error
}

// Limits caps AI spending per user.
type Limits struct {
	ParseAIDaily  int
	AnalyzeDaily  int
	AnalyzeMinute int
}

// Pipeline executes CV parse and analysis flows end to end. Handlers are
// idempotent and safe under redelivery; a superseded request id makes the
// in-flight run abort without touching the record.
type Pipeline struct {
	store     Storage
	fetcher   Fetcher
	extractor extract.TextExtractor
	ai        AIClient
	queue     Publisher
	limits    Limits
	logger    *zap.Logger
}

func New(store Storage, fetcher Fetcher, extractor extract.TextExtractor, aiClient AIClient, queue Publisher, limits Limits, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		store:     store,
		fetcher:   fetcher,
		extractor: extractor,
		ai:        aiClient,
		queue:     queue,
		limits:    limits,
		logger:    logger,
	}
}

// HandleCandidateWritten reacts to a candidate change event by parsing the CV
// when its URL changed. Other candidate changes are the fan-out controller's
// business, not ours.
func (p *Pipeline) HandleCandidateWritten(ctx context.Context, event *models.ChangeEvent) error {
	var before, after models.Candidate
	if len(event.Before) > 0 {
		if err := jsonUnmarshal(event.Before, &before); err != nil {
			return fmt.Errorf("decode before snapshot: %w", err)
		}
	}
	if len(event.After) > 0 {
		if err := jsonUnmarshal(event.After, &after); err != nil {
			return fmt.Errorf("decode after snapshot: %w", err)
		}
	}

	afterURL := strings.TrimSpace(after.CvURL)
	if afterURL == "" || afterURL == strings.TrimSpace(before.CvURL) {
		return nil
	}

	return p.ParseCv(ctx, event.CandidateID, afterURL)
}

// ParseCv runs the full parse flow for one candidate CV.
func (p *Pipeline) ParseCv(ctx context.Context, candidateID, cvURL string) error {
	requestID := uuid.NewString()

	if err := p.store.ClaimParseRequest(ctx, candidateID, requestID); err != nil {
		return fmt.Errorf("claim parse: %w", err)
	}

	log := p.logger.With(
		zap.String("candidate_id", candidateID),
		zap.String("request_id", requestID),
	)

	data, contentType, err := p.fetcher.Download(ctx, cvURL)
	if err != nil {
		log.Warn("cv download failed", zap.Error(err))
		return p.failParse(ctx, candidateID, requestID, "CV_DOWNLOAD_FAILED: "+err.Error())
	}

	text, err := p.extractor.Extract(ctx, data, contentType)
	if err != nil {
		if errors.Is(err, extract.ErrEmptyText) {
			return p.failParse(ctx, candidateID, requestID, "CV_PARSED_BUT_EMPTY_TEXT")
		}
		log.Warn("cv extract failed", zap.Error(err))
		return p.failParse(ctx, candidateID, requestID, "CV_EXTRACT_FAILED: "+err.Error())
	}

	text = cv.CleanText(text)
	if text == "" {
		return p.failParse(ctx, candidateID, requestID, "CV_PARSED_BUT_EMPTY_TEXT")
	}

	docHash := cv.ContentHash(data)
	email := cv.FirstEmail(text)
	phone := cv.FirstPhone(text)

	// Race guard: a newer upload may have claimed the record while we were
	// downloading. Abort without writing anything.
	current, err := p.store.CurrentParseRequestID(ctx, candidateID)
	if err != nil {
		return fmt.Errorf("race guard read: %w", err)
	}
	if current != requestID {
		log.Info("parse superseded, aborting", zap.String("current", current))
		return nil
	}

	candidate, err := p.store.GetCandidate(ctx, candidateID)
	if err != nil {
		return fmt.Errorf("reload candidate: %w", err)
	}
	if candidate == nil {
		return nil
	}

	sameHash := candidate.CvTextHash != "" && candidate.CvTextHash == docHash
	priorAIDone := candidate.AIStatus == models.AIStatusDone

	sections := cv.SplitSections(text)
	for k, v := range sections {
		sections[k] = cv.CapString(v, maxSectionChars)
	}
	fullText := cv.CapString(text, maxFullTextChars)

	seed := cv.ExtractSkillSeed(sections, fullText)
	seedNormalized := skills.SanitizeNormalized(seed)

	if err := p.store.SaveParseArtifact(ctx, &models.CvParse{
		RequestID:            requestID,
		CandidateID:          candidateID,
		CvURL:                cvURL,
		CvTextHash:           docHash,
		FullText:             fullText,
		Sections:             sections,
		SkillsSeed:           seed,
		SkillsNormalizedSeed: seedNormalized,
	}); err != nil {
		return fmt.Errorf("save artifact: %w", err)
	}

	quality := cv.EvaluateQuality(text, sections, email, phone)

	qualityVerdict := models.QualityGood
	if quality.IsBad {
		qualityVerdict = models.QualityBad
	}

	metricsJSON, _ := jsonMarshal(quality.Metrics)

	fallbackSummary := text
	if len(fallbackSummary) > fallbackSummaryMax {
		fallbackSummary = strings.TrimSpace(fallbackSummary[:fallbackSummaryMax]) + "…"
	}

	manual := skills.SanitizeNormalized(candidate.SkillsManual)
	fromCv := seedNormalized
	effective := skills.Effective(manual, fromCv)

	outcome := models.ParseOutcome{
		CvTextHash:     docHash,
		Summary:        fallbackSummary,
		Quality:        qualityVerdict,
		QualityReason:  quality.Reason,
		QualityFlags:   quality.Flags,
		QualityMetrics: metricsJSON,
	}

	if err := p.store.ApplyCvSkills(ctx, candidateID, requestID, fromCv, effective, effective, outcome); err != nil {
		if errors.Is(err, postgres.ErrStaleRequest) {
			return nil
		}
		return fmt.Errorf("apply parse results: %w", err)
	}

	log.Info("cv parsed",
		zap.String("quality", qualityVerdict),
		zap.Int("seed_skills", len(seedNormalized)),
		zap.Bool("same_hash", sameHash),
	)

	switch {
	case sameHash && priorAIDone:
		if err := p.store.SetAIState(ctx, candidateID, requestID, models.AIStatusSkippedSame, ""); err != nil && !errors.Is(err, postgres.ErrStaleRequest) {
			return err
		}
	case quality.IsBad:
		if err := p.store.SetAIState(ctx, candidateID, requestID, models.AIStatusSkippedBadCv, ""); err != nil && !errors.Is(err, postgres.ErrStaleRequest) {
			return err
		}
	default:
		if err := p.enrichWithAI(ctx, candidateID, requestID, seedNormalized, sections); err != nil {
			return err
		}
	}

	return p.notifyCandidateChanged(ctx, candidateID)
}

// enrichWithAI asks the model for a structured profile and merges its skills
// with the seed. All failures land on a terminal ai_status without touching
// the already-committed parse results.
func (p *Pipeline) enrichWithAI(ctx context.Context, candidateID, requestID string, seedNormalized []string, sections map[string]string) error {
	if err := p.store.ConsumeAiQuota(ctx, scopeParseAI, candidateID, 0, p.limits.ParseAIDaily); err != nil {
		if errors.Is(err, postgres.ErrQuotaExceeded) {
			return p.failAI(ctx, candidateID, requestID, "CV_AI_DAILY_LIMIT")
		}
		return fmt.Errorf("parse ai quota: %w", err)
	}

	if err := p.store.SetAIState(ctx, candidateID, requestID, models.AIStatusRunning, ""); err != nil {
		if errors.Is(err, postgres.ErrStaleRequest) {
			return nil
		}
		return err
	}

	system, user := ai.ProfilePrompt(seedNormalized, sections)

	var report ai.ProfileReport
	if err := p.ai.CompleteJSON(ctx, system, user, &report); err != nil {
		p.logger.Warn("ai enrichment failed",
			zap.String("candidate_id", candidateID),
			zap.Error(err),
		)
		return p.failAI(ctx, candidateID, requestID, classifyAIError(err))
	}

	// Current request id may have moved while the model was thinking.
	current, err := p.store.CurrentParseRequestID(ctx, candidateID)
	if err != nil {
		return fmt.Errorf("race guard read: %w", err)
	}
	if current != requestID {
		return nil
	}

	reportJSON, err := jsonMarshal(&report)
	if err != nil {
		return p.failAI(ctx, candidateID, requestID, "AI_REPORT_ENCODE_FAILED")
	}

	aiRequestID := uuid.NewString()
	if err := p.store.AttachAIReport(ctx, requestID, aiRequestID, reportJSON); err != nil {
		return err
	}

	// Final CV skills: sanitized AI output merged with the seed.
	aiSkills := skills.SanitizeNormalized(report.Skills)
	fromCv := skills.Dedupe(append(aiSkills, seedNormalized...))
	fromCv = skills.SanitizeNormalized(fromCv)

	candidate, err := p.store.GetCandidate(ctx, candidateID)
	if err != nil {
		return fmt.Errorf("reload candidate: %w", err)
	}
	if candidate == nil {
		return nil
	}

	manual := skills.SanitizeNormalized(candidate.SkillsManual)
	effective := skills.Effective(manual, fromCv)

	outcome := models.ParseOutcome{
		CvTextHash:     candidate.CvTextHash,
		Summary:        candidate.ProfileSummary,
		Quality:        candidate.ParseQuality,
		QualityReason:  candidate.ParseQualityReason,
		QualityFlags:   candidate.ParseQualityFlags,
		QualityMetrics: candidate.ParseQualityMetrics,
	}

	if err := p.store.ApplyCvSkills(ctx, candidateID, requestID, fromCv, effective, effective, outcome); err != nil {
		if errors.Is(err, postgres.ErrStaleRequest) {
			return nil
		}
		return fmt.Errorf("apply ai skills: %w", err)
	}

	if summary := strings.TrimSpace(report.Summary); summary != "" {
		if err := p.store.SetProfileSummary(ctx, candidateID, requestID, summary); err != nil && !errors.Is(err, postgres.ErrStaleRequest) {
			return err
		}
	}

	if err := p.store.SetAIState(ctx, candidateID, requestID, models.AIStatusDone, ""); err != nil && !errors.Is(err, postgres.ErrStaleRequest) {
		return err
	}

	return nil
}

func (p *Pipeline) failParse(ctx context.Context, candidateID, requestID, message string) error {
	err := p.store.SetParseError(ctx, candidateID, requestID, message)
	if errors.Is(err, postgres.ErrStaleRequest) {
		return nil
	}
	return err
}

func (p *Pipeline) failAI(ctx context.Context, candidateID, requestID, message string) error {
	err := p.store.SetAIState(ctx, candidateID, requestID, models.AIStatusError, message)
	if errors.Is(err, postgres.ErrStaleRequest) {
		return nil
	}
	return err
}

// notifyCandidateChanged requeues a candidate-written event so the fan-out
// controller re-syncs the index and match records with the new skill set.
// The before snapshot carries the same cv url, which keeps the republished
// event from restarting the parse.
func (p *Pipeline) notifyCandidateChanged(ctx context.Context, candidateID string) error {
	candidate, err := p.store.GetCandidate(ctx, candidateID)
	if err != nil || candidate == nil {
		return err
	}

	after, err := jsonMarshal(candidate)
	if err != nil {
		return fmt.Errorf("encode candidate snapshot: %w", err)
	}

	before, err := jsonMarshal(&models.Candidate{ID: candidateID, CvURL: candidate.CvURL})
	if err != nil {
		return fmt.Errorf("encode before snapshot: %w", err)
	}

	return p.queue.Publish(ctx, &models.ChangeEvent{
		Kind:        models.EventCandidateWritten,
		CandidateID: candidateID,
		Before:      []byte(before),
		After:       []byte(after),
	})
}

// classifyAIError maps AI failure kinds onto the stable error strings stored
// on the candidate record.
func classifyAIError(err error) string {
	switch {
	case errors.Is(err, ai.ErrTimeout):
		return "OPENAI_TIMEOUT"
	case errors.Is(err, ai.ErrEmptyResponse):
		return "OPENAI_EMPTY_RESPONSE"
	case errors.Is(err, ai.ErrMalformedResponse):
		return "OPENAI_MALFORMED_RESPONSE"
	case errors.Is(err, ai.ErrHTTP):
		return "OPENAI_HTTP_ERROR"
	default:
		return "OPENAI_UNKNOWN_ERROR"
	}
}
