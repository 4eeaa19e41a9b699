package cvparse

import (
	"context"
	"errors"
	"fmt"

	"techconnect-matcher/internal/ai"
	"techconnect-matcher/internal/cv"
	"techconnect-matcher/internal/extract"
	"techconnect-matcher/internal/models"
	"techconnect-matcher/internal/skills"
	"techconnect-matcher/internal/storage/postgres"

	"go.uber.org/zap"
)

// HandleAnalysisRequested runs one standalone CV adequacy report. The
// analysis record owns all state; the candidate profile is never touched.
func (p *Pipeline) HandleAnalysisRequested(ctx context.Context, event *models.ChangeEvent) error {
	analysis, err := p.store.GetAnalysis(ctx, event.AnalysisID)
	if err != nil {
		return fmt.Errorf("load analysis: %w", err)
	}
	if analysis == nil {
		return nil
	}

	// Claim queued -> running; a redelivered event loses the claim and stops.
	if err := p.store.ClaimAnalysis(ctx, analysis.ID); err != nil {
		if errors.Is(err, postgres.ErrStaleRequest) {
			return nil
		}
		return fmt.Errorf("claim analysis: %w", err)
	}

	log := p.logger.With(
		zap.String("analysis_id", analysis.ID),
		zap.String("candidate_id", analysis.CandidateID),
	)

	if err := p.store.ConsumeAiQuota(ctx, scopeAnalyze, analysis.CandidateID, p.limits.AnalyzeMinute, p.limits.AnalyzeDaily); err != nil {
		switch {
		case errors.Is(err, postgres.ErrQuotaMinuteExceeded):
			return p.failAnalysis(ctx, analysis, "CV_ANALYZE_RATE_LIMIT")
		case errors.Is(err, postgres.ErrQuotaDayExceeded):
			return p.failAnalysis(ctx, analysis, "CV_ANALYZE_DAILY_LIMIT")
		}
		return fmt.Errorf("analyze quota: %w", err)
	}

	data, contentType, err := p.fetcher.Download(ctx, analysis.CvURL)
	if err != nil {
		log.Warn("analysis download failed", zap.Error(err))
		return p.failAnalysis(ctx, analysis, "CV_DOWNLOAD_FAILED: "+err.Error())
	}

	text, err := p.extractor.Extract(ctx, data, contentType)
	if err != nil {
		if errors.Is(err, extract.ErrEmptyText) {
			return p.failAnalysis(ctx, analysis, "CV_PARSED_BUT_EMPTY_TEXT")
		}
		return p.failAnalysis(ctx, analysis, "CV_EXTRACT_FAILED: "+err.Error())
	}

	text = cv.CleanText(text)
	if text == "" {
		return p.failAnalysis(ctx, analysis, "CV_PARSED_BUT_EMPTY_TEXT")
	}

	sections := cv.SplitSections(text)
	for k, v := range sections {
		sections[k] = cv.CapString(v, maxSectionChars)
	}
	fullText := cv.CapString(text, maxFullTextChars)

	seed := cv.ExtractSkillSeed(sections, fullText)
	seedNormalized := skills.SanitizeNormalized(seed)

	quality := cv.EvaluateQuality(text, sections, cv.FirstEmail(text), cv.FirstPhone(text))

	analysis.CvTextHash = cv.ContentHash(data)
	analysis.ParseQuality = models.QualityGood
	if quality.IsBad {
		analysis.ParseQuality = models.QualityBad
	}
	analysis.ParseQualityReason = quality.Reason
	analysis.ParseQualityFlags = quality.Flags
	analysis.ParseQualityMetrics, _ = jsonMarshal(quality.Metrics)
	analysis.Extracted, _ = jsonMarshal(map[string]interface{}{
		"sections":             sections,
		"skillsSeed":           seed,
		"skillsNormalizedSeed": seedNormalized,
	})

	// A garbled document never reaches the model; the canned ATS-failure
	// report replaces it.
	if quality.IsBad {
		report, err := jsonMarshal(ai.FallbackAnalysisReport(analysis.TargetRole))
		if err != nil {
			return fmt.Errorf("encode fallback report: %w", err)
		}
		analysis.Status = models.AnalysisStatusDone
		analysis.Report = report

		log.Info("analysis finished with fallback report",
			zap.String("quality_reason", quality.Reason),
		)
		return p.store.FinishAnalysis(ctx, analysis)
	}

	system, user := ai.AnalyzePrompt(analysis.TargetRole, sections, fullText)

	var report ai.AnalysisReport
	if err := p.ai.CompleteJSON(ctx, system, user, &report); err != nil {
		log.Warn("analysis ai call failed", zap.Error(err))
		return p.failAnalysis(ctx, analysis, classifyAIError(err))
	}

	reportJSON, err := jsonMarshal(&report)
	if err != nil {
		return p.failAnalysis(ctx, analysis, "AI_REPORT_ENCODE_FAILED")
	}

	analysis.Status = models.AnalysisStatusDone
	analysis.Report = reportJSON

	log.Info("analysis finished",
		zap.Int("overall_score", report.OverallScore),
		zap.Int("ats_score", report.ATS.CompatScore),
	)

	return p.store.FinishAnalysis(ctx, analysis)
}

func (p *Pipeline) failAnalysis(ctx context.Context, analysis *models.CvAnalysis, message string) error {
	analysis.Status = models.AnalysisStatusError
	analysis.Error = message
	return p.store.FinishAnalysis(ctx, analysis)
}
