package cvparse

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"techconnect-matcher/internal/ai"
	"techconnect-matcher/internal/models"
	"techconnect-matcher/internal/storage/postgres"

	"go.uber.org/zap"
)

type fakeAnalysisAI struct {
	report *ai.AnalysisReport
	err    error
	calls  int
}

func (f *fakeAnalysisAI) CompleteJSON(_ context.Context, _, _ string, dest interface{}) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	if r, ok := dest.(*ai.AnalysisReport); ok && f.report != nil {
		*r = *f.report
	}
	return nil
}

func newAnalysisPipeline(store *fakeStore, fetcher *fakeFetcher, aiClient AIClient) *Pipeline {
	return New(store, fetcher, fakeExtractor{}, aiClient, &fakePublisher{},
		Limits{ParseAIDaily: 3, AnalyzeDaily: 3, AnalyzeMinute: 8}, zap.NewNop())
}

func analysisEvent(id string) *models.ChangeEvent {
	return &models.ChangeEvent{Kind: models.EventAnalysisRequested, AnalysisID: id}
}

func TestAnalysisHappyPath(t *testing.T) {
	store := &fakeStore{
		analysis: &models.CvAnalysis{
			ID:          "a1",
			CandidateID: "u1",
			CvURL:       "https://cdn/cv.txt",
			TargetRole:  "Backend Developer",
		},
	}
	aiClient := &fakeAnalysisAI{report: &ai.AnalysisReport{
		OverallScore: 74,
		ParseQuality: "good",
		ATS:          ai.ATSSection{CompatScore: 68, Level: "good"},
	}}

	p := newAnalysisPipeline(store, &fakeFetcher{data: []byte(goodCvText())}, aiClient)

	if err := p.HandleAnalysisRequested(context.Background(), analysisEvent("a1")); err != nil {
		t.Fatalf("HandleAnalysisRequested: %v", err)
	}

	if store.finished == nil {
		t.Fatal("analysis not finished")
	}
	if store.finished.Status != models.AnalysisStatusDone {
		t.Errorf("status = %q, want done", store.finished.Status)
	}
	if store.finished.ParseQuality != models.QualityGood {
		t.Errorf("parse quality = %q, want good", store.finished.ParseQuality)
	}

	var report ai.AnalysisReport
	if err := json.Unmarshal(store.finished.Report, &report); err != nil {
		t.Fatalf("decode stored report: %v", err)
	}
	if report.OverallScore != 74 {
		t.Errorf("overall = %d, want 74", report.OverallScore)
	}
}

func TestAnalysisBadQualityGetsFallbackReport(t *testing.T) {
	store := &fakeStore{
		analysis: &models.CvAnalysis{
			ID:          "a1",
			CandidateID: "u1",
			CvURL:       "https://cdn/cv.txt",
			TargetRole:  "Mobil Geliştirici",
		},
	}
	aiClient := &fakeAnalysisAI{}
	junk := strings.Repeat("xy\nqw\n", 60)

	p := newAnalysisPipeline(store, &fakeFetcher{data: []byte(junk)}, aiClient)

	if err := p.HandleAnalysisRequested(context.Background(), analysisEvent("a1")); err != nil {
		t.Fatalf("HandleAnalysisRequested: %v", err)
	}

	if aiClient.calls != 0 {
		t.Error("bad quality must not reach the model")
	}
	if store.finished == nil || store.finished.Status != models.AnalysisStatusDone {
		t.Fatalf("finished = %+v, want done", store.finished)
	}

	var report ai.AnalysisReport
	if err := json.Unmarshal(store.finished.Report, &report); err != nil {
		t.Fatalf("decode fallback report: %v", err)
	}
	if report.ParseQuality != "bad" || report.ATS.Level != "poor" {
		t.Errorf("fallback report = %+v", report)
	}
	if report.RoleFit.TargetRole == nil || *report.RoleFit.TargetRole != "Mobil Geliştirici" {
		t.Errorf("target role = %v", report.RoleFit.TargetRole)
	}
}

func TestAnalysisRedeliveryLosesClaim(t *testing.T) {
	store := &fakeStore{
		analysis: &models.CvAnalysis{ID: "a1", CandidateID: "u1"},
		claimErr: postgres.ErrStaleRequest,
	}
	fetcher := &fakeFetcher{data: []byte(goodCvText())}

	p := newAnalysisPipeline(store, fetcher, &fakeAnalysisAI{})

	if err := p.HandleAnalysisRequested(context.Background(), analysisEvent("a1")); err != nil {
		t.Fatalf("HandleAnalysisRequested: %v", err)
	}

	if store.finished != nil {
		t.Error("redelivered event must be a no-op after losing the claim")
	}
	if store.quotaCalls != 0 {
		t.Error("no quota should be spent on a lost claim")
	}
}

func TestAnalysisQuotaExceeded(t *testing.T) {
	store := &fakeStore{
		analysis: &models.CvAnalysis{ID: "a1", CandidateID: "u1", CvURL: "https://cdn/cv.txt"},
		quotaErr: postgres.ErrQuotaMinuteExceeded,
	}

	p := newAnalysisPipeline(store, &fakeFetcher{data: []byte(goodCvText())}, &fakeAnalysisAI{})

	if err := p.HandleAnalysisRequested(context.Background(), analysisEvent("a1")); err != nil {
		t.Fatalf("HandleAnalysisRequested: %v", err)
	}

	if store.finished == nil || store.finished.Status != models.AnalysisStatusError {
		t.Fatalf("finished = %+v, want error", store.finished)
	}
	if store.finished.Error != "CV_ANALYZE_RATE_LIMIT" {
		t.Errorf("error = %q, want CV_ANALYZE_RATE_LIMIT", store.finished.Error)
	}
}

func TestAnalysisAIErrorIsTerminal(t *testing.T) {
	store := &fakeStore{
		analysis: &models.CvAnalysis{ID: "a1", CandidateID: "u1", CvURL: "https://cdn/cv.txt"},
	}
	aiClient := &fakeAnalysisAI{err: ai.ErrMalformedResponse}

	p := newAnalysisPipeline(store, &fakeFetcher{data: []byte(goodCvText())}, aiClient)

	if err := p.HandleAnalysisRequested(context.Background(), analysisEvent("a1")); err != nil {
		t.Fatalf("HandleAnalysisRequested: %v", err)
	}

	if store.finished == nil || store.finished.Status != models.AnalysisStatusError {
		t.Fatalf("finished = %+v, want error", store.finished)
	}
	if store.finished.Error != "OPENAI_MALFORMED_RESPONSE" {
		t.Errorf("error = %q", store.finished.Error)
	}
}
