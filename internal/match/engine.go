package match

import (
	"math"
	"strings"

	"techconnect-matcher/internal/models"
	"techconnect-matcher/internal/skills"
)

// Score constants. The raw score floor applies twice: once before and once
// after confidence weighting.
const (
	baseScoreMax    = 80
	niceBonusMax    = 20
	mobileBonusVal  = 5
	bioBonusVal     = 5
	minCoverage     = 0.5
	minScore        = 35
	maxMissingPen   = 16
	missingPenStep  = 4
	onSiteMaxKm     = 200
)

// Confidence badges.
const (
	BadgeHigh   = "high"
	BadgeMedium = "medium"
	BadgeLow    = "low"
)

// ConfidenceDetails is the evidence breakdown behind a confidence badge.
type ConfidenceDetails struct {
	ManualHits     int     `json:"manualHits"`
	CvHits         int     `json:"cvHits"`
	ManualHitRatio float64 `json:"manualHitRatio"`
	CvParseQuality string  `json:"cvParseQuality"`
}

// Result is one scored candidate/job pairing with every component exposed for
// explainability. A nil Result means the pairing does not qualify.
type Result struct {
	// Score is the calibrated display score; ScoreInternal drives ranking.
	Score                    int
	ScoreInternal            int
	ScoreRawBeforeConfidence int

	ConfidenceScore   float64
	ConfidenceBadge   string
	ConfidenceDetails ConfidenceDetails

	MatchedSkills     []string
	MissingSkills     []string
	MatchedNiceSkills []string
	MissingNiceSkills []string

	ReqRatio       float64
	MissingPenalty int
	NiceBonus      int
	MobileBonus    int
	BioBonus       int
	GeoBonus       int
	DistanceKm     *float64
}

// Match applies the eligibility gates in order and scores the pairing.
// Returns nil when any gate fails or either score floor is missed.
func Match(candidate *models.Candidate, job *models.Job) *Result {
	if candidate == nil || job == nil {
		return nil
	}
	if !candidate.Active || !job.Active {
		return nil
	}

	// 1) Work-model gate
	if !workModelEligible(candidate.WorkModelPrefs, job.WorkModel) {
		return nil
	}

	// 2) Level gate
	if !levelEligible(candidate.Seniority, job.Level) {
		return nil
	}

	// 3) Effective skills are the only eligibility source.
	manual := skills.SanitizeNormalized(candidate.SkillsManual)
	fromCv := skills.SanitizeNormalized(candidate.SkillsFromCv)
	effective := skills.SanitizeNormalized(candidate.SkillsEffective)
	if len(effective) == 0 {
		effective = skills.Effective(manual, fromCv)
	}

	effectiveSet := toSet(effective)
	manualSet := toSet(manual)
	cvSet := toSet(fromCv)

	requiredNorm := normalizedSkills(job.RequiredSkillsNormalized, job.RequiredSkills)
	if len(requiredNorm) == 0 {
		// Unmatchable by design: cannot score an empty requirement set.
		return nil
	}

	niceNorm := normalizedSkills(job.NiceToHaveNormalized, job.NiceToHaveSkills)

	// 4) Required coverage gate
	var matchedReq, missingReq []string
	for _, sk := range requiredNorm {
		if effectiveSet[sk] {
			matchedReq = append(matchedReq, sk)
		} else {
			missingReq = append(missingReq, sk)
		}
	}

	reqRatio := float64(len(matchedReq)) / float64(len(requiredNorm))
	if len(matchedReq) < 1 || reqRatio < minCoverage {
		return nil
	}

	// 5) Base score
	rawScore := int(math.Round(reqRatio * baseScoreMax))

	// 6) Nice-to-have bonus
	niceBonus := 0
	var matchedNice, missingNice []string
	if len(niceNorm) > 0 {
		for _, sk := range niceNorm {
			if effectiveSet[sk] {
				matchedNice = append(matchedNice, sk)
			} else {
				missingNice = append(missingNice, sk)
			}
		}
		niceBonus = int(math.Round(float64(len(matchedNice)) / float64(len(niceNorm)) * niceBonusMax))
		rawScore += niceBonus
	}

	// 7) Mobile-affinity bonus: cross-platform role, native-mobile candidate.
	mobileBonus := 0
	reqSet := toSet(requiredNorm)
	mobileJob := reqSet["dart"] || reqSet["flutter"] || containsToken(niceNorm, "flutter") || containsToken(niceNorm, "dart")
	if mobileJob && (effectiveSet["kotlin"] || effectiveSet["swift"]) {
		mobileBonus = mobileBonusVal
	}
	rawScore += mobileBonus

	// 8) Bio bonus, non-stacking.
	bioBonus := 0
	if bio := strings.ToLower(strings.TrimSpace(candidate.Bio)); bio != "" {
		for _, sk := range requiredNorm {
			if sk != "" && strings.Contains(bio, sk) {
				bioBonus = bioBonusVal
				break
			}
		}
	}
	rawScore += bioBonus

	// 9) Geo bonus; proximity is a hard requirement for on-site roles.
	geoBonus := 0
	var distanceKm *float64

	jobWork := NormWorkModel(job.WorkModel)
	if jobWork != WorkModelRemote && candidate.HasGeo() && job.HasGeo() {
		d := HaversineKm(*candidate.Lat, *candidate.Lon, *job.Lat, *job.Lon)
		distanceKm = &d

		if jobWork == WorkModelOnSite && d > onSiteMaxKm {
			return nil
		}

		switch {
		case d <= 20:
			geoBonus = 10
		case d <= 50:
			geoBonus = 5
		case d <= 100:
			geoBonus = 2
		}
	}
	rawScore += geoBonus

	missingPenalty := len(missingReq) * missingPenStep
	if missingPenalty > maxMissingPen {
		missingPenalty = maxMissingPen
	}
	rawScore -= missingPenalty

	rawScore = clamp(rawScore, 0, 100)
	if rawScore < minScore {
		return nil
	}

	confScore, badge, details := confidenceFromEvidence(matchedReq, manualSet, cvSet, candidate.ParseQuality)

	scoreInternal := clamp(int(math.Round(float64(rawScore)*confScore)), 0, 100)
	if scoreInternal < minScore {
		return nil
	}

	return &Result{
		Score:                    DisplayScore(scoreInternal),
		ScoreInternal:            scoreInternal,
		ScoreRawBeforeConfidence: rawScore,

		ConfidenceScore:   confScore,
		ConfidenceBadge:   badge,
		ConfidenceDetails: details,

		MatchedSkills:     matchedReq,
		MissingSkills:     missingReq,
		MatchedNiceSkills: matchedNice,
		MissingNiceSkills: missingNice,

		ReqRatio:       reqRatio,
		MissingPenalty: missingPenalty,
		NiceBonus:      niceBonus,
		MobileBonus:    mobileBonus,
		BioBonus:       bioBonus,
		GeoBonus:       geoBonus,
		DistanceKm:     distanceKm,
	}
}

func workModelEligible(prefs models.WorkModelPrefs, jobWorkModel string) bool {
	jobW := NormWorkModel(jobWorkModel)
	if jobW == "" || jobW == WorkModelAny {
		return true
	}

	switch jobW {
	case WorkModelRemote:
		return prefs.Remote()
	case WorkModelHybrid:
		return prefs.Hybrid()
	case WorkModelOnSite:
		return prefs.OnSite()
	default:
		return false
	}
}

// confidenceFromEvidence classifies matched required skills by evidence
// source. A bad CV parse caps confidence at low regardless of ratio.
func confidenceFromEvidence(matchedReq []string, manualSet, cvSet map[string]bool, parseQuality string) (float64, string, ConfidenceDetails) {
	total := len(matchedReq)
	if total == 0 {
		total = 1
	}

	manualHits, cvHits := 0, 0
	for _, sk := range matchedReq {
		if manualSet[sk] {
			manualHits++
		} else if cvSet[sk] {
			cvHits++
		}
	}

	ratio := float64(manualHits) / float64(total)

	score, badge := 0.6, BadgeLow
	switch {
	case ratio >= 0.7:
		score, badge = 1.0, BadgeHigh
	case ratio >= 0.35:
		score, badge = 0.8, BadgeMedium
	}

	quality := strings.ToLower(strings.TrimSpace(parseQuality))
	if quality == models.QualityBad && score > 0.6 {
		score, badge = 0.6, BadgeLow
	}
	if quality == "" {
		quality = models.QualityUnknown
	}

	return score, badge, ConfidenceDetails{
		ManualHits:     manualHits,
		CvHits:         cvHits,
		ManualHitRatio: math.Round(ratio*1000) / 1000,
		CvParseQuality: quality,
	}
}

// DisplayScore maps an internal score onto the UI-facing scale via a
// piecewise-linear, strictly monotonic transform. Ordering is preserved;
// absolute numbers skew optimistic.
func DisplayScore(internal int) int {
	s := clamp(internal, 0, 100)

	switch {
	case s >= 80:
		return clamp(int(math.Round(92+float64(s-80)/20*7)), 92, 99)
	case s >= 60:
		return clamp(int(math.Round(75+float64(s-60)/20*16)), 75, 91)
	case s >= minScore:
		return clamp(int(math.Round(55+float64(s-35)/25*19)), 55, 74)
	default:
		return clamp(int(math.Round(float64(s)/35*54)), 0, 54)
	}
}

func normalizedSkills(normalized, raw []string) []string {
	src := normalized
	if len(src) == 0 {
		src = raw
	}

	out := make([]string, 0, len(src))
	for _, s := range src {
		if n := skills.Normalize(s); n != "" {
			out = append(out, n)
		}
	}
	return skills.Dedupe(out)
}

func toSet(tokens []string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}
	return set
}

func containsToken(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

func clamp(n, min, max int) int {
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}
