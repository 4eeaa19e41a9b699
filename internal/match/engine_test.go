package match

import (
	"testing"

	"techconnect-matcher/internal/models"
)

func f64(v float64) *float64 { return &v }

func testCandidate(skills ...string) *models.Candidate {
	return &models.Candidate{
		ID:              "u1",
		Active:          true,
		SkillsManual:    skills,
		SkillsEffective: skills,
		WorkModelPrefs:  models.WorkModelPrefs{"remote": true, "hybrid": true, "on-site": true},
	}
}

func testJob(required ...string) *models.Job {
	return &models.Job{
		ID:             "j1",
		Active:         true,
		RequiredSkills: required,
	}
}

func TestMatchInactiveSides(t *testing.T) {
	c := testCandidate("go")
	j := testJob("go")

	c.Active = false
	if Match(c, j) != nil {
		t.Error("inactive candidate must not match")
	}

	c.Active = true
	j.Active = false
	if Match(c, j) != nil {
		t.Error("inactive job must not match")
	}
}

func TestMatchWorkModelGateBeforeSkills(t *testing.T) {
	c := testCandidate("go", "java")
	c.WorkModelPrefs = models.WorkModelPrefs{"remote": true, "hybrid": true, "on-site": false}

	j := testJob("go", "java")
	j.WorkModel = "on-site"

	if Match(c, j) != nil {
		t.Error("on-site job must be gated by prefs even with full skill match")
	}
}

func TestMatchWorkModelAnyPasses(t *testing.T) {
	c := testCandidate("go")
	c.WorkModelPrefs = models.WorkModelPrefs{}

	j := testJob("go")
	j.WorkModel = "any"

	if Match(c, j) == nil {
		t.Error("work model any must always pass")
	}
}

func TestMatchLevelGate(t *testing.T) {
	c := testCandidate("go")
	c.Seniority = "junior"

	j := testJob("go")
	j.Level = "senior"

	if Match(c, j) != nil {
		t.Error("junior candidate must not match senior job")
	}

	// Missing rank on either side passes permissively.
	c.Seniority = ""
	if Match(c, j) == nil {
		t.Error("unknown candidate level must pass the gate")
	}

	c.Seniority = "sr"
	j.Level = "mid"
	if Match(c, j) == nil {
		t.Error("sr alias must rank as senior")
	}
}

func TestMatchEmptyRequiredIsUnmatchable(t *testing.T) {
	if Match(testCandidate("go"), testJob()) != nil {
		t.Error("job with no required skills must be unmatchable")
	}
}

func TestMatchCoverageFloorBoundary(t *testing.T) {
	// coverage = 0.5 passes the coverage gate, but base 40 - penalty 8 = 32
	// misses the raw score floor.
	c := testCandidate("go", "java")
	j := testJob("go", "java", "rust", "ruby")

	if got := Match(c, j); got != nil {
		t.Errorf("raw 32 must be rejected, got %+v", got)
	}
}

func TestMatchBelowCoverageFloor(t *testing.T) {
	c := testCandidate("go")
	j := testJob("go", "java", "rust")

	if Match(c, j) != nil {
		t.Error("coverage 1/3 must fail the 0.5 floor")
	}
}

func TestMatchScoring(t *testing.T) {
	c := testCandidate("go", "java", "rust")
	j := testJob("go", "java", "rust", "ruby")

	got := Match(c, j)
	if got == nil {
		t.Fatal("expected a match")
	}

	if got.ReqRatio != 0.75 {
		t.Errorf("ReqRatio = %v, want 0.75", got.ReqRatio)
	}
	if got.MissingPenalty != 4 {
		t.Errorf("MissingPenalty = %d, want 4", got.MissingPenalty)
	}
	// base round(0.75*80)=60, minus penalty 4 = 56
	if got.ScoreRawBeforeConfidence != 56 {
		t.Errorf("raw = %d, want 56", got.ScoreRawBeforeConfidence)
	}
	// all evidence manual -> high confidence, internal unchanged
	if got.ConfidenceBadge != BadgeHigh || got.ScoreInternal != 56 {
		t.Errorf("internal = %d badge = %s, want 56/high", got.ScoreInternal, got.ConfidenceBadge)
	}
}

func TestMatchNiceToHaveBonus(t *testing.T) {
	c := testCandidate("go", "java", "redis")
	j := testJob("go", "java")
	j.NiceToHaveSkills = []string{"redis", "kafka"}

	got := Match(c, j)
	if got == nil {
		t.Fatal("expected a match")
	}

	if got.NiceBonus != 10 {
		t.Errorf("NiceBonus = %d, want 10 (1/2 * 20)", got.NiceBonus)
	}
	if len(got.MatchedNiceSkills) != 1 || got.MatchedNiceSkills[0] != "redis" {
		t.Errorf("MatchedNiceSkills = %v", got.MatchedNiceSkills)
	}
}

func TestMatchMobileAndBioBonuses(t *testing.T) {
	c := testCandidate("flutter", "kotlin")
	c.Bio = "Flutter ile mobil uygulamalar geliştiriyorum"

	j := testJob("flutter")

	got := Match(c, j)
	if got == nil {
		t.Fatal("expected a match")
	}

	if got.MobileBonus != 5 {
		t.Errorf("MobileBonus = %d, want 5", got.MobileBonus)
	}
	if got.BioBonus != 5 {
		t.Errorf("BioBonus = %d, want 5", got.BioBonus)
	}
}

func TestMatchOnSiteDistanceCutoff(t *testing.T) {
	c := testCandidate("go")
	j := testJob("go")
	j.WorkModel = "on-site"

	c.Lat, c.Lon = f64(41.0), f64(29.0)

	// ~202 km north: hard reject for on-site.
	j.Lat, j.Lon = f64(41.0+1.82), f64(29.0)
	if Match(c, j) != nil {
		t.Error("on-site pairing beyond 200 km must be rejected")
	}

	// ~198 km: passes, but no proximity tier applies beyond 100 km.
	j.Lat = f64(41.0 + 1.78)
	got := Match(c, j)
	if got == nil {
		t.Fatal("on-site pairing within 200 km must match")
	}
	if got.GeoBonus != 0 {
		t.Errorf("GeoBonus = %d, want 0 beyond 100 km", got.GeoBonus)
	}
	if got.DistanceKm == nil || *got.DistanceKm < 190 || *got.DistanceKm > 200 {
		t.Errorf("DistanceKm = %v, want ~198", got.DistanceKm)
	}
}

func TestMatchGeoTiers(t *testing.T) {
	cases := []struct {
		deltaLat float64
		want     int
	}{
		{0.05, 10}, // ~5.6 km
		{0.30, 5},  // ~33 km
		{0.80, 2},  // ~89 km
		{1.20, 0},  // ~133 km
	}

	for _, tc := range cases {
		c := testCandidate("go")
		c.Lat, c.Lon = f64(41.0), f64(29.0)

		j := testJob("go")
		j.WorkModel = "hybrid"
		j.Lat, j.Lon = f64(41.0+tc.deltaLat), f64(29.0)

		got := Match(c, j)
		if got == nil {
			t.Fatalf("deltaLat %v: expected a match", tc.deltaLat)
		}
		if got.GeoBonus != tc.want {
			t.Errorf("deltaLat %v: GeoBonus = %d, want %d", tc.deltaLat, got.GeoBonus, tc.want)
		}
	}
}

func TestMatchRemoteJobSkipsGeo(t *testing.T) {
	c := testCandidate("go")
	c.Lat, c.Lon = f64(41.0), f64(29.0)

	j := testJob("go")
	j.WorkModel = "remote"
	j.Lat, j.Lon = f64(52.5), f64(13.4)

	got := Match(c, j)
	if got == nil {
		t.Fatal("remote job must ignore distance")
	}
	if got.DistanceKm != nil || got.GeoBonus != 0 {
		t.Errorf("remote job computed geo: bonus=%d distance=%v", got.GeoBonus, got.DistanceKm)
	}
}

func TestMatchConfidenceFromEvidence(t *testing.T) {
	// All matched evidence comes from the CV: low confidence.
	c := &models.Candidate{
		ID:              "u1",
		Active:          true,
		SkillsFromCv:    []string{"go", "java"},
		SkillsEffective: []string{"go", "java"},
		WorkModelPrefs:  models.WorkModelPrefs{"remote": true},
	}
	j := testJob("go", "java")
	j.WorkModel = "remote"

	got := Match(c, j)
	if got == nil {
		t.Fatal("expected a match")
	}
	if got.ConfidenceBadge != BadgeLow || got.ConfidenceScore != 0.6 {
		t.Errorf("badge = %s score = %v, want low/0.6", got.ConfidenceBadge, got.ConfidenceScore)
	}
	// internal = round(80 * 0.6) = 48
	if got.ScoreInternal != 48 {
		t.Errorf("ScoreInternal = %d, want 48", got.ScoreInternal)
	}
}

func TestMatchBadParseForcesLowConfidence(t *testing.T) {
	c := testCandidate("go", "java")
	c.ParseQuality = models.QualityBad

	got := Match(c, testJob("go", "java"))
	if got == nil {
		t.Fatal("expected a match")
	}
	if got.ConfidenceBadge != BadgeLow || got.ConfidenceScore != 0.6 {
		t.Errorf("bad parse must force low confidence, got %s/%v", got.ConfidenceBadge, got.ConfidenceScore)
	}
}

func TestDisplayScoreMonotonic(t *testing.T) {
	prev := DisplayScore(0)
	for s := 1; s <= 100; s++ {
		cur := DisplayScore(s)
		if cur < prev {
			t.Fatalf("DisplayScore inverted at %d: %d < %d", s, cur, prev)
		}
		prev = cur
	}
}

func TestDisplayScoreBands(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{100, 99},
		{80, 92},
		{60, 75},
		{79, 90},
		{35, 55},
		{59, 73},
		{0, 0},
		{34, 52},
	}

	for _, tc := range cases {
		if got := DisplayScore(tc.in); got != tc.want {
			t.Errorf("DisplayScore(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
