package match

import (
	"strings"
	"testing"

	"techconnect-matcher/internal/models"
)

func TestBuildReasonsConfidenceFirstAndCapped(t *testing.T) {
	d := 12.0
	r := &Result{
		ConfidenceBadge:   BadgeHigh,
		ReqRatio:          1,
		MatchedSkills:     []string{"go", "java", "rust"},
		MatchedNiceSkills: []string{"redis"},
		MobileBonus:       5,
		BioBonus:          5,
		GeoBonus:          10,
		DistanceKm:        &d,
	}
	j := &models.Job{WorkModel: "hybrid"}

	got := BuildReasons(r, j, 3)

	if len(got) != maxReasons {
		t.Fatalf("len = %d, want %d", len(got), maxReasons)
	}
	if !strings.HasPrefix(got[0], "Güven: Yüksek") {
		t.Errorf("first reason must be the confidence note, got %q", got[0])
	}
	if !strings.Contains(got[1], "%100 (3/3)") {
		t.Errorf("coverage reason = %q", got[1])
	}
}

func TestBuildReasonsMissingSkillsTruncated(t *testing.T) {
	r := &Result{
		ConfidenceBadge: BadgeLow,
		ReqRatio:        0.5,
		MatchedSkills:   []string{"go", "java"},
		MissingSkills:   []string{"rust", "ruby", "scala", "kafka"},
	}

	got := BuildReasons(r, &models.Job{}, 4)

	var missing string
	for _, s := range got {
		if strings.HasPrefix(s, "Eksik required:") {
			missing = s
		}
	}
	if missing == "" {
		t.Fatal("missing-skills reason not present")
	}
	if strings.Contains(missing, "kafka") {
		t.Errorf("missing list must be capped at 3 entries: %q", missing)
	}
}
