package match

import (
	"fmt"
	"math"
	"strings"

	"techconnect-matcher/internal/models"
)

const maxReasons = 6

// BuildReasons assembles the user-facing explanation strings for a match.
// The confidence note always comes first; the list is capped.
func BuildReasons(r *Result, job *models.Job, requiredCount int) []string {
	var reasons []string

	reasons = append(reasons, fmt.Sprintf(
		"Required uyum: %%%d (%d/%d).",
		int(math.Round(r.ReqRatio*100)), len(r.MatchedSkills), requiredCount,
	))

	if len(r.MatchedSkills) > 0 {
		reasons = append(reasons, "Required sende: "+joinHead(r.MatchedSkills, 3)+".")
	}
	if len(r.MissingSkills) > 0 {
		reasons = append(reasons, "Eksik required: "+joinHead(r.MissingSkills, 3)+".")
	}
	if len(r.MatchedNiceSkills) > 0 {
		reasons = append(reasons, "Nice-to-have sende: "+joinHead(r.MatchedNiceSkills, 3)+" (+bonus).")
	}
	if r.MobileBonus > 0 {
		reasons = append(reasons, "Mobil yakınlık bonusu: Kotlin/Swift geçmişin bu rolü destekliyor.")
	}
	if r.BioBonus > 0 {
		reasons = append(reasons, "Bio içeriğin required becerilerle örtüşüyor.")
	}
	if r.GeoBonus > 0 && r.DistanceKm != nil {
		reasons = append(reasons, fmt.Sprintf("Yakınlık avantajı: ~%d km.", int(math.Round(*r.DistanceKm))))
	}
	if job.WorkModel != "" {
		reasons = append(reasons, "Çalışma modeli: "+job.WorkModel+".")
	}

	var confText string
	switch r.ConfidenceBadge {
	case BadgeHigh:
		confText = "Güven: Yüksek (profil/manuel kanıt güçlü)."
	case BadgeMedium:
		confText = "Güven: Orta (karışık kaynak)."
	default:
		confText = "Güven: Düşük (CV bazlı, doğrulanmamış)."
	}
	reasons = append([]string{confText}, reasons...)

	if len(reasons) > maxReasons {
		reasons = reasons[:maxReasons]
	}
	return reasons
}

func joinHead(list []string, n int) string {
	if len(list) > n {
		list = list[:n]
	}
	return strings.Join(list, ", ")
}
