package match

import "strings"

// Work-model values after normalization.
const (
	WorkModelRemote = "remote"
	WorkModelHybrid = "hybrid"
	WorkModelOnSite = "on-site"
	WorkModelAny    = "any"
)

// levelRanks orders seniority. A missing rank on either side passes the gate
// permissively.
var levelRanks = map[string]int{
	"intern": 0,
	"junior": 1,
	"mid":    2,
	"senior": 3,
}

// NormWorkModel folds spelling variants of the work-model field.
func NormWorkModel(x string) string {
	t := strings.ToLower(strings.TrimSpace(x))
	switch t {
	case "onsite", "on site", "on_site", "on-site":
		return WorkModelOnSite
	default:
		return t
	}
}

// NormLevel folds seniority aliases.
func NormLevel(x string) string {
	t := strings.ToLower(strings.TrimSpace(x))
	switch t {
	case "jr":
		return "junior"
	case "sr":
		return "senior"
	default:
		return t
	}
}

// LevelRank returns the ordered rank of a seniority string, or nil when the
// value is unknown.
func LevelRank(level string) *int {
	if r, ok := levelRanks[NormLevel(level)]; ok {
		return &r
	}
	return nil
}

// levelEligible: candidate rank must be >= job rank; unknown on either side
// passes.
func levelEligible(candidateLevel, jobLevel string) bool {
	j := LevelRank(jobLevel)
	if j == nil {
		return true
	}
	c := LevelRank(candidateLevel)
	if c == nil {
		return true
	}
	return *c >= *j
}
