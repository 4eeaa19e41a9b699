package skills

import (
	"reflect"
	"testing"
)

func TestIsSkillShaped(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"kotlin", true},
		{"c++", true},
		{"csharp", true},
		{"spring boot", true},
		{"ui/ux", true},
		{"react-native", true},
		{"deneyimli backend gelistirici olarak calistim", false}, // 40+ chars, multi-clause
		{"very long skill name", false},                          // 3+ words
		{"mail@example", false},                                  // forbidden punctuation
		{"a b", false},                                           // words too short
		{"x", false},
		{"", false},
	}

	for _, tc := range cases {
		if got := IsSkillShaped(tc.in); got != tc.want {
			t.Errorf("IsSkillShaped(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeNormalized(t *testing.T) {
	in := []string{
		"Kotlin", "kotlin", "C#", "  ", "Bu cümle bir beceri değildir çünkü çok uzun",
		"React.js", "react js",
	}

	got := SanitizeNormalized(in)
	want := []string{"kotlin", "csharp", "react"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("SanitizeNormalized(%v) = %v, want %v", in, got, want)
	}
}

func TestPickDiscriminative(t *testing.T) {
	in := []string{"html", "css", "golang", "sql", "kubernetes", "terraform", "rust"}

	got := PickDiscriminative(in, 3)
	want := []string{"golang", "kubernetes", "terraform"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("PickDiscriminative = %v, want %v", got, want)
	}
}

func TestSeedCount(t *testing.T) {
	cases := []struct {
		required int
		want     int
	}{
		{1, 3}, {4, 3}, {5, 5}, {8, 5}, {9, 6}, {20, 6},
	}

	for _, tc := range cases {
		if got := SeedCount(tc.required); got != tc.want {
			t.Errorf("SeedCount(%d) = %d, want %d", tc.required, got, tc.want)
		}
	}
}

func TestEffectiveUnion(t *testing.T) {
	got := Effective([]string{"Kotlin", "Swift"}, []string{"kotlin", "Node.js"})
	want := []string{"kotlin", "swift", "nodejs"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Effective = %v, want %v", got, want)
	}
}
