package skills

import "testing"

func TestNormalizeAliases(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"C#", "csharp"},
		{"c sharp", "csharp"},
		{"Node.js", "nodejs"},
		{"node", "nodejs"},
		{"REST API", "restapi"},
		{"RESTful services", "restapi"},
		{"Machine Learning", "machinelearning"},
		{"Spring Boot", "springboot"},
		{"CI/CD", "cicd"},
		{".NET", "dotnet"},
	}

	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeTurkishFold(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Yazılım", "yazilim"},
		{"GÖRSEL", "gorsel"},
		{"eğitim", "egitim"},
		{"ŞİŞE", "sise"},
		{"çözüm", "cozum"},
	}

	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeCleanup(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  react   js  ", "react"},
		{"• kotlin", "kotlin"},
		{"go (golang)", "go golang"},
		{"a", ""},
		{"", ""},
		{"   ", ""},
	}

	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"C#", "Node.js", "REST API", "Yazılım Geliştirme", "kotlin",
		"machine learning", "• flutter", "go (golang)", "ci/cd",
	}

	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}
