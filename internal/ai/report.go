package ai

// ProfileReport is the JSON the model returns for CV parse enrichment. The
// summary and skills feed back into the candidate record; the structured
// fields are stored verbatim for the profile detail screen.
type ProfileReport struct {
	Summary string   `json:"summary"`
	Skills  []string `json:"skills"`

	Experience []ExperienceItem `json:"experience,omitempty"`
	Education  []EducationItem  `json:"education,omitempty"`
	Languages  []string         `json:"languages,omitempty"`
	Links      []string         `json:"links,omitempty"`
}

type ExperienceItem struct {
	Title   string `json:"title"`
	Company string `json:"company,omitempty"`
	Period  string `json:"period,omitempty"`
	Summary string `json:"summary,omitempty"`
}

type EducationItem struct {
	School string `json:"school"`
	Degree string `json:"degree,omitempty"`
	Period string `json:"period,omitempty"`
}

// AnalysisReport is the standalone "CV adequacy + ATS compatibility" report.
type AnalysisReport struct {
	OverallScore int    `json:"overallScore"`
	ParseQuality string `json:"parseQuality"`

	ATS ATSSection `json:"ats"`

	Strengths []string `json:"strengths"`
	Gaps      []string `json:"gaps"`

	MissingSections []string `json:"missingSections"`

	ContentImprovements ContentImprovements `json:"contentImprovements"`
	BulletFixes         []BulletFix         `json:"bulletFixes"`
	ActionPlan          []ActionItem        `json:"actionPlan"`
	RoleFit             RoleFit             `json:"roleFit"`
}

type ATSSection struct {
	CompatScore    int      `json:"compatScore"`
	Level          string   `json:"level"` // poor|ok|good|excellent
	BlockingIssues []string `json:"blockingIssues"`
	Warnings       []string `json:"warnings"`
	QuickFixes     []string `json:"quickFixes"`
}

type ContentImprovements struct {
	SummaryRewrite  *string  `json:"summaryRewrite"`
	SkillsCleanup   []string `json:"skillsCleanup"`
	ExperienceFixes []string `json:"experienceFixes"`
	ProjectFixes    []string `json:"projectFixes"`
}

type BulletFix struct {
	Section string `json:"section"` // experience|projects|other
	Before  string `json:"before"`
	After   string `json:"after"`
}

type ActionItem struct {
	Title    string   `json:"title"`
	Priority string   `json:"priority"` // high|medium|low
	Steps    []string `json:"steps"`
}

type RoleFit struct {
	TargetRole    *string  `json:"targetRole"`
	FitScore      int      `json:"fitScore"`
	Why           []string `json:"why"`
	MissingSkills []string `json:"missingSkills"`
	NextSteps     []string `json:"nextSteps"`
}

// FallbackAnalysisReport is returned without an AI round-trip when the CV
// text failed the quality gate. Every string stays Turkish like the model
// output it replaces.
func FallbackAnalysisReport(targetRole string) *AnalysisReport {
	var rolePtr *string
	if targetRole != "" {
		rolePtr = &targetRole
	}

	return &AnalysisReport{
		OverallScore: 10,
		ParseQuality: "bad",
		ATS: ATSSection{
			CompatScore: 5,
			Level:       "poor",
			BlockingIssues: []string{
				"CV metni makine tarafından okunamıyor.",
				"ATS sistemleri bu CV'yi büyük olasılıkla eliyor.",
			},
			Warnings: []string{},
			QuickFixes: []string{
				"CV'yi metin tabanlı bir PDF olarak yeniden dışa aktar.",
				"Başlıkları net yap: Summary, Skills, Experience, Education.",
			},
		},
		Strengths:       []string{},
		Gaps:            []string{"Metin çıkarılamadığı için içerik değerlendirilemedi."},
		MissingSections: []string{"summary", "skills", "experience", "education"},
		ContentImprovements: ContentImprovements{
			SummaryRewrite:  nil,
			SkillsCleanup:   []string{},
			ExperienceFixes: []string{},
			ProjectFixes:    []string{},
		},
		BulletFixes: []BulletFix{},
		ActionPlan: []ActionItem{
			{
				Title:    "CV'yi okunabilir hale getir",
				Priority: "high",
				Steps: []string{
					"Taranmış görüntü yerine metin tabanlı PDF kullan",
					"Başlıkları sade ve ATS uyumlu yaz",
				},
			},
		},
		RoleFit: RoleFit{
			TargetRole:    rolePtr,
			FitScore:      0,
			Why:           []string{"Metin okunamadı"},
			MissingSkills: []string{},
			NextSteps:     []string{},
		},
	}
}
