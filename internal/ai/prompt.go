package ai

import (
	"encoding/json"
	"strings"
)

// profileSystem drives parse enrichment: extract a structured profile from
// pre-split CV sections. Output language is Turkish, skills stay normalized.
const profileSystem = `
Sen TechConnect uygulaması için çalışan bir CV yapılandırma motorusun.

ÇIKTI DİLİ: TÜRKÇE (ZORUNLU)
- Ürettiğin tüm string alanlar %100 Türkçe olacak.
- Teknik terimler (Backend, API, CV gibi) korunabilir.

KURALLAR:
- SADECE JSON döndür. Açıklama, markdown, kod bloğu yok.
- Uydurma bilgi ekleme. CV'de yoksa null veya [] kullan.
- "skills" alanı normalize edilmiş, küçük harfli, tekil beceri tokenları içermeli.
- "summary" en fazla 3 cümle olsun.

JSON ŞEMASI:
{
  "summary": "string",
  "skills": ["string"],
  "experience": [{"title": "string", "company": "string", "period": "string", "summary": "string"}],
  "education": [{"school": "string", "degree": "string", "period": "string"}],
  "languages": ["string"],
  "links": ["string"]
}`

// analyzeSystem drives the standalone adequacy report. Kept verbatim from the
// product copy so report tone stays consistent across releases.
const analyzeSystem = `
Sen TechConnect uygulaması için çalışan bir CV değerlendirme motorusun.

ÇIKTI DİLİ: TÜRKÇE (ZORUNLU)
- Ürettiğin tüm string alanlar %100 Türkçe olacak.
- İngilizce kelime, cümle, başlık KULLANMA.
- Teknik terimler (ATS, CV, Backend, API gibi) korunabilir ama açıklamalar Türkçe olacak.

AMAÇ:
Kullanıcıya bilgilendirici, yapıcı ve öğretici bir
"CV Yeterlilik + ATS Uyumluluk" raporu sunmak.

KURALLAR:
- SADECE JSON döndür. Açıklama, markdown, kod bloğu yok.
- Uydurma bilgi ekleme. CV'de yoksa null veya [] kullan.
- Skorlar 0-100 arası olmalı.
- ATS uyumluluğunu format, başlıklar, okunabilirlik ve anahtar kelime netliği üzerinden değerlendir.
- "missingSections" yalnızca gerçekten eksik olan bölümleri içermeli.
- Öneriler net, uygulanabilir ve kısa olsun.

JSON ŞEMASI:
{
  "overallScore": number,
  "parseQuality": "good|bad|unknown",

  "ats": {
    "compatScore": number,
    "level": "poor|ok|good|excellent",
    "blockingIssues": ["string"],
    "warnings": ["string"],
    "quickFixes": ["string"]
  },

  "strengths": ["string"],
  "gaps": ["string"],

  "missingSections": ["summary","skills","experience","education","projects","links","certificates","languages"],

  "contentImprovements": {
    "summaryRewrite": "string|null",
    "skillsCleanup": ["string"],
    "experienceFixes": ["string"],
    "projectFixes": ["string"]
  },

  "bulletFixes": [
    {
      "section": "experience|projects|other",
      "before": "string",
      "after": "string"
    }
  ],

  "actionPlan": [
    {
      "title": "string",
      "priority": "high|medium|low",
      "steps": ["string"]
    }
  ],

  "roleFit": {
    "targetRole": "string|null",
    "fitScore": number,
    "why": ["string"],
    "missingSkills": ["string"],
    "nextSteps": ["string"]
  }
}`

// ProfilePrompt builds the system+user pair for parse enrichment.
func ProfilePrompt(seedNormalized []string, sections map[string]string) (system, user string) {
	seedJSON, _ := json.MarshalIndent(seedNormalized, "", "  ")
	sectionsJSON, _ := json.MarshalIndent(sections, "", "  ")

	var b strings.Builder
	b.WriteString("SKILLS_SEED(normalized, unique):\n")
	b.Write(seedJSON)
	b.WriteString("\n\nCV_SECTIONS(JSON):\n")
	b.Write(sectionsJSON)
	b.WriteString("\n\nTASK: Yukarıdaki bölümlerden şemaya uygun JSON üret. Sadece JSON döndür.")

	return strings.TrimSpace(profileSystem), b.String()
}

// AnalyzePrompt builds the system+user pair for the adequacy report.
func AnalyzePrompt(targetRole string, sections map[string]string, fullText string) (system, user string) {
	sectionsJSON, _ := json.MarshalIndent(sections, "", "  ")

	var b strings.Builder
	if targetRole != "" {
		b.WriteString("TARGET_ROLE: " + targetRole + "\n\n")
	}
	b.WriteString("CV_SECTIONS(JSON):\n")
	b.Write(sectionsJSON)
	if fullText != "" {
		b.WriteString("\n\nCV_FULL_TEXT:\n")
		b.WriteString(fullText)
	}
	b.WriteString("\n\nTASK: CV'yi ATS uyumluluğu dahil değerlendir. Şemaya uygun JSON üret. Sadece JSON döndür.")

	return strings.TrimSpace(analyzeSystem), b.String()
}
