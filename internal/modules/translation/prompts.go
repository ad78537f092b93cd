package translation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const translationSystemPrompt = `You are a professional translator for a publishing platform.
Translate the article you are given, preserving all Markdown structure, code blocks, links and inline formatting exactly.
Do not translate code, URLs, or proper nouns that are conventionally left untranslated.

Respond with a single JSON object and nothing else, using exactly these keys:
{
  "title": "translated title",
  "excerpt": "translated excerpt",
  "content": "translated article body",
  "metaTitle": "translated meta title",
  "metaDescription": "translated meta description",
  "keywords": ["translated", "keywords"],
  "confidence": 0.95,
  "needsReview": false
}

confidence is your own 0-1 estimate of translation quality. Set needsReview to true when the text contains domain jargon, ambiguous phrasing or anything you are unsure about.`

func buildTranslationPrompt(req *TranslateRequest) (system, user string) {
	doc := map[string]interface{}{
		"title":           req.Title,
		"excerpt":         req.Excerpt,
		"content":         req.Text,
		"metaTitle":       req.MetaTitle,
		"metaDescription": req.MetaDescription,
		"keywords":        req.Keywords,
	}
	payload, _ := json.MarshalIndent(doc, "", "  ")
	user = fmt.Sprintf("Translate the following article from %s to %s. Return only the JSON object.\n\n%s",
		languageName(req.SourceLanguage), languageName(req.TargetLanguage), payload)
	return translationSystemPrompt, user
}

type translationEnvelope struct {
	Title           string   `json:"title"`
	Excerpt         string   `json:"excerpt"`
	Content         string   `json:"content"`
	MetaTitle       string   `json:"metaTitle"`
	MetaDescription string   `json:"metaDescription"`
	Keywords        []string `json:"keywords"`
	Confidence      float64  `json:"confidence"`
	QualityScore    float64  `json:"qualityScore"`
	NeedsReview     bool     `json:"needsReview"`
}

// extractJSONObject tolerates code fences and prose around the object;
// models wrap JSON in markdown despite the response_format hint.
func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return ""
	}
	return raw[start : end+1]
}

func parseTranslateResult(raw string) (*TranslateResult, error) {
	blob := extractJSONObject(raw)
	if blob == "" {
		return nil, errors.New("no JSON object in model output")
	}
	var env translationEnvelope
	if err := json.Unmarshal([]byte(blob), &env); err != nil {
		return nil, fmt.Errorf("decode model output: %w", err)
	}
	if strings.TrimSpace(env.Title) == "" || strings.TrimSpace(env.Content) == "" {
		return nil, errors.New("model output missing title or content")
	}

	conf := clamp01(env.Confidence)
	quality := clamp01(env.QualityScore)
	if quality == 0 {
		quality = conf
	}
	return &TranslateResult{
		Title:           env.Title,
		Excerpt:         env.Excerpt,
		Text:            env.Content,
		MetaTitle:       env.MetaTitle,
		MetaDescription: env.MetaDescription,
		Keywords:        env.Keywords,
		Confidence:      conf,
		QualityScore:    quality,
		NeedsReview:     env.NeedsReview,
	}, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// NormalizeLanguageCode reduces "fr-FR" / "FR, fr" style inputs to a bare
// lowercase code.
func NormalizeLanguageCode(lang string) string {
	code := strings.TrimSpace(strings.ToLower(lang))
	if idx := strings.Index(code, ","); idx >= 0 {
		code = strings.TrimSpace(code[:idx])
	}
	if idx := strings.Index(code, "-"); idx >= 0 {
		code = strings.TrimSpace(code[:idx])
	}
	return code
}

func languageName(code string) string {
	normalized := NormalizeLanguageCode(code)
	if name, ok := languageCodeToName[normalized]; ok {
		return name
	}
	if normalized == "" {
		return "English"
	}
	return normalized
}

var languageCodeToName = map[string]string{
	"ar": "Arabic",
	"bg": "Bulgarian",
	"cs": "Czech",
	"da": "Danish",
	"de": "German",
	"el": "Greek",
	"en": "English",
	"es": "Spanish",
	"et": "Estonian",
	"fa": "Persian",
	"fi": "Finnish",
	"fr": "French",
	"he": "Hebrew",
	"hi": "Hindi",
	"hr": "Croatian",
	"hu": "Hungarian",
	"id": "Indonesian",
	"is": "Icelandic",
	"it": "Italian",
	"ja": "Japanese",
	"ko": "Korean",
	"lt": "Lithuanian",
	"lv": "Latvian",
	"ms": "Malay",
	"nl": "Dutch",
	"no": "Norwegian",
	"pl": "Polish",
	"pt": "Portuguese",
	"ro": "Romanian",
	"ru": "Russian",
	"sk": "Slovak",
	"sl": "Slovenian",
	"sr": "Serbian",
	"sv": "Swedish",
	"th": "Thai",
	"tr": "Turkish",
	"uk": "Ukrainian",
	"vi": "Vietnamese",
	"zh": "Chinese",
}
