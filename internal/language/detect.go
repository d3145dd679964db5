// Package language implements C9: detecting a page's language from its
// markup, URL, or content, and mapping semantic field categories to their
// language-specific aliases for extraction.
package language

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

// Source names where a Detection's language came from.
type Source string

const (
	SourceHTMLLang         Source = "html-lang"
	SourceMetaHTTPEquiv    Source = "meta-http-equiv"
	SourceOGLocale         Source = "og-locale"
	SourceURLPattern       Source = "url-pattern"
	SourceContentScript    Source = "content-script"
	SourceContentStopwords Source = "content-stopwords"
	SourceDefault          Source = "default"
)

// Detection is the outcome of language detection.
type Detection struct {
	Language   string
	Confidence float64
	Source     Source
	Locale     string
}

const defaultLanguage = "en"

// Detect runs the full detection order against an HTML document and the
// URL it was fetched from: markup signals first, then URL shape, then
// content analysis, falling back to English.
func Detect(html []byte, pageURL string) Detection {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(html)))
	if err == nil {
		if d, ok := detectFromHTMLLang(doc); ok {
			return d
		}
		if d, ok := detectFromMetaHTTPEquiv(doc); ok {
			return d
		}
		if d, ok := detectFromOGLocale(doc); ok {
			return d
		}
	}

	if d, ok := detectFromURL(pageURL); ok {
		return d
	}

	text := ""
	if doc != nil {
		text = doc.Text()
	} else {
		text = string(html)
	}

	if d, ok := detectFromScript(text); ok {
		return d
	}
	if d, ok := detectFromStopwords(text); ok {
		return d
	}

	return Detection{Language: defaultLanguage, Confidence: 0.3, Source: SourceDefault}
}

func detectFromHTMLLang(doc *goquery.Document) (Detection, bool) {
	locale, ok := doc.Find("html").First().Attr("lang")
	if !ok || strings.TrimSpace(locale) == "" {
		return Detection{}, false
	}
	return Detection{Language: primaryTag(locale), Confidence: 0.95, Source: SourceHTMLLang, Locale: locale}, true
}

func detectFromMetaHTTPEquiv(doc *goquery.Document) (Detection, bool) {
	content, ok := doc.Find(`meta[http-equiv="Content-Language" i]`).First().Attr("content")
	if !ok || strings.TrimSpace(content) == "" {
		return Detection{}, false
	}
	return Detection{Language: primaryTag(content), Confidence: 0.9, Source: SourceMetaHTTPEquiv, Locale: content}, true
}

func detectFromOGLocale(doc *goquery.Document) (Detection, bool) {
	content, ok := doc.Find(`meta[property="og:locale"]`).First().Attr("content")
	if !ok || strings.TrimSpace(content) == "" {
		return Detection{}, false
	}
	return Detection{Language: primaryTag(content), Confidence: 0.85, Source: SourceOGLocale, Locale: content}, true
}

var (
	subdomainRe  = regexp.MustCompile(`(?i)^([a-z]{2})\.`)
	pathPrefixRe = regexp.MustCompile(`(?i)^/([a-z]{2})(/|$)`)
)

func detectFromURL(pageURL string) (Detection, bool) {
	if pageURL == "" {
		return Detection{}, false
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		return Detection{}, false
	}

	if m := subdomainRe.FindStringSubmatch(u.Hostname()); m != nil {
		return Detection{Language: strings.ToLower(m[1]), Confidence: 0.75, Source: SourceURLPattern}, true
	}
	if m := pathPrefixRe.FindStringSubmatch(u.Path); m != nil {
		return Detection{Language: strings.ToLower(m[1]), Confidence: 0.75, Source: SourceURLPattern}, true
	}

	q := u.Query()
	for _, key := range []string{"lang", "locale", "hl"} {
		if v := q.Get(key); v != "" {
			return Detection{Language: primaryTag(v), Confidence: 0.75, Source: SourceURLPattern, Locale: v}, true
		}
	}

	return Detection{}, false
}

// primaryTag reduces a locale like "es-ES" or "pt_BR" to its primary
// language subtag, lowercased.
func primaryTag(locale string) string {
	locale = strings.TrimSpace(locale)
	for i, r := range locale {
		if r == '-' || r == '_' {
			return strings.ToLower(locale[:i])
		}
	}
	return strings.ToLower(locale)
}

// scriptRule pairs a Unicode script with the language it implies. Order
// matters: Hiragana/Katakana and Hangul must be checked before the bare
// Han range, because Japanese text mixes kana with kanji (Han) and would
// otherwise be misclassified as Chinese.
type scriptRule struct {
	table *unicode.RangeTable
	lang  string
}

var scriptRules = []scriptRule{
	{unicode.Hiragana, "ja"},
	{unicode.Katakana, "ja"},
	{unicode.Hangul, "ko"},
	{unicode.Han, "zh"},
	{unicode.Arabic, "ar"},
	{unicode.Hebrew, "he"},
	{unicode.Thai, "th"},
	{unicode.Devanagari, "hi"},
	{unicode.Bengali, "bn"},
	{unicode.Tamil, "ta"},
	{unicode.Cyrillic, "ru"},
	{unicode.Greek, "el"},
}

func detectFromScript(text string) (Detection, bool) {
	for _, rule := range scriptRules {
		for _, r := range text {
			if unicode.Is(rule.table, r) {
				return Detection{Language: rule.lang, Confidence: 0.85, Source: SourceContentScript}, true
			}
		}
	}
	return Detection{}, false
}

var wordSplitRe = regexp.MustCompile(`[^\p{L}]+`)

func detectFromStopwords(text string) (Detection, bool) {
	words := wordSplitRe.Split(strings.ToLower(text), -1)
	if len(words) == 0 {
		return Detection{}, false
	}
	present := make(map[string]bool, len(words))
	for _, w := range words {
		if w != "" {
			present[w] = true
		}
	}

	bestLang := ""
	bestMatches := 0
	for lang, stops := range stopwordTable {
		matches := 0
		for _, s := range stops {
			if present[s] {
				matches++
			}
		}
		if matches > bestMatches {
			bestMatches = matches
			bestLang = lang
		}
	}

	if bestMatches == 0 {
		return Detection{}, false
	}

	confidence := 0.3 + 0.1*float64(bestMatches)
	if confidence > 0.85 {
		confidence = 0.85
	}
	return Detection{Language: bestLang, Confidence: confidence, Source: SourceContentStopwords}, true
}
