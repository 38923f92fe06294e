package language

import (
	"strings"
	"unicode"
)

// longMessageWords is the length from which a single keyword hit is enough.
const longMessageWords = 10

type scriptRule struct {
	tag   string
	table *unicode.RangeTable
}

// Order matters: kana must be checked before Han so Japanese is not read as Chinese.
var scriptRules = []scriptRule{
	{"ja", unicode.Hiragana},
	{"ja", unicode.Katakana},
	{"ko", unicode.Hangul},
	{"zh", unicode.Han},
	{"th", unicode.Thai},
	{"ar", unicode.Arabic},
	{"ru", unicode.Cyrillic},
	{"hi", unicode.Devanagari},
}

type Detector struct {
	working  string
	keywords map[string]map[string]struct{}
	phrases  map[string][]string
	order    []string
}

func NewDetector(working string) *Detector {
	d := &Detector{
		working:  working,
		keywords: make(map[string]map[string]struct{}),
		phrases:  make(map[string][]string),
	}

	for _, entry := range keywordTable {
		d.order = append(d.order, entry.tag)
		words := make(map[string]struct{})
		for _, w := range entry.words {
			w = strings.ToLower(w)
			if strings.Contains(w, " ") {
				d.phrases[entry.tag] = append(d.phrases[entry.tag], w)
				continue
			}
			words[w] = struct{}{}
		}
		d.keywords[entry.tag] = words
	}
	return d
}

// Detect returns the language tag of text, falling back to the working language
// when nothing distinctive is found.
func (d *Detector) Detect(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return d.working
	}

	tokens := tokenize(text)
	if len(tokens) == 0 {
		return d.working
	}

	// 1. Non-latin scripts are unambiguous
	if tag := d.detectScript(text, tokens); tag != "" {
		return tag
	}

	// 2. Keyword votes for latin and romanized input
	tag, count := d.bestKeywordMatch(tokens)
	required := 2
	if len(tokens) >= longMessageWords {
		required = 1
	}
	if count >= required {
		return tag
	}

	return d.working
}

func (d *Detector) detectScript(text string, tokens []string) string {
	var letters int
	counts := make(map[*unicode.RangeTable]int, len(scriptRules))
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		for _, rule := range scriptRules {
			if unicode.Is(rule.table, r) {
				counts[rule.table]++
				break
			}
		}
	}
	if letters == 0 {
		return ""
	}

	for _, rule := range scriptRules {
		n := counts[rule.table]
		if n == 0 {
			continue
		}
		// Any kana means Japanese; other scripts need to be a real share of the text
		if rule.tag == "ja" || n*3 >= letters {
			if rule.table == unicode.Devanagari {
				return d.devanagariLanguage(tokens)
			}
			return rule.tag
		}
	}
	return ""
}

// devanagariLanguage separates Nepali from Hindi, which share the script.
func (d *Detector) devanagariLanguage(tokens []string) string {
	if d.countMatches("ne", tokens) > d.countMatches("hi", tokens) {
		return "ne"
	}
	return "hi"
}

func (d *Detector) bestKeywordMatch(tokens []string) (string, int) {
	best, bestCount := "", 0
	for _, tag := range d.order {
		if n := d.countMatches(tag, tokens); n > bestCount {
			best, bestCount = tag, n
		}
	}
	return best, bestCount
}

// countMatches counts distinct keywords of a language present as whole words or phrases.
func (d *Detector) countMatches(tag string, tokens []string) int {
	words := d.keywords[tag]
	seen := make(map[string]struct{})
	for _, t := range tokens {
		if _, ok := words[t]; ok {
			seen[t] = struct{}{}
		}
	}

	count := len(seen)
	if phrases := d.phrases[tag]; len(phrases) > 0 {
		joined := " " + strings.Join(tokens, " ") + " "
		for _, p := range phrases {
			if strings.Contains(joined, " "+p+" ") {
				count++
			}
		}
	}
	return count
}

// tokenize lowercases text and splits it into words. Combining marks stay inside
// words so Devanagari and Thai spellings survive.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsMark(r) || unicode.IsDigit(r) || r == '\'')
	})
}
