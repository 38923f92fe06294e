package router

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sandevgo/profiletwin/internal/core"
)

// followUpWords is the size under which a question is read as a follow-up to the previous one.
const followUpWords = 3

// leadingConnectors only mark a comparison when they open the question; they never split.
var leadingConnectors = map[string]bool{
	"compare":     true,
	"compared to": true,
}

var quotedPhrase = regexp.MustCompile(`"([^"]+)"|“([^”]+)”|«([^»]+)»`)

// RuleClassifier is a deterministic rule table: multi_hop, then hybrid, then direct.
type RuleClassifier struct {
	connectors [][]string
	knownTerms []string
}

func NewRuleClassifier(connectors, knownTerms []string) *RuleClassifier {
	c := &RuleClassifier{}
	for _, conn := range connectors {
		if words := strings.Fields(strings.ToLower(conn)); len(words) > 0 {
			c.connectors = append(c.connectors, words)
		}
	}
	for _, term := range knownTerms {
		if term = strings.ToLower(strings.TrimSpace(term)); term != "" {
			c.knownTerms = append(c.knownTerms, term)
		}
	}
	return c
}

// Direct is the route used when classification is disabled.
func Direct(text string) core.Route {
	return core.Route{
		Pattern:    core.PatternDirect,
		SubQueries: []core.SubQuery{{Text: text}},
	}
}

func (c *RuleClassifier) Classify(text string, history []core.Turn) core.Route {
	text = strings.TrimSpace(text)

	// 1. multi_hop
	if parts := c.splitMultiHop(text); len(parts) >= 2 {
		route := core.Route{Pattern: core.PatternMultiHop}
		for _, p := range parts {
			route.SubQueries = append(route.SubQueries, core.SubQuery{Text: p})
		}
		return route
	}

	query := expandFollowUp(text, history)

	// 2. hybrid
	if terms := c.literalTerms(text); len(terms) > 0 {
		return core.Route{
			Pattern:    core.PatternHybrid,
			SubQueries: []core.SubQuery{{Text: query, Terms: terms}},
		}
	}

	// 3. direct
	return Direct(query)
}

// splitMultiHop breaks text into independent sub-questions, or returns nil.
func (c *RuleClassifier) splitMultiHop(text string) []string {
	if strings.Count(text, "?") >= 2 {
		var parts []string
		for _, s := range strings.Split(text, "?") {
			if s = strings.TrimSpace(s); utf8.RuneCountInString(s) > 2 {
				parts = append(parts, s+"?")
			}
		}
		if len(parts) >= 2 {
			return parts
		}
	}

	words := strings.Fields(text)
	var parts [][]string
	var current []string

	for i := 0; i < len(words); {
		if n := c.matchConnector(words, i); n > 0 {
			if len(current) > 0 {
				parts = append(parts, current)
				current = nil
			}
			i += n
			continue
		}
		current = append(current, words[i])
		i++
	}
	if len(current) > 0 {
		parts = append(parts, current)
	}
	if len(parts) < 2 {
		return nil
	}

	return shareContext(parts)
}

// matchConnector reports how many words starting at i form a connector.
func (c *RuleClassifier) matchConnector(words []string, i int) int {
	for _, conn := range c.connectors {
		if i+len(conn) > len(words) {
			continue
		}
		matched := true
		for j, w := range conn {
			if normalizeWord(words[i+j]) != w {
				matched = false
				break
			}
		}
		if !matched {
			continue
		}
		// a leading connector only counts at the start of the question
		joined := strings.Join(conn, " ")
		if leadingConnectors[joined] && i != 0 {
			return 0
		}
		return len(conn)
	}
	return 0
}

// shareContext completes elliptic parts: "your Python" vs "Java experience" becomes
// "your Python experience" and "Java experience"; "what did you do at Canva" and
// "Atlassian" becomes "what did you do at Atlassian".
func shareContext(parts [][]string) []string {
	first, last := parts[0], parts[len(parts)-1]

	var head, tail []string
	if len(first) >= 3 {
		head = first[:len(first)-1]
	}
	if len(last) >= 2 {
		tail = last[1:]
	}

	out := make([]string, 0, len(parts))
	for i, p := range parts {
		words := append([]string(nil), p...)
		if i > 0 && len(p) <= 2 && len(head) > 0 {
			words = append(append([]string(nil), head...), words...)
		}
		if i < len(parts)-1 && len(p) <= 2 && len(tail) > 0 {
			words = append(words, tail...)
		}
		s := strings.Trim(strings.Join(words, " "), " ,;:")
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// literalTerms finds quoted phrases, known terms and capitalized names.
func (c *RuleClassifier) literalTerms(text string) []string {
	var terms []string
	seen := make(map[string]bool)
	add := func(t string) {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			return
		}
		seen[key] = true
		terms = append(terms, t)
	}

	for _, m := range quotedPhrase.FindAllStringSubmatch(text, -1) {
		for _, g := range m[1:] {
			add(g)
		}
	}

	lower := strings.ToLower(text)
	for _, term := range c.knownTerms {
		if containsWord(lower, term) {
			add(term)
		}
	}

	words := strings.Fields(text)
	for i, w := range words {
		if i == 0 || endsSentence(words[i-1]) {
			continue
		}
		w = strings.TrimFunc(w, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if isName(w) {
			add(w)
		}
	}
	return terms
}

func isName(w string) bool {
	if utf8.RuneCountInString(w) < 2 {
		return false
	}
	r, _ := utf8.DecodeRuneInString(w)
	if !unicode.IsUpper(r) {
		return false
	}
	// "I'm", "I've"
	return !strings.HasPrefix(w, "I'")
}

func endsSentence(w string) bool {
	return strings.HasSuffix(w, ".") || strings.HasSuffix(w, "?") || strings.HasSuffix(w, "!")
}

// containsWord matches term in text on word boundaries.
func containsWord(text, term string) bool {
	for start := 0; ; {
		idx := strings.Index(text[start:], term)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(term)

		before, _ := utf8.DecodeLastRuneInString(text[:idx])
		after, _ := utf8.DecodeRuneInString(text[end:])
		if (idx == 0 || !isWordRune(before)) && (end == len(text) || !isWordRune(after)) {
			return true
		}
		start = idx + 1
	}
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func normalizeWord(w string) string {
	return strings.ToLower(strings.Trim(w, ",.;:!?\"'()"))
}

// expandFollowUp prefixes a very short question with the previous user question
// so "and Java?" retrieves in the context of what was asked before.
func expandFollowUp(text string, history []core.Turn) string {
	if len(strings.Fields(text)) > followUpWords {
		return text
	}
	for i := len(history) - 1; i >= 0; i-- {
		if prev := history[i].Working(); history[i].Role == core.RoleUser && strings.TrimSpace(prev) != "" {
			return prev + " " + text
		}
	}
	return text
}
