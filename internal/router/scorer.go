package router

// #region imports
import (
	"fmt"
	"log"
	"strings"
	"unicode"
)

// #endregion

// #region hedging-patterns

// hedgingPatterns are phrases that signal the model is guessing. Any match
// caps the overall confidence so escalation fires.
var hedgingPatterns = []string{
	"i don't know",
	"i do not know",
	"not sure",
	"i'm unsure",
	"i am unsure",
	"cannot answer",
	"can't answer",
	"no information",
	"unable to determine",
	"not found",
}

// #endregion

// #region stopwords

// scoreStopwords are common words excluded from query/answer overlap.
var scoreStopwords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "are": true,
	"was": true, "were": true, "do": true, "does": true, "did": true,
	"have": true, "has": true, "had": true, "be": true, "been": true,
	"will": true, "would": true, "could": true, "should": true, "can": true,
	"not": true, "no": true, "and": true, "or": true, "but": true,
	"if": true, "then": true, "than": true, "so": true, "as": true,
	"at": true, "by": true, "for": true, "from": true, "in": true,
	"into": true, "of": true, "on": true, "to": true, "with": true,
	"about": true, "it": true, "its": true, "this": true, "that": true,
	"what": true, "which": true, "who": true, "how": true, "when": true,
	"where": true, "why": true, "you": true, "me": true, "i": true,
	"my": true, "your": true, "we": true, "they": true, "them": true,
}

// overlapTokens splits text into unique lowercase non-stopword tokens.
func overlapTokens(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	seen := make(map[string]bool)
	var tokens []string
	for _, w := range words {
		if len(w) < 2 || scoreStopwords[w] || seen[w] {
			continue
		}
		seen[w] = true
		tokens = append(tokens, w)
	}
	return tokens
}

// sharedTokenCount returns how many tokens appear in both slices.
func sharedTokenCount(a, b []string) int {
	set := make(map[string]bool, len(a))
	for _, t := range a {
		set[t] = true
	}
	count := 0
	for _, t := range b {
		if set[t] {
			count++
		}
	}
	return count
}

// #endregion

// #region score

// hedgingCap is the maximum confidence a hedging answer can reach.
const hedgingCap = 0.30

// Score judges a candidate answer against the original query. It never fails:
// the score gates control flow, so an internal fault degrades to a low but
// defined confidence instead of erroring. ShouldEscalate is true when the
// overall score falls below the analyzer's threshold for this query.
func Score(query string, ans CandidateAnswer, threshold float64) (score ConfidenceScore) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ROUTE] scorer fault: %v", r)
			score = ConfidenceScore{
				Overall:        0.1,
				Reasoning:      "fallback due to scoring error",
				ShouldEscalate: 0.1 < threshold,
			}
		}
	}()

	trimmed := strings.TrimSpace(ans.Text)
	if trimmed == "" {
		return ConfidenceScore{
			Overall:        0,
			Reasoning:      "empty answer",
			ShouldEscalate: 0 < threshold,
		}
	}
	lower := strings.ToLower(trimmed)

	length := lengthAdequacy(len(strings.Fields(trimmed)))
	overlap := queryOverlap(query, lower)
	citations := citationSignal(ans)

	overall := 0.35*length + 0.40*overlap + 0.25*citations
	reasoning := fmt.Sprintf("length=%.2f overlap=%.2f citations=%.2f", length, overlap, citations)

	if hedge := matchHedging(lower); hedge != "" {
		if overall > hedgingCap {
			overall = hedgingCap
		}
		reasoning += fmt.Sprintf("; hedging phrase %q", hedge)
	}

	if overall > 1.0 {
		overall = 1.0
	}
	if overall < 0.0 {
		overall = 0.0
	}

	return ConfidenceScore{
		Overall:        overall,
		Reasoning:      reasoning,
		ShouldEscalate: overall < threshold,
	}
}

// #endregion

// #region signals

// lengthAdequacy: under 10 words ramps from 0, 10-50 ramps to 1, 50+ is 1.
func lengthAdequacy(wordCount int) float64 {
	switch {
	case wordCount < 10:
		return float64(wordCount) / 10.0
	case wordCount <= 50:
		return 0.5 + 0.5*float64(wordCount-10)/40.0
	default:
		return 1.0
	}
}

// queryOverlap measures how much of the query's vocabulary the answer engages
// with. A query with no content tokens scores a neutral 0.5.
func queryOverlap(query, answerLower string) float64 {
	qTokens := overlapTokens(query)
	if len(qTokens) == 0 {
		return 0.5
	}
	shared := sharedTokenCount(qTokens, overlapTokens(answerLower))
	overlap := float64(shared) / float64(len(qTokens))
	if overlap > 1.0 {
		overlap = 1.0
	}
	return overlap
}

// citationSignal: a retrieval answer with no context items is a strong
// negative signal. Cloud answers carry no citations, so they get a neutral
// score.
func citationSignal(ans CandidateAnswer) float64 {
	if ans.Route != RouteLocal {
		return 0.6
	}
	if len(ans.Context) > 0 {
		return 1.0
	}
	return 0.0
}

func matchHedging(lower string) string {
	for _, p := range hedgingPatterns {
		if strings.Contains(lower, p) {
			return p
		}
	}
	return ""
}

// #endregion
