package router

// #region imports
import (
	"log"
	"regexp"
	"strings"
	"time"
	"unicode"
)

// #endregion

// #region complexity-keywords

// specializedTerms mark queries that need expert-level reasoning. Checked
// before everything else.
var specializedTerms = []string{
	"algorithm", "compliance", "diagnosis", "theorem", "cryptography",
	"litigation", "pathology", "derivative", "regression", "arbitrage",
	"pharmacology", "jurisprudence",
}

// complexTerms mark multi-step reasoning requests. Checked after specialized.
var complexTerms = []string{
	"analyze", "analyse", "compare", "optimize", "evaluate", "implications",
	"architecture", "tradeoff", "tradeoffs", "synthesize", "critique",
	"restructure",
}

// simpleOpeners are question words that usually start a lookup-style query.
var simpleOpeners = []string{
	"what", "who", "is", "are", "when", "where", "which", "does", "do", "can",
}

// #endregion

// #region domain-keywords

var domainKeywords = map[Domain][]string{
	DomainTechnical: {
		"server", "network", "database", "engineering", "hardware", "software",
		"protocol", "infrastructure", "deployment", "latency", "kernel",
	},
	DomainLegal: {
		"legal", "law", "contract", "liability", "compliance", "regulation",
		"statute", "clause", "litigation", "patent", "lawsuit",
	},
	DomainMedical: {
		"medical", "patient", "symptom", "symptoms", "diagnosis", "treatment",
		"clinical", "dosage", "disease", "therapy", "prescription",
	},
	DomainFinancial: {
		"financial", "revenue", "investment", "portfolio", "tax", "budget",
		"profit", "equity", "dividend", "loan", "accounting",
	},
	DomainCode: {
		"code", "function", "bug", "compile", "python", "golang", "debug",
		"refactor", "api", "stacktrace", "repository",
	},
	DomainCreative: {
		"story", "poem", "song", "fiction", "character", "plot", "creative",
		"imagine", "narrative", "scene", "lyrics",
	},
	DomainResearch: {
		"research", "study", "hypothesis", "experiment", "literature",
		"survey", "methodology", "citation", "dataset", "findings",
	},
}

// #endregion

// #region intent-patterns

type intentPattern struct {
	intent  Intent
	pattern *regexp.Regexp
}

// intentPatterns are evaluated in order; the first match wins.
var intentPatterns = []intentPattern{
	{IntentQuestion, regexp.MustCompile(`^(what|who|when|where|which|is|are|was|were|do|does|did|can|could|will)\b`)},
	{IntentExplanation, regexp.MustCompile(`\b(explain|describe|why)\b`)},
	{IntentSummary, regexp.MustCompile(`\b(summarize|summarise|summary|overview)\b`)},
	{IntentAnalysis, regexp.MustCompile(`\b(analyze|analyse|evaluate|assess)\b`)},
	{IntentGeneration, regexp.MustCompile(`\b(create|generate|write|compose|draft)\b`)},
	{IntentTranslation, regexp.MustCompile(`\b(translate|convert)\b`)},
	{IntentExtraction, regexp.MustCompile(`\b(extract|find|list|identify)\b`)},
}

// #endregion

// #region routing-table

type routingRule struct {
	match     func(c Complexity, d Domain, i Intent) bool
	route     Route
	threshold float64
	reasoning string
}

// routingRules is evaluated top-down; the first matching rule wins. The last
// rule matches unconditionally, so the table is total.
var routingRules = []routingRule{
	{
		match: func(c Complexity, d Domain, i Intent) bool {
			return c == ComplexitySpecialized
		},
		route:     RouteCloud,
		threshold: 0.80,
		reasoning: "specialized domain requires advanced reasoning",
	},
	{
		match: func(c Complexity, d Domain, i Intent) bool {
			return c == ComplexityComplex && (d == DomainLegal || d == DomainMedical)
		},
		route:     RouteCloud,
		threshold: 0.85,
		reasoning: "complex query in sensitive domain",
	},
	{
		match: func(c Complexity, d Domain, i Intent) bool {
			return i == IntentExtraction || i == IntentSummary
		},
		route:     RouteLocal,
		threshold: 0.70,
		reasoning: "document retrieval favors local RAG",
	},
	{
		match: func(c Complexity, d Domain, i Intent) bool {
			return c == ComplexitySimple
		},
		route:     RouteLocal,
		threshold: 0.60,
		reasoning: "simple query suitable for local processing",
	},
	{
		match:     func(c Complexity, d Domain, i Intent) bool { return true },
		route:     RouteHybrid,
		threshold: 0.75,
		reasoning: "moderate complexity benefits from hybrid approach",
	},
}

// #endregion

// #region estimates

// Base estimates per route, scaled by a complexity multiplier. Advisory
// telemetry only; never used for control flow.
var routeBaseCost = map[Route]float64{
	RouteLocal:  0.001,
	RouteCloud:  0.030,
	RouteHybrid: 0.012,
}

var routeBaseLatency = map[Route]time.Duration{
	RouteLocal:  400 * time.Millisecond,
	RouteCloud:  2500 * time.Millisecond,
	RouteHybrid: 1500 * time.Millisecond,
}

var complexityMultiplier = map[Complexity]float64{
	ComplexitySimple:      0.5,
	ComplexityModerate:    1.0,
	ComplexityComplex:     1.8,
	ComplexitySpecialized: 2.8,
}

// #endregion

// #region analyze

// Analyze classifies a raw query and recommends a route. It never fails:
// classification is advisory, so an internal fault degrades to a safe
// moderate/general default instead of propagating.
func Analyze(query string) (analysis QueryAnalysis) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ROUTE] analyzer fault: %v", r)
			analysis = QueryAnalysis{
				Complexity:          ComplexityModerate,
				Domain:              DomainGeneral,
				Intent:              IntentQuestion,
				ConfidenceThreshold: 0.75,
				RecommendedRoute:    RouteLocal,
				EstimatedCost:       routeBaseCost[RouteLocal],
				EstimatedLatency:    routeBaseLatency[RouteLocal],
				Reasoning:           "fallback due to analysis error",
			}
		}
	}()

	lower := strings.ToLower(strings.TrimSpace(query))
	if lower == "" {
		return QueryAnalysis{
			Complexity:          ComplexitySimple,
			Domain:              DomainGeneral,
			Intent:              IntentQuestion,
			ConfidenceThreshold: 0.60,
			RecommendedRoute:    RouteLocal,
			EstimatedCost:       routeBaseCost[RouteLocal] * complexityMultiplier[ComplexitySimple],
			EstimatedLatency:    scaleLatency(routeBaseLatency[RouteLocal], complexityMultiplier[ComplexitySimple]),
			Reasoning:           "empty or null query",
		}
	}

	tokens := splitTokens(lower)
	complexity := classifyComplexity(tokens)
	domain := classifyDomain(tokens)
	intent := classifyIntent(lower)

	route, threshold, reasoning := pickRoute(complexity, domain, intent)
	mult := complexityMultiplier[complexity]

	return QueryAnalysis{
		Complexity:          complexity,
		Domain:              domain,
		Intent:              intent,
		ConfidenceThreshold: threshold,
		RecommendedRoute:    route,
		EstimatedCost:       routeBaseCost[route] * mult,
		EstimatedLatency:    scaleLatency(routeBaseLatency[route], mult),
		Reasoning:           reasoning,
	}
}

// #endregion

// #region tokenize

// splitTokens lowercases and splits on anything that is not a letter or digit.
func splitTokens(lower string) []string {
	return strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// #endregion

// #region classify-complexity

// classifyComplexity checks the curated keyword sets in priority order:
// specialized beats complex beats simple. With no keyword signal, token count
// decides.
func classifyComplexity(tokens []string) Complexity {
	if containsAny(tokens, specializedTerms) {
		return ComplexitySpecialized
	}
	if containsAny(tokens, complexTerms) {
		return ComplexityComplex
	}
	if len(tokens) > 0 && inSet(tokens[0], simpleOpeners) {
		return ComplexitySimple
	}

	switch n := len(tokens); {
	case n <= 5:
		return ComplexitySimple
	case n <= 15:
		return ComplexityModerate
	case n <= 30:
		return ComplexityComplex
	default:
		return ComplexitySpecialized
	}
}

// #endregion

// #region classify-domain

// classifyDomain counts keyword hits per domain; the highest count wins and
// ties break toward the earlier domain in rankedDomains. No hits → general.
func classifyDomain(tokens []string) Domain {
	best := DomainGeneral
	bestCount := 0
	for _, d := range rankedDomains {
		count := 0
		for _, t := range tokens {
			if inSet(t, domainKeywords[d]) {
				count++
			}
		}
		if count > bestCount {
			best = d
			bestCount = count
		}
	}
	return best
}

// #endregion

// #region classify-intent

func classifyIntent(lower string) Intent {
	for _, p := range intentPatterns {
		if p.pattern.MatchString(lower) {
			return p.intent
		}
	}
	return IntentQuestion
}

// #endregion

// #region pick-route

func pickRoute(c Complexity, d Domain, i Intent) (Route, float64, string) {
	for _, rule := range routingRules {
		if rule.match(c, d, i) {
			return rule.route, rule.threshold, rule.reasoning
		}
	}
	// Unreachable: the table's last rule always matches.
	return RouteHybrid, 0.75, "moderate complexity benefits from hybrid approach"
}

// #endregion

// #region helpers

func containsAny(tokens []string, set []string) bool {
	for _, t := range tokens {
		if inSet(t, set) {
			return true
		}
	}
	return false
}

func inSet(token string, set []string) bool {
	for _, s := range set {
		if token == s {
			return true
		}
	}
	return false
}

func scaleLatency(base time.Duration, mult float64) time.Duration {
	return time.Duration(float64(base) * mult)
}

// #endregion
