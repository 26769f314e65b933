package router

// #region imports
import (
	"context"
	"time"
)

// #endregion

// #region complexity

// Complexity estimates how much reasoning a query demands.
type Complexity string

const (
	ComplexitySimple      Complexity = "simple"
	ComplexityModerate    Complexity = "moderate"
	ComplexityComplex     Complexity = "complex"
	ComplexitySpecialized Complexity = "specialized"
)

// #endregion

// #region domain

// Domain classifies the subject area of a query.
type Domain string

const (
	DomainGeneral   Domain = "general"
	DomainTechnical Domain = "technical"
	DomainLegal     Domain = "legal"
	DomainMedical   Domain = "medical"
	DomainFinancial Domain = "financial"
	DomainCode      Domain = "code"
	DomainCreative  Domain = "creative"
	DomainResearch  Domain = "research"
)

// rankedDomains fixes the tie-break order for domain detection.
var rankedDomains = []Domain{
	DomainTechnical, DomainLegal, DomainMedical, DomainFinancial,
	DomainCode, DomainCreative, DomainResearch,
}

// #endregion

// #region intent

// Intent classifies what the user wants done with the query.
type Intent string

const (
	IntentQuestion    Intent = "question"
	IntentExplanation Intent = "explanation"
	IntentSummary     Intent = "summary"
	IntentAnalysis    Intent = "analysis"
	IntentGeneration  Intent = "generation"
	IntentTranslation Intent = "translation"
	IntentExtraction  Intent = "extraction"
)

// #endregion

// #region route

// Route identifies which collaborator should answer, or did answer.
// "hybrid" is a recommendation only; it never appears in a final response.
type Route string

const (
	RouteLocal       Route = "local"
	RouteCloud       Route = "cloud"
	RouteHybrid      Route = "hybrid"
	RouteUnavailable Route = "unavailable"
)

// #endregion

// #region analysis

// QueryAnalysis is the analyzer's full output for one query.
// Produced once per query and never mutated.
type QueryAnalysis struct {
	Complexity          Complexity
	Domain              Domain
	Intent              Intent
	ConfidenceThreshold float64
	RecommendedRoute    Route
	EstimatedCost       float64
	EstimatedLatency    time.Duration
	Reasoning           string
}

// #endregion

// #region context-item

// ContextItem is a provenance reference returned by the retrieval service.
// Opaque to the router; passed through to the caller unchanged.
type ContextItem struct {
	Index   int     `json:"index"`
	DocID   string  `json:"doc_id"`
	ChunkID string  `json:"chunk_id"`
	Score   float64 `json:"score"`
}

// #endregion

// #region candidate-answer

// CandidateAnswer is the result of one collaborator call, held only for the
// duration of a single request.
type CandidateAnswer struct {
	Route     Route
	Text      string
	Context   []ContextItem
	ElapsedMs int64
}

// #endregion

// #region confidence-score

// ConfidenceScore is the scorer's verdict on a candidate answer.
type ConfidenceScore struct {
	Overall        float64
	Reasoning      string
	ShouldEscalate bool
}

// #endregion

// #region feature-flags

// FeatureFlags are process-wide policy switches, read-only after startup.
// RAGRequired overrides all routing intelligence: only the local service may
// answer. UseRAGFirst forces the local service to be tried before the cloud.
type FeatureFlags struct {
	RAGRequired bool
	UseRAGFirst bool
}

// #endregion

// #region ask-response

// Timings records per-collaborator wall time for one request, in milliseconds.
// A call that was never attempted contributes zero.
type Timings struct {
	LocalMs int64 `json:"localMs"`
	CloudMs int64 `json:"cloudMs"`
}

// AskResponse is the only artifact that escapes the router. Constructed
// exactly once per request.
type AskResponse struct {
	Route   Route         `json:"route"`
	Answer  string        `json:"answer"`
	Context []ContextItem `json:"context"`
	Timings Timings       `json:"timings"`
}

// #endregion

// #region collaborators

// LocalAnswer is the local retrieval service's reply. A route tag other than
// "local" (the service abstains with "abstain") or an empty answer means the
// reply is not usable, regardless of cause.
type LocalAnswer struct {
	Route      string
	Answer     string
	ContextMap []ContextItem
}

// LocalService is the local retrieval collaborator.
type LocalService interface {
	Ask(ctx context.Context, query string) (LocalAnswer, error)
}

// CloudService is the cloud language-model collaborator.
type CloudService interface {
	Chat(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// #endregion

// #region decision-sink

// DecisionRecord is a single journaled routing outcome.
type DecisionRecord struct {
	RequestID        string
	Complexity       Complexity
	Domain           Domain
	Intent           Intent
	RecommendedRoute Route
	FinalRoute       Route
	Confidence       float64
	Escalated        bool
	LocalMs          int64
	CloudMs          int64
	CreatedAt        time.Time
}

// DecisionSink persists routing outcomes. Nil sinks are allowed; journal
// failures never affect the response.
type DecisionSink interface {
	RecordDecision(rec DecisionRecord) error
}

// #endregion
