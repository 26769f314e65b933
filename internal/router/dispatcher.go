package router

// #region imports
import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
)

// #endregion

// #region constants

const (
	// defaultCallTimeout bounds each collaborator call.
	defaultCallTimeout = 30 * time.Second

	// ragRequiredMessage is returned when RAGRequired is set and the local
	// service cannot produce a usable answer. The cloud is never consulted.
	ragRequiredMessage = "Local RAG is required but not available right now."

	// cloudApology is returned when the cloud call was the last resort and
	// failed.
	cloudApology = "Sorry, I can't answer that right now."

	// cloudSystemPrompt is the fixed system prompt for the cloud collaborator.
	cloudSystemPrompt = "Answer concisely. If you are unsure, say 'I don't know'. Cite sources when possible."
)

// #endregion

// #region dispatcher-struct

// Dispatcher routes each query to the local and/or cloud collaborator,
// scores the answer, and escalates when the local answer is untrustworthy.
// Calls within one request are strictly sequential; at most one local and one
// cloud call happen per request.
type Dispatcher struct {
	local       LocalService
	cloud       CloudService
	flags       FeatureFlags
	sink        DecisionSink
	callTimeout time.Duration
}

// NewDispatcher creates a dispatcher. sink may be nil to disable journaling.
func NewDispatcher(local LocalService, cloud CloudService, flags FeatureFlags, sink DecisionSink) *Dispatcher {
	return &Dispatcher{
		local:       local,
		cloud:       cloud,
		flags:       flags,
		sink:        sink,
		callTimeout: defaultCallTimeout,
	}
}

// WithCallTimeout overrides the per-collaborator-call timeout.
func (d *Dispatcher) WithCallTimeout(t time.Duration) *Dispatcher {
	if t > 0 {
		d.callTimeout = t
	}
	return d
}

// #endregion

// #region ask

// Ask runs one query through the routing state machine and returns the final
// response. The only error it returns is the caller's own cancellation; every
// collaborator fault is degraded into the response per policy.
func (d *Dispatcher) Ask(ctx context.Context, query string) (AskResponse, error) {
	requestID := uuid.NewString()
	analysis := Analyze(query)

	log.Printf("[DISPATCH] %s classify: complexity=%s domain=%s intent=%s → route=%s threshold=%.2f (%s)",
		requestID, analysis.Complexity, analysis.Domain, analysis.Intent,
		analysis.RecommendedRoute, analysis.ConfidenceThreshold, analysis.Reasoning)

	var timings Timings

	// Hard requirement: the local service is the only permitted answerer.
	if d.flags.RAGRequired {
		resp, err := d.askLocalOnly(ctx, query, &timings)
		if err != nil {
			return AskResponse{}, err
		}
		d.record(requestID, analysis, resp, 0, false, timings)
		return resp, nil
	}

	localFirst := d.flags.UseRAGFirst ||
		analysis.RecommendedRoute == RouteLocal ||
		analysis.RecommendedRoute == RouteHybrid

	if localFirst {
		resp, confidence, escalated, err := d.askLocalFirst(ctx, query, analysis, &timings)
		if err != nil {
			return AskResponse{}, err
		}
		d.record(requestID, analysis, resp, confidence, escalated, timings)
		return resp, nil
	}

	resp, confidence, err := d.askCloudDirect(ctx, query, analysis, &timings)
	if err != nil {
		return AskResponse{}, err
	}
	d.record(requestID, analysis, resp, confidence, false, timings)
	return resp, nil
}

// #endregion

// #region rag-required

// askLocalOnly implements the hard-requirement branch: one local call, no
// scoring, no escalation, no cloud.
func (d *Dispatcher) askLocalOnly(ctx context.Context, query string, timings *Timings) (AskResponse, error) {
	ans, ms, err := d.callLocal(ctx, query)
	timings.LocalMs = ms
	if cerr := ctx.Err(); cerr != nil {
		return AskResponse{}, cerr
	}
	if err != nil {
		log.Printf("[DISPATCH] local call failed under rag-required: %v", err)
	}
	if err == nil && localUsable(ans) {
		return AskResponse{
			Route:   RouteLocal,
			Answer:  ans.Answer,
			Context: ans.ContextMap,
			Timings: *timings,
		}, nil
	}
	return AskResponse{
		Route:   RouteUnavailable,
		Answer:  ragRequiredMessage,
		Context: ans.ContextMap,
		Timings: *timings,
	}, nil
}

// #endregion

// #region local-first

// askLocalFirst tries the local service, falls back to the cloud when the
// local answer is unusable, and escalates a usable but low-confidence local
// answer at most once.
func (d *Dispatcher) askLocalFirst(ctx context.Context, query string, analysis QueryAnalysis, timings *Timings) (AskResponse, float64, bool, error) {
	ans, ms, err := d.callLocal(ctx, query)
	timings.LocalMs = ms
	if cerr := ctx.Err(); cerr != nil {
		return AskResponse{}, 0, false, cerr
	}
	if err != nil {
		log.Printf("[DISPATCH] local call failed: %v", err)
	}

	if err != nil || !localUsable(ans) {
		// Fall back to the cloud; carry any context the rejected local reply
		// returned.
		text, cloudMs, cloudErr := d.callCloud(ctx, query)
		timings.CloudMs = cloudMs
		if cerr := ctx.Err(); cerr != nil {
			return AskResponse{}, 0, false, cerr
		}
		if cloudErr != nil {
			log.Printf("[DISPATCH] cloud fallback failed: %v", cloudErr)
			return AskResponse{
				Route:   RouteUnavailable,
				Answer:  cloudApology,
				Context: ans.ContextMap,
				Timings: *timings,
			}, 0, false, nil
		}
		resp := AskResponse{
			Route:   RouteCloud,
			Answer:  text,
			Context: ans.ContextMap,
			Timings: *timings,
		}
		score := Score(query, CandidateAnswer{Route: RouteCloud, Text: text, ElapsedMs: cloudMs}, analysis.ConfidenceThreshold)
		return resp, score.Overall, false, nil
	}

	local := CandidateAnswer{Route: RouteLocal, Text: ans.Answer, Context: ans.ContextMap, ElapsedMs: ms}
	localScore := Score(query, local, analysis.ConfidenceThreshold)
	log.Printf("[DISPATCH] local confidence=%.2f escalate=%v (%s)",
		localScore.Overall, localScore.ShouldEscalate, localScore.Reasoning)

	if !localScore.ShouldEscalate {
		return AskResponse{
			Route:   RouteLocal,
			Answer:  ans.Answer,
			Context: ans.ContextMap,
			Timings: *timings,
		}, localScore.Overall, false, nil
	}

	// Single escalation: call the cloud once and keep whichever answer
	// scores strictly higher.
	text, cloudMs, cloudErr := d.callCloud(ctx, query)
	timings.CloudMs = cloudMs
	if cerr := ctx.Err(); cerr != nil {
		return AskResponse{}, 0, false, cerr
	}
	if cloudErr != nil {
		log.Printf("[DISPATCH] escalation failed, keeping local answer: %v", cloudErr)
		return AskResponse{
			Route:   RouteLocal,
			Answer:  ans.Answer,
			Context: ans.ContextMap,
			Timings: *timings,
		}, localScore.Overall, true, nil
	}

	cloudScore := Score(query, CandidateAnswer{Route: RouteCloud, Text: text, ElapsedMs: cloudMs}, analysis.ConfidenceThreshold)
	log.Printf("[DISPATCH] escalation confidence=%.2f vs local=%.2f", cloudScore.Overall, localScore.Overall)

	if cloudScore.Overall > localScore.Overall {
		return AskResponse{
			Route:   RouteCloud,
			Answer:  text,
			Context: ans.ContextMap,
			Timings: *timings,
		}, cloudScore.Overall, true, nil
	}
	return AskResponse{
		Route:   RouteLocal,
		Answer:  ans.Answer,
		Context: ans.ContextMap,
		Timings: *timings,
	}, localScore.Overall, true, nil
}

// #endregion

// #region cloud-direct

// askCloudDirect skips the local service entirely.
func (d *Dispatcher) askCloudDirect(ctx context.Context, query string, analysis QueryAnalysis, timings *Timings) (AskResponse, float64, error) {
	text, ms, err := d.callCloud(ctx, query)
	timings.CloudMs = ms
	if cerr := ctx.Err(); cerr != nil {
		return AskResponse{}, 0, cerr
	}
	if err != nil {
		log.Printf("[DISPATCH] cloud call failed: %v", err)
		return AskResponse{
			Route:   RouteUnavailable,
			Answer:  cloudApology,
			Timings: *timings,
		}, 0, nil
	}
	score := Score(query, CandidateAnswer{Route: RouteCloud, Text: text, ElapsedMs: ms}, analysis.ConfidenceThreshold)
	return AskResponse{
		Route:   RouteCloud,
		Answer:  text,
		Timings: *timings,
	}, score.Overall, nil
}

// #endregion

// #region collaborator-calls

// callLocal runs one bounded local call, timing it regardless of outcome.
func (d *Dispatcher) callLocal(ctx context.Context, query string) (LocalAnswer, int64, error) {
	callCtx, cancel := context.WithTimeout(ctx, d.callTimeout)
	defer cancel()
	start := time.Now()
	ans, err := d.local.Ask(callCtx, query)
	return ans, attemptMs(start), err
}

// callCloud runs one bounded cloud call with the fixed system prompt.
func (d *Dispatcher) callCloud(ctx context.Context, query string) (string, int64, error) {
	callCtx, cancel := context.WithTimeout(ctx, d.callTimeout)
	defer cancel()
	start := time.Now()
	text, err := d.cloud.Chat(callCtx, cloudSystemPrompt, query)
	return text, attemptMs(start), err
}

// attemptMs returns elapsed milliseconds, never less than 1: an attempted
// call must be distinguishable from a call that was never made.
func attemptMs(start time.Time) int64 {
	ms := time.Since(start).Milliseconds()
	if ms < 1 {
		ms = 1
	}
	return ms
}

// localUsable reports whether a local reply can serve as an answer. The
// service abstains with a non-"local" route tag; an empty answer is equally
// unusable, whatever the cause.
func localUsable(ans LocalAnswer) bool {
	return ans.Route == string(RouteLocal) && strings.TrimSpace(ans.Answer) != ""
}

// #endregion

// #region record

// record journals the outcome. Journal failures are logged, never surfaced.
func (d *Dispatcher) record(requestID string, analysis QueryAnalysis, resp AskResponse, confidence float64, escalated bool, timings Timings) {
	if d.sink == nil {
		return
	}
	rec := DecisionRecord{
		RequestID:        requestID,
		Complexity:       analysis.Complexity,
		Domain:           analysis.Domain,
		Intent:           analysis.Intent,
		RecommendedRoute: analysis.RecommendedRoute,
		FinalRoute:       resp.Route,
		Confidence:       confidence,
		Escalated:        escalated,
		LocalMs:          timings.LocalMs,
		CloudMs:          timings.CloudMs,
		CreatedAt:        time.Now().UTC(),
	}
	if err := d.sink.RecordDecision(rec); err != nil {
		log.Printf("[DISPATCH] failed to journal decision %s: %v", requestID, err)
	}
}

// #endregion
