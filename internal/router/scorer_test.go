package router

import (
	"strings"
	"testing"
)

func TestScore_EmptyAnswer(t *testing.T) {
	got := Score("what is a server", CandidateAnswer{Route: RouteLocal, Text: "   "}, 0.6)
	if got.Overall != 0 {
		t.Errorf("overall: got %.2f, want 0", got.Overall)
	}
	if !got.ShouldEscalate {
		t.Error("empty answer must escalate")
	}
}

func TestScore_HedgingCapsConfidence(t *testing.T) {
	// Long, on-topic, cited answer that still hedges.
	answer := "I don't know the full history of the telephone network, but the telephone " +
		"system grew from early telegraph infrastructure over several decades and " +
		"expanded rapidly once switching exchanges became common in large cities."
	got := Score("history of the telephone network",
		CandidateAnswer{Route: RouteLocal, Text: answer, Context: []ContextItem{{Index: 1}}}, 0.6)
	if got.Overall > hedgingCap {
		t.Errorf("overall: got %.2f, want <= %.2f", got.Overall, hedgingCap)
	}
	if !got.ShouldEscalate {
		t.Error("hedged answer must escalate at threshold 0.6")
	}
	if !strings.Contains(got.Reasoning, "hedging") {
		t.Errorf("reasoning should mention hedging: %q", got.Reasoning)
	}
}

func TestScore_MissingCitationsPenalizesLocal(t *testing.T) {
	answer := "Alexander Graham Bell invented the telephone in 1876 and patented the " +
		"design shortly afterwards, narrowly beating a rival filing the same day."
	query := "who invented the telephone"

	cited := Score(query, CandidateAnswer{
		Route: RouteLocal, Text: answer, Context: []ContextItem{{Index: 1, DocID: "d1"}},
	}, 0.7)
	uncited := Score(query, CandidateAnswer{Route: RouteLocal, Text: answer}, 0.7)

	if uncited.Overall >= cited.Overall {
		t.Errorf("uncited %.2f should score below cited %.2f", uncited.Overall, cited.Overall)
	}
	if cited.ShouldEscalate {
		t.Errorf("cited on-topic answer should clear 0.7 (got %.2f)", cited.Overall)
	}
}

func TestScore_CloudAnswersNeedNoCitations(t *testing.T) {
	answer := "Alexander Graham Bell invented the telephone in 1876 and patented the " +
		"design shortly afterwards, narrowly beating a rival filing the same day."
	got := Score("who invented the telephone", CandidateAnswer{Route: RouteCloud, Text: answer}, 0.6)
	if got.ShouldEscalate {
		t.Errorf("on-topic cloud answer should clear 0.6 (got %.2f)", got.Overall)
	}
}

// The contract the dispatcher relies on: escalate exactly when the score is
// below the threshold.
func TestScore_EscalationContract(t *testing.T) {
	cases := []struct {
		name      string
		answer    CandidateAnswer
		threshold float64
	}{
		{"good-local", CandidateAnswer{
			Route: RouteLocal,
			Text: "Alexander Graham Bell invented the telephone in 1876 and patented " +
				"the design shortly afterwards, narrowly beating a rival filing.",
			Context: []ContextItem{{Index: 1}},
		}, 0.7},
		{"hedged", CandidateAnswer{Route: RouteLocal, Text: "I don't know."}, 0.6},
		{"off-topic", CandidateAnswer{Route: RouteCloud, Text: "Bananas are yellow."}, 0.75},
		{"uncited-local", CandidateAnswer{
			Route: RouteLocal,
			Text:  "The telephone was invented by Alexander Graham Bell in 1876.",
		}, 0.6},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			got := Score("who invented the telephone", tt.answer, tt.threshold)
			if got.Overall < 0 || got.Overall > 1 {
				t.Fatalf("overall %.2f out of range", got.Overall)
			}
			if got.ShouldEscalate != (got.Overall < tt.threshold) {
				t.Errorf("shouldEscalate=%v but overall=%.2f threshold=%.2f",
					got.ShouldEscalate, got.Overall, tt.threshold)
			}
		})
	}
}

func TestScore_Deterministic(t *testing.T) {
	ans := CandidateAnswer{Route: RouteLocal, Text: "The capital of France is Paris.", Context: []ContextItem{{Index: 1}}}
	a := Score("what is the capital of france", ans, 0.6)
	b := Score("what is the capital of france", ans, 0.6)
	if a != b {
		t.Errorf("scores differ: %+v vs %+v", a, b)
	}
}
