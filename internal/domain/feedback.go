package domain

import (
	"fmt"
	"math"
)

// FeedbackThresholdKg is the weight change below which a day counts as stable.
const FeedbackThresholdKg = 0.5

// deltaTolerance absorbs float noise such as 71.1-70.6 = 0.50000000000001.
const deltaTolerance = 1e-9

// OutcomeKind tags the write performed by an upsert.
type OutcomeKind string

const (
	OutcomeAdd    OutcomeKind = "add"
	OutcomeUpdate OutcomeKind = "update"
)

// FeedbackKind classifies a weight change for the caller.
type FeedbackKind string

const (
	FeedbackNeutral FeedbackKind = "neutral"
	FeedbackPraise  FeedbackKind = "praise"
	FeedbackMockery FeedbackKind = "mockery"
)

// Feedback is the user-facing reaction to a submission.
type Feedback struct {
	Kind    FeedbackKind `json:"kind"`
	Message string       `json:"message"`
}

// UpsertOutcome is the result of recording a weight.
//
// Previous is the latest record before the submission's calendar day and
// Delta is Record.Weight - Previous.Weight rounded with Round1 for display;
// both are nil for a user's first record. Feedback is classified on the
// unrounded difference.
type UpsertOutcome struct {
	Kind     OutcomeKind   `json:"kind"`
	ID       string        `json:"id"`
	Record   WeightRecord  `json:"record"`
	Previous *WeightRecord `json:"previous"`
	Delta    *float64      `json:"delta"`
	Feedback Feedback      `json:"feedback"`
}

// ClassifyFeedback derives feedback from the outcome kind and the unrounded
// delta against the previous record.
//
// A same-day overwrite is always neutral. The first record is praised.
// Otherwise a gain above the threshold is mocked, a loss below the negated
// threshold is praised, and anything in between is stable.
func ClassifyFeedback(kind OutcomeKind, delta *float64) Feedback {
	if kind == OutcomeUpdate {
		return Feedback{Kind: FeedbackNeutral, Message: "Today's record has been updated! 🐾"}
	}
	if delta == nil {
		return Feedback{Kind: FeedbackPraise, Message: "First record! Your meow-health journey starts now. 🚀"}
	}
	d := *delta
	switch {
	case d > FeedbackThresholdKg+deltaTolerance:
		return Feedback{Kind: FeedbackMockery, Message: fmt.Sprintf("Oops, up %.1fkg again! Sneaking bubble tea? 🧋", d)}
	case d < -FeedbackThresholdKg-deltaTolerance:
		return Feedback{Kind: FeedbackPraise, Message: fmt.Sprintf("Wow! Down %.1fkg! You're the best kitty! ✨", math.Abs(d))}
	default:
		return Feedback{Kind: FeedbackNeutral, Message: "Weight is steady, keep it up! 🐾"}
	}
}
