package eights

import (
	"errors"
	"fmt"
)

type RejectionReason string

const (
	NotYourTurn   RejectionReason = "NOT_YOUR_TURN"
	WrongPhase    RejectionReason = "WRONG_PHASE"
	CardNotInHand RejectionReason = "CARD_NOT_IN_HAND"
	IllegalCard   RejectionReason = "ILLEGAL_CARD"
	DrawPileEmpty RejectionReason = "DRAW_PILE_EMPTY"
)

// Rejection reports a refused operation. Callers branch on Reason rather
// than parsing the message. A rejected operation leaves the game unchanged,
// with one documented exception: a DrawPileEmpty rejection is a forced pass
// and flips the turn.
type Rejection struct {
	Reason  RejectionReason
	Message string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %s", r.Reason, r.Message)
}

func reject(reason RejectionReason, format string, args ...any) *Rejection {
	return &Rejection{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// ReasonOf extracts the rejection reason from an error returned by a game
// operation, or "" if the error is not a Rejection.
func ReasonOf(err error) RejectionReason {
	var r *Rejection
	if errors.As(err, &r) {
		return r.Reason
	}
	return ""
}
