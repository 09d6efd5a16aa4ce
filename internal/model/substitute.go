package model

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type SubStatus string

const (
	SubStatusPending  SubStatus = "pending"
	SubStatusAccepted SubStatus = "accepted"
	SubStatusApproved SubStatus = "approved" // terminal
	SubStatusRejected SubStatus = "rejected" // terminal
)

// allowedTransitions is the full workflow. Anything not listed is invalid.
var allowedTransitions = map[SubStatus][]SubStatus{
	SubStatusPending:  {SubStatusAccepted, SubStatusRejected},
	SubStatusAccepted: {SubStatusApproved},
}

// InvalidTransitionError marks an attempted workflow move outside the
// transition table.
type InvalidTransitionError struct {
	From, To SubStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid substitute request transition: %s -> %s", e.From, e.To)
}

// CanTransition reports whether moving from s to next is allowed.
func (s SubStatus) CanTransition(next SubStatus) bool {
	for _, t := range allowedTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Transition validates the move from s to next, returning an
// *InvalidTransitionError when the table does not allow it.
func (s SubStatus) Transition(next SubStatus) (SubStatus, error) {
	if !s.CanTransition(next) {
		return s, &InvalidTransitionError{From: s, To: next}
	}
	return next, nil
}

// SubstituteRequest tracks the handoff of one shift from its owner to a
// volunteer substitute, pending administrator approval. Requests are an
// append-only audit trail; they are never deleted.
//
// Recruiting authorization is a separate flag rather than a status value:
// the administrator opening a request for recruiting does not advance the
// workflow, it only makes the request visible to other staff.
type SubstituteRequest struct {
	ID                bson.ObjectID  `bson:"_id,omitempty" json:"id"`
	Schedule          bson.ObjectID  `bson:"schedule" json:"scheduleId"`
	Requester         bson.ObjectID  `bson:"requester" json:"requesterId"`
	Substitute        *bson.ObjectID `bson:"substitute,omitempty" json:"substituteId,omitempty"`
	Reason            string         `bson:"reason" json:"reason"`
	Status            SubStatus      `bson:"status" json:"status"`
	OpenForRecruiting bool           `bson:"open_for_recruiting" json:"openForRecruiting"`
	CreatedAt         time.Time      `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time      `bson:"updated_at" json:"updated_at"`
}
