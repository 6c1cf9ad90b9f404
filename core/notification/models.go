package notification

import "time"

// Event is an immutable in-app notification record. Only the read flag may
// change after creation, and only by the recipient.
type Event struct {
	ID        string    `json:"id"`
	MemberID  int       `json:"member_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// Recipient identifies who a notification is addressed to. It carries just
// enough of the member to render and deliver a message.
type Recipient struct {
	ID       int
	Username string
	Email    string
}

// DispatchResult reports the outcome of a delivery attempt. Failures are
// informational only; they never propagate to the caller's state transition.
type DispatchResult int

const (
	// DispatchDelivered: message handed to the email channel successfully.
	DispatchDelivered DispatchResult = iota
	// DispatchFailed: the email channel errored; the in-app event may still
	// have been recorded.
	DispatchFailed
)

func (r DispatchResult) Failed() bool { return r == DispatchFailed }

func (r DispatchResult) String() string {
	if r == DispatchDelivered {
		return "delivered"
	}
	return "failed"
}
