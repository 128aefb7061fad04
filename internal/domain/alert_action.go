package domain

import "time"

// ActionType alert_actions.action
type ActionType string

const (
	ActionApprove ActionType = "approve"
	ActionReject  ActionType = "reject"
	ActionResolve ActionType = "resolve"
	ActionComment ActionType = "comment"
)

func (a ActionType) Valid() bool {
	switch a {
	case ActionApprove, ActionReject, ActionResolve, ActionComment:
		return true
	}
	return false
}

// TargetStatus is the status an action drives the alert to.
// ok is false for comment, which leaves status and handled_by untouched.
func (a ActionType) TargetStatus() (status AlertStatus, ok bool) {
	switch a {
	case ActionApprove:
		return AlertStatusConfirmed, true
	case ActionReject:
		return AlertStatusRejected, true
	case ActionResolve:
		return AlertStatusResolved, true
	}
	return "", false
}

// AlertAction alert_actions table (append-only)
type AlertAction struct {
	ActionID  string     `db:"action_id"`
	AlertID   string     `db:"alert_id"`
	UserID    string     `db:"user_id"`
	Action    ActionType `db:"action"`
	Comment   *string    `db:"comment"`
	CreatedAt time.Time  `db:"created_at"`

	UserEmail string `db:"-"` // joined from users
}
