package model

import (
	"time"

	"github.com/google/uuid"
)

// ActionStatus is the lifecycle state of an executed action.
type ActionStatus string

const (
	ActionPending   ActionStatus = "pending"
	ActionCompleted ActionStatus = "completed"
	ActionFailed    ActionStatus = "failed"
)

// ActionID is the unique identifier of an action log entry.
type ActionID string

// NewActionID generates a new random action ID.
func NewActionID() ActionID {
	return ActionID(uuid.New().String())
}

// ActionLog is the audit record of one action attempt. A row is written with
// ActionPending before any side effect runs and updated to a terminal status
// afterwards.
type ActionLog struct {
	ID         ActionID       `json:"action_id"`
	UserID     string         `json:"user_id"`
	ActionType string         `json:"action_type"`
	Parameters map[string]any `json:"parameters"`
	Status     ActionStatus   `json:"status"`
	Result     map[string]any `json:"result,omitempty"`
	Error      string         `json:"error,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// Contact is a CRM contact record.
type Contact struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CompanyID int64     `json:"company_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Company is a CRM company record.
type Company struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	USDOT     string    `json:"usdot_number,omitempty"`
	Phone     string    `json:"phone"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"created_at"`
}

// Deal is a CRM deal record.
type Deal struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Value     float64   `json:"value"`
	Stage     string    `json:"stage"`
	CompanyID int64     `json:"company_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
