package model

import "time"

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// ValidPriority reports whether p is one of the closed priority set.
func ValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

type Task struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Deadline      time.Time `json:"deadline"`
	Priority      string    `json:"priority"`
	Category      string    `json:"category"`
	CategorySlug  string    `json:"category_slug"`
	UserID        string    `json:"user_id"` // Task owner, immutable once set
	Collaborators []string  `json:"collaborators"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// IsOwner reports whether userID owns the task.
func (t *Task) IsOwner(userID string) bool {
	return t.UserID == userID
}

// IsCollaborator reports whether userID appears in the collaborator list.
func (t *Task) IsCollaborator(userID string) bool {
	for _, id := range t.Collaborators {
		if id == userID {
			return true
		}
	}
	return false
}
