package domain

import "time"

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskReview     TaskStatus = "review"
	TaskDone       TaskStatus = "done"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskReview, TaskDone:
		return true
	}
	return false
}

// CMS is the platform a client's site runs on.
type CMS string

const (
	CMSNone      CMS = "none"
	CMSWordPress CMS = "wordpress"
	CMSShopify   CMS = "shopify"
	CMSWebflow   CMS = "webflow"
	CMSWix       CMS = "wix"
	CMSCustom    CMS = "custom"
)

func (c CMS) Valid() bool {
	switch c {
	case CMSNone, CMSWordPress, CMSShopify, CMSWebflow, CMSWix, CMSCustom:
		return true
	}
	return false
}

// Task is a unit of work, optionally tied to a client.
//
// AssignedTo and CreatedBy hold usernames as plain strings; they are not
// checked against the users collection.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Completed   bool       `json:"completed"`
	Priority    Priority   `json:"priority"`
	Status      TaskStatus `json:"status"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CMS         CMS        `json:"cms,omitempty"`
	WebsiteURL  string     `json:"websiteUrl,omitempty"`
	StagingURL  string     `json:"stagingUrl,omitempty"`
	Price       float64    `json:"price,omitempty"`
	Currency    string     `json:"currency,omitempty"`
	IsPaid      bool       `json:"isPaid"`
	ClientID    string     `json:"clientId,omitempty"`
	Group       string     `json:"group,omitempty"`
	AssignedTo  string     `json:"assignedTo,omitempty"`
	CreatedBy   string     `json:"createdBy,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Normalize fills defaults and keeps Completed and Status consistent.
func (t *Task) Normalize() {
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if t.Status == "" {
		t.Status = TaskTodo
		if t.Completed {
			t.Status = TaskDone
		}
	}
	if t.CMS == "" {
		t.CMS = CMSNone
	}
	t.Completed = t.Status == TaskDone
}

// TaskFilter narrows task listings. Zero values do not filter.
type TaskFilter struct {
	Status     TaskStatus
	AssignedTo string
	ClientID   string
	Completed  *bool
}
