package task

import (
	"github.com/NathanEdg/pulse/internal/calendar"
)

// Task is a scheduled unit of work on the timeline.
type Task struct {
	ID          string         `json:"id" yaml:"id"`
	Title       string         `json:"title" yaml:"title"`
	StartDate   *calendar.Date `json:"start_date" yaml:"start_date"`
	DueDate     *calendar.Date `json:"due_date" yaml:"due_date"`
	Status      string         `json:"status,omitempty" yaml:"status,omitempty"`
	Priority    string         `json:"priority,omitempty" yaml:"priority,omitempty"`
	AssigneeIDs []string       `json:"assignees_ids,omitempty" yaml:"assignees_ids,omitempty"`
	DependsOn   []string       `json:"depends_on,omitempty" yaml:"depends_on,omitempty"` // predecessor ids
}

// Cycle is a date-ranged sprint marker rendered behind the bars.
type Cycle struct {
	ID        string        `json:"id" yaml:"id"`
	Number    int           `json:"number" yaml:"number"`
	StartDate calendar.Date `json:"start_date" yaml:"start_date"`
	EndDate   calendar.Date `json:"end_date" yaml:"end_date"`
}
