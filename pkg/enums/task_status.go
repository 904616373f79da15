package enums

import "fmt"

// TaskStatus maps to the task_status enum in Postgres. Statuses form a linear
// board order: todo, in_progress, done.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

// TaskStatusOrder is the canonical board column order.
var TaskStatusOrder = []TaskStatus{
	TaskStatusTodo,
	TaskStatusInProgress,
	TaskStatusDone,
}

// String implements fmt.Stringer.
func (t TaskStatus) String() string {
	return string(t)
}

// IsValid reports whether the value matches the canonical task_status enum.
func (t TaskStatus) IsValid() bool {
	return t.Index() >= 0
}

// Index returns the position of the status in the board order, or -1.
func (t TaskStatus) Index() int {
	for i, candidate := range TaskStatusOrder {
		if candidate == t {
			return i
		}
	}
	return -1
}

// ParseTaskStatus converts raw input into TaskStatus.
func ParseTaskStatus(value string) (TaskStatus, error) {
	for _, candidate := range TaskStatusOrder {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid task status %q", value)
}
