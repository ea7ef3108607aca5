package domain

import "time"

// Bucket classifies a task for display.
type Bucket string

const (
	BucketOverdue   Bucket = "overdue"
	BucketCompleted Bucket = "completed"
	BucketNormal    Bucket = "normal"
)

// IsOverdue reports whether the task's due date is strictly before the
// calendar day of now.
func IsOverdue(task Task, now time.Time) bool {
	return task.DueDate != nil && task.DueDate.Before(DateOf(now))
}

// CanComplete reports whether the user may toggle the task's completion.
// Only an overdue, incomplete task is locked.
func CanComplete(task Task, now time.Time) bool {
	return !(IsOverdue(task, now) && !task.Completed)
}

// PresentationBucket returns the display bucket. Overdue styling applies only
// while the task is incomplete.
func PresentationBucket(task Task, now time.Time) Bucket {
	if task.Completed {
		return BucketCompleted
	}
	if IsOverdue(task, now) {
		return BucketOverdue
	}
	return BucketNormal
}
