package api

import (
	"time"

	"todo-sync/internal/domain"
)

// PresentedTask is a task with the rule outcomes a list row needs.
type PresentedTask struct {
	Task        domain.Task
	Bucket      domain.Bucket
	Overdue     bool
	CanComplete bool
}

// Present evaluates the task rules for one task at now.
func Present(task domain.Task, now time.Time) PresentedTask {
	return PresentedTask{
		Task:        task,
		Bucket:      domain.PresentationBucket(task, now),
		Overdue:     domain.IsOverdue(task, now),
		CanComplete: domain.CanComplete(task, now),
	}
}

// PresentAll presents a list in order.
func PresentAll(tasks []*domain.Task, now time.Time) []PresentedTask {
	out := make([]PresentedTask, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, Present(*t, now))
	}
	return out
}
