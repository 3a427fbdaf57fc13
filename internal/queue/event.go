// Package queue defines message payloads exchanged over the message broker,
// the publisher that sends them and the consumer that logs them.
package queue

import (
	"time"

	"github.com/google/uuid"
)

// ScheduleQueueName is the durable queue schedule events travel on.
const ScheduleQueueName = "schedule.generated"

// ScheduledCourse is one entry of a generated schedule.
type ScheduledCourse struct {
	SectionID         int64    `json:"section_id"`
	CRN               string   `json:"crn"`
	CourseCode        string   `json:"course_code"`
	RequirementLabels []string `json:"requirement_labels"`
}

// ScheduleGeneratedEvent is published after a schedule has been generated
// for a student. It carries enough for downstream consumers to log or
// analyse the recommendation without querying the primary database.
type ScheduleGeneratedEvent struct {
	EventID             string            `json:"event_id"`
	UserID              int64             `json:"user_id"`
	StudentID           int64             `json:"student_id"`
	DegreeID            int64             `json:"degree_id"`
	Semester            string            `json:"semester"`
	Sections            []ScheduledCourse `json:"sections"`
	DiscardedSectionIDs []int64           `json:"discarded_section_ids"`
	GeneratedAt         string            `json:"generated_at"`
}

// NewScheduleGeneratedEvent stamps a fresh event id and the current time.
func NewScheduleGeneratedEvent(userID, studentID, degreeID int64, semester string) ScheduleGeneratedEvent {
	return ScheduleGeneratedEvent{
		EventID:     uuid.NewString(),
		UserID:      userID,
		StudentID:   studentID,
		DegreeID:    degreeID,
		Semester:    semester,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
}
