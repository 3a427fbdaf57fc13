package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewScheduleGeneratedEventStampsIDs(t *testing.T) {
	a := NewScheduleGeneratedEvent(1, 2, 3, "202501")
	b := NewScheduleGeneratedEvent(1, 2, 3, "202501")
	if a.EventID == "" || a.EventID == b.EventID {
		t.Fatalf("expected distinct event ids, got %q and %q", a.EventID, b.EventID)
	}
	if a.GeneratedAt == "" {
		t.Fatalf("expected generated_at to be set")
	}
}

func TestHandleMessageAppendsLine(t *testing.T) {
	dir := t.TempDir()
	ev := NewScheduleGeneratedEvent(7, 8, 9, "202501")
	ev.Sections = []ScheduledCourse{
		{SectionID: 1, CRN: "10001", CourseCode: "CSCI 1300", RequirementLabels: []string{"Intro"}},
		{SectionID: 2, CRN: "10002", CourseCode: "MATH 1510"},
	}
	body, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := handleMessage(dir, body); err != nil {
			t.Fatalf("handle: %v", err)
		}
	}
	data, err := os.ReadFile(filepath.Join(dir, "schedule.log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "sections=[CSCI 1300(10001),MATH 1510(10002)]") {
		t.Fatalf("unexpected line %q", lines[0])
	}
	if !strings.Contains(lines[0], "event_id="+ev.EventID) {
		t.Fatalf("expected event id in line %q", lines[0])
	}
}

func TestHandleMessageRejectsGarbage(t *testing.T) {
	if err := handleMessage(t.TempDir(), []byte("not json")); err == nil {
		t.Fatalf("expected unmarshal error")
	}
}
