package scheduling

import (
	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/model"
)

// MaxScheduleSections bounds the number of sections in a schedule.
const MaxScheduleSections = 6

// ScheduledSection is a chosen section and the requirement labels it was
// chosen for.
type ScheduledSection struct {
	Section           model.Section
	RequirementLabels []string
}

// Schedule is the selector's result.  Entries are in pick order and never
// overlap in time or repeat a course.
type Schedule struct {
	Entries []ScheduledSection
}

// Sections returns the chosen sections in pick order.
func (s Schedule) Sections() []model.Section {
	out := make([]model.Section, len(s.Entries))
	for i, e := range s.Entries {
		out[i] = e.Section
	}
	return out
}

// NeedRemaining returns, per requirement label, how many more courses the
// requirement needs beyond those already taken.
func NeedRemaining(requirements []model.DegreeRequirement, taken []model.Course) map[string]int {
	need := make(map[string]int, len(requirements))
	for _, req := range requirements {
		need[req.Label] = max(0, req.Needed-req.CountSatisfying(taken))
	}
	return need
}

// SelectSchedule picks up to limit sections from ranked.  Each round
// re-scores every compatible candidate by the number of its labels that are
// still needed and takes the first candidate with the highest count.
// Selection stops early when no candidate covers a needed label.  need is
// not modified.  A limit of zero or less means MaxScheduleSections.
func SelectSchedule(ranked []RankedSection, need map[string]int, limit int) Schedule {
	if limit <= 0 {
		limit = MaxScheduleSections
	}
	remaining := make(map[string]int, len(need))
	for k, v := range need {
		remaining[k] = v
	}

	var sched Schedule
	used := make(map[model.CourseCode]bool)
	for round := 0; round < limit; round++ {
		best := -1
		bestScore := 0
		for i, cand := range ranked {
			if used[cand.Code] || conflicts(sched, cand.Section) {
				continue
			}
			score := 0
			for _, label := range cand.Fulfills {
				if remaining[label] > 0 {
					score++
				}
			}
			if score > bestScore {
				best, bestScore = i, score
			}
		}
		if best < 0 {
			break
		}

		pick := ranked[best]
		var labels []string
		for _, label := range pick.Fulfills {
			if remaining[label] > 0 {
				remaining[label]--
				labels = append(labels, label)
			}
		}
		sched.Entries = append(sched.Entries, ScheduledSection{Section: pick.Section, RequirementLabels: labels})
		used[pick.Code] = true
	}
	return sched
}

func conflicts(sched Schedule, sec model.Section) bool {
	for _, e := range sched.Entries {
		if e.Section.Overlaps(sec) {
			return true
		}
	}
	return false
}
