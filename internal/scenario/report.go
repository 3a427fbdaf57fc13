package scenario

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/model"
	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/scheduling"
)

// WriteRanking prints the ranked candidates as a table.
func WriteRanking(w io.Writer, ranked []scheduling.RankedSection) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "CRN", "Course", "Score", "Fulfills", "Meetings"})
	for i, r := range ranked {
		table.Append([]string{
			fmt.Sprintf("%d", i+1),
			r.Section.CRN,
			r.Code.String(),
			fmt.Sprintf("%.2f", r.Score),
			strings.Join(r.Fulfills, ", "),
			formatMeetings(r.Section.MeetingTimes),
		})
	}
	table.Render()
}

// WriteSchedule prints the chosen sections and the requirement labels each
// one counts toward.
func WriteSchedule(w io.Writer, sched scheduling.Schedule) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"CRN", "Course", "Instructors", "Meetings", "Requirements"})
	for _, e := range sched.Entries {
		table.Append([]string{
			e.Section.CRN,
			e.Section.CourseCode,
			strings.Join(e.Section.InstructorNames, ", "),
			formatMeetings(e.Section.MeetingTimes),
			strings.Join(e.RequirementLabels, ", "),
		})
	}
	table.Render()
}

// WriteRequirements prints how many more courses each requirement needs.
func WriteRequirements(w io.Writer, reqs []model.DegreeRequirement, need map[string]int) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Requirement", "Needed", "Remaining"})
	for _, r := range reqs {
		table.Append([]string{r.Label, fmt.Sprintf("%d", r.Needed), fmt.Sprintf("%d", need[r.Label])})
	}
	table.Render()
}

// Day 0 is Monday.
var dayNames = [...]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

func formatMeetings(mts []model.MeetingTime) string {
	parts := make([]string, 0, len(mts))
	for _, m := range mts {
		day := fmt.Sprintf("D%d", m.Day)
		if m.Day >= 0 && m.Day < len(dayNames) {
			day = dayNames[m.Day]
		}
		parts = append(parts, fmt.Sprintf("%s %s-%s", day, m.StartTime, m.EndTime))
	}
	return strings.Join(parts, "; ")
}
