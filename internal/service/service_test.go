package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/model"
	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/queue"
	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/repository"
)

type fakeCatalog struct {
	courses     []model.Course
	attrs       []model.CourseAttribute
	sections    map[string][]model.Section
	degrees     map[int64]model.Degree
	instructors []model.Instructor
	ratings     []model.Rating
}

type courseStore struct{ f *fakeCatalog }

func (s courseStore) GetAll(context.Context) ([]model.Course, error) {
	return append([]model.Course(nil), s.f.courses...), nil
}

func (s courseStore) GetByID(_ context.Context, id int64) (model.Course, error) {
	for _, c := range s.f.courses {
		if c.ID == id {
			return c, nil
		}
	}
	return model.Course{}, repository.ErrNotFound
}

type attrStore struct{ f *fakeCatalog }

func (s attrStore) GetAll(context.Context) ([]model.CourseAttribute, error) { return s.f.attrs, nil }

type sectionStore struct{ f *fakeCatalog }

func (s sectionStore) GetAllForSemester(_ context.Context, sem string) ([]model.Section, error) {
	return s.f.sections[sem], nil
}

type degreeStore struct{ f *fakeCatalog }

func (s degreeStore) GetByID(_ context.Context, id int64) (model.Degree, error) {
	d, ok := s.f.degrees[id]
	if !ok {
		return model.Degree{}, repository.ErrNotFound
	}
	return d, nil
}

type instructorStore struct{ f *fakeCatalog }

func (s instructorStore) GetAll(context.Context) ([]model.Instructor, error) { return s.f.instructors, nil }

type ratingStore struct{ f *fakeCatalog }

func (s ratingStore) GetAll(context.Context) ([]model.Rating, error) { return s.f.ratings, nil }

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.ScheduleGeneratedEvent
	done   chan struct{}
}

func (p *recordingPublisher) PublishScheduleGenerated(_ context.Context, ev queue.ScheduleGeneratedEvent) error {
	p.mu.Lock()
	p.events = append(p.events, ev)
	p.mu.Unlock()
	close(p.done)
	return nil
}

func newScheduleService(f *fakeCatalog, events EventPublisher) *ScheduleService {
	return &ScheduleService{
		Courses:     courseStore{f},
		Attributes:  attrStore{f},
		Sections:    sectionStore{f},
		Degrees:     degreeStore{f},
		Instructors: instructorStore{f},
		Ratings:     ratingStore{f},
		Events:      events,
		Settings: ScheduleSettings{
			Campus:          "Main",
			DefaultSemester: "202501",
			Equivalencies:   [][]model.CourseCode{{{MajorCode: "CORE", CourseNumber: "1900"}, {MajorCode: "ENGL", CourseNumber: "1900"}}},
		},
	}
}

func sampleCatalog() *fakeCatalog {
	wi := model.CourseAttribute{ID: 5, Name: "Writing Intensive", DegreeWorksLabel: "WI"}
	intro := model.Course{ID: 1, CourseCode: model.CourseCode{MajorCode: "CSCI", CourseNumber: "1300"}}
	ds := model.Course{ID: 2, CourseCode: model.CourseCode{MajorCode: "CSCI", CourseNumber: "2100"},
		Prerequisites: &model.PrerequisiteLeaf{MajorCode: "CSCI", CourseNumber: "1300"}}
	writing := model.Course{ID: 3, CourseCode: model.CourseCode{MajorCode: "ENGL", CourseNumber: "1900"}, AttributeIDs: []int64{5}}
	music := model.Course{ID: 4, CourseCode: model.CourseCode{MajorCode: "MUSC", CourseNumber: "1100"}}
	rating := 4.0
	return &fakeCatalog{
		courses: []model.Course{intro, ds, writing, music},
		attrs:   []model.CourseAttribute{wi},
		sections: map[string][]model.Section{
			"202501": {
				{ID: 10, CRN: "100", CourseCode: "CSCI 2100", CampusCode: "Main", InstructorNames: []string{"Ada Lovelace"},
					MeetingTimes: []model.MeetingTime{{Day: 1, StartTime: "0900", EndTime: "0950"}}},
				{ID: 11, CRN: "101", CourseCode: "ENGL 1900", CampusCode: "Main",
					MeetingTimes: []model.MeetingTime{{Day: 2, StartTime: "0900", EndTime: "0950"}}},
				{ID: 12, CRN: "102", CourseCode: "ENGL 1900", CampusCode: "Madrid",
					MeetingTimes: []model.MeetingTime{{Day: 3, StartTime: "0900", EndTime: "0950"}}},
				{ID: 13, CRN: "103", CourseCode: "MUSC 1100", CampusCode: "Main",
					MeetingTimes: []model.MeetingTime{{Day: 4, StartTime: "0900", EndTime: "0950"}}},
			},
		},
		degrees: map[int64]model.Degree{
			1: {ID: 1, Name: "CS", PrimaryMajorCode: "CSCI", Requirements: []model.DegreeRequirement{
				{Label: "Core CS", Needed: 2, Rule: model.CourseRule{Matchers: []model.CourseRuleMatcher{
					model.NumberRange{MajorCode: "CSCI", Start: "1000", End: "2999"},
				}}},
				{Label: "Writing", Needed: 1, Rule: model.CourseRule{Matchers: []model.CourseRuleMatcher{
					model.HasAttribute{AttributeNames: []string{"WI"}},
				}}},
			}},
		},
		instructors: []model.Instructor{{ID: 1, Name: "Ada Lovelace", RMPRating: &rating}},
	}
}

func TestGenerateBuildsScheduleAndPublishes(t *testing.T) {
	f := sampleCatalog()
	pub := &recordingPublisher{done: make(chan struct{})}
	svc := newScheduleService(f, pub)
	student := model.Student{ID: 3, DegreeID: 1, CompletedCourseIDs: []int64{1}, DesiredCourseIDs: []int64{4}}

	res, err := svc.Generate(context.Background(), GenerateParams{UserID: 9, Student: student, DiscardedSectionIDs: []int64{}})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	got := map[string][]string{}
	for _, e := range res.Schedule.Entries {
		got[e.Section.CRN] = e.RequirementLabels
	}
	if len(got) != 3 {
		t.Fatalf("expected CSCI 2100, ENGL 1900 and MUSC 1100, got %v", got)
	}
	if _, ok := got["102"]; ok {
		t.Fatalf("off-campus section must not be scheduled")
	}
	if labels := got["103"]; len(labels) != 1 || labels[0] != "Desired: MUSC 1100" {
		t.Fatalf("expected desired label on MUSC 1100, got %v", labels)
	}

	select {
	case <-pub.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("event was not published")
	}
	pub.mu.Lock()
	defer pub.mu.Unlock()
	ev := pub.events[0]
	if ev.UserID != 9 || ev.StudentID != 3 || ev.Semester != "202501" || len(ev.Sections) != 3 {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestGenerateDiscardedSections(t *testing.T) {
	svc := newScheduleService(sampleCatalog(), nil)
	student := model.Student{ID: 3, DegreeID: 1, CompletedCourseIDs: []int64{1}}
	res, err := svc.Generate(context.Background(), GenerateParams{Student: student, DiscardedSectionIDs: []int64{10}})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for _, e := range res.Schedule.Entries {
		if e.Section.ID == 10 {
			t.Fatalf("discarded section was scheduled")
		}
	}
}

func TestGenerateMissingDegree(t *testing.T) {
	svc := newScheduleService(sampleCatalog(), nil)
	_, err := svc.Generate(context.Background(), GenerateParams{Student: model.Student{DegreeID: 99}})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected wrapped ErrNotFound, got %v", err)
	}
}

func TestRequirementsResolvesAttributes(t *testing.T) {
	svc := newScheduleService(sampleCatalog(), nil)
	reqs, err := svc.Requirements(context.Background(), model.Student{DegreeID: 1, DesiredCourseIDs: []int64{4}})
	if err != nil {
		t.Fatalf("requirements: %v", err)
	}
	if len(reqs) != 3 {
		t.Fatalf("expected 3 requirements, got %d", len(reqs))
	}
	writing := reqs[1]
	if writing.Requirement.Label != "Writing" || len(writing.Courses) != 1 || writing.Courses[0].ID != 3 {
		t.Fatalf("expected ENGL 1900 through its attribute, got %+v", writing)
	}
	if reqs[2].Requirement.Label != "Desired: MUSC 1100" {
		t.Fatalf("unexpected desired requirement %+v", reqs[2].Requirement)
	}
}

type memUsers struct{ users map[int64]model.User }

func (m *memUsers) GetByID(_ context.Context, id int64) (model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) LinkStudent(_ context.Context, userID, studentID int64) error {
	u := m.users[userID]
	u.StudentID = &studentID
	m.users[userID] = u
	return nil
}

type memStudents struct {
	next     int64
	students map[int64]model.Student
}

func (m *memStudents) GetByID(_ context.Context, id int64) (model.Student, error) {
	s, ok := m.students[id]
	if !ok {
		return model.Student{}, repository.ErrNotFound
	}
	return s, nil
}

func (m *memStudents) Save(_ context.Context, s *model.Student) error {
	if s.ID == 0 {
		m.next++
		s.ID = m.next
	}
	m.students[s.ID] = *s
	return nil
}

func TestStudentServiceProfileLifecycle(t *testing.T) {
	ctx := context.Background()
	users := &memUsers{users: map[int64]model.User{1: {ID: 1, Email: "a@slu.edu"}}}
	students := &memStudents{students: map[int64]model.Student{}}
	svc := &StudentService{Users: users, Students: students}

	if _, err := svc.ForUser(ctx, 1); !errors.Is(err, ErrNoStudentProfile) {
		t.Fatalf("expected ErrNoStudentProfile, got %v", err)
	}
	created, err := svc.SaveProfile(ctx, 1, model.Student{ID: 55, Name: "Billy", DegreeID: 1})
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	if created.ID != 1 {
		t.Fatalf("expected generated id 1, got %d", created.ID)
	}
	updated, err := svc.SaveProfile(ctx, 1, model.Student{Name: "Billy", DegreeID: 2})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.ID != created.ID {
		t.Fatalf("expected update in place, got id %d", updated.ID)
	}
	got, err := svc.ForUser(ctx, 1)
	if err != nil {
		t.Fatalf("for user: %v", err)
	}
	if got.DegreeID != 2 {
		t.Fatalf("expected updated degree, got %d", got.DegreeID)
	}
}

func TestDesiredCourseEdits(t *testing.T) {
	ctx := context.Background()
	students := &memStudents{students: map[int64]model.Student{}}
	svc := &StudentService{Students: students, Courses: courseStore{sampleCatalog()}}
	st := model.Student{Name: "Billy", DesiredCourseIDs: []int64{1}}
	if err := students.Save(ctx, &st); err != nil {
		t.Fatalf("save: %v", err)
	}

	if _, err := svc.AddDesiredCourse(ctx, st, 99); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	added, err := svc.AddDesiredCourse(ctx, st, 4)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(added.DesiredCourseIDs) != 2 || added.DesiredCourseIDs[1] != 4 || len(st.DesiredCourseIDs) != 1 {
		t.Fatalf("added = %v, original = %v", added.DesiredCourseIDs, st.DesiredCourseIDs)
	}
	again, err := svc.AddDesiredCourse(ctx, added, 4)
	if err != nil || len(again.DesiredCourseIDs) != 2 {
		t.Fatalf("adding twice: %v, %v", again.DesiredCourseIDs, err)
	}

	removed, err := svc.RemoveDesiredCourse(ctx, again, 1)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(removed.DesiredCourseIDs) != 1 || removed.DesiredCourseIDs[0] != 4 || len(again.DesiredCourseIDs) != 2 {
		t.Fatalf("removed = %v, previous = %v", removed.DesiredCourseIDs, again.DesiredCourseIDs)
	}
	if stored := students.students[st.ID]; len(stored.DesiredCourseIDs) != 1 {
		t.Fatalf("stored = %v", stored.DesiredCourseIDs)
	}
	if same, err := svc.RemoveDesiredCourse(ctx, removed, 1); err != nil || len(same.DesiredCourseIDs) != 1 {
		t.Fatalf("removing a missing course: %v, %v", same.DesiredCourseIDs, err)
	}
}

func TestListRatingsJoinsNames(t *testing.T) {
	f := sampleCatalog()
	f.instructors = append(f.instructors, model.Instructor{ID: 2, Name: "Grace Hopper"})
	one, two, courseID := int64(1), int64(2), int64(3)
	f.ratings = []model.Rating{
		{ID: 10, InstructorID: &two, CourseID: &courseID, StudentID: 7, Value: 5, Description: "great"},
		{ID: 11, InstructorID: &one, StudentID: 8, Value: 2},
	}
	svc := newScheduleService(f, nil)

	all, err := svc.ListRatings(context.Background(), RatingFilter{ViewerStudentID: 7})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("want two student ratings and one site rating, got %+v", all)
	}
	if *all[0].ID != 10 || !all[0].CanEdit || all[0].InstructorName != "Grace Hopper" || all[0].CourseCode != "ENGL 1900" {
		t.Fatalf("first = %+v", all[0])
	}
	if all[1].CanEdit || all[1].CourseCode != "" {
		t.Fatalf("second = %+v", all[1])
	}
	if !all[2].IsRMPRating || all[2].Rating != 4 || all[2].Description != "RateMyProfessor rating" {
		t.Fatalf("site = %+v", all[2])
	}

	grace, err := svc.ListRatings(context.Background(), RatingFilter{InstructorID: &two})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(grace) != 1 || grace[0].CanEdit || *grace[0].ID != 10 {
		t.Fatalf("grace = %+v", grace)
	}
	byCourse, err := svc.ListRatings(context.Background(), RatingFilter{CourseID: &courseID, InstructorID: &one})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(byCourse) != 1 || !byCourse[0].IsRMPRating {
		t.Fatalf("course filter = %+v", byCourse)
	}
}
