package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/database"
	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/model"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(context.Background(), db, database.DialectSQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestCourseRepoRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	attrs := NewCourseAttributeRepo(db)
	courses := NewCourseRepo(db)

	wi := model.CourseAttribute{Name: "Writing Intensive", DegreeWorksLabel: "WI", CoursesAtSLULabel: "Writing"}
	if err := attrs.Create(ctx, &wi); err != nil {
		t.Fatalf("create attribute: %v", err)
	}

	intro := model.Course{CourseCode: model.CourseCode{MajorCode: "CSCI", CourseNumber: "1300"}, Title: "Intro"}
	if err := courses.Create(ctx, &intro); err != nil {
		t.Fatalf("create intro: %v", err)
	}
	tree, err := model.ParsePrerequisiteExpression("CSCI 1300 | CSCI 1000-1099*")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	ds := model.Course{
		CourseCode:    model.CourseCode{MajorCode: "CSCI", CourseNumber: "2100"},
		Title:         "Data Structures",
		AttributeIDs:  []int64{wi.ID},
		Prerequisites: tree,
	}
	if err := courses.Create(ctx, &ds); err != nil {
		t.Fatalf("create ds: %v", err)
	}

	all, err := courses.GetAll(ctx)
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 courses, got %d", len(all))
	}
	if all[0].Prerequisites != nil {
		t.Fatalf("expected intro to have no prerequisites, got %#v", all[0].Prerequisites)
	}
	if len(all[1].AttributeIDs) != 1 || all[1].AttributeIDs[0] != wi.ID {
		t.Fatalf("unexpected attribute ids %v", all[1].AttributeIDs)
	}
	taken := model.CourseSet{intro.CourseCode: {}}
	if !model.PrerequisitesSatisfied(all[1].Prerequisites, taken) {
		t.Fatalf("expected stored tree to be satisfied by CSCI 1300")
	}

	got, err := courses.GetByID(ctx, ds.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got.Title != "Data Structures" || len(model.PrerequisiteLeaves(got.Prerequisites)) != 2 {
		t.Fatalf("unexpected course %+v", got)
	}
	if _, err := courses.GetByID(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSectionRepoFiltersBySemester(t *testing.T) {
	ctx := context.Background()
	repo := NewSectionRepo(newTestDB(t))
	for _, s := range []model.Section{
		{CRN: "1", CourseCode: "CSCI 1300", Semester: "202501", InstructorNames: []string{"Ada Lovelace"},
			MeetingTimes: []model.MeetingTime{{Day: 1, StartTime: "0900", EndTime: "0950"}}},
		{CRN: "2", CourseCode: "CSCI 2100", Semester: "202408"},
	} {
		s := s
		if err := repo.Create(ctx, &s); err != nil {
			t.Fatalf("create section: %v", err)
		}
	}
	got, err := repo.GetAllForSemester(ctx, "202501")
	if err != nil {
		t.Fatalf("get sections: %v", err)
	}
	if len(got) != 1 || got[0].CRN != "1" {
		t.Fatalf("unexpected sections %+v", got)
	}
	if len(got[0].MeetingTimes) != 1 || got[0].MeetingTimes[0].StartTime != "0900" {
		t.Fatalf("meeting times not restored: %+v", got[0].MeetingTimes)
	}
	if len(got[0].InstructorNames) != 1 || got[0].InstructorNames[0] != "Ada Lovelace" {
		t.Fatalf("instructors not restored: %v", got[0].InstructorNames)
	}
}

func TestDegreeRepoKeepsRequirements(t *testing.T) {
	ctx := context.Background()
	repo := NewDegreeRepo(newTestDB(t))
	d := model.Degree{
		Name:             "Computer Science BS",
		PrimaryMajorCode: "CSCI",
		DegreeType:       "BS",
		CollegeCode:      "SE",
		Requirements: []model.DegreeRequirement{{
			Label:  "Upper CSCI",
			Needed: 2,
			Rule: model.CourseRule{
				Matchers: []model.CourseRuleMatcher{
					model.NumberRange{MajorCode: "CSCI", Start: "3000", End: "4999"},
					model.HasAttribute{AttributeNames: []string{"WI"}},
				},
				Exclude: []model.ExactCode{{MajorCode: "CSCI", CourseNumber: "3960"}},
			},
		}},
	}
	if err := repo.Create(ctx, &d); err != nil {
		t.Fatalf("create degree: %v", err)
	}
	got, err := repo.GetByID(ctx, d.ID)
	if err != nil {
		t.Fatalf("get degree: %v", err)
	}
	if got.PrimaryMajorCode != "CSCI" || len(got.Requirements) != 1 {
		t.Fatalf("unexpected degree %+v", got)
	}
	rule := got.Requirements[0].Rule
	if len(rule.Matchers) != 2 || len(rule.Exclude) != 1 {
		t.Fatalf("unexpected rule %+v", rule)
	}
	if !rule.SatisfiedBy(model.Course{CourseCode: model.CourseCode{MajorCode: "CSCI", CourseNumber: "3100"}}) {
		t.Fatalf("expected decoded range to match CSCI 3100")
	}
	if _, err := repo.GetByID(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStudentRepoSave(t *testing.T) {
	ctx := context.Background()
	repo := NewStudentRepo(newTestDB(t))
	s := model.Student{Name: "Billy", DegreeID: 1, GraduationYear: 2027}
	if err := repo.Save(ctx, &s); err != nil {
		t.Fatalf("insert student: %v", err)
	}
	if s.ID == 0 {
		t.Fatalf("expected generated id")
	}

	s.CompletedCourseIDs = []int64{1, 2}
	s.DesiredCourseIDs = []int64{5}
	s.AvoidTimes = []model.TimeSlot{{Day: 5, Start: "1500", End: "1800"}}
	if err := repo.Save(ctx, &s); err != nil {
		t.Fatalf("update student: %v", err)
	}
	if err := repo.Save(ctx, &s); err != nil {
		t.Fatalf("unchanged update must succeed: %v", err)
	}
	got, err := repo.GetByID(ctx, s.ID)
	if err != nil {
		t.Fatalf("get student: %v", err)
	}
	if len(got.CompletedCourseIDs) != 2 || len(got.DesiredCourseIDs) != 1 || len(got.AvoidTimes) != 1 {
		t.Fatalf("unexpected student %+v", got)
	}
	if got.UnavailabilityTimes == nil || len(got.UnavailabilityTimes) != 0 {
		t.Fatalf("expected empty unavailability list, got %v", got.UnavailabilityTimes)
	}

	missing := model.Student{ID: 77, Name: "Nobody"}
	if err := repo.Save(ctx, &missing); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing student, got %v", err)
	}
}

func TestInstructorAndRatingRepos(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	instructors := NewInstructorRepo(db)
	ratings := NewRatingRepo(db)

	score := 4.5
	rated := model.Instructor{Name: "Ada Lovelace", RMPRating: &score, Department: "CSCI"}
	plain := model.Instructor{Name: "Alan Turing"}
	for _, in := range []*model.Instructor{&rated, &plain} {
		if err := instructors.Create(ctx, in); err != nil {
			t.Fatalf("create instructor: %v", err)
		}
	}
	all, err := instructors.GetAll(ctx)
	if err != nil {
		t.Fatalf("get instructors: %v", err)
	}
	if len(all) != 2 || all[0].RMPRating == nil || *all[0].RMPRating != 4.5 || all[1].RMPRating != nil {
		t.Fatalf("unexpected instructors %+v", all)
	}

	rt := model.Rating{InstructorID: &plain.ID, StudentID: 1, Value: 3, Description: "fine"}
	if err := ratings.Create(ctx, &rt); err != nil {
		t.Fatalf("create rating: %v", err)
	}
	got, err := ratings.GetAll(ctx)
	if err != nil {
		t.Fatalf("get ratings: %v", err)
	}
	if len(got) != 1 || got[0].InstructorID == nil || *got[0].InstructorID != plain.ID || got[0].CourseID != nil {
		t.Fatalf("unexpected ratings %+v", got)
	}
}

func TestUserAndTokenRepos(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := NewUserRepo(db)
	tokens := NewTokenRepo(db)

	id, err := users.Create(ctx, " Billy@SLU.edu ", "secret", 4)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := users.Create(ctx, "billy@slu.edu", "other", 4); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
	u, err := users.GetByEmail(ctx, "BILLY@slu.edu")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if u.ID != id || u.StudentID != nil || !u.IsActive {
		t.Fatalf("unexpected user %+v", u)
	}
	if err := users.LinkStudent(ctx, id, 9); err != nil {
		t.Fatalf("link student: %v", err)
	}
	u, err = users.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if u.StudentID == nil || *u.StudentID != 9 {
		t.Fatalf("expected linked student 9, got %v", u.StudentID)
	}
	if _, err := users.GetByID(ctx, 1234); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := tokens.Store(ctx, id, "live", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("store refresh: %v", err)
	}
	if err := tokens.Store(ctx, id, "stale", time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("store refresh: %v", err)
	}
	if _, err := tokens.Consume(ctx, "stale"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected expired token to be rejected, got %v", err)
	}
	if _, err := tokens.Consume(ctx, "missing"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected unknown token to be rejected, got %v", err)
	}
	if got, err := tokens.Consume(ctx, "live"); err != nil || got != id {
		t.Fatalf("expected live token for user %d, got %d, %v", id, got, err)
	}
	if _, err := tokens.Consume(ctx, "live"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected a used token to be rejected, got %v", err)
	}

	for _, h := range []string{"a", "b"} {
		if err := tokens.Store(ctx, id, h, time.Now().Add(time.Hour)); err != nil {
			t.Fatalf("store refresh: %v", err)
		}
	}
	if n, err := tokens.RevokeAllForUser(ctx, id); err != nil || n != 3 {
		t.Fatalf("revoke all: got %d, %v", n, err)
	}
	if _, err := tokens.Consume(ctx, "a"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected revoked token to be rejected, got %v", err)
	}
}
