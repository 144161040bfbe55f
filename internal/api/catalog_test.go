package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/classense/attention-core/internal/auth"
	"github.com/classense/attention-core/internal/catalog"
)

func TestCreateTeacher(t *testing.T) {
	f := newFixture(t)
	token := f.addUser(t, "u1", "alice", auth.RoleProvider)

	rec := f.do(t, http.MethodPost, "/v1/teachers/", token,
		`{"id":"t-001","name":"Ada","courses":["CS101"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", rec.Code, rec.Body.String())
	}

	stored := f.teachers.teachers["t-001"]
	if stored == nil || stored.Owner != "u1" || stored.Name != "Ada" {
		t.Errorf("stored teacher = %+v", stored)
	}
}

func TestGetTeacherNotFound(t *testing.T) {
	f := newFixture(t)
	token := f.addUser(t, "u1", "alice", auth.RoleProvider)

	rec := f.do(t, http.MethodGet, "/v1/teachers/t-404", token, "")
	expectError(t, rec, ErrTeacherNotFound)
}

func TestDeleteTeacherBlockedWhenUsedByReading(t *testing.T) {
	f := newFixture(t)
	token := f.addUser(t, "u1", "alice", auth.RoleProvider)
	f.teachers.teachers["t-001"] = &catalog.Teacher{ID: "t-001", Owner: "u1"}
	f.teachers.referenced["t-001"] = true

	rec := f.do(t, http.MethodDelete, "/v1/teachers/t-001", token, "")
	expectError(t, rec, ErrTeacherUsed)
}

func TestDeleteTeacherRequiresOwnership(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "u1", "alice", auth.RoleProvider)
	intruder := f.addUser(t, "u2", "bob", auth.RoleProvider)
	f.teachers.teachers["t-001"] = &catalog.Teacher{ID: "t-001", Owner: "u1"}

	rec := f.do(t, http.MethodDelete, "/v1/teachers/t-001", intruder, "")
	expectError(t, rec, ErrTeacherNotOwner)
}

func TestCreateCourse(t *testing.T) {
	f := newFixture(t)
	token := f.addUser(t, "u1", "alice", auth.RoleProvider)

	rec := f.do(t, http.MethodPost, "/v1/courses/", token,
		`{"id":"CS101","name":"Intro","numberOfSessions":12,"hoursPerSession":1.5}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", rec.Code, rec.Body.String())
	}

	var course catalog.Course
	if err := json.Unmarshal(rec.Body.Bytes(), &course); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if course.NumberOfSessions != 12 || course.HoursPerSession != 1.5 {
		t.Errorf("course = %+v", course)
	}
}

func TestCreateCourseValidation(t *testing.T) {
	f := newFixture(t)
	token := f.addUser(t, "u1", "alice", auth.RoleProvider)

	rec := f.do(t, http.MethodPost, "/v1/courses/", token, `{"name":"no code"}`)
	body := expectError(t, rec, ErrCoursePost)
	if body.Details != "Please, supply an _id (course code)" {
		t.Errorf("details = %q", body.Details)
	}
}

func TestDeleteCourseBlockedWhenReferenced(t *testing.T) {
	f := newFixture(t)
	token := f.addUser(t, "u1", "alice", auth.RoleProvider)
	f.courses.courses["CS101"] = &catalog.Course{ID: "CS101", Owner: "u1"}
	f.courses.referenced["CS101"] = true

	rec := f.do(t, http.MethodDelete, "/v1/courses/CS101", token, "")
	expectError(t, rec, ErrCourseUsed)
}

func TestDeleteCourse(t *testing.T) {
	f := newFixture(t)
	token := f.addUser(t, "u1", "alice", auth.RoleProvider)
	f.courses.courses["CS101"] = &catalog.Course{ID: "CS101", Owner: "u1"}

	rec := f.do(t, http.MethodDelete, "/v1/courses/CS101", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", rec.Code, rec.Body.String())
	}
	if _, still := f.courses.courses["CS101"]; still {
		t.Error("course still present after delete")
	}
}
