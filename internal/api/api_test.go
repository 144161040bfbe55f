package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/classense/attention-core/internal/auth"
	"github.com/classense/attention-core/internal/catalog"
	"github.com/classense/attention-core/internal/infrastructure/config"
	"github.com/classense/attention-core/internal/infrastructure/logging"
	"github.com/classense/attention-core/internal/reading"
	"github.com/classense/attention-core/internal/reqlog"
	"github.com/classense/attention-core/internal/store"
)

const testSecret = "api-test-secret"

// ─── In-memory repositories ───

type fakeUsers struct {
	users    map[string]*auth.User
	ownsTags map[string]bool
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[string]*auth.User{}, ownsTags: map[string]bool{}}
}

func (f *fakeUsers) List(_ context.Context, q *store.ListQuery) (*store.Page[auth.User], error) {
	docs := make([]auth.User, 0, len(f.users))
	for _, u := range f.users {
		docs = append(docs, *u)
	}
	return store.NewPage(docs, len(docs), q.Limit, q.Page), nil
}

func (f *fakeUsers) Usernames(_ context.Context, q *store.ListQuery) (*store.Page[auth.Username], error) {
	docs := make([]auth.Username, 0, len(f.users))
	for _, u := range f.users {
		docs = append(docs, auth.Username{ID: u.ID, Username: u.Username})
	}
	return store.NewPage(docs, len(docs), q.Limit, q.Page), nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*auth.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*auth.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeUsers) Create(_ context.Context, user *auth.User) error {
	for _, u := range f.users {
		if u.Username == user.Username {
			return store.ErrDuplicate
		}
	}
	if user.ID == "" {
		user.ID = "u-" + user.Username
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id string) error {
	if _, ok := f.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUsers) OwnsTags(_ context.Context, id string) (bool, error) {
	return f.ownsTags[id], nil
}

type fakeTags struct {
	tags       map[string]*catalog.Tag
	referenced map[string]bool
	createErr  error
}

func newFakeTags() *fakeTags {
	return &fakeTags{tags: map[string]*catalog.Tag{}, referenced: map[string]bool{}}
}

func (f *fakeTags) List(_ context.Context, q *store.ListQuery) (*store.Page[catalog.Tag], error) {
	docs := make([]catalog.Tag, 0, len(f.tags))
	for _, tag := range f.tags {
		docs = append(docs, *tag)
	}
	return store.NewPage(docs, len(docs), q.Limit, q.Page), nil
}

func (f *fakeTags) Get(_ context.Context, id string) (*catalog.Tag, error) {
	if tag, ok := f.tags[id]; ok {
		return tag, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeTags) Create(_ context.Context, tag *catalog.Tag) error {
	if f.createErr != nil {
		return f.createErr
	}
	if tag.ID == "" {
		return store.Validationf("Please, supply an _id")
	}
	if _, exists := f.tags[tag.ID]; exists {
		return store.Validationf("Tag validation failed: the _id is already used (%s)", tag.ID)
	}
	f.tags[tag.ID] = tag
	return nil
}

func (f *fakeTags) Delete(_ context.Context, id string) error {
	if _, ok := f.tags[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.tags, id)
	return nil
}

func (f *fakeTags) Referenced(_ context.Context, id string) (bool, error) {
	return f.referenced[id], nil
}

type fakeTeachers struct {
	teachers   map[string]*catalog.Teacher
	referenced map[string]bool
}

func newFakeTeachers() *fakeTeachers {
	return &fakeTeachers{teachers: map[string]*catalog.Teacher{}, referenced: map[string]bool{}}
}

func (f *fakeTeachers) List(_ context.Context, q *store.ListQuery) (*store.Page[catalog.Teacher], error) {
	docs := make([]catalog.Teacher, 0, len(f.teachers))
	for _, tc := range f.teachers {
		docs = append(docs, *tc)
	}
	return store.NewPage(docs, len(docs), q.Limit, q.Page), nil
}

func (f *fakeTeachers) Get(_ context.Context, id string) (*catalog.Teacher, error) {
	if tc, ok := f.teachers[id]; ok {
		return tc, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeTeachers) Create(_ context.Context, tc *catalog.Teacher) error {
	if tc.ID == "" {
		return store.Validationf("Please, supply an _id")
	}
	if _, exists := f.teachers[tc.ID]; exists {
		return store.Validationf("Teacher validation failed: the _id is already used (%s)", tc.ID)
	}
	f.teachers[tc.ID] = tc
	return nil
}

func (f *fakeTeachers) Delete(_ context.Context, id string) error {
	if _, ok := f.teachers[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.teachers, id)
	return nil
}

func (f *fakeTeachers) Referenced(_ context.Context, id string) (bool, error) {
	return f.referenced[id], nil
}

type fakeCourses struct {
	courses    map[string]*catalog.Course
	referenced map[string]bool
}

func newFakeCourses() *fakeCourses {
	return &fakeCourses{courses: map[string]*catalog.Course{}, referenced: map[string]bool{}}
}

func (f *fakeCourses) List(_ context.Context, q *store.ListQuery) (*store.Page[catalog.Course], error) {
	docs := make([]catalog.Course, 0, len(f.courses))
	for _, c := range f.courses {
		docs = append(docs, *c)
	}
	return store.NewPage(docs, len(docs), q.Limit, q.Page), nil
}

func (f *fakeCourses) Get(_ context.Context, id string) (*catalog.Course, error) {
	if c, ok := f.courses[id]; ok {
		return c, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeCourses) Create(_ context.Context, c *catalog.Course) error {
	if c.ID == "" {
		return store.Validationf("Please, supply an _id (course code)")
	}
	if _, exists := f.courses[c.ID]; exists {
		return store.Validationf("Course validation failed: the _id is already used (%s)", c.ID)
	}
	f.courses[c.ID] = c
	return nil
}

func (f *fakeCourses) Delete(_ context.Context, id string) error {
	if _, ok := f.courses[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.courses, id)
	return nil
}

func (f *fakeCourses) Referenced(_ context.Context, id string) (bool, error) {
	return f.referenced[id], nil
}

type fakeReadings struct {
	readings   map[string]*reading.Reading
	nextID     int
	createErr  map[int]error // per-call index, for batch tests
	calls      int
	deleted    int // result of DeleteWhere
	aggregated bool
}

func newFakeReadings() *fakeReadings {
	return &fakeReadings{readings: map[string]*reading.Reading{}, createErr: map[int]error{}}
}

func (f *fakeReadings) List(_ context.Context, q *store.ListQuery) (*store.Page[reading.Reading], error) {
	docs := make([]reading.Reading, 0, len(f.readings))
	for _, rd := range f.readings {
		docs = append(docs, *rd)
	}
	return store.NewPage(docs, len(docs), q.Limit, q.Page), nil
}

func (f *fakeReadings) Aggregate(_ context.Context, _ *store.Aggregate, q *store.ListQuery) (*store.Page[reading.Reading], error) {
	f.aggregated = true
	return f.List(context.Background(), q)
}

func (f *fakeReadings) Get(_ context.Context, id string) (*reading.Reading, error) {
	if rd, ok := f.readings[id]; ok {
		return rd, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeReadings) Create(_ context.Context, rd *reading.Reading) error {
	call := f.calls
	f.calls++
	if err, ok := f.createErr[call]; ok {
		return err
	}
	if rd.Course == "" {
		return store.Validationf("Please, supply a course")
	}
	if rd.Teacher == "" {
		return store.Validationf("Please, supply a teacher")
	}
	if rd.ID == "" {
		f.nextID++
		rd.ID = "r-" + strconv.Itoa(f.nextID)
	}
	f.readings[rd.ID] = rd
	return nil
}

func (f *fakeReadings) Delete(_ context.Context, id string) error {
	if _, ok := f.readings[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.readings, id)
	return nil
}

func (f *fakeReadings) DeleteWhere(_ context.Context, _ map[string]any, _ string) (int, error) {
	return f.deleted, nil
}

type fakeLogs struct {
	entries []reqlog.Entry
}

func (f *fakeLogs) List(_ context.Context, q *store.ListQuery) (*store.Page[reqlog.Entry], error) {
	return store.NewPage(f.entries, len(f.entries), q.Limit, q.Page), nil
}

func (f *fakeLogs) Create(_ context.Context, entry *reqlog.Entry) error {
	f.entries = append(f.entries, *entry)
	return nil
}

// ─── Test fixture ───

type fixture struct {
	handler  http.Handler
	users    *fakeUsers
	tags     *fakeTags
	teachers *fakeTeachers
	courses  *fakeCourses
	readings *fakeReadings
	logs     *fakeLogs
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log := logging.New(config.LoggingConfig{Level: "error", Format: "text"}, "test")
	f := &fixture{
		users:    newFakeUsers(),
		tags:     newFakeTags(),
		teachers: newFakeTeachers(),
		courses:  newFakeCourses(),
		readings: newFakeReadings(),
		logs:     &fakeLogs{},
	}

	srv, err := New(Deps{
		Config:   config.APIConfig{Version: "v1"},
		Security: config.SecurityConfig{JWT: config.JWTConfig{Secret: testSecret, AccessTokenTTL: 15}},
		Logger:   log,
		Users:    f.users,
		Tags:     f.tags,
		Teachers: f.teachers,
		Courses:  f.courses,
		Readings: reading.NewService(f.readings, nil, log),
		Log:      f.logs,
		Version:  "test",
	})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	f.handler = srv.buildRouter()
	return f
}

// addUser registers an account and returns a signed token for it.
func (f *fixture) addUser(t *testing.T, id, username string, role auth.Role) string {
	t.Helper()
	hash, err := auth.HashPassword("password-" + username)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	f.users.users[id] = &auth.User{ID: id, Username: username, PasswordHash: hash, Role: role}

	token, err := auth.GenerateAccessToken(f.users.users[id], testSecret, 15)
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}
	return token
}

// do performs a request against the router. An empty token skips the
// Authorization header.
func (f *fixture) do(t *testing.T, method, path, token string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "JWT "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

// decodeError parses an error response body.
func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding error body %q: %v", rec.Body.String(), err)
	}
	return body
}

// expectError asserts status code and catalogue value.
func expectError(t *testing.T, rec *httptest.ResponseRecorder, desc ErrorDescriptor) errorResponse {
	t.Helper()
	if rec.Code != desc.Status {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, desc.Status, rec.Body.String())
	}
	body := decodeError(t, rec)
	if body.Value != desc.Value {
		t.Errorf("error value = %d, want %d", body.Value, desc.Value)
	}
	if body.Message != desc.Message {
		t.Errorf("error message = %q, want %q", body.Message, desc.Message)
	}
	return body
}
