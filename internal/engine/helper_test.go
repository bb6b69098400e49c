package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/RubberMartyr/jvgh-kantinedienst/internal/api"
)

var errRemoteDown = errors.New("remote down")

// fakeClock is a manually advanced clock for debounce and id generation.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{t: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Millisecond) // keep generated ids distinct
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// fakeRemote is an in-memory Remote that records calls and can be told to
// fail specific operations.
type fakeRemote struct {
	schedules []api.Schedule
	tasks     map[int64][]api.Task   // keyed by schedule id
	signups   map[int64][]api.Signup // keyed by task id
	nextID    int64

	calls       []string
	taskUpdates []api.TaskUpdate

	getSchedulesErr   error
	createScheduleErr error
	getTasksErr       error
	createTaskErr     error
	updateTaskErr     error
	getSignupsErr     error
	createSignupErr   error
	deleteSignupErr   error
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		tasks:   make(map[int64][]api.Task),
		signups: make(map[int64][]api.Signup),
		nextID:  100,
	}
}

func (r *fakeRemote) record(name string) { r.calls = append(r.calls, name) }

func (r *fakeRemote) callCount(name string) int {
	n := 0
	for _, c := range r.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (r *fakeRemote) GetSchedules(ctx context.Context) ([]api.Schedule, error) {
	r.record("GetSchedules")
	if r.getSchedulesErr != nil {
		return nil, r.getSchedulesErr
	}
	return r.schedules, nil
}

func (r *fakeRemote) CreateSchedule(ctx context.Context, payload api.NewSchedule) (api.Schedule, error) {
	r.record("CreateSchedule")
	if r.createScheduleErr != nil {
		return api.Schedule{}, r.createScheduleErr
	}
	r.nextID++
	sch := api.Schedule{ID: r.nextID, Title: payload.Title, Start: payload.Start, End: payload.End}
	r.schedules = append(r.schedules, sch)
	return sch, nil
}

func (r *fakeRemote) GetTasks(ctx context.Context, sheetID int64) ([]api.Task, error) {
	r.record("GetTasks")
	if r.getTasksErr != nil {
		return nil, r.getTasksErr
	}
	return r.tasks[sheetID], nil
}

func (r *fakeRemote) CreateTask(ctx context.Context, sheetID int64, payload api.NewTask) (api.Task, error) {
	r.record("CreateTask")
	if r.createTaskErr != nil {
		return api.Task{}, r.createTaskErr
	}
	r.nextID++
	task := api.Task{ID: r.nextID, Title: payload.Title, Qty: payload.Qty, Date: payload.Date, Time: payload.Time}
	r.tasks[sheetID] = append(r.tasks[sheetID], task)
	return task, nil
}

func (r *fakeRemote) UpdateTask(ctx context.Context, sheetID, taskID int64, payload api.TaskUpdate) error {
	r.record("UpdateTask")
	if r.updateTaskErr != nil {
		return r.updateTaskErr
	}
	r.taskUpdates = append(r.taskUpdates, payload)
	return nil
}

func (r *fakeRemote) GetSignups(ctx context.Context, taskID int64) ([]api.Signup, error) {
	r.record("GetSignups")
	if r.getSignupsErr != nil {
		return nil, r.getSignupsErr
	}
	return r.signups[taskID], nil
}

func (r *fakeRemote) CreateSignup(ctx context.Context, taskID int64, payload api.NewSignup) (api.Signup, error) {
	r.record("CreateSignup")
	if r.createSignupErr != nil {
		return api.Signup{}, r.createSignupErr
	}
	r.nextID++
	su := api.Signup{ID: r.nextID, FirstName: payload.FirstName, LastName: payload.LastName, Email: payload.Email}
	if payload.UserID != nil {
		su.UserID = *payload.UserID
	}
	r.signups[taskID] = append(r.signups[taskID], su)
	return su, nil
}

func (r *fakeRemote) DeleteSignup(ctx context.Context, taskID, signupID int64) error {
	r.record("DeleteSignup")
	if r.deleteSignupErr != nil {
		return r.deleteSignupErr
	}
	kept := r.signups[taskID][:0]
	for _, su := range r.signups[taskID] {
		if su.ID != signupID {
			kept = append(kept, su)
		}
	}
	r.signups[taskID] = kept
	return nil
}

// fakePrefs is an in-memory PrefStore.
type fakePrefs struct {
	bools map[string]bool
}

func newFakePrefs() *fakePrefs {
	return &fakePrefs{bools: make(map[string]bool)}
}

func (p *fakePrefs) Bool(key string, def bool) bool {
	if v, ok := p.bools[key]; ok {
		return v
	}
	return def
}

func (p *fakePrefs) SetBool(key string, value bool) {
	p.bools[key] = value
}

// harness bundles an engine with its collaborators for a single test.
type harness struct {
	engine *Engine
	remote *fakeRemote
	clock  *fakeClock
	prefs  *fakePrefs

	notifications []string
	confirmNames  []string
	confirmAnswer bool

	lastEvents []Event
}

func newHarness() *harness {
	h := &harness{
		remote:        newFakeRemote(),
		clock:         newFakeClock(time.Date(2026, time.September, 1, 12, 0, 0, 0, time.Local)),
		prefs:         newFakePrefs(),
		confirmAnswer: true,
	}
	h.engine = New(Config{
		Remote: h.remote,
		Prefs:  h.prefs,
		Sink:   func(events []Event) { h.lastEvents = events },
		Notify: func(msg string) { h.notifications = append(h.notifications, msg) },
		Confirm: func(name string) bool {
			h.confirmNames = append(h.confirmNames, name)
			return h.confirmAnswer
		},
		Now: h.clock.Now,
	})
	return h
}

// localDate builds an instant in time.Local, the zone remote task fields are
// interpreted in.
func localDate(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.Local)
}
