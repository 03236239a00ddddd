// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"todo/internal/service"
)

// ErrNotFound is returned when a task does not exist.
var ErrNotFound = &service.HTTPError{StatusCode: 404, Body: `{"detail":"Not found."}`}

// FakeService is an in-memory implementation of service.Service for testing.
// Tasks are listed newest first, ten per page.
type FakeService struct {
	mu     sync.Mutex
	users  map[string]string // username -> password
	tasks  []service.Task
	nextID int64
	now    time.Time

	// Calls records every method call by name, in order.
	Calls []string
	// Queries records every ListTasks query.
	Queries []service.ListQuery
	// AccessSeen records the credential of every authenticated call.
	AccessSeen []string

	// LoginHook, if set, runs before Login answers (outside the lock).
	LoginHook func()
	// ListHook, if set, runs before ListTasks answers (outside the lock).
	ListHook func(q service.ListQuery)
	// CreateHook, if set, runs before CreateTask answers (outside the lock).
	CreateHook func()

	// Error injection for testing
	LoginErr    error
	RegisterErr error
	ListErr     error
	CreateErr   error
	UpdateErr   error
	DeleteErr   error
}

// NewFakeService creates a FakeService with no users and no tasks.
func NewFakeService() *FakeService {
	return &FakeService{
		users:  make(map[string]string),
		nextID: 1,
		now:    time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// AddUser registers a user that can log in.
func (f *FakeService) AddUser(username, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[username] = password
}

// AddTask adds a task and returns it.
func (f *FakeService) AddTask(title string, completed bool) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addLocked(title, "", completed)
}

// AddTasks adds n pending tasks titled "Task 1".."Task n".
func (f *FakeService) AddTasks(n int) {
	for i := 1; i <= n; i++ {
		f.AddTask("Task "+strconv.Itoa(i), false)
	}
}

// Task returns the stored task with the given id.
func (f *FakeService) Task(id int64) (service.Task, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return service.Task{}, false
}

// CallCount returns how many times the named method was called.
func (f *FakeService) CallCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.Calls {
		if c == name {
			n++
		}
	}
	return n
}

// LastQuery returns the most recent ListTasks query.
func (f *FakeService) LastQuery() (service.ListQuery, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Queries) == 0 {
		return service.ListQuery{}, false
	}
	return f.Queries[len(f.Queries)-1], true
}

func (f *FakeService) record(name, access string) {
	f.Calls = append(f.Calls, name)
	if access != "" {
		f.AccessSeen = append(f.AccessSeen, access)
	}
}

func (f *FakeService) addLocked(title, description string, completed bool) service.Task {
	t := service.Task{
		ID:          f.nextID,
		Title:       title,
		Description: description,
		IsCompleted: completed,
		CreatedAt:   f.now.Add(time.Duration(f.nextID) * time.Minute),
		Owner:       1,
	}
	f.nextID++
	f.tasks = append(f.tasks, t)
	return t
}

// Login implements service.Service.
func (f *FakeService) Login(ctx context.Context, username, password string) (service.Tokens, error) {
	f.mu.Lock()
	f.record("Login", "")
	hook := f.LoginHook
	f.mu.Unlock()

	if hook != nil {
		hook()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.LoginErr != nil {
		return service.Tokens{}, f.LoginErr
	}
	if pw, ok := f.users[username]; !ok || pw != password {
		return service.Tokens{}, service.ErrInvalidCredentials
	}
	return tokensFor(username), nil
}

// Register implements service.Service.
func (f *FakeService) Register(ctx context.Context, reg service.Registration) (service.Tokens, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Register", "")

	if f.RegisterErr != nil {
		return service.Tokens{}, f.RegisterErr
	}
	if _, exists := f.users[reg.Username]; exists {
		return service.Tokens{}, &service.HTTPError{
			StatusCode: 400,
			Body:       `{"username":["A user with that username already exists."]}`,
		}
	}
	f.users[reg.Username] = reg.Password
	return tokensFor(reg.Username), nil
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context, access string, q service.ListQuery) (service.TaskPage, error) {
	f.mu.Lock()
	f.record("ListTasks", access)
	f.Queries = append(f.Queries, q)
	hook := f.ListHook
	f.mu.Unlock()

	if hook != nil {
		hook(q)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.ListErr != nil {
		return service.TaskPage{}, f.ListErr
	}

	var matched []service.Task
	for _, t := range f.tasks {
		switch q.Filter {
		case service.FilterCompleted:
			if !t.IsCompleted {
				continue
			}
		case service.FilterPending:
			if t.IsCompleted {
				continue
			}
		}
		matched = append(matched, t)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	page := q.Page
	if page < 1 {
		page = 1
	}
	start := (page - 1) * service.PageSize
	if start >= len(matched) && page > 1 {
		return service.TaskPage{}, &service.HTTPError{StatusCode: 404, Body: `{"detail":"Invalid page."}`}
	}
	end := start + service.PageSize
	if end > len(matched) {
		end = len(matched)
	}

	return service.TaskPage{
		Count:   len(matched),
		Results: append([]service.Task{}, matched[start:end]...),
	}, nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, access string, in service.NewTask) (service.Task, error) {
	f.mu.Lock()
	f.record("CreateTask", access)
	hook := f.CreateHook
	f.mu.Unlock()

	if hook != nil {
		hook()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.CreateErr != nil {
		return service.Task{}, f.CreateErr
	}
	return f.addLocked(in.Title, in.Description, in.IsCompleted), nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, access string, id int64, patch service.TaskPatch) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateTask", access)

	if f.UpdateErr != nil {
		return service.Task{}, f.UpdateErr
	}
	for i, t := range f.tasks {
		if t.ID != id {
			continue
		}
		if patch.Title != nil {
			t.Title = *patch.Title
		}
		if patch.Description != nil {
			t.Description = *patch.Description
		}
		if patch.IsCompleted != nil {
			t.IsCompleted = *patch.IsCompleted
		}
		f.tasks[i] = t
		return t, nil
	}
	return service.Task{}, ErrNotFound
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, access string, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteTask", access)

	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func tokensFor(username string) service.Tokens {
	return service.Tokens{Access: "access-" + username, Refresh: "refresh-" + username}
}
