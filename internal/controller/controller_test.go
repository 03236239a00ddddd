package controller_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo/internal/controller"
	"todo/internal/service"
	"todo/internal/session"
	"todo/internal/testutil"
)

// newLoggedIn returns a hydrated controller holding alice's credentials.
func newLoggedIn(t *testing.T, svc *testutil.FakeService) (*controller.Controller, *session.MemoryStore) {
	t.Helper()
	store := session.NewMemoryStore(session.Session{Access: "access-alice", Refresh: "refresh-alice"})
	c := controller.New(svc, store)
	require.NoError(t, c.Hydrate())
	return c, store
}

func titles(tasks []service.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Title)
	}
	return out
}

func TestHydrate_EmptyStoreIsUnauthenticated(t *testing.T) {
	c := controller.New(testutil.NewFakeService(), session.NewMemoryStore(session.Session{}))
	require.NoError(t, c.Hydrate())

	st := c.State()
	assert.Equal(t, controller.ViewUnauthenticated, st.View)
	assert.Equal(t, controller.ModeLogin, st.Mode)
	assert.Equal(t, service.FilterAll, st.Filter)
	assert.Equal(t, 1, st.Page)
}

func TestHydrate_StoredCredentialIsAuthenticated(t *testing.T) {
	svc := testutil.NewFakeService()
	c, _ := newLoggedIn(t, svc)

	assert.True(t, c.State().Authenticated())
	assert.Zero(t, svc.CallCount("ListTasks"), "hydrate must not fetch")
}

func TestAuthenticate_ValidCredentials(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddUser("alice", "secret123")
	svc.AddTasks(3)
	store := session.NewMemoryStore(session.Session{})
	c := controller.New(svc, store)
	require.NoError(t, c.Hydrate())

	err := c.Authenticate(context.Background(), "alice", "secret123")
	require.NoError(t, err)

	st := c.State()
	assert.Equal(t, controller.ViewAuthenticated, st.View)
	assert.False(t, st.FormLoading)
	assert.Empty(t, st.FormError)
	require.NotNil(t, st.Status)
	assert.Equal(t, "Logged in.", st.Status.Text)

	access, ok := store.Value(session.KeyAccess)
	assert.True(t, ok)
	assert.Equal(t, "access-alice", access)
	refresh, ok := store.Value(session.KeyRefresh)
	assert.True(t, ok)
	assert.Equal(t, "refresh-alice", refresh)

	// Page 1 is loaded on authentication
	q, ok := svc.LastQuery()
	require.True(t, ok)
	assert.Equal(t, service.ListQuery{Page: 1, Filter: service.FilterAll}, q)
	assert.Equal(t, []string{"Task 3", "Task 2", "Task 1"}, titles(st.Tasks))
	assert.Equal(t, 3, st.TotalCount)
}

func TestAuthenticate_InvalidCredentials(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddUser("alice", "secret123")
	store := session.NewMemoryStore(session.Session{})
	c := controller.New(svc, store)
	require.NoError(t, c.Hydrate())

	err := c.Authenticate(context.Background(), "alice", "nope")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	st := c.State()
	assert.Equal(t, controller.ViewUnauthenticated, st.View)
	assert.Equal(t, "invalid credentials", st.FormError)
	assert.False(t, st.FormLoading)
	_, ok := store.Value(session.KeyAccess)
	assert.False(t, ok)
	assert.Zero(t, svc.CallCount("ListTasks"))
}

func TestAuthenticate_SessionSaveFailureStaysLoggedOut(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddUser("alice", "secret123")
	store := session.NewMemoryStore(session.Session{})
	store.SaveErr = assert.AnError
	c := controller.New(svc, store)

	err := c.Authenticate(context.Background(), "alice", "secret123")
	assert.ErrorIs(t, err, assert.AnError)
	assert.False(t, c.State().Authenticated())
	assert.Contains(t, c.State().FormError, "could not save session")
}

func TestAuthenticate_BusyWhileOutstanding(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddUser("alice", "secret123")
	c := controller.New(svc, session.NewMemoryStore(session.Session{}))

	entered := make(chan struct{})
	release := make(chan struct{})
	svc.LoginHook = func() {
		close(entered)
		<-release
	}

	done := make(chan error, 1)
	go func() { done <- c.Authenticate(context.Background(), "alice", "secret123") }()
	<-entered

	assert.True(t, c.State().FormLoading)
	err := c.Authenticate(context.Background(), "alice", "secret123")
	assert.ErrorIs(t, err, controller.ErrBusy)
	err = c.Register(context.Background(), "bob", "secret123", "")
	assert.ErrorIs(t, err, controller.ErrBusy)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, c.State().FormLoading)
	assert.Equal(t, 1, svc.CallCount("Login"))
	assert.Zero(t, svc.CallCount("Register"))
}

func TestAuthenticate_FormReleasedBeforeInitialLoad(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddUser("alice", "secret123")
	c := controller.New(svc, session.NewMemoryStore(session.Session{}))

	entered := make(chan struct{})
	release := make(chan struct{})
	svc.ListHook = func(service.ListQuery) {
		close(entered)
		<-release
	}

	done := make(chan error, 1)
	go func() { done <- c.Authenticate(context.Background(), "alice", "secret123") }()
	<-entered

	st := c.State()
	assert.True(t, st.Authenticated())
	assert.False(t, st.FormLoading)
	assert.True(t, st.ListLoading)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, c.State().ListLoading)
}

func TestRegister_TransitionsWithoutSecondLogin(t *testing.T) {
	svc := testutil.NewFakeService()
	store := session.NewMemoryStore(session.Session{})
	c := controller.New(svc, store)
	c.ToggleMode()
	assert.Equal(t, controller.ModeRegister, c.State().Mode)

	err := c.Register(context.Background(), "bob", "secret123", "")
	require.NoError(t, err)

	st := c.State()
	assert.True(t, st.Authenticated())
	assert.Equal(t, "Account created and logged in.", st.Status.Text)
	assert.Zero(t, svc.CallCount("Login"))
	access, _ := store.Value(session.KeyAccess)
	assert.Equal(t, "access-bob", access)
}

func TestRegister_FailureShowsBodyOnForm(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddUser("bob", "secret123")
	c := controller.New(svc, session.NewMemoryStore(session.Session{}))

	err := c.Register(context.Background(), "bob", "secret123", "bob@example.com")
	require.Error(t, err)
	st := c.State()
	assert.False(t, st.Authenticated())
	assert.Contains(t, st.FormError, "already exists")
}

func TestToggleMode_OnlyWhileUnauthenticated(t *testing.T) {
	c := controller.New(testutil.NewFakeService(), session.NewMemoryStore(session.Session{}))
	c.ToggleMode()
	c.ToggleMode()
	assert.Equal(t, controller.ModeLogin, c.State().Mode)

	svc := testutil.NewFakeService()
	logged, _ := newLoggedIn(t, svc)
	logged.ToggleMode()
	assert.Equal(t, controller.ModeLogin, logged.State().Mode)
	assert.Empty(t, svc.Calls)
}

func TestLogout_ClearsStoreAndList(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTasks(2)
	c, store := newLoggedIn(t, svc)
	require.NoError(t, c.LoadTasks(context.Background(), 1))
	calls := len(svc.Calls)

	require.NoError(t, c.Logout())

	st := c.State()
	assert.Equal(t, controller.ViewUnauthenticated, st.View)
	assert.Equal(t, controller.ModeLogin, st.Mode)
	assert.Empty(t, st.Tasks)
	assert.Equal(t, "Session ended.", st.Status.Text)
	assert.Len(t, svc.Calls, calls, "logout makes no backend call")

	// A fresh start from the same store is logged out
	fresh := controller.New(svc, store)
	require.NoError(t, fresh.Hydrate())
	assert.False(t, fresh.State().Authenticated())
}

func TestLogout_StoreFailureKeepsSession(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTasks(1)
	c, store := newLoggedIn(t, svc)
	require.NoError(t, c.LoadTasks(context.Background(), 1))
	store.ClearErr = errors.New("read-only file system")

	err := c.Logout()
	require.Error(t, err)

	st := c.State()
	assert.True(t, st.Authenticated())
	assert.Len(t, st.Tasks, 1)
	require.NotNil(t, st.Status)
	assert.True(t, st.Status.IsError())
	assert.Equal(t, "could not remove session: read-only file system", st.Status.Text)
	assert.True(t, c.Session().Present())

	// The stored session survives, and so does the next start
	fresh := controller.New(svc, store)
	require.NoError(t, fresh.Hydrate())
	assert.True(t, fresh.State().Authenticated())
}

func TestLoadTasks_NoCredentialIsNoop(t *testing.T) {
	svc := testutil.NewFakeService()
	c := controller.New(svc, session.NewMemoryStore(session.Session{}))

	require.NoError(t, c.LoadTasks(context.Background(), 1))
	assert.Zero(t, svc.CallCount("ListTasks"))
}

func TestLoadTasks_FailureKeepsPreviousList(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTasks(2)
	c, _ := newLoggedIn(t, svc)
	require.NoError(t, c.LoadTasks(context.Background(), 1))

	svc.ListErr = &service.HTTPError{StatusCode: 500, Body: "server exploded"}
	err := c.LoadTasks(context.Background(), 1)
	require.Error(t, err)

	st := c.State()
	assert.Equal(t, []string{"Task 2", "Task 1"}, titles(st.Tasks))
	require.NotNil(t, st.Status)
	assert.True(t, st.Status.IsError())
	assert.Equal(t, "error 500: server exploded", st.Status.Text)
	assert.False(t, st.ListLoading)
}

func TestSetFilter_ResetsPageAndSendsParam(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTasks(25)
	c, _ := newLoggedIn(t, svc)
	ctx := context.Background()

	require.NoError(t, c.LoadTasks(ctx, 2))
	assert.Equal(t, 2, c.State().Page)

	require.NoError(t, c.SetFilter(ctx, service.FilterPending))

	q, _ := svc.LastQuery()
	assert.Equal(t, service.ListQuery{Page: 1, Filter: service.FilterPending}, q)
	v, ok := q.Filter.CompletedParam()
	assert.True(t, ok)
	assert.Equal(t, "false", v)

	st := c.State()
	assert.Equal(t, 1, st.Page)
	assert.Equal(t, service.FilterPending, st.Filter)
}

func TestPaging(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTasks(25)
	c, _ := newLoggedIn(t, svc)
	ctx := context.Background()
	require.NoError(t, c.LoadTasks(ctx, 1))

	st := c.State()
	assert.Equal(t, 3, st.TotalPages)
	assert.False(t, st.HasPrev())
	assert.True(t, st.HasNext())

	require.NoError(t, c.PrevPage(ctx))
	assert.Equal(t, 1, svc.CallCount("ListTasks"), "no request before page 1")

	require.NoError(t, c.NextPage(ctx))
	require.NoError(t, c.NextPage(ctx))
	st = c.State()
	assert.Equal(t, 3, st.Page)
	assert.Len(t, st.Tasks, 5)

	require.NoError(t, c.NextPage(ctx))
	assert.Equal(t, 3, svc.CallCount("ListTasks"), "no request past the last page")
}

func TestLoadTasks_StaleResponseDiscarded(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("open", false)
	svc.AddTask("closed", true)
	c, _ := newLoggedIn(t, svc)
	ctx := context.Background()

	var once sync.Once
	entered := make(chan struct{})
	release := make(chan struct{})
	svc.ListHook = func(q service.ListQuery) {
		if q.Filter == service.FilterCompleted {
			once.Do(func() { close(entered) })
			<-release
		}
	}

	slow := make(chan error, 1)
	go func() { slow <- c.SetFilter(ctx, service.FilterCompleted) }()
	<-entered

	// A newer selection is answered first
	require.NoError(t, c.SetFilter(ctx, service.FilterPending))
	close(release)

	assert.ErrorIs(t, <-slow, controller.ErrSuperseded)

	st := c.State()
	assert.Equal(t, service.FilterPending, st.Filter)
	assert.Equal(t, []string{"open"}, titles(st.Tasks))
	assert.False(t, st.ListLoading)
}

func TestLogout_DropsInFlightLoad(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTasks(1)
	c, _ := newLoggedIn(t, svc)

	entered := make(chan struct{})
	release := make(chan struct{})
	svc.ListHook = func(service.ListQuery) {
		close(entered)
		<-release
	}

	done := make(chan error, 1)
	go func() { done <- c.LoadTasks(context.Background(), 1) }()
	<-entered
	require.NoError(t, c.Logout())
	close(release)

	assert.ErrorIs(t, <-done, controller.ErrSuperseded)
	assert.Empty(t, c.State().Tasks)
}

func TestCreateTask_EmptyTitleIsNoop(t *testing.T) {
	for _, title := range []string{"", "   ", "\t\n"} {
		svc := testutil.NewFakeService()
		svc.AddTasks(1)
		c, _ := newLoggedIn(t, svc)
		require.NoError(t, c.LoadTasks(context.Background(), 1))
		before := c.State().Tasks

		_, err := c.CreateTask(context.Background(), title, "desc")
		assert.ErrorIs(t, err, controller.ErrEmptyTitle)
		assert.Zero(t, svc.CallCount("CreateTask"))
		st := c.State()
		assert.Equal(t, before, st.Tasks)
		require.NotNil(t, st.Status)
		assert.Equal(t, "Title cannot be empty.", st.Status.Text)
	}
}

func TestCreateTask_PrependsServerCopy(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTasks(2)
	c, _ := newLoggedIn(t, svc)
	ctx := context.Background()
	require.NoError(t, c.LoadTasks(ctx, 1))
	loads := svc.CallCount("ListTasks")

	task, err := c.CreateTask(ctx, "  X  ", "something")
	require.NoError(t, err)
	assert.Equal(t, "X", task.Title)

	st := c.State()
	assert.Equal(t, []string{"X", "Task 2", "Task 1"}, titles(st.Tasks))
	assert.Equal(t, task, st.Tasks[0])
	assert.Equal(t, 3, st.TotalCount)
	assert.Equal(t, "Task created.", st.Status.Text)
	assert.Equal(t, loads, svc.CallCount("ListTasks"), "create does not reload")
}

func TestCreateTask_BusyWhileOutstanding(t *testing.T) {
	svc := testutil.NewFakeService()
	c, _ := newLoggedIn(t, svc)
	ctx := context.Background()

	entered := make(chan struct{})
	release := make(chan struct{})
	svc.CreateHook = func() {
		close(entered)
		<-release
	}

	first := make(chan error, 1)
	go func() {
		_, err := c.CreateTask(ctx, "X", "")
		first <- err
	}()
	<-entered
	assert.True(t, c.State().Saving)

	_, err := c.CreateTask(ctx, "X", "")
	assert.ErrorIs(t, err, controller.ErrBusy)

	close(release)
	require.NoError(t, <-first)

	st := c.State()
	assert.False(t, st.Saving)
	assert.Equal(t, []string{"X"}, titles(st.Tasks))
	assert.Equal(t, 1, st.TotalCount)
	assert.Equal(t, 1, svc.CallCount("CreateTask"))
}

func TestCreateThenLoad_RoundTrip(t *testing.T) {
	svc := testutil.NewFakeService()
	c, _ := newLoggedIn(t, svc)
	ctx := context.Background()

	_, err := c.CreateTask(ctx, "X", "")
	require.NoError(t, err)
	require.NoError(t, c.LoadTasks(ctx, 1))

	assert.Contains(t, titles(c.State().Tasks), "X")
}

func TestCreateTask_Failure(t *testing.T) {
	svc := testutil.NewFakeService()
	c, _ := newLoggedIn(t, svc)
	svc.CreateErr = &service.HTTPError{StatusCode: 400, Body: `{"title":["too long"]}`}

	_, err := c.CreateTask(context.Background(), "X", "")
	require.Error(t, err)
	st := c.State()
	assert.Empty(t, st.Tasks)
	assert.Equal(t, `error 400: {"title":["too long"]}`, st.Status.Text)
}

func TestMutations_RequireCredential(t *testing.T) {
	svc := testutil.NewFakeService()
	c := controller.New(svc, session.NewMemoryStore(session.Session{}))
	ctx := context.Background()

	_, err := c.CreateTask(ctx, "X", "")
	assert.ErrorIs(t, err, controller.ErrNotAuthenticated)
	_, err = c.ToggleCompletion(ctx, 1)
	assert.ErrorIs(t, err, controller.ErrNotAuthenticated)
	_, err = c.BeginEdit(1)
	assert.ErrorIs(t, err, controller.ErrNotAuthenticated)
	_, err = c.RequestDelete(1)
	assert.ErrorIs(t, err, controller.ErrNotAuthenticated)
	assert.Empty(t, svc.Calls)
}

func TestToggleCompletion_ReplacesOnlyThatTask(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTasks(7)
	c, _ := newLoggedIn(t, svc)
	ctx := context.Background()
	require.NoError(t, c.LoadTasks(ctx, 1))
	before := c.State().Tasks

	updated, err := c.ToggleCompletion(ctx, 5)
	require.NoError(t, err)
	assert.True(t, updated.IsCompleted)

	server, _ := svc.Task(5)
	after := c.State().Tasks
	require.Len(t, after, len(before))
	for i := range after {
		if after[i].ID == 5 {
			assert.Equal(t, server, after[i])
			continue
		}
		assert.Equal(t, before[i], after[i])
	}
	assert.Equal(t, "Task marked as completed.", c.State().Status.Text)

	_, err = c.ToggleCompletion(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "Task reopened.", c.State().Status.Text)
}

func TestToggleCompletion_FailureLeavesTaskUntouched(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTasks(1)
	c, _ := newLoggedIn(t, svc)
	ctx := context.Background()
	require.NoError(t, c.LoadTasks(ctx, 1))

	svc.UpdateErr = &service.HTTPError{StatusCode: 503, Body: "unavailable"}
	_, err := c.ToggleCompletion(ctx, 1)
	require.Error(t, err)
	assert.False(t, c.State().Tasks[0].IsCompleted)
	assert.True(t, c.State().Status.IsError())
}

func TestToggleCompletion_UnknownTask(t *testing.T) {
	svc := testutil.NewFakeService()
	c, _ := newLoggedIn(t, svc)

	_, err := c.ToggleCompletion(context.Background(), 42)
	assert.ErrorIs(t, err, controller.ErrTaskNotFound)
	assert.Zero(t, svc.CallCount("UpdateTask"))
}

func TestEdit_FormLifecycle(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTasks(2)
	c, _ := newLoggedIn(t, svc)
	ctx := context.Background()
	require.NoError(t, c.LoadTasks(ctx, 1))

	form, err := c.BeginEdit(1)
	require.NoError(t, err)
	assert.Equal(t, controller.EditForm{TaskID: 1, Title: "Task 1"}, form)
	require.NotNil(t, c.State().Editing)

	// Empty title keeps the form open and sends nothing
	_, err = c.SubmitEdit(ctx, "  ", "new desc")
	assert.ErrorIs(t, err, controller.ErrEmptyTitle)
	assert.Zero(t, svc.CallCount("UpdateTask"))
	st := c.State()
	require.NotNil(t, st.Editing)
	assert.Equal(t, "new desc", st.Editing.Description)
	assert.Equal(t, "Title cannot be empty.", st.Status.Text)

	res, err := c.SubmitEdit(ctx, "Renamed", "new desc")
	require.NoError(t, err)
	assert.True(t, res.Saved)
	assert.Equal(t, "Renamed", res.Task.Title)

	st = c.State()
	assert.Nil(t, st.Editing)
	assert.Equal(t, []string{"Task 2", "Renamed"}, titles(st.Tasks))
	assert.Equal(t, "new desc", st.Tasks[1].Description)
	assert.Equal(t, "Task updated.", st.Status.Text)
}

func TestEdit_Cancel(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTasks(1)
	c, _ := newLoggedIn(t, svc)
	require.NoError(t, c.LoadTasks(context.Background(), 1))

	_, err := c.BeginEdit(1)
	require.NoError(t, err)
	res := c.CancelEdit()
	assert.False(t, res.Saved)
	assert.Nil(t, c.State().Editing)

	_, err = c.SubmitEdit(context.Background(), "x", "")
	assert.ErrorIs(t, err, controller.ErrNoPendingAction)
	assert.Zero(t, svc.CallCount("UpdateTask"))
}

func TestEditTask_OneStep(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTasks(1)
	c, _ := newLoggedIn(t, svc)
	ctx := context.Background()
	require.NoError(t, c.LoadTasks(ctx, 1))

	_, err := c.EditTask(ctx, 1, "", "")
	assert.ErrorIs(t, err, controller.ErrEmptyTitle)
	assert.Nil(t, c.State().Editing)

	res, err := c.EditTask(ctx, 1, "New", "")
	require.NoError(t, err)
	assert.Equal(t, "New", res.Task.Title)
}

func TestDelete_CancelSendsNothing(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTasks(1)
	c, _ := newLoggedIn(t, svc)
	ctx := context.Background()
	require.NoError(t, c.LoadTasks(ctx, 1))

	task, err := c.RequestDelete(1)
	require.NoError(t, err)
	assert.Equal(t, "Task 1", task.Title)
	require.NotNil(t, c.State().PendingDelete)

	res, err := c.ResolveDelete(ctx, false)
	require.NoError(t, err)
	assert.False(t, res.Deleted)
	assert.Nil(t, c.State().PendingDelete)
	assert.Zero(t, svc.CallCount("DeleteTask"))
	assert.Len(t, c.State().Tasks, 1)

	_, err = c.ResolveDelete(ctx, true)
	assert.ErrorIs(t, err, controller.ErrNoPendingAction)
}

func TestDelete_RemovesWithoutReload(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTasks(3)
	c, _ := newLoggedIn(t, svc)
	ctx := context.Background()
	require.NoError(t, c.LoadTasks(ctx, 1))
	loads := svc.CallCount("ListTasks")

	_, err := c.RequestDelete(2)
	require.NoError(t, err)
	res, err := c.ResolveDelete(ctx, true)
	require.NoError(t, err)
	assert.True(t, res.Deleted)
	assert.False(t, res.Reloaded)

	st := c.State()
	assert.Equal(t, []string{"Task 3", "Task 1"}, titles(st.Tasks))
	assert.Equal(t, 2, st.TotalCount)
	assert.Equal(t, "Task deleted.", st.Status.Text)
	assert.Equal(t, loads, svc.CallCount("ListTasks"))
}

func TestDelete_LastTaskOnPageTwoLoadsPageOne(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTasks(11) // page 2 holds only "Task 1"
	c, _ := newLoggedIn(t, svc)
	ctx := context.Background()
	require.NoError(t, c.LoadTasks(ctx, 2))
	require.Equal(t, []string{"Task 1"}, titles(c.State().Tasks))

	_, err := c.RequestDelete(1)
	require.NoError(t, err)
	res, err := c.ResolveDelete(ctx, true)
	require.NoError(t, err)
	assert.True(t, res.Reloaded)

	q, _ := svc.LastQuery()
	assert.Equal(t, 1, q.Page)
	st := c.State()
	assert.Equal(t, 1, st.Page)
	assert.Len(t, st.Tasks, 10)
	assert.Equal(t, 10, st.TotalCount)
}

func TestDelete_LastTaskOnPageOneReloadsWhenOthersRemain(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("only", false)
	c, _ := newLoggedIn(t, svc)
	ctx := context.Background()
	require.NoError(t, c.LoadTasks(ctx, 1))
	loads := svc.CallCount("ListTasks")

	_, err := c.RequestDelete(1)
	require.NoError(t, err)
	res, err := c.ResolveDelete(ctx, true)
	require.NoError(t, err)
	assert.False(t, res.Reloaded, "nothing left to show")
	assert.Equal(t, loads, svc.CallCount("ListTasks"))
	assert.Empty(t, c.State().Tasks)
}

func TestDelete_FailureKeepsTask(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTasks(1)
	c, _ := newLoggedIn(t, svc)
	ctx := context.Background()
	require.NoError(t, c.LoadTasks(ctx, 1))

	svc.DeleteErr = &service.HTTPError{StatusCode: 500, Body: "nope"}
	_, err := c.RequestDelete(1)
	require.NoError(t, err)
	res, err := c.ResolveDelete(ctx, true)
	require.Error(t, err)
	assert.False(t, res.Deleted)
	assert.Len(t, c.State().Tasks, 1)
	assert.Equal(t, "error 500: nope", c.State().Status.Text)
}

func TestDismissStatus(t *testing.T) {
	svc := testutil.NewFakeService()
	c, _ := newLoggedIn(t, svc)
	_, err := c.CreateTask(context.Background(), "X", "")
	require.NoError(t, err)
	require.NotNil(t, c.State().Status)

	c.DismissStatus()
	assert.Nil(t, c.State().Status)
}

func TestState_IsACopy(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTasks(1)
	c, _ := newLoggedIn(t, svc)
	require.NoError(t, c.LoadTasks(context.Background(), 1))

	st := c.State()
	st.Tasks[0].Title = "mutated"
	assert.Equal(t, "Task 1", c.State().Tasks[0].Title)
}
