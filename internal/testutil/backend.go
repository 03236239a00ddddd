package testutil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"todo/internal/service"
)

// BackendPrefix is the path under which the fake backend serves the API.
const BackendPrefix = "/api"

// AccessTTL is the lifetime of access tokens issued by the fake backend.
const AccessTTL = 5 * time.Minute

// Claims are the JWT claims issued by the fake backend.
type Claims struct {
	TokenType string `json:"token_type"`
	UserID    int64  `json:"user_id"`
	jwt.RegisteredClaims
}

// Request is one request seen by the fake backend.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Auth   string
	Body   string
}

type backendUser struct {
	id       int64
	username string
	password string
	email    string
}

// Backend is an in-process REST backend with token auth, per-user tasks,
// is_completed filtering and page-number pagination (10 per page, newest first).
type Backend struct {
	*httptest.Server

	secret []byte

	mu         sync.Mutex
	users      map[string]*backendUser
	tasks      []service.Task
	nextUserID int64
	nextTaskID int64
	requests   []Request
	failNext   *failure
	now        func() time.Time
}

type failure struct {
	status int
	body   string
}

// NewBackend starts a fake backend; it is closed when the test ends.
func NewBackend(t testing.TB) *Backend {
	t.Helper()

	b := &Backend{
		secret:     []byte("test-secret-" + uuid.NewString()),
		users:      make(map[string]*backendUser),
		nextUserID: 1,
		nextTaskID: 1,
		now:        time.Now,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(b.record)
	r.Use(b.injectFailure)

	r.Route(BackendPrefix, func(r chi.Router) {
		r.Post("/token/", b.handleToken)
		r.Post("/register/", b.handleRegister)

		r.Group(func(r chi.Router) {
			r.Use(b.requireAuth)
			r.Get("/tasks/", b.handleList)
			r.Post("/tasks/", b.handleCreate)
			r.Patch("/tasks/{id}/", b.handleUpdate)
			r.Delete("/tasks/{id}/", b.handleDelete)
		})
	})

	b.Server = httptest.NewServer(r)
	t.Cleanup(b.Server.Close)
	return b
}

// BaseURL returns the API base URL to configure clients with.
func (b *Backend) BaseURL() string {
	return b.Server.URL + BackendPrefix
}

// AddUser creates an account.
func (b *Backend) AddUser(username, password string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.addUserLocked(username, password, "")
}

// AddTask creates a task owned by username and returns it.
func (b *Backend) AddTask(username, title string, completed bool) service.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	u := b.users[username]
	if u == nil {
		u = b.addUserLocked(username, "password", "")
	}
	return b.addTaskLocked(u.id, title, "", completed)
}

// IssueTokens returns a valid credential pair for an existing user.
func (b *Backend) IssueTokens(username string) service.Tokens {
	b.mu.Lock()
	defer b.mu.Unlock()
	u := b.users[username]
	if u == nil {
		u = b.addUserLocked(username, "password", "")
	}
	return b.issueLocked(u)
}

// FailNext makes the next request answer with status and body.
func (b *Backend) FailNext(status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failNext = &failure{status: status, body: body}
}

// Requests returns the requests seen so far.
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Request(nil), b.requests...)
}

// LastRequest returns the most recent request.
func (b *Backend) LastRequest() Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.requests) == 0 {
		return Request{}
	}
	return b.requests[len(b.requests)-1]
}

// Secret returns the HMAC key tokens are signed with.
func (b *Backend) Secret() []byte {
	return b.secret
}

func (b *Backend) addUserLocked(username, password, email string) *backendUser {
	u := &backendUser{id: b.nextUserID, username: username, password: password, email: email}
	b.nextUserID++
	b.users[username] = u
	return u
}

func (b *Backend) addTaskLocked(owner int64, title, description string, completed bool) service.Task {
	t := service.Task{
		ID:          b.nextTaskID,
		Title:       title,
		Description: description,
		IsCompleted: completed,
		CreatedAt:   b.now().UTC().Truncate(time.Microsecond),
		Owner:       owner,
	}
	b.nextTaskID++
	b.tasks = append(b.tasks, t)
	return t
}

func (b *Backend) issueLocked(u *backendUser) service.Tokens {
	now := b.now()
	sign := func(tokenType string, ttl time.Duration) string {
		claims := Claims{
			TokenType: tokenType,
			UserID:    u.id,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   strconv.FormatInt(u.id, 10),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
				ID:        uuid.NewString(),
			},
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.secret)
		if err != nil {
			panic(err)
		}
		return signed
	}
	return service.Tokens{
		Access:  sign("access", AccessTTL),
		Refresh: sign("refresh", 24*time.Hour),
	}
}

// Middleware

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		b.mu.Lock()
		b.requests = append(b.requests, Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Auth:   r.Header.Get("Authorization"),
			Body:   string(body),
		})
		b.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (b *Backend) injectFailure(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		f := b.failNext
		b.failNext = nil
		b.mu.Unlock()

		if f != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(f.status)
			io.WriteString(w, f.body)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type userKey struct{}

func withUser(r *http.Request, id int64) context.Context {
	return context.WithValue(r.Context(), userKey{}, id)
}

func userFrom(r *http.Request) int64 {
	id, _ := r.Context().Value(userKey{}).(int64)
	return id
}

func (b *Backend) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok {
			writeJSON(w, http.StatusUnauthorized, detail("Authentication credentials were not provided."))
			return
		}

		claims := &Claims{}
		_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
			return b.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || claims.TokenType != "access" {
			writeJSON(w, http.StatusUnauthorized, detail("Given token not valid for any token type"))
			return
		}

		next.ServeHTTP(w, r.WithContext(withUser(r, claims.UserID)))
	})
}

// Handlers

func (b *Backend) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, detail("Malformed form body."))
		return
	}
	username := r.PostForm.Get("username")
	password := r.PostForm.Get("password")

	b.mu.Lock()
	defer b.mu.Unlock()

	u := b.users[username]
	if u == nil || u.password != password {
		writeJSON(w, http.StatusUnauthorized, detail("No active account found with the given credentials"))
		return
	}
	writeJSON(w, http.StatusOK, b.issueLocked(u))
}

func (b *Backend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var reg service.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		writeJSON(w, http.StatusBadRequest, detail("JSON parse error."))
		return
	}

	fieldErrs := map[string][]string{}
	if strings.TrimSpace(reg.Username) == "" {
		fieldErrs["username"] = []string{"This field may not be blank."}
	}
	if len(reg.Password) < 6 {
		fieldErrs["password"] = []string{"Ensure this field has at least 6 characters."}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.users[reg.Username]; exists {
		fieldErrs["username"] = []string{"A user with that username already exists."}
	}
	if len(fieldErrs) > 0 {
		writeJSON(w, http.StatusBadRequest, fieldErrs)
		return
	}

	u := b.addUserLocked(reg.Username, reg.Password, reg.Email)
	tokens := b.issueLocked(u)
	writeJSON(w, http.StatusCreated, map[string]any{
		"user":    map[string]any{"id": u.id, "username": u.username, "email": u.email},
		"access":  tokens.Access,
		"refresh": tokens.Refresh,
	})
}

func (b *Backend) handleList(w http.ResponseWriter, r *http.Request) {
	owner := userFrom(r)
	q := r.URL.Query()

	var want *bool
	if v := q.Get("is_completed"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string][]string{"is_completed": {"Enter a valid boolean."}})
			return
		}
		want = &parsed
	}

	page := 1
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusNotFound, detail("Invalid page."))
			return
		}
		page = n
	}

	b.mu.Lock()
	var matched []service.Task
	for _, t := range b.tasks {
		if t.Owner != owner {
			continue
		}
		if want != nil && t.IsCompleted != *want {
			continue
		}
		matched = append(matched, t)
	}
	b.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	start := (page - 1) * service.PageSize
	if page > 1 && start >= len(matched) {
		writeJSON(w, http.StatusNotFound, detail("Invalid page."))
		return
	}
	end := min(start+service.PageSize, len(matched))

	resp := service.TaskPage{
		Count:   len(matched),
		Results: append([]service.Task{}, matched[start:end]...),
	}
	if end < len(matched) {
		next := pageURL(r, page+1)
		resp.Next = &next
	}
	if page > 1 {
		prev := pageURL(r, page-1)
		resp.Previous = &prev
	}
	writeJSON(w, http.StatusOK, resp)
}

func (b *Backend) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in service.NewTask
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, detail("JSON parse error."))
		return
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"title": {"This field may not be blank."}})
		return
	}

	b.mu.Lock()
	task := b.addTaskLocked(userFrom(r), title, in.Description, in.IsCompleted)
	b.mu.Unlock()

	writeJSON(w, http.StatusCreated, task)
}

func (b *Backend) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch service.TaskPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, detail("JSON parse error."))
		return
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"title": {"This field may not be blank."}})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	i, err := b.findLocked(r)
	if err != nil {
		writeJSON(w, http.StatusNotFound, detail("No Task matches the given query."))
		return
	}
	t := b.tasks[i]
	if patch.Title != nil {
		t.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.IsCompleted != nil {
		t.IsCompleted = *patch.IsCompleted
	}
	b.tasks[i] = t
	writeJSON(w, http.StatusOK, t)
}

func (b *Backend) handleDelete(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	i, err := b.findLocked(r)
	if err != nil {
		writeJSON(w, http.StatusNotFound, detail("No Task matches the given query."))
		return
	}
	b.tasks = append(b.tasks[:i], b.tasks[i+1:]...)
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) findLocked(r *http.Request) (int, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return -1, err
	}
	owner := userFrom(r)
	for i, t := range b.tasks {
		if t.ID == id && t.Owner == owner {
			return i, nil
		}
	}
	return -1, errors.New("not found")
}

func pageURL(r *http.Request, page int) string {
	q := r.URL.Query()
	q.Set("page", strconv.Itoa(page))
	return fmt.Sprintf("http://%s%s?%s", r.Host, r.URL.Path, q.Encode())
}

func detail(msg string) map[string]string {
	return map[string]string{"detail": msg}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
