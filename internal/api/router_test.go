package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"taskzone/internal/app/cache"
	"taskzone/internal/app/service"
	"taskzone/internal/common"
	"taskzone/internal/common/security"
	"taskzone/internal/domain/model"
	"taskzone/internal/domain/repository"
	"taskzone/internal/platform/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// In-memory repositories so the full HTTP surface can be exercised without a
// database.

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]model.User
}

func (r *memUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return fmt.Errorf("duplicate email: %w", common.ErrConflict)
		}
	}
	r.users[user.ID] = *user
	return nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *memUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	u := user
	return &u, nil
}

type memRefreshRepo struct {
	mu     sync.Mutex
	tokens map[string]model.RefreshToken
}

func (r *memRefreshRepo) Create(_ context.Context, token *model.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token.Token] = *token
	return nil
}

func (r *memRefreshRepo) FindByToken(_ context.Context, token string) (*model.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.tokens[token]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &record, nil
}

func (r *memRefreshRepo) DeleteByToken(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, token)
	return nil
}

func (r *memRefreshRepo) DeleteExpired(_ context.Context) (int64, error) {
	return 0, nil
}

type memTaskRepo struct {
	mu    sync.Mutex
	tasks map[string]model.Task
}

func (r *memTaskRepo) Create(_ context.Context, task *model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	task.CreatedAt = time.Now()
	task.UpdatedAt = task.CreatedAt
	r.tasks[task.ID] = *task
	return nil
}

func (r *memTaskRepo) FindByID(_ context.Context, id string) (*model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	t := task
	return &t, nil
}

func (r *memTaskRepo) Update(_ context.Context, id string, patch repository.TaskUpdate) (*model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Collaborators != nil {
		task.Collaborators = *patch.Collaborators
	}
	task.UpdatedAt = time.Now()
	r.tasks[id] = task
	t := task
	return &t, nil
}

func (r *memTaskRepo) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[id]; !ok {
		return false, nil
	}
	delete(r.tasks, id)
	return true, nil
}

func (r *memTaskRepo) List(_ context.Context, filter repository.TaskFilter, _ repository.TaskSort, _, _ int) ([]model.Task, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tasks := []model.Task{}
	for _, task := range r.tasks {
		if filter.OwnerID != "" && task.UserID != filter.OwnerID {
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks, len(tasks), nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	config.AppConfig = &config.Config{
		AccessTokenKey:  []byte("router-test-access"),
		RefreshTokenKey: []byte("router-test-refresh"),
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		TaskCacheTTL:    600 * time.Second,
	}
	security.InitJWT()

	tokenService := service.NewTokenService(&memRefreshRepo{tokens: map[string]model.RefreshToken{}})
	authService := service.NewAuthService(&memUserRepo{users: map[string]model.User{}}, tokenService)
	taskService := service.NewTaskService(
		&memTaskRepo{tasks: map[string]model.Task{}},
		cache.NewMemoryTaskCache(config.AppConfig.TaskCacheTTL),
	)

	server := httptest.NewServer(NewRouter(authService, tokenService, taskService))
	t.Cleanup(server.Close)
	return server
}

func doJSON(t *testing.T, method, url, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	decoded := map[string]interface{}{}
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func registerAndLogin(t *testing.T, baseURL, username, email, role string) (token string, userID string) {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, baseURL+"/api/users/register", "", map[string]string{
		"username": username,
		"email":    email,
		"password": "pw12345",
		"role":     role,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	userID = body["data"].(map[string]interface{})["id"].(string)

	resp, body = doJSON(t, http.MethodPost, baseURL+"/api/users/login", "", map[string]string{
		"email":    email,
		"password": "pw12345",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token = body["data"].(map[string]interface{})["accessToken"].(string)
	return token, userID
}

func TestTaskLifecycleOverHTTP(t *testing.T) {
	server := newTestServer(t)

	u1Token, _ := registerAndLogin(t, server.URL, "u1", "u1@example.com", "")
	u2Token, u2ID := registerAndLogin(t, server.URL, "u2", "u2@example.com", "")

	// U1 creates a task.
	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/tasks/create", u1Token, map[string]interface{}{
		"title":       "A",
		"description": "d",
		"deadline":    "2025-01-01T00:00:00Z",
		"category":    "c",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	taskID := body["data"].(map[string]interface{})["id"].(string)

	// U2 is neither owner nor collaborator: update forbidden.
	resp, _ = doJSON(t, http.MethodPut, server.URL+"/api/tasks/update/"+taskID, u2Token, map[string]string{"title": "B"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// U1 adds U2 as collaborator.
	resp, _ = doJSON(t, http.MethodPut, server.URL+"/api/tasks/update/"+taskID, u1Token, map[string]interface{}{
		"collaborators": []string{u2ID},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Now U2 may update...
	resp, _ = doJSON(t, http.MethodPut, server.URL+"/api/tasks/update/"+taskID, u2Token, map[string]string{"title": "B"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// ...but still not delete.
	resp, _ = doJSON(t, http.MethodDelete, server.URL+"/api/tasks/delete/"+taskID, u2Token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// The owner deletes, and the task is gone right away (cache invalidated).
	resp, _ = doJSON(t, http.MethodDelete, server.URL+"/api/tasks/delete/"+taskID, u1Token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, server.URL+"/api/tasks/get/"+taskID, u1Token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdminCanDeleteAnyTask(t *testing.T) {
	server := newTestServer(t)

	u1Token, _ := registerAndLogin(t, server.URL, "u1", "u1@example.com", "")
	adminToken, _ := registerAndLogin(t, server.URL, "boss", "boss@example.com", "admin")

	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/tasks/create", u1Token, map[string]interface{}{
		"title":       "A",
		"description": "d",
		"deadline":    "2025-01-01T00:00:00Z",
		"category":    "c",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	taskID := body["data"].(map[string]interface{})["id"].(string)

	resp, _ = doJSON(t, http.MethodDelete, server.URL+"/api/tasks/delete/"+taskID, adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestTaskRoutesRequireToken(t *testing.T) {
	server := newTestServer(t)

	resp, _ := doJSON(t, http.MethodGet, server.URL+"/api/tasks/get", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, server.URL+"/api/tasks/get", "garbage-token", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRefreshTokenFlow(t *testing.T) {
	server := newTestServer(t)

	registerAndLogin(t, server.URL, "u1", "u1@example.com", "")
	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/users/login", "", map[string]string{
		"email":    "u1@example.com",
		"password": "pw12345",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	refreshToken := body["data"].(map[string]interface{})["refreshToken"].(string)

	resp, body = doJSON(t, http.MethodPost, server.URL+"/api/users/refresh-token", "", map[string]string{
		"refreshToken": refreshToken,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	newAccess := body["data"].(map[string]interface{})["accessToken"].(string)
	assert.NotEmpty(t, newAccess)

	// The new access token works against a protected route.
	resp, _ = doJSON(t, http.MethodGet, server.URL+"/api/tasks/get", newAccess, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Missing and malformed refresh tokens.
	resp, _ = doJSON(t, http.MethodPost, server.URL+"/api/users/refresh-token", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, server.URL+"/api/users/refresh-token", "", map[string]string{
		"refreshToken": "bogus",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRegisterConflictAndLoginFailures(t *testing.T) {
	server := newTestServer(t)

	registerAndLogin(t, server.URL, "u1", "u1@example.com", "")

	resp, _ := doJSON(t, http.MethodPost, server.URL+"/api/users/register", "", map[string]string{
		"username": "other",
		"email":    "u1@example.com",
		"password": "pw",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, server.URL+"/api/users/login", "", map[string]string{
		"email":    "nobody@example.com",
		"password": "pw",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, server.URL+"/api/users/login", "", map[string]string{
		"email":    "u1@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogout(t *testing.T) {
	server := newTestServer(t)

	token, _ := registerAndLogin(t, server.URL, "u1", "u1@example.com", "")

	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/users/logout", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
}
