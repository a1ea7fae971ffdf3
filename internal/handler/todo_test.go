package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/VidyaQuest-Labs/portal/internal/dto"
	"github.com/VidyaQuest-Labs/portal/internal/repository"
	"github.com/VidyaQuest-Labs/portal/pkg/logger"
	"github.com/gin-gonic/gin"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.InitTestLogger()
	m.Run()
}

func newTodoTestRouter() (*gin.Engine, *repository.TodoRepository) {
	repo := repository.NewTodoRepository()
	h := NewTodoHandler(repo)

	engine := gin.New()
	engine.GET("/todos", h.List)
	engine.POST("/todos", h.Create)
	engine.PUT("/todos", h.Update)
	engine.DELETE("/todos", h.Delete)
	return engine, repo
}

func doRequest(t *testing.T, engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	return doRequestWithHeaders(t, engine, method, path, body, nil)
}

func doRequestWithHeaders(t *testing.T, engine *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestTodoCreateAndList(t *testing.T) {
	engine, _ := newTodoTestRouter()

	w := doRequest(t, engine, http.MethodPost, "/todos", `{"text":"Read chapter 3","userId":"user-1"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var created dto.TodoResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if created.ID == "" || created.Text != "Read chapter 3" || created.Done {
		t.Errorf("Unexpected created todo %+v", created)
	}

	w = doRequest(t, engine, http.MethodGet, "/todos?userId=user-1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var list []dto.TodoResponse
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("Failed to decode list: %v", err)
	}
	if len(list) != 1 || list[0].ID != created.ID {
		t.Errorf("Unexpected list %+v", list)
	}
}

func TestTodoListRequiresUserID(t *testing.T) {
	engine, _ := newTodoTestRouter()

	w := doRequest(t, engine, http.MethodGet, "/todos", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}

func TestTodoUpdate(t *testing.T) {
	engine, repo := newTodoTestRouter()
	created := repo.Add("Finish quiz", "user-1")

	w := doRequest(t, engine, http.MethodPut, "/todos", `{"id":"`+created.ID+`","done":true,"userId":"user-1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var updated dto.TodoResponse
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !updated.Done {
		t.Error("Expected todo to be marked done")
	}
}

func TestTodoUpdateUnknownID(t *testing.T) {
	engine, _ := newTodoTestRouter()

	w := doRequest(t, engine, http.MethodPut, "/todos", `{"id":"missing","done":true,"userId":"user-1"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestTodoDelete(t *testing.T) {
	engine, repo := newTodoTestRouter()
	created := repo.Add("Finish quiz", "user-1")

	w := doRequest(t, engine, http.MethodDelete, "/todos", `{"id":"`+created.ID+`","userId":"user-1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if got := repo.ListByUser("user-1"); len(got) != 0 {
		t.Errorf("Expected empty list after delete, got %d items", len(got))
	}
}

func TestTodoValidation(t *testing.T) {
	engine, _ := newTodoTestRouter()

	tests := []struct {
		name   string
		method string
		body   string
	}{
		{name: "Create missing text", method: http.MethodPost, body: `{"userId":"user-1"}`},
		{name: "Create missing userId", method: http.MethodPost, body: `{"text":"task"}`},
		{name: "Update missing done", method: http.MethodPut, body: `{"id":"x","userId":"user-1"}`},
		{name: "Delete missing id", method: http.MethodDelete, body: `{"userId":"user-1"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, engine, tt.method, "/todos", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d", w.Code)
			}
		})
	}
}
