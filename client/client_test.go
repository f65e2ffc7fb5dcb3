package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"taskboard/domain"
)

func jsonHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestListTasks(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(http.StatusOK,
		`[{"id":1,"title":"one","description":null,"status":"todo"},{"id":2,"title":"two","description":"d","status":"done"}]`))
	defer srv.Close()

	tasks, err := New(srv.URL).ListTasks(context.Background())
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0].Description != nil {
		t.Fatalf("expected nil description, got %#v", tasks[0].Description)
	}
	if tasks[1].Status != domain.StatusDone {
		t.Fatalf("unexpected status: %q", tasks[1].Status)
	}
}

func TestListTasksMalformedResponse(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{name: "invalid json", body: `{not json`},
		{name: "bad status", body: `[{"id":1,"title":"t","description":null,"status":"bogus"}]`},
		{name: "missing title", body: `[{"id":1,"title":"","description":null,"status":"todo"}]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(jsonHandler(http.StatusOK, tc.body))
			defer srv.Close()

			if _, err := New(srv.URL).ListTasks(context.Background()); err == nil {
				t.Fatal("expected malformed response to be rejected")
			}
		})
	}
}

func TestCreateTaskSendsJSONBody(t *testing.T) {
	var gotContentType, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		jsonHandler(http.StatusCreated, `{"id":1,"title":"Write spec","description":null,"status":"todo"}`)(w, r)
	}))
	defer srv.Close()

	task, err := New(srv.URL).CreateTask(context.Background(), domain.CreateTaskInput{Title: "Write spec"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.ID != 1 || task.Status != domain.StatusTodo {
		t.Fatalf("unexpected task: %#v", task)
	}
	if gotContentType != "application/json" {
		t.Fatalf("unexpected content type: %q", gotContentType)
	}
	if !strings.Contains(gotBody, `"title":"Write spec"`) {
		t.Fatalf("unexpected request body: %s", gotBody)
	}
}

func TestCreateTaskLocalValidation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("invalid input must never reach the server")
	}))
	defer srv.Close()

	_, err := New(srv.URL).CreateTask(context.Background(), domain.CreateTaskInput{Title: ""})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Field != "title" {
		t.Fatalf("unexpected field: %q", verr.Field)
	}
}

func TestUpdateTask(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/tasks/1" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		jsonHandler(http.StatusOK, `{"id":1,"title":"Write spec","description":null,"status":"done"}`)(w, r)
	}))
	defer srv.Close()

	done := domain.StatusDone
	task, err := New(srv.URL).UpdateTask(context.Background(), 1, domain.UpdateTaskInput{Status: &done})
	if err != nil {
		t.Fatalf("update task: %v", err)
	}
	if task.Status != domain.StatusDone {
		t.Fatalf("unexpected status: %q", task.Status)
	}
}

func TestServerErrorMessagePreferred(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(http.StatusNotFound, `{"message":"task not found"}`))
	defer srv.Close()

	_, err := New(srv.URL).GetTask(context.Background(), 42)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Message != "task not found" {
		t.Fatalf("expected server message to be preferred, got %q", apiErr.Message)
	}
	if !apiErr.NotFound() {
		t.Fatalf("expected NotFound, status was %d", apiErr.StatusCode)
	}
}

func TestGenericFallbackMessage(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(http.StatusBadGateway, "upstream exploded"))
	defer srv.Close()

	err := New(srv.URL).DeleteTask(context.Background(), 1)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Message != "failed to delete task" {
		t.Fatalf("expected generic fallback, got %q", apiErr.Message)
	}
}

func TestValidationErrorFieldSurfaced(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(http.StatusBadRequest, `{"message":"title must not be empty","field":"title"}`))
	defer srv.Close()

	done := domain.StatusDone
	_, err := New(srv.URL).UpdateTask(context.Background(), 1, domain.UpdateTaskInput{Status: &done})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Field != "title" {
		t.Fatalf("expected field from server body, got %q", apiErr.Field)
	}
}

func TestDeleteTask(t *testing.T) {
	var called bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if r.Method != http.MethodDelete || r.URL.Path != "/api/tasks/7" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	if err := New(srv.URL).DeleteTask(context.Background(), 7); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	if !called {
		t.Fatal("expected request to be issued")
	}
}

func TestTransportErrorWrapsFallback(t *testing.T) {
	c := New("http://127.0.0.1:1")

	_, err := c.ListTasks(context.Background())
	if err == nil {
		t.Fatal("expected transport error")
	}
	if !strings.Contains(err.Error(), "failed to fetch tasks") {
		t.Fatalf("expected fallback message in error, got %v", err)
	}
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(http.StatusOK, `{"status":"ok"}`))
	defer srv.Close()

	if err := New(srv.URL).Health(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
}
