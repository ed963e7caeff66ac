package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"hookwatch/internal/platform/config"
)

func TestCreateHook(t *testing.T) {
	var gotPath string
	var gotBody createHookRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if r.Header.Get("Accept") != "application/vnd.github+json" {
			t.Errorf("Missing GitHub accept header, got %q", r.Header.Get("Accept"))
		}
		if r.Header.Get("Authorization") != "token ghp_test" {
			t.Errorf("Unexpected authorization header: %q", r.Header.Get("Authorization"))
		}
		json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Hook{ID: 12345, Active: true, Events: gotBody.Events})
	}))
	defer server.Close()

	client := NewClient(config.GitHubConfig{Token: "ghp_test", APIBaseURL: server.URL})

	hook, err := client.CreateHook(context.Background(), "octocat", "hello-world", "https://hooks.example.com/hooks/github?id=abc", []string{"push", "pull_request"})
	if err != nil {
		t.Fatalf("CreateHook failed: %v", err)
	}

	if hook.ID != 12345 {
		t.Errorf("Expected hook id 12345, got %d", hook.ID)
	}
	if gotPath != "/repos/octocat/hello-world/hooks" {
		t.Errorf("Unexpected request path: %s", gotPath)
	}
	if gotBody.Name != "web" || !gotBody.Active {
		t.Errorf("Unexpected hook request body: %+v", gotBody)
	}
	if gotBody.Config.URL != "https://hooks.example.com/hooks/github?id=abc" {
		t.Errorf("Unexpected callback URL: %s", gotBody.Config.URL)
	}
	if gotBody.Config.ContentType != "json" || gotBody.Config.InsecureSSL != "0" {
		t.Errorf("Unexpected hook config: %+v", gotBody.Config)
	}
}

func TestCreateHook_SurfacesGitHubMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"message": "Not Found"})
	}))
	defer server.Close()

	client := NewClient(config.GitHubConfig{Token: "ghp_test", APIBaseURL: server.URL})

	_, err := client.CreateHook(context.Background(), "octocat", "missing", "https://hooks.example.com", []string{"push"})
	if err == nil {
		t.Fatal("Expected error for non-2xx response")
	}
	if err.Error() != "failed to create GitHub webhook: Not Found" {
		t.Errorf("Expected GitHub message surfaced, got %q", err.Error())
	}
}

func TestCreateHook_MissingTokenFailsBeforeNetwork(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := NewClient(config.GitHubConfig{APIBaseURL: server.URL})

	_, err := client.CreateHook(context.Background(), "octocat", "hello-world", "https://hooks.example.com", []string{"push"})
	if err != ErrNoToken {
		t.Fatalf("Expected ErrNoToken, got %v", err)
	}
	if called {
		t.Error("No network call should happen without a credential")
	}
}
