package social_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/animahq/anima/pkg/social"
)

func TestTwitterPost(t *testing.T) {
	var gotAuth, gotText string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var body struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		gotText = body.Text
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"data": map[string]string{"id": "1790"}})
	}))
	t.Cleanup(srv.Close)

	tw, err := social.NewTwitter(social.TwitterConfig{BearerToken: "tok", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewTwitter: %v", err)
	}

	id, err := tw.Post(context.Background(), "hello from anima")
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if id != "1790" {
		t.Fatalf("Post id = %q, want 1790", id)
	}
	if gotAuth != "Bearer tok" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	if gotText != "hello from anima" {
		t.Fatalf("tweet text = %q", gotText)
	}
}

func TestTwitterPostRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "duplicate content", http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	tw, err := social.NewTwitter(social.TwitterConfig{BearerToken: "tok", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewTwitter: %v", err)
	}
	if _, err := tw.Post(context.Background(), "x"); err == nil {
		t.Fatal("expected error for rejected post")
	}
}

func TestNewTwitterRequiresToken(t *testing.T) {
	if _, err := social.NewTwitter(social.TwitterConfig{}); err == nil {
		t.Fatal("expected error for missing bearer token")
	}
}
