package extract

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestZeroShotClassify(t *testing.T) {
	var gotLabels []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Inputs     string `json:"inputs"`
			Parameters struct {
				CandidateLabels []string `json:"candidate_labels"`
			} `json:"parameters"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		gotLabels = body.Parameters.CandidateLabels
		w.Write([]byte(`{"labels": ["gunfire", "fire"], "scores": [0.91, 0.05]}`))
	}))
	defer srv.Close()

	c := NewZeroShotClassifier(srv.Client(), srv.URL, "")
	preds, err := c.Classify(context.Background(), "Shots fired near the park", []string{"gunfire", "fire"})
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	want := []Prediction{{Label: "gunfire", Score: 0.91}, {Label: "fire", Score: 0.05}}
	if !reflect.DeepEqual(preds, want) {
		t.Fatalf("expected %v, got %v", want, preds)
	}
	if !reflect.DeepEqual(gotLabels, []string{"gunfire", "fire"}) {
		t.Fatalf("candidate labels not forwarded: %v", gotLabels)
	}
}

func TestZeroShotBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"labels": ["fire"], "scores": [0.5]}`))
	}))
	defer srv.Close()

	c := NewZeroShotClassifier(srv.Client(), srv.URL, "hf-token")
	if _, err := c.Classify(context.Background(), "smoke", []string{"fire"}); err != nil {
		t.Fatalf("classify: %v", err)
	}
	if gotAuth != "Bearer hf-token" {
		t.Fatalf("auth header %q", gotAuth)
	}
}

func TestZeroShotErrorOnStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewZeroShotClassifier(srv.Client(), srv.URL, "")
	if _, err := c.Classify(context.Background(), "smoke", []string{"fire"}); err == nil {
		t.Fatal("expected an error on 5xx")
	}
}

func TestZeroShotErrorOnMismatchedArrays(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"labels": ["fire", "gunfire"], "scores": [0.5]}`))
	}))
	defer srv.Close()

	c := NewZeroShotClassifier(srv.Client(), srv.URL, "")
	if _, err := c.Classify(context.Background(), "smoke", []string{"fire"}); err == nil {
		t.Fatal("expected an error for mismatched labels/scores")
	}
}

func TestZeroShotErrorWithoutEndpoint(t *testing.T) {
	c := NewZeroShotClassifier(nil, "", "")
	if _, err := c.Classify(context.Background(), "smoke", []string{"fire"}); err == nil {
		t.Fatal("expected an error without a configured endpoint")
	}
}
