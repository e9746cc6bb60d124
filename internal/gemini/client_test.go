package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"medassist-ai/internal/llm"
)

func newTestServer(t *testing.T, status int, body string, got *generateContentRequest, gotPath *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("api key header = %q", r.Header.Get("x-goog-api-key"))
		}
		if gotPath != nil {
			*gotPath = r.URL.Path
		}
		if got != nil {
			if err := json.NewDecoder(r.Body).Decode(got); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

const okBody = `{"candidates":[{"content":{"role":"model","parts":[{"text":"Findings: "},{"text":"none."}]}}]}`

func TestAnalyzeImage(t *testing.T) {
	var req generateContentRequest
	var path string
	srv := newTestServer(t, http.StatusOK, okBody, &req, &path)
	defer srv.Close()

	c := New(Options{APIKey: "test-key", BaseURL: srv.URL, HTTPClient: srv.Client()})

	text, err := c.AnalyzeImage(context.Background(), llm.ImageInput{Data: []byte{0xff, 0xd8, 0xff}, MimeType: "image/jpeg"})
	if err != nil {
		t.Fatalf("AnalyzeImage: %v", err)
	}
	if text != "Findings: none." {
		t.Errorf("text = %q", text)
	}
	if path != "/v1beta/models/gemini-1.5-pro:generateContent" {
		t.Errorf("path = %q", path)
	}

	if len(req.Contents) != 1 || len(req.Contents[0].Parts) != 2 {
		t.Fatalf("unexpected contents: %+v", req.Contents)
	}
	img := req.Contents[0].Parts[0].InlineData
	if img == nil || img.MimeType != "image/jpeg" || img.Data != base64.StdEncoding.EncodeToString([]byte{0xff, 0xd8, 0xff}) {
		t.Errorf("image part = %+v", img)
	}
	if !strings.Contains(req.Contents[0].Parts[1].Text, "medical practitioner") {
		t.Errorf("prompt part = %q", req.Contents[0].Parts[1].Text)
	}

	want := generationConfig{Temperature: 1, TopP: 0.95, TopK: 64, MaxOutputTokens: 8192}
	if req.GenerationConfig != want {
		t.Errorf("generation config = %+v, want %+v", req.GenerationConfig, want)
	}
}

func TestAnswer(t *testing.T) {
	var req generateContentRequest
	srv := newTestServer(t, http.StatusOK, okBody, &req, nil)
	defer srv.Close()

	c := New(Options{APIKey: "test-key", BaseURL: srv.URL, Model: "gemini-1.5-flash", HTTPClient: srv.Client()})

	if _, err := c.Answer(context.Background(), "What causes a headache?"); err != nil {
		t.Fatalf("Answer: %v", err)
	}

	parts := req.Contents[0].Parts
	if len(parts) != 2 {
		t.Fatalf("parts = %+v", parts)
	}
	if !strings.Contains(parts[0].Text, "MedAssist") {
		t.Errorf("first part should be the assistant prompt, got %q", parts[0].Text)
	}
	if parts[1].Text != "What causes a headache?" {
		t.Errorf("second part = %q", parts[1].Text)
	}
}

func TestGenerateErrors(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		wantErr error
		wantMsg string
	}{
		{"upstream status", http.StatusInternalServerError, `{"error":"boom"}`, nil, "500"},
		{"no candidates", http.StatusOK, `{"candidates":[]}`, llm.ErrEmptyResponse, ""},
		{"blocked prompt", http.StatusOK, `{"promptFeedback":{"blockReason":"SAFETY"}}`, llm.ErrEmptyResponse, "SAFETY"},
		{"bad json", http.StatusOK, `not json`, nil, "decode response"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(t, tc.status, tc.body, nil, nil)
			defer srv.Close()

			c := New(Options{APIKey: "test-key", BaseURL: srv.URL, HTTPClient: srv.Client()})
			_, err := c.Answer(context.Background(), "hi")
			if err == nil {
				t.Fatal("expected error")
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Errorf("err = %v, want %v", err, tc.wantErr)
			}
			if tc.wantMsg != "" && !strings.Contains(err.Error(), tc.wantMsg) {
				t.Errorf("err = %v, want it to mention %q", err, tc.wantMsg)
			}
		})
	}
}

func TestNilHTTPClient(t *testing.T) {
	c := New(Options{APIKey: "k"})
	if _, err := c.Answer(context.Background(), "hi"); err == nil {
		t.Fatal("expected error for nil http client")
	}
}
