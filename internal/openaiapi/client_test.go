package openaiapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"fairytale/internal/apperr"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	l := logrus.New()
	l.SetOutput(io.Discard)
	return New(Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1"}, l)
}

func TestSpeech(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/speech" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("auth header = %q", r.Header.Get("Authorization"))
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("ID3audio"))
	})

	audio, err := c.Speech(context.Background(), "Once upon a time", "nova", 9)
	if err != nil {
		t.Fatalf("Speech: %v", err)
	}
	if string(audio) != "ID3audio" {
		t.Errorf("audio = %q", audio)
	}
	if got["model"] != "tts-1" || got["voice"] != "nova" || got["response_format"] != "mp3" {
		t.Errorf("request = %v", got)
	}
	if got["speed"] != 4.0 {
		t.Errorf("speed = %v, want clamped 4", got["speed"])
	}
}

func TestSpeechRejectsBadInput(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	cases := []struct {
		text, voice string
		speed       float64
	}{
		{"hi", "alloy", 0},
		{"hi", "alloy", -1},
		{"hi", "robot", 1},
		{" ", "alloy", 1},
	}
	for _, tc := range cases {
		if _, err := c.Speech(context.Background(), tc.text, tc.voice, tc.speed); !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("Speech(%q, %q, %v) err = %v, want ErrValidation", tc.text, tc.voice, tc.speed, err)
		}
	}
	if called {
		t.Error("upstream called for invalid input")
	}
}

func TestSpeechUpstreamError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`)
	})
	_, err := c.Speech(context.Background(), "hello", "alloy", 1)
	if !errors.Is(err, apperr.ErrUpstream) {
		t.Fatalf("err = %v, want ErrUpstream", err)
	}
	if !strings.Contains(err.Error(), "Incorrect API key") {
		t.Errorf("upstream message lost: %v", err)
	}
}

func TestIllustrate(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/images/generations" {
			http.NotFound(w, r)
			return
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"created":1,"data":[{"url":"https://img.example.com/luna.png"}]}`)
	})

	url, err := c.Illustrate(context.Background(), "Luna\nthe brave bunny")
	if err != nil {
		t.Fatalf("Illustrate: %v", err)
	}
	if url != "https://img.example.com/luna.png" {
		t.Errorf("url = %q", url)
	}
	if got["model"] != "dall-e-3" || got["size"] != "1024x1024" || got["quality"] != "standard" {
		t.Errorf("request = %v", got)
	}
	if p, _ := got["prompt"].(string); !strings.Contains(p, "Luna the brave bunny") {
		t.Errorf("prompt = %q", p)
	}
}

func TestIllustrateEmptyData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"created":1,"data":[]}`)
	})
	if _, err := c.Illustrate(context.Background(), "story"); !errors.Is(err, apperr.ErrUpstream) {
		t.Fatalf("err = %v, want ErrUpstream", err)
	}
}

func TestIllustrationPrompt(t *testing.T) {
	story := strings.Repeat("가", 299) + "\n" + strings.Repeat("Q", 50)
	p := IllustrationPrompt(story)
	if strings.Contains(p, "\n") {
		t.Error("prompt contains newline")
	}
	if strings.Contains(p, "Q") {
		t.Errorf("prompt not truncated at 300 runes: %q", p)
	}
}

func TestIsVoice(t *testing.T) {
	if !IsVoice("shimmer") || IsVoice("Shimmer") || IsVoice("") {
		t.Error("IsVoice mismatch")
	}
}
