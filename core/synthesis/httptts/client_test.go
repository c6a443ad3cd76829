package httptts

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/voxloop/voxloop-core/core/synthesis"
)

func TestSynthesizeReturnsAudioBytes(t *testing.T) {
	var received synthesis.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tts/stream" {
			t.Errorf("expected request path /tts/stream, got %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		_, _ = w.Write([]byte{0x01, 0x02, 0x03})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	audio, err := client.Synthesize(context.Background(), synthesis.Request{Text: "Hello there.", Language: "en", Sequence: 4})
	if err != nil {
		t.Fatalf("expected synthesis to succeed, got %v", err)
	}

	if !bytes.Equal(audio, []byte{0x01, 0x02, 0x03}) {
		t.Fatalf("expected audio bytes from the endpoint, got %v", audio)
	}
	if received.Text != "Hello there." || received.Language != "en" || received.Sequence != 4 {
		t.Fatalf("expected request fields to round-trip, got %+v", received)
	}
}

func TestSynthesizeTreatsNonSuccessStatusAsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "voice model unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if _, err := client.Synthesize(context.Background(), synthesis.Request{Text: "Hello."}); err == nil {
		t.Fatalf("expected an error for a 503 response")
	}
}

func TestSynthesizeHonoursContextTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		_, _ = w.Write([]byte{0x01})
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := NewClient(server.URL)
	if _, err := client.Synthesize(ctx, synthesis.Request{Text: "Hello."}); err == nil {
		t.Fatalf("expected an error once the context deadline passed")
	}
}
