package api_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/shiksha-ai/shiksha-server/internal/ai"
)

func TestStreamExplanation(t *testing.T) {
	srv := newTestServer(t, ai.NewMockProvider("Water expands when it freezes."), nil)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/content/stream"
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	err = wsjson.Write(ctx, conn, map[string]any{
		"subject": "Science",
		"grade":   5,
		"concept": "freezing",
	})
	if err != nil {
		t.Fatalf("write request: %v", err)
	}

	var content strings.Builder
	for {
		var frame struct {
			Content string `json:"content"`
			Done    bool   `json:"done"`
			Error   string `json:"error"`
		}
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			t.Fatalf("read frame: %v", err)
		}
		if frame.Error != "" {
			t.Fatalf("stream error: %s", frame.Error)
		}
		content.WriteString(frame.Content)
		if frame.Done {
			break
		}
	}

	if got := content.String(); got != "Water expands when it freezes." {
		t.Errorf("streamed content = %q", got)
	}
}

func TestStreamRejectsInvalidRequest(t *testing.T) {
	srv := newTestServer(t, ai.NewMockProvider("unused"), nil)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/content/stream"
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	// Missing concept.
	if err := wsjson.Write(ctx, conn, map[string]any{"subject": "Science", "grade": 5}); err != nil {
		t.Fatal(err)
	}

	var frame struct {
		Done  bool   `json:"done"`
		Error string `json:"error"`
	}
	if err := wsjson.Read(ctx, conn, &frame); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if frame.Error == "" || !frame.Done {
		t.Errorf("frame = %+v, want terminal error frame", frame)
	}
}
