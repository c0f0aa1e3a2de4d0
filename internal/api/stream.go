package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/shiksha-ai/shiksha-server/internal/content"
)

const streamReadTimeout = 10 * time.Second

// streamFrame is one websocket message in an explanation stream.
type streamFrame struct {
	Content string `json:"content,omitempty"`
	Done    bool   `json:"done,omitempty"`
	Error   string `json:"error,omitempty"`
}

// handleStream serves explanations over a websocket: the client sends one
// ExplanationRequest and receives content chunks until a done frame.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()

	readCtx, cancel := context.WithTimeout(ctx, streamReadTimeout)
	var req content.ExplanationRequest
	err = wsjson.Read(readCtx, conn, &req)
	cancel()
	if err != nil {
		conn.Close(websocket.StatusPolicyViolation, "expected an explanation request")
		return
	}

	ch, err := s.generator.StreamExplanation(ctx, req)
	if err != nil {
		var verr *content.ValidationError
		msg := "generation failed"
		if errors.As(err, &verr) {
			msg = verr.Error()
		}
		wsjson.Write(ctx, conn, streamFrame{Error: msg, Done: true})
		conn.Close(websocket.StatusNormalClosure, "")
		return
	}

	done := false
	for chunk := range ch {
		frame := streamFrame{Content: chunk.Content, Done: chunk.Done}
		if chunk.Error != nil {
			frame.Error = chunk.Error.Error()
			frame.Done = true
		}
		if err := wsjson.Write(ctx, conn, frame); err != nil {
			slog.Debug("stream write failed", "error", err)
			return
		}
		if frame.Done {
			done = true
			break
		}
	}
	if !done {
		// Clients that only saw content chunks still need a terminator.
		wsjson.Write(ctx, conn, streamFrame{Done: true})
	}
	conn.Close(websocket.StatusNormalClosure, "")
}
