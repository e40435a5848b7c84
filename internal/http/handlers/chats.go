package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"jengabiashara/internal/chat"
	"jengabiashara/internal/domain"
)

type chatMessageRequest struct {
	Message string `json:"message"`
}

// ChatMessages returns the conversation transcript.
func (a *App) ChatMessages(w http.ResponseWriter, r *http.Request) {
	ws := a.workspace(w, r)
	if ws == nil {
		return
	}
	a.json(w, http.StatusOK, map[string]any{"messages": ws.Chat.Messages()})
}

// ChatSend runs one streamed exchange over SSE. Events: rotating `status`
// lines while the first chunk is pending, `delta` per reply chunk, then a
// single `done` with the full transcript. Transport failures emit `error`
// before `done`; the transcript then ends with the apology entry. A
// whitespace-only message is ignored and answers `done` immediately.
func (a *App) ChatSend(w http.ResponseWriter, r *http.Request) {
	ws := a.workspace(w, r)
	if ws == nil {
		return
	}
	var req chatMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		a.error(w, http.StatusInternalServerError, "internal", "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	var mu sync.Mutex
	emit := func(event string, v any) {
		data, err := json.Marshal(v)
		if err != nil {
			return
		}
		mu.Lock()
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
		flusher.Flush()
		mu.Unlock()
	}

	// Rotate status lines until the first delta lands or the exchange ends.
	emit("status", map[string]string{"message": chat.LoadingMessages[0]})
	stopStatus := make(chan struct{})
	statusDone := make(chan struct{})
	var stopOnce sync.Once
	settle := func() { stopOnce.Do(func() { close(stopStatus) }) }
	go func() {
		defer close(statusDone)
		ticker := time.NewTicker(chat.LoadingMessageInterval)
		defer ticker.Stop()
		for idx := 1; ; idx++ {
			select {
			case <-stopStatus:
				return
			case <-ticker.C:
				emit("status", map[string]string{"message": chat.LoadingMessages[idx%len(chat.LoadingMessages)]})
			}
		}
	}()

	err := ws.Chat.Send(r.Context(), req.Message, func(delta string) {
		settle()
		emit("delta", map[string]string{"text": delta})
	})
	settle()
	<-statusDone

	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		// Ignored input: transcript unchanged.
	case errors.Is(err, domain.ErrDuplicateOperation):
		emit("error", map[string]string{"message": chat.BusyReply})
	case err != nil:
		a.Log.Error().Err(err).Msg("chat exchange failed")
		emit("error", map[string]string{"message": chat.ConnectFailureReply})
	}
	emit("done", map[string]any{"messages": ws.Chat.Messages()})
}
