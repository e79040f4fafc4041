package api

import (
	"encoding/json"
	"net/http"

	"github.com/dgallion1/pdfchat/internal/chat"
)

type chatRequest struct {
	CurrentPage int            `json:"current_page" validate:"min=1"`
	Messages    []chat.Message `json:"messages" validate:"required,min=1,dive"`
}

// handleChat assembles fresh context from the dropped selections and
// the current page, then streams the model's reply as server-sent
// events.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	var req chatRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	sess.SetCurrentPage(req.CurrentPage)

	apiKey := r.Header.Get("X-Gemini-Api-Key")
	if apiKey == "" {
		apiKey = s.cfg.GeminiAPIKey
	}
	if apiKey == "" {
		jsonError(w, "no model API key available", http.StatusUnauthorized)
		return
	}

	contextText, _, err := s.assembleContext(r, req.CurrentPage)
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		jsonError(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	emit := func(event, text string) {
		payload, _ := json.Marshal(map[string]string{"text": text})
		if event != "" {
			w.Write([]byte("event: " + event + "\n"))
		}
		w.Write([]byte("data: "))
		w.Write(payload)
		w.Write([]byte("\n\n"))
		flusher.Flush()
	}

	system := chat.SystemPrompt(contextText)
	err = s.gemini.Stream(r.Context(), apiKey, system, req.Messages, func(text string) error {
		emit("", text)
		return nil
	})
	if err != nil {
		s.log.Error("chat stream failed", "session_id", sess.ID, "error", err)
		emit("error", "chat request failed")
		return
	}
	emit("done", "")
}

func (s *Server) handleClearChat(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	sess.ClearChat()
	w.WriteHeader(http.StatusNoContent)
}

type renderRequest struct {
	Markdown string `json:"markdown" validate:"required"`
}

// handleRenderMarkdown converts assistant markdown to sanitized HTML.
func (s *Server) handleRenderMarkdown(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	rendered, err := chat.RenderMarkdown(req.Markdown)
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"html": rendered})
}
