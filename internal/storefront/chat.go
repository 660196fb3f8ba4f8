package storefront

import (
	"fmt"
	"net/http"
	"strings"

	"WhipStore/pkg/kit"
)

type chatReq struct {
	Message string `json:"message" validate:"required_without=Key,max=500"`
	Key     string `json:"key" validate:"max=40"`
}

type chatResp struct {
	Topic    string `json:"topic,omitempty"`
	Question string `json:"question"`
	Text     string `json:"text"`
}

// answer resolves a typed message or a suggestion key. ok is false for an
// unknown key.
func (s *Server) answer(message, key string) (chatResp, bool) {
	if key != "" {
		rep, ok := s.Bot.Suggest(key)
		if !ok {
			return chatResp{}, false
		}
		s.metrics.chatReply(rep.Topic)
		return chatResp{Topic: rep.Topic, Question: s.Bot.Label(key), Text: rep.Text}, true
	}

	rep := s.Bot.Reply(message)
	s.metrics.chatReply(rep.Topic)
	return chatResp{Topic: rep.Topic, Question: strings.TrimSpace(message), Text: rep.Text}, true
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteDecodeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Message) == "" && req.Key == "" {
		kit.WriteError(w, r, http.StatusBadRequest, "message required", nil)
		return
	}

	resp, ok := s.answer(req.Message, req.Key)
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "unknown topic", map[string]string{"key": req.Key})
		return
	}
	kit.WriteJSON(w, http.StatusOK, resp)
}

// handleChatStream types the reply out as server-sent events: "typing"
// carries each growing prefix, "done" the topic. Disconnecting stops the
// typing timers.
func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	message, key := q.Get("q"), q.Get("key")
	if strings.TrimSpace(message) == "" && key == "" {
		kit.WriteError(w, r, http.StatusBadRequest, "q required", nil)
		return
	}
	if len(message) > 500 {
		kit.WriteError(w, r, http.StatusBadRequest, "message too long", nil)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		kit.WriteError(w, r, http.StatusInternalServerError, "streaming unsupported", nil)
		return
	}

	resp, ok := s.answer(message, key)
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "unknown topic", map[string]string{"key": key})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	writeEvent(w, "question", resp.Question)
	flusher.Flush()

	ctx := r.Context()
	frames := make(chan string, 64)
	finished := make(chan struct{})

	h := s.Typer.Type(resp.Text, func(prefix string) {
		select {
		case frames <- prefix:
		case <-ctx.Done():
		}
	}, func() { close(finished) })
	defer h.Cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case p := <-frames:
			writeEvent(w, "typing", p)
			flusher.Flush()
		case <-finished:
			for {
				select {
				case p := <-frames:
					writeEvent(w, "typing", p)
				default:
					writeEvent(w, "done", topicOrDefault(resp.Topic))
					flusher.Flush()
					return
				}
			}
		}
	}
}

func topicOrDefault(topic string) string {
	if topic == "" {
		return "default"
	}
	return topic
}

// writeEvent writes one SSE frame; multi-line data becomes several data
// lines.
func writeEvent(w http.ResponseWriter, event, data string) {
	fmt.Fprintf(w, "event: %s\n", event)
	for _, line := range strings.Split(data, "\n") {
		fmt.Fprintf(w, "data: %s\n", line)
	}
	fmt.Fprint(w, "\n")
}
