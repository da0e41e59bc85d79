package ws

import "github.com/goccy/go-json"

// Client → Server action'ları
const (
	ActionHeartbeat   = "heartbeat"
	ActionPostEmote   = "post_emote"
	ActionReact       = "react"
	ActionFetchEmotes = "fetch_emotes"
	ActionDeleteEmote = "delete_emote"
)

// Message, client'tan gelen bir frame.
//
//	{ "action": "post_emote", "request_id": "c-17", "authorization": "Bearer <jwt>", "body": { ... } }
//
// Body ham bırakılır; her action kendi request tipine decode eder.
// Authorization her mesajda tekrar gönderilir ve her action'da doğrulanır.
type Message struct {
	Action        string          `json:"action"`
	RequestID     string          `json:"request_id,omitempty"`
	Authorization string          `json:"authorization,omitempty"`
	Body          json.RawMessage `json:"body,omitempty"`
}

// Request, dispatcher'a verilen mesaj + mesajın geldiği bağlantı.
type Request struct {
	ConnectionID string
	Message
}
