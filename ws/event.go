// Package ws, WebSocket bağlantı yönetimi ve gerçek zamanlı event dağıtımını sağlar.
//
// Mimari:
//   - Hub: connectionID → Client eşlemesini tutan merkezi yapı
//   - Client: tek bir WebSocket bağlantısı (ReadPump + WritePump goroutine'leri)
//   - Handler: HTTP → WebSocket upgrade, connect/disconnect yaşam döngüsü
//   - Event / Message: server → client ve client → server frame formatları
//
// Event akışı (ör: post_emote):
//  1. Client bir Message gönderir → ReadPump → MessageDispatcher
//  2. Dispatcher ilgili service'i çağırır (DB + Redis)
//  3. Service, Broadcaster üzerinden registry'deki her bağlantıya
//     Hub.PostToConnection ile event push eder
//  4. Her client'ın WritePump'ı event'i WebSocket'e yazar
//  5. Gönderen bağlantıya ayrıca bir "response" event'i döner
package ws

// Event, server'dan client'a giden bir frame.
//
// Op (operation): event türü, ör: "emote_create", "response".
// Data: event'e özgü payload.
// Seq: Hub'ın her encode edilen event'e verdiği artan sayı.
// Client eksik event tespiti için seq'i takip edebilir.
type Event struct {
	Op   string `json:"op"`
	Data any    `json:"d,omitempty"`
	Seq  int64  `json:"seq,omitempty"`
}

// Server → Client operasyonları
const (
	OpReady          = "ready"           // Bağlantı kurulduğunda ilk gönderilen, connection_id taşır
	OpHeartbeatAck   = "heartbeat_ack"   // Heartbeat'e yanıt
	OpResponse       = "response"        // Bir action'ın sonucu, sadece gönderene gider
	OpEmoteCreate    = "emote_create"    // Yeni emote gönderildi
	OpEmoteDelete    = "emote_delete"    // Emote silindi
	OpReactionUpdate = "reaction_update" // Emote'un reaction sayaçları değişti
)

// ReadyData, OpReady event'inin payload'ı.
type ReadyData struct {
	ConnectionID string `json:"connection_id"`
	Subject      string `json:"subject"`
}

// EmoteDeleteData, OpEmoteDelete event'inin payload'ı.
type EmoteDeleteData struct {
	EmoteID    string `json:"emote_id"`
	ReactionID string `json:"reaction_id"`
}
