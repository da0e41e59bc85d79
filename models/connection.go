package models

import "time"

// Connection, registry'deki canlı bir WebSocket bağlantısı.
//
// ConnectionID transport katmanında (ws.Handler) upgrade anında üretilir
// ve hiçbir zaman tekrar kullanılmaz. Subject, bağlantı kurulurken
// doğrulanan token'ın "sub" claim'idir.
type Connection struct {
	ConnectionID  string    `json:"connection_id" redis:"connection_id"`
	Subject       string    `json:"subject" redis:"subject"`
	EstablishedAt time.Time `json:"established_at" redis:"-"`
}
