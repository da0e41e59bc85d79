package repository

import (
	"context"

	"github.com/akinalp/wordless/models"
)

// ConnectionRepository, canlı WebSocket bağlantılarının registry'si.
//
// Registry Redis'te tutulur ama tek bir sunucu sürecine aittir: ws.Hub
// kendi soketlerini tanımadığı her kaydı "gone" sayar ve Broadcaster onu
// siler. Aynı KeyPrefix ile iki süreç çalıştırmak birbirinin bağlantılarını
// her broadcast'te siler; her süreç kendi REDIS_KEY_PREFIX'ini kullanmalıdır.
//
// ScanAll store'un o anki snapshot'ını döner, tarama sırasındaki
// Put/Delete'ler görünür olmayabilir.
type ConnectionRepository interface {
	Put(ctx context.Context, conn *models.Connection) error
	// Get, bağlantı yoksa pkg.ErrNotFound döner.
	Get(ctx context.Context, connectionID string) (*models.Connection, error)
	// Delete idempotent'tir: olmayan bir kaydı silmek hata değildir.
	Delete(ctx context.Context, connectionID string) error
	ScanAll(ctx context.Context) ([]models.Connection, error)
}
