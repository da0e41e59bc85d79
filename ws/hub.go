package ws

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/goccy/go-json"
)

// PostToConnection sonuçları.
var (
	// ErrConnectionGone: bağlantı bu hub'da yok veya kapanmış.
	// Broadcaster bu durumda registry kaydını siler.
	ErrConnectionGone = errors.New("connection gone")
	// ErrDeliveryTimeout: client'ın send buffer'ı context süresi içinde boşalmadı.
	ErrDeliveryTimeout = errors.New("delivery timed out")
	// ErrHubClosed: Shutdown sonrası yapılan register denemesi.
	ErrHubClosed = errors.New("hub closed")
)

// PushChannel, service katmanının bağlantılara event göndermek için
// kullandığı interface.
//
// Dependency Inversion: Broadcaster Hub'ın concrete struct'ına değil,
// bu interface'e bağımlıdır. Testlerde sahte bir PushChannel verilir.
type PushChannel interface {
	// Encode, event'e seq atar ve wire formatına çevirir.
	// Bir kez encode edilen veri tüm bağlantılara aynen gönderilir.
	Encode(event Event) ([]byte, error)
	// PostToConnection, veriyi bağlantının send buffer'ına koyar.
	// nil | ErrConnectionGone | ErrDeliveryTimeout döner.
	PostToConnection(ctx context.Context, connectionID string, data []byte) error
}

// Hub, bu süreçteki tüm WebSocket bağlantılarını connectionID ile tutar.
//
// Registry (Redis) hangi bağlantıların var olduğunun kaydıdır; Hub ise
// bağlantının fiziksel soketine ulaşmanın yoludur. Registry'de olup
// Hub'da olmayan bir bağlantı "gone" sayılır.
type Hub struct {
	// clients: connectionID → Client. Her bağlantı ID'si tektir ve tekrar kullanılmaz.
	clients map[string]*Client

	// mu: clients map'ini korur. PostToConnection sadece RLock alır,
	// teslimat sırasında lock tutulmaz.
	mu sync.RWMutex

	register   chan *Client
	unregister chan *Client
	quit       chan struct{}
	closeOnce  sync.Once

	// seq: her outbound event'e verilen artan sayaç.
	seq atomic.Int64
}

// NewHub, yeni bir Hub oluşturur. Run ayrı bir goroutine'de başlatılmalıdır.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
	}
}

// Run, Hub'ın ana event loop'udur. main.go'da `go hub.Run()` ile başlatılır.
// Shutdown çağrılana kadar register/unregister sinyallerini işler.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
			close(client.registered)

		case client := <-h.unregister:
			h.removeClient(client)

		case <-h.quit:
			return
		}
	}
}

// Register, client'ı hub'a ekler ve eklenene kadar bekler.
//
// Dönüşten sonra PostToConnection client'ı bulur. Registry'ye yazma
// bundan sonra yapılmalıdır; aksi halde araya giren bir broadcast
// bağlantıyı "gone" sanıp registry'den silebilir.
func (h *Hub) Register(client *Client) error {
	if h.closed() {
		return ErrHubClosed
	}
	select {
	case h.register <- client:
	case <-h.quit:
		return ErrHubClosed
	}
	<-client.registered

	// Shutdown register ile yarıştıysa client map'te kalmamalı
	if h.closed() {
		h.removeClient(client)
		return ErrHubClosed
	}
	return nil
}

func (h *Hub) closed() bool {
	select {
	case <-h.quit:
		return true
	default:
		return false
	}
}

// Unregister, client'ı hub'dan çıkarır. Birden fazla çağrı güvenlidir.
func (h *Hub) Unregister(client *Client) {
	// done hemen kapanır, PostToConnection map temizlenmeden de "gone" görür
	client.close()

	select {
	case h.unregister <- client:
	case <-h.quit:
		// Run durmuş, doğrudan çıkar
		h.removeClient(client)
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.connectionID] = client

	log.Printf("[ws] client connected: conn=%s subject=%s (total: %d)",
		client.connectionID, client.subject, len(h.clients))
}

// removeClient, client'ı map'ten çıkarır ve done channel'ını kapatır.
// Map'teki kayıt başka bir client'a aitse dokunulmaz.
func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, ok := h.clients[client.connectionID]; ok && current == client {
		delete(h.clients, client.connectionID)
		log.Printf("[ws] client disconnected: conn=%s (remaining: %d)",
			client.connectionID, len(h.clients))
	}
	client.close()
}

// Encode, event'e bir sonraki seq'i atar ve JSON'a çevirir.
func (h *Hub) Encode(event Event) ([]byte, error) {
	event.Seq = h.seq.Add(1)

	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s event: %w", event.Op, err)
	}
	return data, nil
}

// PostToConnection, veriyi tek bir bağlantıya teslim eder.
//
// Client'ın send buffer'ında yer varsa hemen döner. Buffer doluysa
// ctx bitene kadar bekler; bu sürede yer açılmazsa ErrDeliveryTimeout.
// Bağlantı yoksa veya beklerken kapanırsa ErrConnectionGone.
func (h *Hub) PostToConnection(ctx context.Context, connectionID string, data []byte) error {
	h.mu.RLock()
	client, ok := h.clients[connectionID]
	h.mu.RUnlock()

	if !ok {
		return ErrConnectionGone
	}

	select {
	case <-client.done:
		return ErrConnectionGone
	default:
	}

	select {
	case client.send <- data:
		return nil
	case <-client.done:
		return ErrConnectionGone
	case <-ctx.Done():
		return fmt.Errorf("%w: conn=%s: %v", ErrDeliveryTimeout, connectionID, ctx.Err())
	}
}

// ConnectionCount, hub'daki bağlantı sayısını döner.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Shutdown, Run loop'unu durdurur ve tüm bağlantıları kapatır (graceful shutdown).
// Her client'ın WritePump'ı close frame gönderip çıkar.
func (h *Hub) Shutdown() {
	h.closeOnce.Do(func() {
		close(h.quit)

		h.mu.Lock()
		defer h.mu.Unlock()

		for _, client := range h.clients {
			client.close()
		}
		h.clients = make(map[string]*Client)
		log.Println("[ws] hub shut down, all connections closed")
	})
}
