package ws

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/akinalp/wordless/pkg"
)

// WebSocket bağlantı sabitleri
const (
	// writeWait: Bir mesajı yazmak için maksimum bekleme süresi.
	writeWait = 10 * time.Second

	// pongWait: Client'ın heartbeat göndermesi için beklenen maksimum süre.
	// 3 heartbeat kaçırma = 30s × 3 = 90s.
	pongWait = 90 * time.Second

	// maxMessageSize: Client'ın gönderebileceği maksimum mesaj boyutu (byte).
	maxMessageSize = 4096

	// sendBufferSize: Her client'ın send channel'ının buffer boyutu.
	sendBufferSize = 256

	// requestTimeout: Tek bir action'ın (post, react, fetch, delete) üst süresi.
	requestTimeout = 30 * time.Second
)

// MessageDispatcher, client'tan gelen action'ları işleyen katman.
//
// ws paketi handlers paketini import etmez (handlers → services → ws döngüsü).
// handlers.Router bu interface'i karşılar ve main.go'da Handler'a verilir.
type MessageDispatcher interface {
	// Dispatch, action'ı işler ve gönderene dönecek yanıtı üretir.
	Dispatch(ctx context.Context, req Request) pkg.ActionResponse
}

// Client, tek bir WebSocket bağlantısını temsil eder.
//
// Her bağlantı için iki goroutine çalışır:
//   - ReadPump: client'tan gelen mesajları okur, action'ları dispatch eder
//   - WritePump: send channel'ındaki event'leri sokete yazar
//
// send channel'ı hiçbir zaman kapatılmaz; bağlantının bittiğini done bildirir.
// Böylece PostToConnection kapanmış bir channel'a yazıp panic'lemez.
type Client struct {
	hub          *Hub
	conn         *websocket.Conn
	dispatcher   MessageDispatcher
	connectionID string
	subject      string

	send       chan []byte
	done       chan struct{}
	registered chan struct{}
	closeOnce  sync.Once

	// inflight: devam eden dispatch goroutine'leri. ReadPump çıkarken beklenir.
	inflight sync.WaitGroup

	mu sync.Mutex // conn.WriteMessage çağrılarını korur
}

// NewClient, upgrade edilmiş bir bağlantı için Client oluşturur.
func NewClient(hub *Hub, conn *websocket.Conn, dispatcher MessageDispatcher, connectionID, subject string) *Client {
	return &Client{
		hub:          hub,
		conn:         conn,
		dispatcher:   dispatcher,
		connectionID: connectionID,
		subject:      subject,
		send:         make(chan []byte, sendBufferSize),
		done:         make(chan struct{}),
		registered:   make(chan struct{}),
	}
}

// ConnectionID, client'ın bağlantı kimliği.
func (c *Client) ConnectionID() string { return c.connectionID }

func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// ReadPump, WebSocket bağlantısından gelen mesajları okur ve işler.
//
// Bağlantı kapanana kadar bloklar. Çıkarken client'ı hub'dan çıkarır ve
// devam eden action'ların bitmesini bekler.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
		c.inflight.Wait()
	}()

	c.conn.SetReadLimit(maxMessageSize)

	// Her heartbeat geldiğinde deadline yenilenir.
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("[ws] failed to set read deadline for conn %s: %v", c.connectionID, err)
		return
	}

	for {
		_, rawMessage, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws] unexpected close for conn %s: %v", c.connectionID, err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(rawMessage, &msg); err != nil {
			log.Printf("[ws] invalid message from conn %s: %v", c.connectionID, err)
			continue
		}

		if msg.Action == ActionHeartbeat {
			if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
				log.Printf("[ws] failed to set read deadline for conn %s: %v", c.connectionID, err)
				return
			}
			c.sendEvent(Event{Op: OpHeartbeatAck})
			continue
		}

		// Her action kendi goroutine'inde: yavaş bir fetch, aynı bağlantıdaki
		// sonraki mesajları bekletmez.
		c.inflight.Add(1)
		go func(msg Message) {
			defer c.inflight.Done()
			c.dispatch(msg)
		}(msg)
	}
}

func (c *Client) dispatch(msg Message) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	resp := c.dispatcher.Dispatch(ctx, Request{ConnectionID: c.connectionID, Message: msg})
	c.sendEvent(Event{Op: OpResponse, Data: resp})
}

// sendEvent, client'a tek bir event gönderir.
func (c *Client) sendEvent(event Event) {
	data, err := c.hub.Encode(event)
	if err != nil {
		log.Printf("[ws] %v", err)
		return
	}

	select {
	case c.send <- data:
	case <-c.done:
	default:
		// Buffer dolu, client muhtemelen donmuş
		log.Printf("[ws] send buffer full for conn %s, dropping connection", c.connectionID)
		c.hub.Unregister(c)
	}
}

// WritePump, send channel'ındaki mesajları WebSocket bağlantısına yazar.
// done kapandığında close frame gönderip çıkar.
func (c *Client) WritePump() {
	defer c.conn.Close()

	for {
		select {
		case message := <-c.send:
			if err := c.writeMessage(websocket.TextMessage, message); err != nil {
				c.hub.Unregister(c)
				return
			}

		case <-c.done:
			c.writeMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// CloseWithCode, client'a bir close frame gönderir ve bağlantıyı kapatır.
// Connect sırasında registry yazılamadığında hata kodunu iletmek için kullanılır.
func (c *Client) CloseWithCode(code int, reason string) {
	c.writeMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason))
	c.close()
	c.conn.Close()
}

// writeMessage, WebSocket'e mesaj yazar (mutex ile korunur).
// gorilla/websocket conn'a aynı anda birden fazla yazma yasaktır.
func (c *Client) writeMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}
