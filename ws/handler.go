package ws

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/akinalp/wordless/models"
	"github.com/akinalp/wordless/pkg"
	"github.com/akinalp/wordless/pkg/ratelimit"
)

// lifecycleTimeout: connect sırasında registry yazma ve disconnect sırasında
// registry silme için üst süre.
const lifecycleTimeout = 5 * time.Second

// ConnectionLifecycle, WebSocket handler'ın bağlantı açma/kapama sırasında
// ihtiyaç duyduğu işlemler.
//
// services.ConnectionService bu interface'i karşılar. ws paketi services'i
// import etmez: services → ws (PushChannel) bağımlılığı zaten var.
type ConnectionLifecycle interface {
	// Authenticate, "Bearer <jwt>" değerini doğrular (AUN-01..06).
	Authenticate(ctx context.Context, bearer string) (*models.IdentityClaims, error)
	// Register, bağlantıyı registry'ye yazar (WSK-02).
	Register(ctx context.Context, connectionID, subject string) error
	// Disconnect, bağlantıyı registry'den siler (WSK-92).
	Disconnect(ctx context.Context, connectionID string) error
}

// upgrader, HTTP bağlantısını WebSocket bağlantısına yükseltir.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CheckOrigin: CORS middleware'i REST için origin kontrolü yapar;
	// WebSocket tarafında kimlik doğrulaması token ile yapılır.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler, WebSocket bağlantı isteklerini işleyen HTTP handler'ı.
type Handler struct {
	hub        *Hub
	lifecycle  ConnectionLifecycle
	dispatcher MessageDispatcher
	limiter    *ratelimit.ConnectRateLimiter
}

// NewHandler, yeni bir WebSocket handler oluşturur.
// limiter nil olabilir; bu durumda connect denemeleri sınırlanmaz.
func NewHandler(hub *Hub, lifecycle ConnectionLifecycle, dispatcher MessageDispatcher, limiter *ratelimit.ConnectRateLimiter) *Handler {
	return &Handler{
		hub:        hub,
		lifecycle:  lifecycle,
		dispatcher: dispatcher,
		limiter:    limiter,
	}
}

// HandleConnection, HTTP bağlantısını WebSocket'e yükseltir ve bağlantıyı kaydeder.
//
// Tarayıcılar WebSocket upgrade isteğine header ekleyemez, bu yüzden token
// query parameter olarak da kabul edilir:
//
//	ws://server/ws?Authorization=Bearer%20<jwt>
//
// Flow:
//  1. IP bazlı connect rate limit (AUN-07)
//  2. Token doğrulama (AUN-01..06), hata varsa upgrade yapılmaz
//  3. HTTP → WebSocket upgrade, yeni connectionID (UUIDv4)
//  4. Hub'a kayıt, ardından registry'ye yazma (WSK-02 → close frame)
//  5. ready event'i, ReadPump/WritePump
//  6. ReadPump dönünce registry'den silme (hata loglanır, WSK-92)
func (h *Handler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	if h.limiter != nil {
		ip := ratelimit.ExtractIP(r)
		if !h.limiter.Allow(ip) {
			w.Header().Set("Retry-After", strconv.Itoa(h.limiter.RetryAfterSeconds(ip)))
			pkg.Error(w, pkg.Coded(pkg.CodeConnectRateLimited, pkg.ErrTooManyRequests, nil))
			return
		}
	}

	claims, err := h.lifecycle.Authenticate(r.Context(), bearerFromRequest(r))
	if err != nil {
		log.Printf("[ws] connect rejected: %v", err)
		pkg.Error(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed for subject %s: %v", claims.Subject, err)
		return
	}

	connectionID := uuid.NewString()
	client := NewClient(h.hub, conn, h.dispatcher, connectionID, claims.Subject)

	if err := h.hub.Register(client); err != nil {
		client.CloseWithCode(websocket.CloseGoingAway, "server shutting down")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), lifecycleTimeout)
	err = h.lifecycle.Register(ctx, connectionID, claims.Subject)
	cancel()
	if err != nil {
		log.Printf("[ws] registry put failed for conn %s: %v", connectionID, err)
		h.hub.Unregister(client)
		client.CloseWithCode(websocket.CloseInternalServerErr, pkg.CodeOf(err))
		return
	}

	client.sendEvent(Event{
		Op:   OpReady,
		Data: ReadyData{ConnectionID: connectionID, Subject: claims.Subject},
	})

	// WritePump ayrı goroutine'de, ReadPump bu goroutine'de çalışır.
	// ReadPump bağlantı kapanana kadar bloklar.
	go client.WritePump()
	client.ReadPump()

	ctx, cancel = context.WithTimeout(context.Background(), lifecycleTimeout)
	defer cancel()
	if err := h.lifecycle.Disconnect(ctx, connectionID); err != nil {
		log.Printf("[ws] disconnect cleanup failed for conn %s: %v", connectionID, err)
	}
}

// bearerFromRequest, token'ı sırasıyla "Authorization" query parameter'ından,
// "token" query parameter'ından ve Authorization header'ından arar.
// "token" parametresi ham JWT taşır, Bearer prefix'i burada eklenir.
func bearerFromRequest(r *http.Request) string {
	q := r.URL.Query()
	if v := q.Get("Authorization"); v != "" {
		return v
	}
	if v := q.Get("token"); v != "" {
		return "Bearer " + v
	}
	return r.Header.Get("Authorization")
}
