package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"

	"github.com/akinalp/wordless/database"
	"github.com/akinalp/wordless/models"
	"github.com/akinalp/wordless/pkg"
	"github.com/akinalp/wordless/pkg/emoji"
	"github.com/akinalp/wordless/repository"
	"github.com/akinalp/wordless/ws"
)

// fakePush, ws.PushChannel'ın bağlantı bazlı sonuç döndüren sahtesi.
type fakePush struct {
	mu        sync.Mutex
	outcomes  map[string]error
	delivered map[string][]ws.Event
	encodes   int
}

func newFakePush() *fakePush {
	return &fakePush{
		outcomes:  make(map[string]error),
		delivered: make(map[string][]ws.Event),
	}
}

func (p *fakePush) Encode(event ws.Event) ([]byte, error) {
	p.mu.Lock()
	p.encodes++
	p.mu.Unlock()
	return json.Marshal(event)
}

func (p *fakePush) PostToConnection(_ context.Context, connectionID string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.outcomes[connectionID]; err != nil {
		return err
	}
	var ev ws.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return err
	}
	p.delivered[connectionID] = append(p.delivered[connectionID], ev)
	return nil
}

func (p *fakePush) events(connectionID string) []ws.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]ws.Event(nil), p.delivered[connectionID]...)
}

// staticVerifier, token'ı doğrudan subject olarak kabul eder.
type staticVerifier struct{}

func (staticVerifier) Verify(_ context.Context, token string) (*models.IdentityClaims, error) {
	return &models.IdentityClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: token}}, nil
}

type testEnv struct {
	db          *database.DB
	users       repository.UserRepository
	emotes      repository.EmoteRepository
	reactions   repository.ReactionRepository
	conns       repository.ConnectionRepository
	push        *fakePush
	connections ConnectionService
	broadcaster Broadcaster
	vocab       *emoji.Vocabulary
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "svc.db"), database.Migrations())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	vocab, err := emoji.Default()
	if err != nil {
		t.Fatal(err)
	}

	env := &testEnv{
		db:        db,
		users:     repository.NewSQLiteUserRepo(db.Conn),
		emotes:    repository.NewSQLiteEmoteRepo(db.Conn),
		reactions: repository.NewRedisReactionRepo(client, "test"),
		conns:     repository.NewRedisConnectionRepo(client, "test"),
		push:      newFakePush(),
		vocab:     vocab,
	}
	env.connections = NewConnectionService(env.conns, staticVerifier{})
	env.broadcaster = NewBroadcaster(env.push, env.conns, defaultTestTimeout, defaultTestTimeout)
	t.Cleanup(env.broadcaster.WaitCleanup)
	return env
}

func (e *testEnv) connect(t *testing.T, connectionID, subject string) {
	t.Helper()
	if err := e.connections.Register(context.Background(), connectionID, subject); err != nil {
		t.Fatalf("Register(%s): %v", connectionID, err)
	}
}

func (e *testEnv) profile(t *testing.T, subject, name string) *models.User {
	t.Helper()
	u := &models.User{ID: "user-" + subject, Subject: subject, UserName: name}
	if err := e.users.Upsert(context.Background(), u); err != nil {
		t.Fatal(err)
	}
	return u
}

func (e *testEnv) emoteService(limiter EmoteLimiter) EmoteService {
	return NewEmoteService(e.emotes, e.reactions, e.users, e.conns, e.connections, e.broadcaster, e.vocab, limiter)
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("err = nil, want %s", code)
	}
	if got := pkg.CodeOf(err); got != code {
		t.Fatalf("code = %q (%v), want %s", got, err, code)
	}
}

func assertKind(t *testing.T, err, kind error) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Errorf("err = %v, want kind %v", err, kind)
	}
}

func strp(s string) *string { return &s }
