package repository

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/akinalp/wordless/database"
	"github.com/akinalp/wordless/models"
	"github.com/akinalp/wordless/pkg"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "repo.db"), database.Migrations())
	if err != nil {
		t.Fatalf("database.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedUser(t *testing.T, repo UserRepository, id, subject string) *models.User {
	t.Helper()
	u := &models.User{ID: id, Subject: subject, UserName: "user-" + id}
	if err := repo.Upsert(context.Background(), u); err != nil {
		t.Fatalf("Upsert(%s): %v", id, err)
	}
	return u
}

func TestUserUpsertKeepsIDOnConflict(t *testing.T) {
	db := newTestDB(t)
	repo := NewSQLiteUserRepo(db.Conn)
	ctx := context.Background()

	first := seedUser(t, repo, "u1", "sub-1")

	avatar := "https://example.com/a.png"
	again := &models.User{ID: "ignored", Subject: "sub-1", UserName: "renamed", AvatarURL: &avatar}
	if err := repo.Upsert(ctx, again); err != nil {
		t.Fatalf("second Upsert: %v", err)
	}
	if again.ID != first.ID {
		t.Errorf("upsert ID = %q, want existing %q", again.ID, first.ID)
	}

	got, err := repo.GetBySubject(ctx, "sub-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.UserName != "renamed" || got.AvatarURL == nil || *got.AvatarURL != avatar {
		t.Errorf("GetBySubject = %+v", got)
	}

	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, pkg.ErrNotFound) {
		t.Errorf("GetByID(missing) err = %v, want ErrNotFound", err)
	}
}

func TestUserUpsertRejectsTakenID(t *testing.T) {
	db := newTestDB(t)
	repo := NewSQLiteUserRepo(db.Conn)

	seedUser(t, repo, "u1", "sub-1")
	err := repo.Upsert(context.Background(), &models.User{ID: "u1", Subject: "sub-2", UserName: "x"})
	if !errors.Is(err, pkg.ErrAlreadyExists) {
		t.Errorf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestEmoteCreateAssignsIncreasingSequence(t *testing.T) {
	db := newTestDB(t)
	users := NewSQLiteUserRepo(db.Conn)
	emotes := NewSQLiteEmoteRepo(db.Conn)
	ctx := context.Background()
	seedUser(t, users, "u1", "sub-1")

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	var last int64
	for i, emojis := range [][]string{{":a:"}, {":a:", ":b:"}, {":a:", ":b:", ":c:", ":d:"}} {
		e := &models.Emote{
			ID:         "e" + string(rune('1'+i)),
			ReactionID: "r" + string(rune('1'+i)),
			UserID:     "u1",
			Emojis:     emojis,
			CreatedAt:  base.Add(time.Duration(i) * time.Second),
		}
		if err := emotes.Create(ctx, e); err != nil {
			t.Fatalf("Create #%d: %v", i, err)
		}
		if e.SequenceNumber <= last {
			t.Errorf("sequence %d not greater than %d", e.SequenceNumber, last)
		}
		last = e.SequenceNumber
	}

	got, err := emotes.GetByID(ctx, "e3")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Emojis) != 4 || got.Emojis[3] != ":d:" {
		t.Errorf("emojis = %v", got.Emojis)
	}
	if !got.CreatedAt.Equal(base.Add(2 * time.Second)) {
		t.Errorf("created_at = %v", got.CreatedAt)
	}

	got, err = emotes.GetByID(ctx, "e1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Emojis) != 1 {
		t.Errorf("single emoji emote read back as %v", got.Emojis)
	}
}

func TestEmoteCreateValidation(t *testing.T) {
	db := newTestDB(t)
	emotes := NewSQLiteEmoteRepo(db.Conn)
	ctx := context.Background()

	err := emotes.Create(ctx, &models.Emote{ID: "e", ReactionID: "r", UserID: "u", CreatedAt: time.Now()})
	if !errors.Is(err, pkg.ErrBadRequest) {
		t.Errorf("empty emojis err = %v, want ErrBadRequest", err)
	}

	// user yok: FK hatası
	err = emotes.Create(ctx, &models.Emote{ID: "e", ReactionID: "r", UserID: "nobody", Emojis: []string{":a:"}, CreatedAt: time.Now()})
	if err == nil {
		t.Error("expected foreign key failure for unknown user")
	}
}

func TestEmoteListRecentAndSoftDelete(t *testing.T) {
	db := newTestDB(t)
	users := NewSQLiteUserRepo(db.Conn)
	emotes := NewSQLiteEmoteRepo(db.Conn)
	ctx := context.Background()
	seedUser(t, users, "u1", "sub-1")

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		e := &models.Emote{
			ID:         id,
			ReactionID: "r-" + id,
			UserID:     "u1",
			Emojis:     []string{":a:"},
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		if err := emotes.Create(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	list, err := emotes.ListRecent(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != "new" || list[1].ID != "mid" {
		t.Fatalf("ListRecent(2) = %v", ids(list))
	}

	if err := emotes.SoftDelete(ctx, "new"); err != nil {
		t.Fatal(err)
	}
	if err := emotes.SoftDelete(ctx, "new"); !errors.Is(err, pkg.ErrNotFound) {
		t.Errorf("second SoftDelete err = %v, want ErrNotFound", err)
	}
	if _, err := emotes.GetByID(ctx, "new"); !errors.Is(err, pkg.ErrNotFound) {
		t.Errorf("GetByID(deleted) err = %v, want ErrNotFound", err)
	}

	list, err = emotes.ListRecent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != "mid" || list[1].ID != "old" {
		t.Errorf("ListRecent after delete = %v", ids(list))
	}
}

func TestEmoteCreateInsideCallerTx(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, NewSQLiteUserRepo(db.Conn), "u1", "sub-1")
	ctx := context.Background()

	boom := errors.New("boom")
	err := database.WithTx(ctx, db.Conn, func(tx *sql.Tx) error {
		e := &models.Emote{ID: "e", ReactionID: "r", UserID: "u1", Emojis: []string{":a:"}, CreatedAt: time.Now()}
		if err := NewSQLiteEmoteRepo(tx).Create(ctx, e); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if _, err := NewSQLiteEmoteRepo(db.Conn).GetByID(ctx, "e"); !errors.Is(err, pkg.ErrNotFound) {
		t.Errorf("rolled back emote is visible: %v", err)
	}
}

func ids(list []models.Emote) []string {
	out := make([]string, len(list))
	for i, e := range list {
		out[i] = e.ID
	}
	return out
}
