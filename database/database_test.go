package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"testing/fstest"
)

func TestSplitStatements(t *testing.T) {
	in := "CREATE TABLE a (x TEXT);\nINSERT INTO a VALUES ('x;y');\nINSERT INTO a VALUES ('it''s')"
	got := splitStatements(in)
	want := []string{
		"CREATE TABLE a (x TEXT)",
		"INSERT INTO a VALUES ('x;y')",
		"INSERT INTO a VALUES ('it''s')",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitStatements =\n%q\nwant\n%q", got, want)
	}
}

func TestNewAppliesEmbeddedMigrationsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "test.db")

	db, err := New(path, Migrations())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var n int
	if err := db.Conn.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("applied migrations = %d, want 1", n)
	}
	for _, table := range []string{"users", "emotes"} {
		var name string
		err := db.Conn.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
	db.Close()

	// İkinci açılışta migration tekrar çalışmaz
	db, err = New(path, Migrations())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	if err := db.Conn.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("applied migrations after reopen = %d, want 1", n)
	}
}

func TestMigrationFailureRollsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.db")
	broken := fstest.MapFS{
		"001_a.sql": {Data: []byte("CREATE TABLE emotes (id TEXT);")},
		"002_b.sql": {Data: []byte("CREATE TABLE reactions (id TEXT); INSERT INTO missing VALUES (1);")},
	}

	if _, err := New(path, broken); err == nil {
		t.Fatal("New succeeded with a broken migration")
	}

	db, err := New(path, fstest.MapFS{"001_a.sql": broken["001_a.sql"]})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()

	// 001 kaydedildi, 002'nin yarım kalan CREATE TABLE'ı geri alındı
	var applied []string
	rows, err := db.Conn.Query("SELECT filename FROM schema_migrations ORDER BY filename")
	if err != nil {
		t.Fatal(err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatal(err)
		}
		applied = append(applied, name)
	}
	if !reflect.DeepEqual(applied, []string{"001_a.sql"}) {
		t.Errorf("applied = %q, want only 001_a.sql", applied)
	}

	var n int
	if err := db.Conn.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='reactions'").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Error("table from the failed migration was left behind")
	}
}

func TestMigrationsRunInNameOrder(t *testing.T) {
	migrations := fstest.MapFS{
		"002_seed.sql": {Data: []byte("INSERT INTO emotes (id) VALUES ('e;1');")},
		"001_init.sql": {Data: []byte("CREATE TABLE emotes (id TEXT);")},
		"notes.txt":    {Data: []byte("not sql")},
	}

	db, err := New(filepath.Join(t.TempDir(), "o.db"), migrations)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer db.Close()

	var id string
	if err := db.Conn.QueryRow("SELECT id FROM emotes").Scan(&id); err != nil {
		t.Fatal(err)
	}
	if id != "e;1" {
		t.Errorf("id = %q", id)
	}
}

func TestWithTxRollsBack(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "tx.db"), fstest.MapFS{
		"001.sql": {Data: []byte("CREATE TABLE users (id TEXT PRIMARY KEY);")},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	ctx := context.Background()
	boom := errors.New("boom")
	err = WithTx(ctx, db.Conn, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "INSERT INTO users (id) VALUES ('a')"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}

	var n int
	_ = db.Conn.QueryRow("SELECT COUNT(*) FROM users").Scan(&n)
	if n != 0 {
		t.Errorf("rolled back insert is visible, count = %d", n)
	}

	err = WithTx(ctx, db.Conn, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "INSERT INTO users (id) VALUES ('b')")
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	_ = db.Conn.QueryRow("SELECT COUNT(*) FROM users").Scan(&n)
	if n != 1 {
		t.Errorf("committed insert missing, count = %d", n)
	}
}
