// Package database, SQLite bağlantısını ve şema migration'larını yönetir.
//
// Emote geçmişi ve kullanıcı profilleri SQLite'ta tutulur. Connection registry
// ve reaction state Redis'tedir (bkz. repository/redis_*.go).
//
// SQLite driver (modernc.org/sqlite) "blank import" ile kayıt olur:
// import'un yan etkisi (side effect) gereklidir.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver, CGO gerekmez
)

// DB, veritabanı bağlantısını saran struct.
// *sql.DB kendi connection pool'unu yönetir ve goroutine'ler arasında paylaşılabilir.
type DB struct {
	Conn *sql.DB
}

// migration, tek bir şema dosyası: "001_init.sql" gibi sıralı bir isim ve içeriği.
type migration struct {
	name       string
	statements []string
}

// New, SQLite dosyasını açar ve bekleyen migration'ları uygular.
//
// dbPath: SQLite dosya yolu (ör: "./data/wordless.db"), dizini yoksa oluşturulur.
// migrationsFS: kökte *.sql dosyaları olan fs.FS (Migrations() veya testlerde fstest.MapFS).
func New(dbPath string, migrationsFS fs.FS) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// foreign_keys(1) → FK constraint'leri aktif (SQLite'ta varsayılan kapalı)
	// journal_mode(WAL) → okuyucular yazarı beklemez
	// busy_timeout(5000) → kilitli DB'de 5sn bekle
	// _time_format=sqlite → time.Time sıralanabilir "YYYY-MM-DD HH:MM:SS.fff" olarak yazılır
	conn, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_time_format=sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{Conn: conn}
	if err := db.migrate(context.Background(), migrationsFS); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Printf("[database] opened %s", dbPath)
	return db, nil
}

// Close, veritabanı bağlantısını kapatır.
func (db *DB) Close() error {
	return db.Conn.Close()
}

// migrate, henüz schema_migrations'a yazılmamış dosyaları isim sırasıyla uygular.
//
// Her dosya tek bir transaction'dır: statement'lar ve schema_migrations kaydı
// birlikte commit edilir. SQLite DDL'i de transaction içinde geri alabildiği için
// yarıda kesilen bir migration bir sonraki açılışta baştan çalışır.
func (db *DB) migrate(ctx context.Context, migrationsFS fs.FS) error {
	if _, err := db.Conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			filename   TEXT PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	pending, err := loadMigrations(migrationsFS)
	if err != nil {
		return err
	}

	applied, err := db.appliedMigrations(ctx)
	if err != nil {
		return err
	}

	for _, m := range pending {
		if applied[m.name] {
			continue
		}

		err := WithTx(ctx, db.Conn, func(tx *sql.Tx) error {
			for i, stmt := range m.statements {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return fmt.Errorf("statement %d: %w", i+1, err)
				}
			}
			_, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (filename) VALUES (?)", m.name)
			return err
		})
		if err != nil {
			return fmt.Errorf("migration %s: %w", m.name, err)
		}

		log.Printf("[database] migration applied: %s (%d statements)", m.name, len(m.statements))
	}

	return nil
}

// loadMigrations, kökteki *.sql dosyalarını okur ve isme göre sıralı döner.
func loadMigrations(migrationsFS fs.FS) ([]migration, error) {
	entries, err := fs.ReadDir(migrationsFS, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var migrations []migration
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		content, err := fs.ReadFile(migrationsFS, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %w", entry.Name(), err)
		}
		migrations = append(migrations, migration{
			name:       entry.Name(),
			statements: splitStatements(string(content)),
		})
	}

	slices.SortFunc(migrations, func(a, b migration) int {
		return strings.Compare(a.name, b.name)
	})
	return migrations, nil
}

func (db *DB) appliedMigrations(ctx context.Context) (map[string]bool, error) {
	rows, err := db.Conn.QueryContext(ctx, "SELECT filename FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to query schema_migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %w", err)
		}
		applied[name] = true
	}
	return applied, rows.Err()
}

// splitStatements, bir migration dosyasını ';' ile statement'lara böler.
// Tek tırnaklı string literal içindeki ';' ayırıcı sayılmaz ('' kaçışı dahil).
// Boş statement'lar atlanır.
func splitStatements(content string) []string {
	var (
		statements []string
		current    strings.Builder
		quoted     bool
	)

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			statements = append(statements, s)
		}
		current.Reset()
	}

	for i := 0; i < len(content); i++ {
		ch := content[i]
		switch {
		case ch == '\'' && quoted && i+1 < len(content) && content[i+1] == '\'':
			current.WriteString("''")
			i++
		case ch == '\'':
			quoted = !quoted
			current.WriteByte(ch)
		case ch == ';' && !quoted:
			flush()
		default:
			current.WriteByte(ch)
		}
	}
	flush()

	return statements
}
