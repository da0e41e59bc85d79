package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/akinalp/wordless/database"
	"github.com/akinalp/wordless/models"
	"github.com/akinalp/wordless/pkg"
)

type sqliteEmoteRepo struct {
	db database.TxQuerier
}

// NewSQLiteEmoteRepo, constructor.
//
// db bir *sql.DB ise Create kendi transaction'ını açar (INSERT + sequence okuma).
// *sql.Tx verilirse çağıranın transaction'ı kullanılır.
func NewSQLiteEmoteRepo(db database.TxQuerier) EmoteRepository {
	return &sqliteEmoteRepo{db: db}
}

const emoteColumns = `sequence_number, emote_id, reaction_id, user_id,
	emoji1, emoji2, emoji3, emoji4, created_at, is_deleted`

func (r *sqliteEmoteRepo) Create(ctx context.Context, emote *models.Emote) error {
	if len(emote.Emojis) == 0 || len(emote.Emojis) > models.MaxEmojisPerEmote {
		return fmt.Errorf("%w: emote must have 1-%d emojis", pkg.ErrBadRequest, models.MaxEmojisPerEmote)
	}

	if conn, ok := r.db.(*sql.DB); ok {
		return database.WithTx(ctx, conn, func(tx *sql.Tx) error {
			return insertEmote(ctx, tx, emote)
		})
	}
	return insertEmote(ctx, r.db, emote)
}

// insertEmote, emote satırını yazar ve atanan sequence_number'ı geri okur.
func insertEmote(ctx context.Context, q database.TxQuerier, emote *models.Emote) error {
	var slots [models.MaxEmojisPerEmote]sql.NullString
	for i, e := range emote.Emojis {
		slots[i] = sql.NullString{String: e, Valid: true}
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO emotes (emote_id, reaction_id, user_id, emoji1, emoji2, emoji3, emoji4, created_at, is_deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0)`,
		emote.ID, emote.ReactionID, emote.UserID,
		slots[0], slots[1], slots[2], slots[3],
		emote.CreatedAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: emote id already exists", pkg.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to insert emote: %w", err)
	}

	err = q.QueryRowContext(ctx,
		`SELECT sequence_number FROM emotes WHERE emote_id = ?`, emote.ID,
	).Scan(&emote.SequenceNumber)
	if err != nil {
		return fmt.Errorf("failed to read back emote sequence: %w", err)
	}
	return nil
}

func (r *sqliteEmoteRepo) GetByID(ctx context.Context, id string) (*models.Emote, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+emoteColumns+` FROM emotes WHERE emote_id = ? AND is_deleted = 0`, id)

	emote, err := scanEmote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get emote: %w", err)
	}
	return emote, nil
}

func (r *sqliteEmoteRepo) ListRecent(ctx context.Context, limit int) ([]models.Emote, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+emoteColumns+`
		FROM emotes
		WHERE is_deleted = 0
		ORDER BY created_at DESC, sequence_number DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list emotes: %w", err)
	}
	defer rows.Close()

	emotes := make([]models.Emote, 0, limit)
	for rows.Next() {
		emote, err := scanEmote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan emote: %w", err)
		}
		emotes = append(emotes, *emote)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate emotes: %w", err)
	}
	return emotes, nil
}

func (r *sqliteEmoteRepo) SoftDelete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE emotes SET is_deleted = 1 WHERE emote_id = ? AND is_deleted = 0`, id)
	if err != nil {
		return fmt.Errorf("failed to delete emote: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return pkg.ErrNotFound
	}
	return nil
}

// rowScanner, *sql.Row ve *sql.Rows'un ortak Scan metodu.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmote(s rowScanner) (*models.Emote, error) {
	var (
		emote models.Emote
		slots [models.MaxEmojisPerEmote]sql.NullString
	)
	err := s.Scan(
		&emote.SequenceNumber, &emote.ID, &emote.ReactionID, &emote.UserID,
		&slots[0], &slots[1], &slots[2], &slots[3],
		&emote.CreatedAt, &emote.IsDeleted,
	)
	if err != nil {
		return nil, err
	}

	// NULL slottan sonrası da NULL'dır (CHECK constraint), ilk NULL'da dur.
	for _, s := range slots {
		if !s.Valid {
			break
		}
		emote.Emojis = append(emote.Emojis, s.String)
	}
	return &emote, nil
}
