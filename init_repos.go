// Package main, Repository katmanı başlatma.
//
// initRepositories, tüm repository implementasyonlarını oluşturur.
// Emote geçmişi ve profiller SQLite'ta, connection registry ve reaction
// state Redis'te tutulur.
package main

import (
	"database/sql"

	"github.com/redis/go-redis/v9"

	"github.com/akinalp/wordless/repository"
)

// Repositories, tüm repository instance'larını tutan container struct.
type Repositories struct {
	User       repository.UserRepository
	Emote      repository.EmoteRepository
	Connection repository.ConnectionRepository
	Reaction   repository.ReactionRepository
}

// initRepositories, SQLite ve Redis bağlantıları ile tüm repository'leri oluşturur.
// keyPrefix, aynı Redis'i paylaşan ortamları ayırır (ör: "wordless", "staging").
func initRepositories(db *sql.DB, rdb redis.UniversalClient, keyPrefix string) *Repositories {
	return &Repositories{
		User:       repository.NewSQLiteUserRepo(db),
		Emote:      repository.NewSQLiteEmoteRepo(db),
		Connection: repository.NewRedisConnectionRepo(rdb, keyPrefix),
		Reaction:   repository.NewRedisReactionRepo(rdb, keyPrefix),
	}
}
