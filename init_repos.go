// Package main — TokenStore başlatma.
//
// initTokenStore, config'e göre kalıcı (SQLite) veya geçici (in-memory)
// TokenStore oluşturur. STORE_ENCRYPTION_KEY verilmişse token değerleri
// diskte AES-GCM ile şifreli durur.
package main

import (
	"fmt"
	"log"

	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/config"
	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/database"
	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/pkg/crypto"
	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/repository"
)

// memoryStorePath, kalıcı olmayan store'u seçen özel STORE_PATH değeri.
const memoryStorePath = ":memory:"

// initTokenStore, store'u ve kapanışta çağrılacak temizlik fonksiyonunu döner.
func initTokenStore(cfg config.StoreConfig) (repository.TokenStore, func(), error) {
	if cfg.Path == memoryStorePath {
		log.Println("[store] using in-memory token store, sessions will not survive a restart")
		return repository.NewMemoryTokenStore(), func() {}, nil
	}

	var sealer *crypto.Sealer
	if cfg.EncryptionKey != "" {
		s, err := crypto.NewSealer(cfg.EncryptionKey)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to init token sealer: %w", err)
		}
		sealer = s
	}

	db, err := database.NewEmbedded(cfg.Path)
	if err != nil {
		return nil, nil, err
	}

	closeFn := func() {
		if err := db.Close(); err != nil {
			log.Printf("[store] failed to close database: %v", err)
		}
	}

	log.Printf("[store] sqlite token store at %s (encrypted=%t)", cfg.Path, sealer != nil)
	return repository.NewSQLiteTokenStore(db.Conn, sealer), closeFn, nil
}
