package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/database"
	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/models"
	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/pkg/crypto"
)

// sqliteTokenStore, TokenStore interface'inin SQLite implementasyonu.
type sqliteTokenStore struct {
	db     *sql.DB
	sealer *crypto.Sealer // nil → değerler düz yazılır
}

// NewSQLiteTokenStore, constructor. sealer opsiyoneldir.
func NewSQLiteTokenStore(db *sql.DB, sealer *crypto.Sealer) TokenStore {
	return &sqliteTokenStore{db: db, sealer: sealer}
}

func (r *sqliteTokenStore) Load(ctx context.Context) (StoredSession, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT key, value FROM auth_storage WHERE key IN (?, ?, ?)`,
		KeyToken, KeyRefreshToken, KeyUser)
	if err != nil {
		return StoredSession{}, fmt.Errorf("failed to load auth storage: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string, 3)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return StoredSession{}, fmt.Errorf("failed to scan auth storage row: %w", err)
		}
		plain, err := r.open(value)
		if err != nil {
			return StoredSession{}, fmt.Errorf("failed to decrypt %s: %w", key, err)
		}
		values[key] = plain
	}
	if err := rows.Err(); err != nil {
		return StoredSession{}, fmt.Errorf("failed to iterate auth storage rows: %w", err)
	}

	stored := StoredSession{
		Token:        values[KeyToken],
		RefreshToken: values[KeyRefreshToken],
	}

	// Bozuk user kaydı token'ları geçersiz kılmaz ama user'ı nil bırakır —
	// AuthSession bunu "oturum açık değil" olarak yorumlar.
	if raw := values[KeyUser]; raw != "" {
		var user models.UserProfile
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			log.Printf("[store] ignoring unreadable user record: %v", err)
		} else {
			stored.User = &user
		}
	}

	return stored, nil
}

func (r *sqliteTokenStore) Save(ctx context.Context, s StoredSession) error {
	if err := validateForSave(s); err != nil {
		return err
	}

	token, err := r.seal(s.Token)
	if err != nil {
		return err
	}
	refresh, err := r.seal(s.RefreshToken)
	if err != nil {
		return err
	}

	var user string
	if s.User != nil {
		raw, err := json.Marshal(s.User)
		if err != nil {
			return fmt.Errorf("failed to encode user: %w", err)
		}
		if user, err = r.seal(string(raw)); err != nil {
			return err
		}
	}

	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := upsert(ctx, tx, KeyToken, token); err != nil {
			return err
		}
		if err := upsert(ctx, tx, KeyRefreshToken, refresh); err != nil {
			return err
		}
		if user == "" {
			_, err := tx.ExecContext(ctx, `DELETE FROM auth_storage WHERE key = ?`, KeyUser)
			if err != nil {
				return fmt.Errorf("failed to delete user: %w", err)
			}
			return nil
		}
		return upsert(ctx, tx, KeyUser, user)
	})
}

func (r *sqliteTokenStore) Clear(ctx context.Context) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`DELETE FROM auth_storage WHERE key IN (?, ?, ?)`,
			KeyToken, KeyRefreshToken, KeyUser)
		if err != nil {
			return fmt.Errorf("failed to clear auth storage: %w", err)
		}
		return nil
	})
}

// ─── Private Helpers ───

func upsert(ctx context.Context, q database.TxQuerier, key, value string) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO auth_storage (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (r *sqliteTokenStore) seal(value string) (string, error) {
	if r.sealer == nil {
		return value, nil
	}
	sealed, err := r.sealer.Seal(value)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt value: %w", err)
	}
	return sealed, nil
}

func (r *sqliteTokenStore) open(value string) (string, error) {
	if r.sealer == nil {
		if crypto.IsSealed(value) {
			return "", fmt.Errorf("value is encrypted but no STORE_ENCRYPTION_KEY is configured")
		}
		return value, nil
	}
	return r.sealer.Open(value)
}
