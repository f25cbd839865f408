package database

import (
	"context"
	"database/sql"
	"fmt"
)

// TxQuerier, hem *sql.DB hem *sql.Tx tarafından karşılanan interface.
// Repository'ler bunu alırsa aynı sorgular transaction içinde de çalışır.
type TxQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx, fn'i tek bir transaction içinde çalıştırır.
//
// fn nil dönerse COMMIT, error dönerse ROLLBACK. fn panic atarsa ROLLBACK
// yapılır ve panic tekrar fırlatılır — açık transaction DB'yi kilitli bırakmaz.
//
// TokenStore'un token/refreshToken/user üçlüsünü grup olarak yazması
// (hepsi ya da hiçbiri) bu fonksiyona dayanır.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}

		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
			}
			return
		}

		if commitErr := tx.Commit(); commitErr != nil {
			err = fmt.Errorf("failed to commit transaction: %w", commitErr)
		}
	}()

	err = fn(tx)
	return
}
