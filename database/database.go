// Package database, TokenStore'un arkasındaki SQLite bağlantısını ve
// migration sistemini yönetir.
//
// modernc.org/sqlite pure-Go driver'dır — CGO gerekmez. Blank import ile
// "sqlite" adıyla database/sql'e kayıt olur.
package database

import (
	"database/sql"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite"
)

// DB, veritabanı bağlantısını saran struct.
type DB struct {
	Conn *sql.DB
}

// New, SQLite bağlantısı açar ve henüz uygulanmamış migration'ları çalıştırır.
//
// dbPath: SQLite dosya yolu (ör: "./data/portal.db")
// migrationsFS: *.sql dosyalarını içeren fs.FS (embed.FS veya os.DirFS)
func New(dbPath string, migrationsFS fs.FS) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// WAL: okuma yazmayı bloklamaz. busy_timeout: aynı dosyayı açan ikinci
	// bir portal süreci kilitte hemen hata almaz.
	conn, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Tek yazar: token grubu yazımları sırayla çalışır.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{Conn: conn}

	if err := db.runMigrations(migrationsFS); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("[database] connected and migrations applied")
	return db, nil
}

// NewEmbedded, binary'ye gömülü migration'lar ile New çağırır.
func NewEmbedded(dbPath string) (*DB, error) {
	sub, err := fs.Sub(EmbeddedMigrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	return New(dbPath, sub)
}

// Close, veritabanı bağlantısını kapatır.
func (db *DB) Close() error {
	return db.Conn.Close()
}

// runMigrations, migration dosyalarını isim sırasıyla (001_, 002_, ...) çalıştırır.
// schema_migrations tablosu uygulanmış dosyaları takip eder; her dosya
// kaydıyla birlikte tek bir transaction'da uygulanır.
func (db *DB) runMigrations(migrationsFS fs.FS) error {
	if _, err := db.Conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			filename TEXT PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	entries, err := fs.ReadDir(migrationsFS, ".")
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var sqlFiles []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			sqlFiles = append(sqlFiles, entry.Name())
		}
	}
	sort.Strings(sqlFiles)

	applied, err := db.appliedMigrations()
	if err != nil {
		return err
	}

	for _, file := range sqlFiles {
		if applied[file] {
			continue
		}

		content, err := fs.ReadFile(migrationsFS, file)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file, err)
		}

		tx, err := db.Conn.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin migration %s: %w", file, err)
		}

		for i, stmt := range splitStatements(string(content)) {
			if _, err := tx.Exec(stmt); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("failed to execute migration %s (statement %d): %w", file, i+1, err)
			}
		}

		if _, err := tx.Exec("INSERT INTO schema_migrations (filename) VALUES (?)", file); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %s: %w", file, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %s: %w", file, err)
		}

		log.Printf("[database] migration applied: %s", file)
	}

	return nil
}

// appliedMigrations, schema_migrations'taki dosya isimlerini set olarak döner.
func (db *DB) appliedMigrations() (map[string]bool, error) {
	rows, err := db.Conn.Query("SELECT filename FROM schema_migrations")
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate migration rows: %w", err)
	}
	return applied, nil
}

// splitStatements, SQL metnini noktalı virgüllerden böler; tek tırnaklı
// string literal içindeki noktalı virgüller ('' kaçışı dahil) bölmez.
func splitStatements(sql string) []string {
	var statements []string
	var current strings.Builder
	inString := false

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			statements = append(statements, s)
		}
		current.Reset()
	}

	for i := 0; i < len(sql); i++ {
		ch := sql[i]

		switch {
		case ch == '\'' && inString && i+1 < len(sql) && sql[i+1] == '\'':
			current.WriteString("''")
			i++
			continue
		case ch == '\'':
			inString = !inString
		case ch == ';' && !inString:
			flush()
			continue
		}

		current.WriteByte(ch)
	}
	flush()

	return statements
}
