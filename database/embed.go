package database

import "embed"

// EmbeddedMigrations, migrations/ dizinindeki SQL dosyalarını içerir.
// Kullanım: NewEmbedded(path) veya fs.Sub(EmbeddedMigrations, "migrations").
//
//go:embed migrations/*.sql
var EmbeddedMigrations embed.FS
