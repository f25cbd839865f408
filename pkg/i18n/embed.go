// Package i18n embed dosyası — çeviri JSON dosyalarını binary'ye gömer.
package i18n

import "embed"

// EmbeddedLocales, locales/ dizinindeki JSON dosyalarını içerir.
// Kullanım: LoadEmbedded() veya fs.Sub(EmbeddedLocales, "locales").
//
//go:embed locales/*.json
var EmbeddedLocales embed.FS
