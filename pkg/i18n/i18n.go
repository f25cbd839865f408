// Package i18n, kullanıcıya gösterilen oturum mesajlarının çevirisini sağlar.
//
// AuthSession'ın `error` alanı doğrudan ekranda gösterilir; bu yüzden
// "no response from server" gibi teknik metinler yerine burada tanımlı,
// kullanıcı diline çevrilmiş mesajlar kullanılır.
//
// Kullanım:
//
//	_ = i18n.LoadEmbedded()
//	localizer := i18n.NewLocalizer("tr")
//	msg := localizer.T("auth.noResponse")
package i18n

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"strings"
	"sync"
)

// SupportedLanguages — desteklenen dil kodları.
var SupportedLanguages = []string{"en", "tr"}

// DefaultLanguage — varsayılan dil.
const DefaultLanguage = "en"

// translations, map[lang]map[key]value. Başlangıçta bir kere yüklenir,
// sonra sadece okunur.
var (
	translations map[string]map[string]string
	loadOnce     sync.Once
	loadErr      error
)

// Load, çeviri dosyalarını fs.FS'ten yükler (en.json, tr.json).
// Program ömrü boyunca sadece ilk çağrı çalışır; sonrakiler ilk sonucu döner.
func Load(localesFS fs.FS) error {
	loadOnce.Do(func() {
		loaded := make(map[string]map[string]string)

		for _, lang := range SupportedLanguages {
			fileName := lang + ".json"

			data, err := fs.ReadFile(localesFS, fileName)
			if err != nil {
				loadErr = fmt.Errorf("failed to read translation file %s: %w", fileName, err)
				return
			}

			// {"auth": {"noResponse": "..."}} → "auth.noResponse"
			var nested map[string]any
			if err := json.Unmarshal(data, &nested); err != nil {
				loadErr = fmt.Errorf("failed to parse translation file %s: %w", fileName, err)
				return
			}

			flat := make(map[string]string)
			flattenMap("", nested, flat)
			loaded[lang] = flat

			log.Printf("[i18n] loaded %d keys for language: %s", len(flat), lang)
		}

		translations = loaded
	})

	return loadErr
}

// LoadEmbedded, binary'ye gömülü locales/ dizinini yükler.
func LoadEmbedded() error {
	sub, err := fs.Sub(EmbeddedLocales, "locales")
	if err != nil {
		return fmt.Errorf("failed to open embedded locales: %w", err)
	}
	return Load(sub)
}

// Localizer, belirli bir dil için çeviri yapan struct.
type Localizer struct {
	lang string
}

// NewLocalizer, belirli bir dil için Localizer oluşturur.
// Desteklenmeyen dil verilirse varsayılana düşer.
func NewLocalizer(lang string) *Localizer {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if !isSupported(lang) {
		lang = DefaultLanguage
	}
	return &Localizer{lang: lang}
}

// Lang, Localizer'ın dil kodunu döner.
func (l *Localizer) Lang() string {
	return l.lang
}

// T, anahtara karşılık gelen metni döner.
// Kullanıcının dilinde yoksa İngilizce'ye, orada da yoksa anahtarın kendisine düşer.
func (l *Localizer) T(key string) string {
	if msg, ok := translations[l.lang][key]; ok {
		return msg
	}
	if msg, ok := translations[DefaultLanguage][key]; ok {
		return msg
	}
	return key
}

// TWithParams, {{param}} yer tutucularını değerlerle değiştirir.
func (l *Localizer) TWithParams(key string, params map[string]string) string {
	msg := l.T(key)
	for k, v := range params {
		msg = strings.ReplaceAll(msg, "{{"+k+"}}", v)
	}
	return msg
}

// ─── Helpers ───

func isSupported(lang string) bool {
	for _, l := range SupportedLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

// flattenMap, nested JSON'u "dot notation" key'lere dönüştürür.
func flattenMap(prefix string, src map[string]any, dst map[string]string) {
	for k, v := range src {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}

		switch val := v.(type) {
		case string:
			dst[key] = val
		case map[string]any:
			flattenMap(key, val, dst)
		}
	}
}
