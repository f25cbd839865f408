// Package repository, TokenStore'un (kalıcı token deposu) interface'ini ve
// implementasyonlarını barındırır.
//
// TokenStore tarayıcının localStorage'ının karşılığıdır: üç anahtar
// (token, refreshToken, user) portal yeniden başlatılsa da korunur.
// Başlangıçtan sonra TokenStore'a yazan TEK bileşen AuthSession'dır.
package repository

import (
	"context"
	"fmt"

	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/models"
)

// Saklanan anahtar isimleri.
const (
	KeyToken        = "token"
	KeyRefreshToken = "refreshToken"
	KeyUser         = "user"
)

// StoredSession, TokenStore'da duran üçlü.
//
// User nil ama Token dolu olabilir: user kaydı bozuksa (parse edilemiyorsa)
// Load bu şekilde döner. Böyle bir durum "oturum açık" sayılmaz.
type StoredSession struct {
	Token        string
	RefreshToken string
	User         *models.UserProfile
}

// Empty, hiçbir anahtar yoksa true döner.
func (s StoredSession) Empty() bool {
	return s.Token == "" && s.RefreshToken == "" && s.User == nil
}

// TokenStore, token üçlüsü için kalıcı depo.
//
// Save ve Clear üç anahtarı bir grup olarak yazar/siler — yarım yazım yoktur.
type TokenStore interface {
	Load(ctx context.Context) (StoredSession, error)
	Save(ctx context.Context, s StoredSession) error
	Clear(ctx context.Context) error
}

// validateForSave, TokenPair değişmezini kontrol eder: iki token birlikte
// vardır. User olmadan token yazmak serbesttir, tersi değildir.
func validateForSave(s StoredSession) error {
	if s.Token == "" || s.RefreshToken == "" {
		return fmt.Errorf("token and refresh token must be stored together")
	}
	return nil
}
