package models

import "github.com/golang-jwt/jwt/v5"

// TokenPair, access + refresh token çifti.
//
// Kalıcı durumda ikisi birlikte vardır ya da ikisi birlikte yoktur.
// Biri olmadan diğerinin saklanması bir hatadır (refresh sırasındaki
// kısa geçiş anı hariç).
type TokenPair struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// Complete, iki token'ın da dolu olup olmadığını döner.
func (p TokenPair) Complete() bool {
	return p.AccessToken != "" && p.RefreshToken != ""
}

// AuthResponse, login/register/refresh endpoint'lerinin ortak yanıt şekli.
//
// Register'da token'lar opsiyoneldir — backend otomatik oturum açmıyorsa
// boş gelir ve kullanıcı ayrıca login olmalıdır. Refresh'te user opsiyoneldir.
type AuthResponse struct {
	Token        string       `json:"token,omitempty"`
	RefreshToken string       `json:"refreshToken,omitempty"`
	User         *UserProfile `json:"user,omitempty"`
}

// Pair, yanıttaki token çiftini döner.
func (r *AuthResponse) Pair() TokenPair {
	return TokenPair{AccessToken: r.Token, RefreshToken: r.RefreshToken}
}

// RefreshPayload, POST /auth/refresh-token gövdesi.
// Backend alan adı olarak "token" bekler ama değer refresh token'dır.
type RefreshPayload struct {
	Token string `json:"token"`
}

// TokenClaims, access token'ın payload'ı.
//
// Portal token'ı DOĞRULAMAZ (imza anahtarı backend'dedir). Sadece exp
// claim'ini zamanlama ipucu olarak okur; yetki kararları her zaman
// backend'in 401 yanıtlarına dayanır.
type TokenClaims struct {
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   Role   `json:"role,omitempty"`
	jwt.RegisteredClaims
}
