// Package models, portal'ın domain modellerini (veri yapıları) tanımlar.
//
// Backend'in JSON sözleşmesi camelCase kullanır (`firstName`, `refreshToken`),
// bu yüzden json tag'leri backend ile birebir aynıdır.
package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Role, kullanıcının platformdaki rolü.
// Kapalı bir kümedir: Guest (oturum yok), User, Admin.
type Role string

const (
	RoleGuest Role = "Guest" // Örtük — oturum yokken geçerli rol
	RoleUser  Role = "User"
	RoleAdmin Role = "Admin"
)

// Valid, rolün bilinen rollerden biri olup olmadığını döner.
func (r Role) Valid() bool {
	switch r {
	case RoleGuest, RoleUser, RoleAdmin:
		return true
	}
	return false
}

// UserID, backend'in döndürdüğü kullanıcı kimliği.
// Backend bazı ortamlarda sayı (1), bazılarında string ("a1b2") döner;
// ikisini de kabul edip string olarak saklarız.
type UserID string

// UnmarshalJSON, hem JSON number hem JSON string kabul eder.
func (id *UserID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = UserID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("user id must be a string or number: %w", err)
	}
	*id = UserID(n.String())
	return nil
}

// UserProfile, oturum açmış kullanıcının önbelleğe alınan profili.
type UserProfile struct {
	ID        UserID `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Role      Role   `json:"role"`
}

// DisplayName, menülerde gösterilecek isim. İsim yoksa email'e düşer.
func (u *UserProfile) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// Form doğrulama hataları. AuthSession bunları kullanıcı mesajlarına çevirir.
var (
	ErrEmailRequired    = errors.New("email is required")
	ErrInvalidEmail     = errors.New("invalid email format")
	ErrPasswordRequired = errors.New("password is required")
)

// emailRegex, basit email format kontrolü (sunucu asıl doğrulamayı yapar).
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// LoginRequest, login formundan gelen kimlik bilgileri.
// Sadece istek süresince yaşar — hiçbir yerde saklanmaz.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate, network çağrısından ÖNCE zorunlu alanları kontrol eder.
func (r *LoginRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	if r.Email == "" {
		return ErrEmailRequired
	}
	if r.Password == "" {
		return ErrPasswordRequired
	}
	return nil
}

// RegisterRequest, kayıt formundan gelen veriler.
//
// ConfirmPassword alanı yok: backend'e giden confirmPassword değeri
// Password'dan türetilir (bkz. RegisterPayload). İki ayrı kullanıcı
// girdisi arasında kayma olmaz.
type RegisterRequest struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// Validate, kayıt isteğinin gönderilmeden önce geçerli olup olmadığını kontrol eder.
func (r *RegisterRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)

	if r.Email == "" {
		return ErrEmailRequired
	}
	if !emailRegex.MatchString(r.Email) {
		return ErrInvalidEmail
	}
	if r.Password == "" {
		return ErrPasswordRequired
	}
	return nil
}

// RegisterPayload, POST /auth/register gövdesi.
type RegisterPayload struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	FirstName       string `json:"firstName,omitempty"`
	LastName        string `json:"lastName,omitempty"`
}

// Payload, RegisterRequest'i backend gövdesine çevirir.
// ConfirmPassword yapı gereği Password'a eşittir.
func (r *RegisterRequest) Payload() RegisterPayload {
	return RegisterPayload{
		Email:           r.Email,
		Password:        r.Password,
		ConfirmPassword: r.Password,
		FirstName:       r.FirstName,
		LastName:        r.LastName,
	}
}
