// Package services, portal'ın oturum katmanını barındırır.
//
// AuthSession süreç genelinde TEK bir kimlikli oturumun sahibidir (tarayıcıdaki
// paylaşılan auth context'in karşılığı). main.go tarafından bir kez oluşturulur
// ve ihtiyaç duyan her bileşene (handler, monitor, middleware, proxy)
// constructor üzerinden enjekte edilir.
//
// Service ASLA http.Request/Response bilmez — sadece domain modelleri alır/verir.
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/models"
	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/pkg"
	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/pkg/authapi"
	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/pkg/i18n"
	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/repository"
)

// AuthClient, backend'in auth endpoint'leri. authapi.Client bunu implemente eder.
type AuthClient interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*models.AuthResponse, error)
}

// SessionObserver, her durum geçişinden sonra (lock dışında) çağrılır.
type SessionObserver func(state models.SessionState)

// RegisterResult, Register'ın sonucu.
// Backend kayıttan sonra token dönmediyse Authenticated false'tur ve
// kullanıcı ayrıca login olmalıdır.
type RegisterResult struct {
	User          *models.UserProfile `json:"user,omitempty"`
	Authenticated bool                `json:"authenticated"`
}

// AuthSession interface'i — dışarıya açık API.
type AuthSession interface {
	// Initialize, TokenStore'u okur ve başlangıç barrier'ını (loading) kaldırır.
	Initialize(ctx context.Context) error
	Login(ctx context.Context, req models.LoginRequest) (*models.UserProfile, error)
	Register(ctx context.Context, req models.RegisterRequest) (*RegisterResult, error)
	// Logout, kullanıcının açık çıkışı. Idempotent'tir.
	Logout(ctx context.Context) error
	// Expire, zorunlu çıkış (deadline geçti veya refresh başarısız).
	// Logout ile aynı temizliği yapar, ek olarak "oturum süresi doldu" mesajını bırakır.
	Expire(ctx context.Context) error
	// RefreshToken, tek uçuşlu token yenileme. Eşzamanlı çağıranlar aynı
	// network çağrısının sonucunu paylaşır.
	RefreshToken(ctx context.Context) (string, error)
	HasRole(roles ...models.Role) bool
	IsAuthenticated() bool
	Snapshot() models.SessionState
	CurrentToken() string
	ClearError()
	Subscribe(fn SessionObserver)
}

const refreshFlightKey = "refresh"

// authSession, AuthSession interface'inin implementasyonu.
//
// Lock sırası: mu → (store). Observer'lar her zaman mu bırakıldıktan sonra
// çağrılır.
//
// epoch, her logout'ta artar. Login/refresh network çağrısı sürerken logout
// olursa, dönen sonuç eski epoch'a aittir ve YOK SAYILIR — logout her zaman
// son sözü söyler.
type authSession struct {
	store     repository.TokenStore
	client    AuthClient
	header    *authapi.BearerHeader
	localizer *i18n.Localizer

	mu    sync.RWMutex
	state models.SessionState
	epoch uint64

	flight singleflight.Group

	obsMu     sync.RWMutex
	observers []SessionObserver
}

// NewAuthSession, constructor. Dönen oturum Initialize çağrılana kadar
// loading durumundadır; bu sürede hiçbir yetki kararı verilmemelidir.
func NewAuthSession(
	store repository.TokenStore,
	client AuthClient,
	header *authapi.BearerHeader,
	localizer *i18n.Localizer,
) AuthSession {
	return &authSession{
		store:     store,
		client:    client,
		header:    header,
		localizer: localizer,
		state: models.SessionState{
			Loading: true,
			Status:  models.StatusUnauthenticated,
		},
	}
}

func (s *authSession) Initialize(ctx context.Context) error {
	var initErr error
	stored, err := s.store.Load(ctx)
	if err != nil {
		// Okunamayan depo: temiz bir oturumsuz başlangıç, bozuk veriyi de sil.
		log.Printf("[session] failed to load token store, starting signed out: %v", err)
		if clearErr := s.store.Clear(ctx); clearErr != nil {
			initErr = fmt.Errorf("failed to reset unreadable token store: %w", clearErr)
		}
		stored = repository.StoredSession{}
	}

	s.mu.Lock()
	s.state = models.SessionState{
		User:         stored.User,
		Token:        stored.Token,
		RefreshToken: stored.RefreshToken,
	}
	s.state.Status = statusOf(s.state)
	if s.state.IsAuthenticated() {
		s.header.Set(stored.Token)
	} else {
		s.header.Clear()
	}
	state := s.state
	s.mu.Unlock()

	log.Printf("[session] initialized (status=%s)", state.Status)
	s.notify()
	return initErr
}

// Login, kimlik bilgilerini doğrular, backend'e gönderir ve başarıda
// token üçlüsünü tek grup olarak kalıcı hale getirir.
func (s *authSession) Login(ctx context.Context, req models.LoginRequest) (*models.UserProfile, error) {
	if err := req.Validate(); err != nil {
		s.setError(s.validationMessage(err))
		return nil, fmt.Errorf("%w: %w", pkg.ErrValidation, err)
	}

	epoch := s.begin()

	resp, err := s.client.Login(ctx, req)
	if err == nil && (!resp.Pair().Complete() || resp.User == nil) {
		err = fmt.Errorf("%w: login response is missing tokens or user", pkg.ErrServer)
	}
	if err != nil {
		return nil, s.fail(epoch, err, "auth.invalidCredentials")
	}

	if err := s.establish(ctx, epoch, resp.Pair(), resp.User); err != nil {
		return nil, err
	}
	log.Printf("[session] signed in (user=%s role=%s)", resp.User.ID, resp.User.Role)
	return resp.User, nil
}

// Register, yeni hesap oluşturur. Backend token dönerse oturum açılır,
// dönmezse oturum açık olmayan durumda kalınır.
func (s *authSession) Register(ctx context.Context, req models.RegisterRequest) (*RegisterResult, error) {
	if err := req.Validate(); err != nil {
		s.setError(s.validationMessage(err))
		return nil, fmt.Errorf("%w: %w", pkg.ErrValidation, err)
	}

	epoch := s.begin()

	resp, err := s.client.Register(ctx, req)
	if err != nil {
		return nil, s.fail(epoch, err, "auth.registrationRejected")
	}

	if resp.Pair().Complete() && resp.User != nil {
		if err := s.establish(ctx, epoch, resp.Pair(), resp.User); err != nil {
			return nil, err
		}
		log.Printf("[session] registered and signed in (user=%s)", resp.User.ID)
		return &RegisterResult{User: resp.User, Authenticated: true}, nil
	}

	// Otomatik login yok — Authenticating'den geri dön
	s.mu.Lock()
	if epoch == s.epoch {
		s.state.Status = statusOf(s.state)
	}
	s.mu.Unlock()
	s.notify()

	log.Printf("[session] registered without automatic sign-in")
	return &RegisterResult{User: resp.User, Authenticated: false}, nil
}

func (s *authSession) Logout(ctx context.Context) error {
	return s.teardown(ctx, nil, "")
}

func (s *authSession) Expire(ctx context.Context) error {
	return s.teardown(ctx, nil, s.localizer.T("auth.sessionExpired"))
}

func (s *authSession) RefreshToken(ctx context.Context) (string, error) {
	// Refresh'i ilk çağıranın context'inden ayırıyoruz: ilk çağıran
	// vazgeçse bile diğerleri aynı sonucu bekliyor.
	v, err, _ := s.flight.Do(refreshFlightKey, func() (any, error) {
		return s.refresh(context.WithoutCancel(ctx))
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (s *authSession) HasRole(roles ...models.Role) bool {
	return s.Snapshot().HasRole(roles...)
}

func (s *authSession) IsAuthenticated() bool {
	return s.Snapshot().IsAuthenticated()
}

// Snapshot, durumun bir kopyasını döner. User pointer'ı da kopyalanır.
func (s *authSession) Snapshot() models.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := s.state
	if state.User != nil {
		u := *state.User
		state.User = &u
	}
	return state
}

func (s *authSession) CurrentToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token
}

func (s *authSession) ClearError() {
	s.mu.Lock()
	changed := s.state.Error != ""
	s.state.Error = ""
	s.mu.Unlock()
	if changed {
		s.notify()
	}
}

func (s *authSession) Subscribe(fn SessionObserver) {
	s.obsMu.Lock()
	s.observers = append(s.observers, fn)
	s.obsMu.Unlock()
}

// ─── Private Helpers ───

// refresh, tek uçuşun gövdesi. Başarısızlıkta (epoch değişmediyse) oturumu
// zorla kapatır; hata asla eski token'larla bekleyen bir durum bırakmaz.
func (s *authSession) refresh(ctx context.Context) (string, error) {
	s.mu.Lock()
	epoch := s.epoch
	refreshToken := s.state.RefreshToken
	if refreshToken != "" {
		s.state.Status = models.StatusRefreshing
	}
	s.mu.Unlock()

	if refreshToken == "" {
		log.Printf("[session] refresh requested without a stored refresh token, signing out")
		s.teardown(ctx, &epoch, s.localizer.T("auth.sessionExpired"))
		return "", fmt.Errorf("%w: %w", pkg.ErrRefreshFailure, pkg.ErrNoRefreshToken)
	}

	resp, err := s.client.Refresh(ctx, refreshToken)
	if err == nil && !resp.Pair().Complete() {
		err = fmt.Errorf("%w: refresh response is missing tokens", pkg.ErrServer)
	}
	if err != nil {
		if s.stale(epoch) {
			return "", fmt.Errorf("%w: %w", pkg.ErrRefreshFailure, pkg.ErrSessionClosed)
		}
		log.Printf("[session] token refresh failed, signing out: %v", err)
		s.teardown(ctx, &epoch, s.localizer.T("auth.sessionExpired"))
		return "", fmt.Errorf("%w: %w", pkg.ErrRefreshFailure, err)
	}

	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		log.Printf("[session] discarding refresh result, session closed while in flight")
		return "", fmt.Errorf("%w: %w", pkg.ErrRefreshFailure, pkg.ErrSessionClosed)
	}

	user := resp.User
	if user == nil {
		user = s.state.User
	}
	if err := s.store.Save(ctx, repository.StoredSession{
		Token:        resp.Token,
		RefreshToken: resp.RefreshToken,
		User:         user,
	}); err != nil {
		// Backend eski refresh token'ı çoktan iptal etti. Bellekteki oturum
		// yeni çiftle devam eder; depodaki ölü çift silinir ki sonraki
		// açılış geçersiz bir oturumu geri yüklemesin.
		log.Printf("[session] failed to persist refreshed tokens, dropping stored session: %v", err)
		if clearErr := s.store.Clear(ctx); clearErr != nil {
			log.Printf("[session] failed to drop stale stored session: %v", clearErr)
		}
	}

	s.state.Token = resp.Token
	s.state.RefreshToken = resp.RefreshToken
	s.state.User = user
	s.state.Error = ""
	s.state.Status = statusOf(s.state)
	s.header.Set(resp.Token)
	s.mu.Unlock()

	log.Printf("[session] token refreshed")
	s.notify()
	return resp.Token, nil
}

// begin, Authenticating durumuna geçer ve işlemin epoch'unu döner.
func (s *authSession) begin() uint64 {
	s.mu.Lock()
	s.state.Status = models.StatusAuthenticating
	s.state.Error = ""
	epoch := s.epoch
	s.mu.Unlock()
	s.notify()
	return epoch
}

// fail, login/register hatasını kullanıcı mesajına çevirip duruma yazar.
func (s *authSession) fail(epoch uint64, err error, rejectedKey string) error {
	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		return fmt.Errorf("%w: %w", pkg.ErrSessionClosed, err)
	}
	s.state.Status = statusOf(s.state)
	s.state.Error = s.errorMessage(err, rejectedKey)
	s.mu.Unlock()

	log.Printf("[session] authentication failed: %v", err)
	s.notify()
	return err
}

// establish, yeni token çiftini ve user'ı kalıcı hale getirip oturumu açar.
// Save, mu tutulurken yapılır: logout araya giremez. Backend çifti zaten
// verdi; isteğin iptali kalıcılığı yarıda bırakmamalı.
func (s *authSession) establish(ctx context.Context, epoch uint64, pair models.TokenPair, user *models.UserProfile) error {
	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		log.Printf("[session] discarding sign-in result, session closed while in flight")
		return pkg.ErrSessionClosed
	}

	if err := s.store.Save(context.WithoutCancel(ctx), repository.StoredSession{
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         user,
	}); err != nil {
		s.state.Status = statusOf(s.state)
		s.state.Error = s.localizer.T("auth.unexpected")
		s.mu.Unlock()
		s.notify()
		return fmt.Errorf("failed to persist session: %w", err)
	}

	s.state = models.SessionState{
		User:         user,
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		Status:       models.StatusAuthenticated,
	}
	s.header.Set(pair.AccessToken)
	s.mu.Unlock()

	s.notify()
	return nil
}

// teardown, logout'un ortak gövdesi. onlyEpoch verilmişse ve epoch o arada
// değiştiyse (başka bir logout/login olduysa) hiçbir şey yapmaz.
//
// Bellek, header ve depo her durumda birlikte temizlenir; depo hatası
// loglanır ve döndürülür ama bellekteki oturum yine de kapanır.
func (s *authSession) teardown(ctx context.Context, onlyEpoch *uint64, message string) error {
	s.mu.Lock()
	if onlyEpoch != nil && *onlyEpoch != s.epoch {
		s.mu.Unlock()
		return nil
	}

	changed := s.state.Token != "" || s.state.RefreshToken != "" || s.state.User != nil ||
		s.state.Status != models.StatusLoggedOut || s.state.Error != message

	s.epoch++
	s.state = models.SessionState{Status: models.StatusLoggedOut, Error: message}
	s.header.Clear()
	// Logout kesindir: sayfadan ayrılan (iptal edilen) istek depoyu dolu bırakamaz.
	err := s.store.Clear(context.WithoutCancel(ctx))
	s.mu.Unlock()

	// Bekleyen refresh'in sonucu zaten epoch ile yok sayılır; sonraki
	// refresh yeni bir uçuş başlatsın.
	s.flight.Forget(refreshFlightKey)

	if err != nil {
		log.Printf("[session] failed to clear token store on sign-out: %v", err)
		err = fmt.Errorf("failed to clear token store: %w", err)
	}
	if changed {
		log.Printf("[session] signed out")
		s.notify()
	}
	return err
}

func (s *authSession) stale(epoch uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return epoch != s.epoch
}

func (s *authSession) setError(message string) {
	s.mu.Lock()
	s.state.Error = message
	s.mu.Unlock()
	s.notify()
}

func (s *authSession) notify() {
	s.obsMu.RLock()
	observers := make([]SessionObserver, len(s.observers))
	copy(observers, s.observers)
	s.obsMu.RUnlock()

	if len(observers) == 0 {
		return
	}
	state := s.Snapshot()
	for _, fn := range observers {
		fn(state)
	}
}

// errorMessage, hata sınıfını kullanıcıya gösterilecek mesaja çevirir.
// AuthRejected'da backend'in mesajı önceliklidir.
func (s *authSession) errorMessage(err error, rejectedKey string) string {
	switch {
	case errors.Is(err, pkg.ErrAuthRejected):
		if msg := pkg.ServerMessage(err); msg != "" {
			return msg
		}
		return s.localizer.T(rejectedKey)
	case errors.Is(err, pkg.ErrNetworkUnreachable):
		return s.localizer.T("auth.noResponse")
	case errors.Is(err, pkg.ErrServer):
		return s.localizer.T("auth.serverError")
	default:
		return s.localizer.T("auth.unexpected")
	}
}

func (s *authSession) validationMessage(err error) string {
	switch {
	case errors.Is(err, models.ErrEmailRequired):
		return s.localizer.T("auth.emailRequired")
	case errors.Is(err, models.ErrPasswordRequired):
		return s.localizer.T("auth.passwordRequired")
	default:
		return s.localizer.T("auth.invalidInput")
	}
}

// statusOf, token/user durumundan state machine durumunu türetir.
func statusOf(state models.SessionState) models.SessionStatus {
	if state.IsAuthenticated() {
		return models.StatusAuthenticated
	}
	return models.StatusUnauthenticated
}
