package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/models"
	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/pkg"
	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/services"
)

// SessionView, tarayıcıya dönen oturum özeti. Token'lar asla gönderilmez.
type SessionView struct {
	Authenticated bool                 `json:"authenticated"`
	Status        models.SessionStatus `json:"status"`
	Loading       bool                 `json:"loading"`
	User          *models.UserProfile  `json:"user"`
	Error         string               `json:"error,omitempty"`
	Timer         *models.SessionTimer `json:"timer,omitempty"`
}

// RegisterView, register yanıtı.
type RegisterView struct {
	User          *models.UserProfile `json:"user"`
	Authenticated bool                `json:"authenticated"`
	Session       SessionView         `json:"session"`
}

func newSessionView(state models.SessionState, monitor services.SessionMonitor) SessionView {
	view := SessionView{
		Authenticated: state.IsAuthenticated(),
		Status:        state.Status,
		Loading:       state.Loading,
		User:          state.User,
		Error:         state.Error,
	}
	if monitor != nil {
		if timer, ok := monitor.Timer(); ok {
			view.Timer = &timer
		}
	}
	return view
}

// SessionHandler, oturum durumunu okuma, uzatma ve aktivite bildirme
// endpoint'lerini yönetir.
type SessionHandler struct {
	session services.AuthSession
	monitor services.SessionMonitor
}

// NewSessionHandler, constructor.
func NewSessionHandler(session services.AuthSession, monitor services.SessionMonitor) *SessionHandler {
	return &SessionHandler{session: session, monitor: monitor}
}

// Get godoc
// GET /api/auth/session
//
// Loading barrier sürerken de 200 döner; loading=true tarayıcıya
// "henüz karar verme" der.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	pkg.JSON(w, http.StatusOK, newSessionView(h.session.Snapshot(), h.monitor))
}

// Extend godoc
// POST /api/session/extend
//
// "Oturumu uzat" butonu. Tek uçuşluk refresh'e katılır; başarısızlık
// zorunlu logout'tur ve 401 döner.
func (h *SessionHandler) Extend(w http.ResponseWriter, r *http.Request) {
	if _, err := h.session.RefreshToken(r.Context()); err != nil {
		pkg.ErrorMessage(w, err, h.session.Snapshot().Error)
		return
	}

	pkg.JSON(w, http.StatusOK, newSessionView(h.session.Snapshot(), h.monitor))
}

// activityRequest, POST /api/session/activity gövdesi.
type activityRequest struct {
	Kind string `json:"kind"`
}

// Activity godoc
// POST /api/session/activity
// Body: { "kind": "pointer_down" | "key_down" | "touch_start" | "scroll" }
//
// WebSocket bağlantısı olmayan sekmeler aktiviteyi bu endpoint ile bildirir.
func (h *SessionHandler) Activity(w http.ResponseWriter, r *http.Request) {
	var req activityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	kind, err := services.ParseActivityKind(req.Kind)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	h.monitor.Activity(kind)
	pkg.JSON(w, http.StatusOK, newSessionView(h.session.Snapshot(), h.monitor))
}
