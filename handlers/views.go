package handlers

import (
	"net/http"
	"strings"

	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/models"
	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/pkg"
	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/services"
)

// MenuItem, navigasyondaki tek bir bağlantı.
type MenuItem struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// ViewDescriptor, bir sayfanın tarayıcıya giden tarifi. Görsel tasarım
// tarayıcı tarafındadır; portal sadece hangi sayfanın, kimin için ve
// hangi menüyle gösterileceğini söyler.
type ViewDescriptor struct {
	View  string              `json:"view"`
	Title string              `json:"title"`
	User  *models.UserProfile `json:"user,omitempty"`
	Menu  []MenuItem          `json:"menu"`
	Data  map[string]any      `json:"data,omitempty"`
}

// menuEntry, bir menü öğesi ve onu görebilecek roller.
// roles nil → sadece misafir (oturumsuz) görür.
type menuEntry struct {
	item  MenuItem
	roles []models.Role
}

var menu = []menuEntry{
	{MenuItem{Label: "Sign in", Path: "/login"}, nil},
	{MenuItem{Label: "Sign up", Path: "/signup"}, nil},
	{MenuItem{Label: "Dashboard", Path: "/dashboard"}, []models.Role{models.RoleUser, models.RoleAdmin}},
	{MenuItem{Label: "Admin", Path: "/admin"}, []models.Role{models.RoleAdmin}},
}

// ViewHandler, rol korumalı sayfaları sunar. Route koruması
// AccessMiddleware'dedir; burası sadece izin verilmiş isteği tarif eder.
type ViewHandler struct {
	session services.AuthSession
}

// NewViewHandler, constructor.
func NewViewHandler(session services.AuthSession) *ViewHandler {
	return &ViewHandler{session: session}
}

// Login godoc
// GET /login?returnTo=/admin
func (h *ViewHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.render(w, "login", "Sign in", map[string]any{
		"returnTo": safeReturnPath(r.URL.Query().Get("returnTo")),
	})
}

// Signup godoc
// GET /signup
func (h *ViewHandler) Signup(w http.ResponseWriter, r *http.Request) {
	h.render(w, "signup", "Create account", nil)
}

// Dashboard godoc
// GET /dashboard (User, Admin)
func (h *ViewHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	var data map[string]any
	if user := CurrentUser(r); user != nil {
		data = map[string]any{"greeting": "Welcome back, " + user.DisplayName()}
	}
	h.render(w, "dashboard", "Dashboard", data)
}

// Admin godoc
// GET /admin (Admin)
func (h *ViewHandler) Admin(w http.ResponseWriter, r *http.Request) {
	h.render(w, "admin", "Administration", nil)
}

// Unauthorized godoc
// GET /unauthorized?roles=Admin
//
// Herkese açıktır; AccessMiddleware rol uyuşmazlığında buraya yönlendirir.
func (h *ViewHandler) Unauthorized(w http.ResponseWriter, r *http.Request) {
	var roles []string
	for _, role := range strings.Split(r.URL.Query().Get("roles"), ",") {
		if models.Role(role).Valid() {
			roles = append(roles, role)
		}
	}
	h.render(w, "unauthorized", "Access denied", map[string]any{"requiredRoles": roles})
}

func (h *ViewHandler) render(w http.ResponseWriter, view, title string, data map[string]any) {
	state := h.session.Snapshot()
	pkg.JSON(w, http.StatusOK, ViewDescriptor{
		View:  view,
		Title: title,
		User:  state.User,
		Menu:  menuFor(state),
		Data:  data,
	})
}

// menuFor, oturuma göre görünür menü öğelerini döner. Rol kontrolü route
// korumasıyla aynı fonksiyondan (CanRender) geçer.
func menuFor(state models.SessionState) []MenuItem {
	items := make([]MenuItem, 0, len(menu))
	authenticated := state.IsAuthenticated()
	for _, e := range menu {
		if e.roles == nil {
			if !authenticated {
				items = append(items, e.item)
			}
			continue
		}
		if services.CanRender(state, e.roles...) {
			items = append(items, e.item)
		}
	}
	return items
}

// safeReturnPath, login sonrası dönülecek path'i sadece aynı origin'deki
// mutlak path'lerle sınırlar ("//evil.com" veya "https://..." reddedilir).
func safeReturnPath(p string) string {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return "/dashboard"
	}
	return p
}
