package handlers

import (
	"fmt"
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/pkg"
)

// BackendProxy, tarayıcının backend API çağrılarını oturumun bearer'ı ile
// backend'e iletir.
//
// Tarayıcı token'ı hiç görmez: transport olarak authapi.RetryTransport
// verilir; bearer'ı o ekler, 401'de tek uçuşluk refresh + tek tekrar yapar.
// Route'a StripPrefix ile bağlanır:
//
//	/api/backend/projects → <BACKEND_URL>/projects
type BackendProxy struct {
	proxy *httputil.ReverseProxy
}

// NewBackendProxy, constructor.
func NewBackendProxy(target *url.URL, transport http.RoundTripper) *BackendProxy {
	rp := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
			// Kimlik bilgisini sadece transport ekler.
			pr.Out.Header.Del("Authorization")
			pr.Out.Header.Del("Cookie")
		},
		Transport: transport,
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			log.Printf("[proxy] %s %s failed: %v", r.Method, r.URL.Path, err)
			pkg.Error(w, fmt.Errorf("%w: %v", pkg.ErrNetworkUnreachable, err))
		},
	}
	return &BackendProxy{proxy: rp}
}

// ServeHTTP, http.Handler implementasyonu.
func (p *BackendProxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.proxy.ServeHTTP(w, r)
}
