package authapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
)

type contextKey int

const (
	refreshCallKey contextKey = iota
	retriedKey
)

// WithRefreshCall, context'i refresh çağrısı olarak işaretler.
func WithRefreshCall(ctx context.Context) context.Context {
	return context.WithValue(ctx, refreshCallKey, true)
}

// IsRefreshCall, context refresh çağrısına aitse true döner.
func IsRefreshCall(ctx context.Context) bool {
	v, _ := ctx.Value(refreshCallKey).(bool)
	return v
}

func isRetried(ctx context.Context) bool {
	v, _ := ctx.Value(retriedKey).(bool)
	return v
}

// Refresher, tek uçuşlu (single-flight) token yenilemeyi sağlayan bileşen.
// AuthSession bu interface'i implemente eder.
//
// Başarıda yeni access token döner. Başarısızlıkta logout çağırana
// dönmeden ÖNCE tamamlanmış olmalıdır.
type Refresher interface {
	RefreshToken(ctx context.Context) (string, error)
}

// RetryTransport, kimlikli istekler için refresh-on-401 middleware'i.
//
// Akış:
//  1. İsteğe şu anki bearer eklenir ve gönderilir
//  2. 401 gelirse ve istek daha önce tekrar denenmemişse (ve refresh
//     çağrısının kendisi değilse) istek "retried" olarak işaretlenir
//  3. Bearer istek gönderildikten sonra zaten değiştiyse (başka bir istek
//     refresh etti) yeni refresh yapılmaz, yeni bearer ile tekrar denenir
//  4. Aksi halde Refresher.RefreshToken çağrılır — eşzamanlı 401'ler aynı
//     refresh'i paylaşır
//  5. Başarıda istek yeni bearer ile BİR KEZ tekrar gönderilir;
//     başarısızlıkta orijinal 401 yanıtı döner (logout çoktan olmuştur)
type RetryTransport struct {
	base      http.RoundTripper
	header    *BearerHeader
	refresher Refresher
}

// NewRetryTransport, constructor. base nil ise http.DefaultTransport kullanılır.
func NewRetryTransport(base http.RoundTripper, header *BearerHeader, refresher Refresher) *RetryTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &RetryTransport{base: base, header: header, refresher: refresher}
}

// RoundTrip, http.RoundTripper implementasyonu.
func (t *RetryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	getBody, err := bufferBody(req)
	if err != nil {
		return nil, err
	}

	sent := t.header.Token()
	first, err := prepare(req.Context(), req, getBody, sent)
	if err != nil {
		return nil, err
	}
	resp, err := t.base.RoundTrip(first)
	if err != nil {
		return nil, err
	}

	ctx := req.Context()
	if resp.StatusCode != http.StatusUnauthorized || IsRefreshCall(ctx) || isRetried(ctx) {
		return resp, nil
	}

	// Bearer yoksa (hiç oturum açılmamış veya bu arada logout olmuş)
	// yenilenecek bir oturum da yoktur.
	token := t.header.Token()
	if token == "" {
		return resp, nil
	}

	if token == sent {
		token, err = t.refresher.RefreshToken(ctx)
		if err != nil {
			log.Printf("[auth] refresh after 401 failed for %s %s: %v", req.Method, req.URL.Path, err)
			return resp, nil
		}
	}

	retry, err := prepare(context.WithValue(ctx, retriedKey, true), req, getBody, token)
	drain(resp)
	if err != nil {
		return nil, err
	}
	return t.base.RoundTrip(retry)
}

// ─── Private Helpers ───

// prepare, isteğin verilen context ve bearer ile bir kopyasını oluşturur.
// Orijinal istek değiştirilmez (RoundTripper sözleşmesi).
func prepare(ctx context.Context, req *http.Request, getBody func() (io.ReadCloser, error), token string) (*http.Request, error) {
	out := req.Clone(ctx)
	if getBody != nil {
		body, err := getBody()
		if err != nil {
			return nil, fmt.Errorf("failed to rewind request body: %w", err)
		}
		out.GetBody = getBody
		out.Body = body
	}
	setBearer(out, token)
	return out, nil
}

// bufferBody, isteğin gövdesini tekrar okunabilir hale getirir.
// GetBody zaten varsa onu kullanır, yoksa gövdeyi belleğe okur.
func bufferBody(req *http.Request) (func() (io.ReadCloser, error), error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	if req.GetBody != nil {
		req.Body.Close()
		return req.GetBody, nil
	}

	data, err := io.ReadAll(req.Body)
	req.Body.Close()
	if err != nil {
		return nil, err
	}
	return func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}, nil
}

// drain, bağlantının yeniden kullanılabilmesi için gövdeyi tüketip kapatır.
func drain(resp *http.Response) {
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
	resp.Body.Close()
}
