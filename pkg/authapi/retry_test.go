package authapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/singleflight"

	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/models"
	"github.com/ZawarMirza/IT-Solution-Portfolio-sub000/pkg/authtest"
)

// backendRefresher, AuthSession'ın refresh kısmının küçük bir kopyası.
type backendRefresher struct {
	client  *Client
	header  *BearerHeader
	group   singleflight.Group
	mu      sync.Mutex
	refresh string
	calls   atomic.Int32
	fail    error
}

func (r *backendRefresher) RefreshToken(ctx context.Context) (string, error) {
	v, err, _ := r.group.Do("refresh", func() (any, error) {
		r.calls.Add(1)
		if r.fail != nil {
			r.header.Clear()
			return "", r.fail
		}
		r.mu.Lock()
		current := r.refresh
		r.mu.Unlock()

		resp, err := r.client.Refresh(ctx, current)
		if err != nil {
			r.header.Clear()
			return "", err
		}
		r.mu.Lock()
		r.refresh = resp.RefreshToken
		r.mu.Unlock()
		r.header.Set(resp.Token)
		return resp.Token, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func setup(t *testing.T) (*authtest.Backend, *backendRefresher, *http.Client) {
	t.Helper()
	backend := authtest.New(t)
	backend.AddUser(t, "a@b.com", "Secret1!", models.RoleUser)

	client := NewClient(backend.URL(), 5*time.Second)
	login, err := client.Login(context.Background(), models.LoginRequest{Email: "a@b.com", Password: "Secret1!"})
	require.NoError(t, err)

	header := NewBearerHeader()
	header.Set(login.Token)
	refresher := &backendRefresher{client: client, header: header, refresh: login.RefreshToken}

	httpClient := &http.Client{Transport: NewRetryTransport(nil, header, refresher)}
	return backend, refresher, httpClient
}

func TestRetryTransportPassesThroughSuccess(t *testing.T) {
	backend, refresher, httpClient := setup(t)

	resp, err := httpClient.Get(backend.URL() + authtest.MePath)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Zero(t, refresher.calls.Load())
}

func TestRetryTransportRefreshesAndReplaysBody(t *testing.T) {
	backend, refresher, httpClient := setup(t)
	backend.ExpireAccessTokens()

	// GetBody'si olmayan gövde de tekrar gönderilebilmeli
	req, err := http.NewRequest(http.MethodPost, backend.URL()+authtest.EchoPath,
		io.NopCloser(strings.NewReader(`{"hello":"world"}`)))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `{"hello":"world"}`, string(body))
	assert.EqualValues(t, 1, refresher.calls.Load())
	assert.True(t, backend.ValidAccessToken(refresher.header.Token()))
	assert.Empty(t, req.Header.Get("Authorization"), "caller's request must not be mutated")
}

func TestRetryTransportReportsBodyRewindFailure(t *testing.T) {
	backend, refresher, httpClient := setup(t)
	backend.ExpireAccessTokens()

	errRewind := errors.New("body source gone")
	var rewinds atomic.Int32
	req, err := http.NewRequest(http.MethodPost, backend.URL()+authtest.EchoPath,
		io.NopCloser(strings.NewReader(`{}`)))
	require.NoError(t, err)
	req.GetBody = func() (io.ReadCloser, error) {
		if rewinds.Add(1) > 1 {
			return nil, errRewind
		}
		return io.NopCloser(strings.NewReader(`{}`)), nil
	}

	resp, err := httpClient.Do(req)
	if resp != nil {
		resp.Body.Close()
	}
	require.ErrorIs(t, err, errRewind)
	assert.EqualValues(t, 1, refresher.calls.Load())
}

func TestRetryTransportReturnsOriginal401WhenRefreshFails(t *testing.T) {
	backend, refresher, httpClient := setup(t)
	backend.ExpireAccessTokens()
	refresher.fail = errors.New("refresh rejected")

	resp, err := httpClient.Get(backend.URL() + authtest.MePath)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.EqualValues(t, 1, refresher.calls.Load())
	assert.Equal(t, 1, backend.ProtectedCalls())
}

// bogusRefresher, her seferinde backend'in kabul etmeyeceği bir token üretir.
type bogusRefresher struct {
	header *BearerHeader
	calls  atomic.Int32
}

func (r *bogusRefresher) RefreshToken(context.Context) (string, error) {
	r.calls.Add(1)
	r.header.Set("bogus-" + time.Now().String())
	return r.header.Token(), nil
}

func TestRetryTransportRetriesOnlyOnce(t *testing.T) {
	backend, refresher, _ := setup(t)
	backend.ExpireAccessTokens()

	bogus := &bogusRefresher{header: refresher.header}
	httpClient := &http.Client{Transport: NewRetryTransport(nil, refresher.header, bogus)}

	resp, err := httpClient.Get(backend.URL() + authtest.MePath)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.EqualValues(t, 1, bogus.calls.Load())
	assert.Equal(t, 2, backend.ProtectedCalls())
}

func TestRetryTransportSkipsRefreshCall(t *testing.T) {
	backend, refresher, _ := setup(t)
	transport := NewRetryTransport(nil, refresher.header, refresher)

	req, err := http.NewRequestWithContext(WithRefreshCall(context.Background()),
		http.MethodGet, backend.URL()+authtest.MePath, nil)
	require.NoError(t, err)
	backend.ExpireAccessTokens()

	resp, err := transport.RoundTrip(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Zero(t, refresher.calls.Load())
}

func TestRetryTransportWithoutSessionDoesNotRefresh(t *testing.T) {
	backend, refresher, httpClient := setup(t)
	refresher.header.Clear()

	resp, err := httpClient.Get(backend.URL() + authtest.MePath)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Zero(t, refresher.calls.Load())
}

func TestRetryTransportConcurrent401sShareOneRefresh(t *testing.T) {
	backend, _, httpClient := setup(t)
	backend.ExpireAccessTokens()
	backend.SetRefreshDelay(100 * time.Millisecond)

	const n = 8
	var wg sync.WaitGroup
	statuses := make([]int, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := httpClient.Get(backend.URL() + authtest.MePath)
			if !assert.NoError(t, err) {
				return
			}
			resp.Body.Close()
			statuses[i] = resp.StatusCode
		}()
	}
	wg.Wait()

	for _, s := range statuses {
		assert.Equal(t, http.StatusOK, s)
	}
	assert.Equal(t, 1, backend.RefreshCalls())
}
