package push

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/care-scheduler/internal/config"
)

func testAccount(t *testing.T, tokenURI string) (ServiceAccount, *rsa.PrivateKey) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	pemBytes := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})

	return ServiceAccount{
		ProjectID:   "care-project",
		ClientEmail: "push@care-project.iam.gserviceaccount.com",
		PrivateKey:  string(pemBytes),
		TokenURI:    tokenURI,
	}, key
}

func TestSignAssertion(t *testing.T) {
	sa, key := testAccount(t, "https://oauth.example/token")
	now := time.Now().Truncate(time.Second)

	signed, err := sa.SignAssertion(now)
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	tok, err := jwt.ParseWithClaims(signed, claims, func(tok *jwt.Token) (any, error) {
		return &key.PublicKey, nil
	}, jwt.WithValidMethods([]string{"RS256"}))
	require.NoError(t, err)
	require.True(t, tok.Valid)

	assert.Equal(t, sa.ClientEmail, claims["iss"])
	assert.Equal(t, messagingScope, claims["scope"])
	assert.Equal(t, "https://oauth.example/token", claims["aud"])
	assert.EqualValues(t, now.Add(time.Hour).Unix(), claims["exp"])
}

func TestSignAssertionRejectsBadKeys(t *testing.T) {
	_, err := ServiceAccount{}.SignAssertion(time.Now())
	assert.ErrorIs(t, err, ErrCredentialsMissing)

	sa := ServiceAccount{ProjectID: "p", ClientEmail: "e", PrivateKey: "not a key"}
	_, err = sa.SignAssertion(time.Now())
	assert.Error(t, err)
}

func TestParseServiceAccountJSON(t *testing.T) {
	sa, err := ParseServiceAccountJSON([]byte(`{"project_id":"p","client_email":"e","private_key":"k","token_uri":"u"}`))
	require.NoError(t, err)
	assert.Equal(t, "p", sa.ProjectID)
	assert.True(t, sa.Configured())

	_, err = ParseServiceAccountJSON([]byte(`{`))
	assert.Error(t, err)
}

func newTokenServer(t *testing.T, status int, calls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, jwtBearerGrant, r.PostForm.Get("grant_type"))
		assert.NotEmpty(t, r.PostForm.Get("assertion"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status == http.StatusOK {
			_, _ = io.WriteString(w, `{"access_token":"ya29.token","expires_in":3600,"token_type":"Bearer"}`)
			return
		}
		_, _ = io.WriteString(w, `{"error":"invalid_grant"}`)
	}))
}

func TestTokenExchangerExchangesAndCaches(t *testing.T) {
	var calls int32
	srv := newTokenServer(t, http.StatusOK, &calls)
	defer srv.Close()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	sa, _ := testAccount(t, srv.URL)
	ex := NewTokenExchanger(sa, nil, WithTokenCache(NewRedisTokenCache(rdb)))

	tok, err := ex.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ya29.token", tok)

	tok, err = ex.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ya29.token", tok)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))

	ttl := mr.TTL(cachePrefix + sa.ClientEmail)
	assert.Equal(t, 59*time.Minute, ttl)
}

func TestTokenExchangerNon2xxFails(t *testing.T) {
	var calls int32
	srv := newTokenServer(t, http.StatusUnauthorized, &calls)
	defer srv.Close()

	sa, _ := testAccount(t, srv.URL)
	_, err := NewTokenExchanger(sa, nil).AccessToken(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestTokenExchangerIgnoresBrokenCache(t *testing.T) {
	var calls int32
	srv := newTokenServer(t, http.StatusOK, &calls)
	defer srv.Close()

	// nothing listens here
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
	defer rdb.Close()

	sa, _ := testAccount(t, srv.URL)
	tok, err := NewTokenExchanger(sa, nil, WithTokenCache(NewRedisTokenCache(rdb))).AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ya29.token", tok)
}

func TestGatewaySend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/projects/care-project/messages:send", r.URL.Path)
		assert.Equal(t, "Bearer ya29.token", r.Header.Get("Authorization"))

		var body sendRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "device-1", body.Message.Token)
		assert.Equal(t, "Cita Confirmada", body.Message.Notification.Title)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"name":"projects/care-project/messages/1"}`)
	}))
	defer srv.Close()

	gw := NewGateway(srv.URL+"/", "care-project", nil)
	resp, err := gw.Send(context.Background(), "ya29.token", "device-1", "Cita Confirmada", "body")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"name":"projects/care-project/messages/1"}`, string(resp.Body))
}

type fakeTokens struct {
	token string
	err   error
}

func (f fakeTokens) LatestTokenForUser(context.Context, string) (string, error) {
	return f.token, f.err
}

type fakeCreds struct {
	calls int
	err   error
}

func (f *fakeCreds) AccessToken(context.Context) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "ya29.token", nil
}

type fakeSender struct {
	calls int
	resp  *GatewayResponse
	err   error
}

func (f *fakeSender) Send(_ context.Context, _, _, _, _ string) (*GatewayResponse, error) {
	f.calls++
	return f.resp, f.err
}

func TestDispatchWithoutTokenSkipsExchange(t *testing.T) {
	creds := &fakeCreds{}
	sender := &fakeSender{}
	d := NewDispatcher(fakeTokens{}, creds, sender, nil, nil)

	out, err := d.Dispatch(context.Background(), Record{UserID: "P1", Title: "t", Body: "b"})
	require.NoError(t, err)
	assert.True(t, out.NoToken)
	assert.Zero(t, creds.calls)
	assert.Zero(t, sender.calls)
}

func TestDispatchCredentialFailureSkipsSend(t *testing.T) {
	creds := &fakeCreds{err: errors.New("invalid_grant")}
	sender := &fakeSender{}
	d := NewDispatcher(fakeTokens{token: "device-1"}, creds, sender, nil, nil)

	_, err := d.Dispatch(context.Background(), Record{UserID: "P1"})
	require.Error(t, err)
	assert.Equal(t, 1, creds.calls)
	assert.Zero(t, sender.calls)
}

func TestDispatchPassesGatewayResponseThrough(t *testing.T) {
	raw := &GatewayResponse{StatusCode: http.StatusNotFound, ContentType: "application/json", Body: []byte(`{"error":{"status":"NOT_FOUND"}}`)}
	sender := &fakeSender{resp: raw}
	d := NewDispatcher(fakeTokens{token: "device-1"}, &fakeCreds{}, sender, nil, nil)

	out, err := d.Dispatch(context.Background(), Record{UserID: "P1", Title: "t", Body: "b"})
	require.NoError(t, err)
	assert.False(t, out.NoToken)
	assert.Same(t, raw, out.Response)
}

func TestDispatchRejectsRecordWithoutUser(t *testing.T) {
	d := NewDispatcher(fakeTokens{}, &fakeCreds{}, &fakeSender{}, nil, nil)

	_, err := d.Dispatch(context.Background(), Record{})
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestTokenExchangerEndToEndWithDispatcher(t *testing.T) {
	var calls int32
	tokenSrv := newTokenServer(t, http.StatusOK, &calls)
	defer tokenSrv.Close()

	sendSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"name":"m1"}`)
	}))
	defer sendSrv.Close()

	sa, _ := testAccount(t, tokenSrv.URL)
	d := NewDispatcher(
		fakeTokens{token: "device-1"},
		NewTokenExchanger(sa, nil),
		NewGateway(sendSrv.URL, sa.ProjectID, nil),
		nil,
		nil,
	)

	out, err := d.Dispatch(context.Background(), Record{UserID: "P1", Title: "t", Body: "b"})
	require.NoError(t, err)
	assert.Equal(t, `{"name":"m1"}`, string(out.Response.Body))
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestServiceAccountFromConfig(t *testing.T) {
	cfg := &config.Config{FCM: config.FCMConfig{
		ProjectID:   "inline",
		ClientEmail: "inline@x",
		PrivateKey:  "k",
		TokenURI:    "https://oauth.example/token",
	}}

	sa, err := ServiceAccountFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, "inline", sa.ProjectID)

	path := filepath.Join(t.TempDir(), "sa.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"project_id":"file","client_email":"file@x","private_key":"k"}`), 0o600))
	cfg.FCM.ServiceAccountFile = path

	sa, err = ServiceAccountFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, "file", sa.ProjectID)
	assert.Equal(t, "https://oauth.example/token", sa.TokenURI)
}
