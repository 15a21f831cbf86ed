package jrpc

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/kroksys/jrpc/v2/codec"
	"github.com/kroksys/jrpc/v2/config"
	"github.com/kroksys/jrpc/v2/dispatch"
	"github.com/kroksys/jrpc/v2/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testRegistry() *registry.Registry {
	reg := registry.NewRegistry()
	reg.RegisterFunc("subtract", registry.Positional("minuend", "subtrahend"), func(_ context.Context, p registry.Params) (interface{}, error) {
		var in struct {
			Minuend    float64 `json:"minuend"`
			Subtrahend float64 `json:"subtrahend"`
		}
		if err := p.Decode(&in); err != nil {
			return nil, err
		}
		return in.Minuend - in.Subtrahend, nil
	})
	reg.RegisterFunc("echo", registry.Signature{Optional: []string{"s"}}, func(_ context.Context, p registry.Params) (interface{}, error) {
		if s, ok := p.Get("s"); ok {
			return s, nil
		}
		return "pong", nil
	})
	return reg
}

func newTestServer(opts ...dispatch.Option) (*Server, *gin.Engine) {
	s := NewServer(testRegistry(), opts...)
	r := gin.New()
	s.Routes(r, "/rpc", "/ws")
	return s, r
}

func post(r http.Handler, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/rpc", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHTTPHandler(t *testing.T) {
	_, r := newTestServer()
	tests := []struct {
		name        string
		contentType string
		body        string
		status      int
		want        string
	}{
		{
			"request",
			"application/json",
			`{"jsonrpc":"2.0","method":"subtract","params":[42,23],"id":1}`,
			http.StatusOK,
			`{"jsonrpc":"2.0","result":19,"id":1}`,
		},
		{
			"content type parameters",
			"application/json; charset=utf-8",
			`{"jsonrpc":"2.0","method":"echo","id":"a"}`,
			http.StatusOK,
			`{"jsonrpc":"2.0","result":"pong","id":"a"}`,
		},
		{
			"no content type",
			"",
			`{"jsonrpc":"2.0","method":"echo","params":{"s":"hi"},"id":2}`,
			http.StatusOK,
			`{"jsonrpc":"2.0","result":"hi","id":2}`,
		},
		{
			"parse error",
			"application/json",
			`{"jsonrpc":`,
			http.StatusOK,
			`{"jsonrpc":"2.0","error":{"code":-32700,"message":"Parse error"},"id":null}`,
		},
		{
			"batch",
			"application/json",
			`[{"jsonrpc":"2.0","method":"echo","id":1},{"jsonrpc":"2.0","method":"echo"},{"jsonrpc":"2.0","method":"nope","id":2}]`,
			http.StatusOK,
			`[{"jsonrpc":"2.0","result":"pong","id":1},{"jsonrpc":"2.0","error":{"code":-32601,"message":"Method not found"},"id":2}]`,
		},
		{
			"notification",
			"application/json",
			`{"jsonrpc":"2.0","method":"echo"}`,
			http.StatusNoContent,
			"",
		},
		{
			"unsupported media type",
			"text/plain",
			`{"jsonrpc":"2.0","method":"echo","id":1}`,
			http.StatusUnsupportedMediaType,
			"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(r, tt.contentType, tt.body)
			require.Equal(t, tt.status, w.Code)
			if tt.want == "" {
				assert.Empty(t, w.Body.String())
				return
			}
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.want, w.Body.String())
		})
	}
}

func TestHTTPHandlerMethodNotAllowed(t *testing.T) {
	_, r := newTestServer()
	for _, method := range []string{http.MethodPut, http.MethodDelete} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(method, "/rpc", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, method)
		assert.Equal(t, http.MethodPost, w.Header().Get("Allow"))
	}
}

func TestHTTPHandlerRequestID(t *testing.T) {
	_, r := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/rpc", strings.NewReader(`{"jsonrpc":"2.0","method":"echo","id":1}`))
	req.Header.Set(RequestIDHeader, "trace-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "trace-1", w.Header().Get(RequestIDHeader))
}

func TestHTTPHandlerCBOR(t *testing.T) {
	c, err := codec.NewCBOR()
	require.NoError(t, err)
	_, r := newTestServer(dispatch.WithCodec(c))

	body, err := c.Encode(map[string]interface{}{"jsonrpc": "2.0", "method": "echo", "id": 7})
	require.NoError(t, err)
	w := post(r, "application/cbor", string(body))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/cbor", w.Header().Get("Content-Type"))

	v, err := c.Decode(w.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "pong", v.(map[string]interface{})["result"])

	w = post(r, "application/json", `{}`)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestNewServerFromConfig(t *testing.T) {
	cfg := config.Default().Server
	cfg.Codec = "cbor"
	cfg.MaxConcurrency = 2
	s, err := NewServerFromConfig(testRegistry(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "cbor", s.Codec().Name())

	cfg.Codec = "xml"
	_, err = NewServerFromConfig(testRegistry(), cfg, nil)
	assert.Error(t, err)
}

func dial(t *testing.T, url string) net.Conn {
	t.Helper()
	c, _, _, err := ws.Dial(context.Background(), "ws"+strings.TrimPrefix(url, "http")+"/ws")
	require.NoError(t, err)
	return c
}

func TestWebsocket(t *testing.T) {
	s, r := newTestServer()
	ts := httptest.NewServer(r)
	defer ts.Close()

	c := dial(t, ts.URL)
	defer c.Close()
	require.Eventually(t, func() bool { return s.Connections() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, wsutil.WriteClientText(c, []byte(`{"jsonrpc":"2.0","method":"echo"}`)))
	require.NoError(t, wsutil.WriteClientText(c, []byte(`{"jsonrpc":"2.0","method":"subtract","params":[5,3],"id":0}`)))
	msg, op, err := wsutil.ReadServerData(c)
	require.NoError(t, err)
	assert.Equal(t, ws.OpText, op)
	assert.JSONEq(t, `{"jsonrpc":"2.0","result":2,"id":0}`, string(msg))

	require.NoError(t, wsutil.WriteClientText(c, []byte(`[]`)))
	msg, _, err = wsutil.ReadServerData(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","error":{"code":-32600,"message":"Invalid Request"},"id":null}`, string(msg))

	s.Shutdown()
	_, _, err = wsutil.ReadServerData(c)
	assert.Error(t, err)
	require.Eventually(t, func() bool { return s.Connections() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestWebsocketClientDisconnect(t *testing.T) {
	s, r := newTestServer()
	ts := httptest.NewServer(r)
	defer ts.Close()

	c := dial(t, ts.URL)
	require.Eventually(t, func() bool { return s.Connections() == 1 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, c.Close())
	require.Eventually(t, func() bool { return s.Connections() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestListenAndServe(t *testing.T) {
	s := NewServer(testRegistry())
	cfg := config.Default().Server
	cfg.Address = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, cfg) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
