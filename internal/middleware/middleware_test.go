package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	r.GET("/ping", func(c *gin.Context) {
		id, _ := c.Get(ContextRequestIDKey)
		c.String(http.StatusOK, "%v", id)
	})
	return r
}

func TestRequestIDMintsAndPropagates(t *testing.T) {
	r := newEngine(RequestID())

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/ping", nil))
	minted := resp.Header().Get(HeaderRequestID)
	require.Len(t, minted, 36)
	require.Equal(t, minted, resp.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderRequestID, "abc")
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	require.Equal(t, "abc", resp.Header().Get(HeaderRequestID))
	require.Equal(t, "abc", resp.Body.String())
}

func TestCORS(t *testing.T) {
	cases := []struct {
		name      string
		allowlist []string
		origin    string
		want      string
	}{
		{"allow all", nil, "https://a.example", "*"},
		{"listed origin", []string{"https://a.example"}, "https://a.example", "https://a.example"},
		{"unlisted origin", []string{"https://a.example"}, "https://b.example", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newEngine(CORS(tc.allowlist))
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			req.Header.Set("Origin", tc.origin)
			resp := httptest.NewRecorder()
			r.ServeHTTP(resp, req)
			require.Equal(t, http.StatusOK, resp.Code)
			require.Equal(t, tc.want, resp.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	r := newEngine(CORS(nil))
	r.OPTIONS("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodOptions, "/ping", nil))
	require.Equal(t, http.StatusNoContent, resp.Code)
}
