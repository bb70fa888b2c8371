package requestid

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func serve(t *testing.T, header string) (string, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	var seen string
	r.GET("/", func(c *gin.Context) {
		seen = Value(c)
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(Header, header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return seen, w.Header().Get(Header)
}

func TestMiddlewareEchoesClientID(t *testing.T) {
	seen, echoed := serve(t, "cli-2024.07.01:42")
	assert.Equal(t, "cli-2024.07.01:42", seen)
	assert.Equal(t, seen, echoed)
}

func TestMiddlewareReplacesMalformedID(t *testing.T) {
	for _, header := range []string{"", "has space", "inject\nline", string(make([]byte, 65))} {
		seen, echoed := serve(t, header)
		_, err := uuid.Parse(seen)
		assert.NoError(t, err, "header %q", header)
		assert.Equal(t, seen, echoed)
	}
}
