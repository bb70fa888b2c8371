package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/staff-attendance/internal/models"
	appErrors "github.com/noah-isme/staff-attendance/pkg/errors"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	return c, w
}

func TestJSONWritesEnvelope(t *testing.T) {
	c, w := newContext()
	JSON(c, http.StatusOK, []string{"a"}, &models.Pagination{Page: 1, PageSize: 20, TotalCount: 1}, map[string]interface{}{"cache_hit": true})

	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	var env struct {
		Data       []string               `json:"data"`
		Pagination models.Pagination      `json:"pagination"`
		Meta       map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, []string{"a"}, env.Data)
	assert.Equal(t, 1, env.Pagination.TotalCount)
	assert.Equal(t, true, env.Meta["cache_hit"])
}

func TestJSONOmitsEmptyMeta(t *testing.T) {
	c, w := newContext()
	JSON(c, http.StatusOK, "ok", nil, map[string]interface{}{})
	assert.NotContains(t, w.Body.String(), "meta")
}

func TestErrorRecordsServerFailures(t *testing.T) {
	c, w := newContext()
	Error(c, errors.New("connection reset"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Len(t, c.Errors, 1)

	c, w = newContext()
	Error(c, appErrors.ErrForbidden)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, c.Errors)
	assert.Contains(t, w.Body.String(), appErrors.ErrForbidden.Code)
}

func TestAttachment(t *testing.T) {
	c, w := newContext()
	Attachment(c, "attendance_2024-07-01.csv", "text/csv", []byte("a,b\n"))
	assert.Equal(t, `attachment; filename="attendance_2024-07-01.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "a,b\n", w.Body.String())
}
