package apihandlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"triage/internal/app"
	"triage/internal/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestApp(t *testing.T, maxBody int64) *app.App {
	t.Helper()
	logger, _ := test.NewNullLogger()
	a, err := app.NewApp(context.Background(), &config.Config{
		Server: config.ServerConfig{MaxBodyBytes: maxBody},
		Batch:  config.BatchConfig{Concurrency: 1},
		Classifier: config.ClassifierConfig{
			Type:             "keyword",
			FallbackCategory: "Standard",
		},
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func post(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestClassifyHandler(t *testing.T) {
	router := SetupRouter(newTestApp(t, 0))

	t.Run("classifies every record", func(t *testing.T) {
		w := post(router, "/api/v1/classify", `{"values":[
			{"recordId":"1","data":{"text":"This is urgent!"}},
			{"recordId":"2","data":{"text":"Please archive this old file"}},
			{"recordId":"3","data":{"text":"Just a note"}},
			{"recordId":"4","data":{}}
		]}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"values":[
			{"recordId":"1","data":{"category":"High-Priority"}},
			{"recordId":"2","data":{"category":"Archived"}},
			{"recordId":"3","data":{"category":"Standard"}},
			{"recordId":"4","data":{"category":"Standard"}}
		]}`, w.Body.String())
	})

	t.Run("unversioned path", func(t *testing.T) {
		w := post(router, "/api/classify", `{"values":[{"recordId":"1","data":{"text":"deadline"}}]}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"values":[{"recordId":"1","data":{"category":"High-Priority"}}]}`, w.Body.String())
	})

	t.Run("malformed body", func(t *testing.T) {
		w := post(router, "/api/v1/classify", `not json`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid Body", w.Body.String())
		assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain"))
	})

	t.Run("missing values", func(t *testing.T) {
		w := post(router, "/api/v1/classify", `{"records":[]}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid Body", w.Body.String())
	})

	t.Run("record failures still answer 200", func(t *testing.T) {
		w := post(router, "/api/v1/classify", `{"values":[{"recordId":"1","data":null},{"recordId":"2","data":{"text":"old"}}]}`)

		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Values []struct {
				RecordID string `json:"recordId"`
				Data     *struct {
					Category string `json:"category"`
				} `json:"data"`
				Errors []struct {
					Message string `json:"message"`
				} `json:"errors"`
			} `json:"values"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Values, 2)
		assert.Nil(t, resp.Values[0].Data)
		require.Len(t, resp.Values[0].Errors, 1)
		assert.NotEmpty(t, resp.Values[0].Errors[0].Message)
		assert.Equal(t, "Archived", resp.Values[1].Data.Category)
	})
}

func TestClassifyHandler_BodyTooLarge(t *testing.T) {
	router := SetupRouter(newTestApp(t, 32))

	w := post(router, "/api/v1/classify", `{"values":[{"recordId":"1","data":{"text":"this body is longer than the limit"}}]}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid Body", w.Body.String())
}

func TestHealthHandler(t *testing.T) {
	router := SetupRouter(newTestApp(t, 0))

	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","classifier":"keyword"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestMetricsEndpoint(t *testing.T) {
	router := SetupRouter(newTestApp(t, 0))
	post(router, "/api/v1/classify", `{"values":[{"recordId":"1","data":{"text":"x"}}]}`)

	req, _ := http.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `triage_batches_total{outcome="accepted"} 1`)
	assert.Contains(t, w.Body.String(), `triage_records_total{result="success"} 1`)
}

func TestRouterFallbacks(t *testing.T) {
	router := SetupRouter(newTestApp(t, 0))

	t.Run("unknown route", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/nope", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "not_found")
	})

	t.Run("wrong method", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/api/v1/classify", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
		assert.Contains(t, w.Body.String(), "method_not_allowed")
	})
}
