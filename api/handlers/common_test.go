// Common test helpers
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/askthat/cache"
	"github.com/meghashyamc/askthat/config"
	"github.com/meghashyamc/askthat/llm"
	"github.com/meghashyamc/askthat/logger"
	"github.com/meghashyamc/askthat/ratelimit"
	"github.com/meghashyamc/askthat/services/answer"
	"github.com/meghashyamc/askthat/services/index"
	"github.com/meghashyamc/askthat/validation"
	"github.com/stretchr/testify/require"
)

var testFiles = map[string]string{
	"budget.txt": "The Q3 budget is 1200 euros, approved in June.",
	"notes.md":   "# Notes\n\nThe budget discussion moved to Friday.",
	"team.csv":   "name,role\nPriya,engineer\n",
}

type fakeLLM struct {
	selectResponse string
	answerResponse string
}

func (f *fakeLLM) Complete(_ context.Context, req llm.Request) (string, error) {
	if req.JSONMode {
		return f.selectResponse, nil
	}
	return f.answerResponse, nil
}

func newTestLogger() logger.Logger {

	opts := &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	}
	handler := slog.NewJSONHandler(os.Stderr, opts)
	return slog.New(handler)
}

type testServerOptions struct {
	rateWindow time.Duration
	rateMax    int
}

func setupTestServer(t *testing.T, assert *require.Assertions, opts testServerOptions) *gin.Engine {

	t.Setenv("ENV", "test")

	cfg, err := config.Load()
	assert.NoError(err, "could not load config")

	docsDir := t.TempDir()
	for name, content := range testFiles {
		err := os.WriteFile(filepath.Join(docsDir, name), []byte(content), 0644)
		assert.NoError(err, "could not write test file")
	}

	testLogger := newTestLogger()

	validator, err := validation.New(testLogger)
	assert.NoError(err, "could not create validator")

	responseCache, err := cache.New(testLogger, cfg.GetCacheCapacity())
	assert.NoError(err, "could not create response cache")

	backend := &fakeLLM{
		selectResponse: `["budget.txt"]`,
		answerResponse: "The budget is 1200 euros (budget.txt).",
	}
	service := answer.New(testLogger, cfg, index.New(testLogger, docsDir, nil), backend, responseCache)

	if opts.rateWindow == 0 {
		opts.rateWindow = cfg.GetRateWindow()
	}
	if opts.rateMax == 0 {
		opts.rateMax = cfg.GetRateMax()
	}
	limiter := ratelimit.New(testLogger, opts.rateWindow, opts.rateMax)

	gin.SetMode(gin.TestMode)
	router := gin.New()

	SetupSearch(router, testLogger, service, limiter, validator)
	SetupIndex(router, testLogger, service)
	SetupHealth(router, testLogger, service)

	return router
}

func makeTestHTTPRequest(router *gin.Engine, assert *require.Assertions, method string, endpoint string, queryParams map[string]string) *httptest.ResponseRecorder {

	w := httptest.NewRecorder()

	if len(queryParams) > 0 {
		values := url.Values{}
		for key, value := range queryParams {
			values.Set(key, value)
		}
		endpoint = endpoint + "?" + values.Encode()
	}

	req, err := http.NewRequest(method, endpoint, nil)
	assert.NoError(err)

	router.ServeHTTP(w, req)

	return w
}

func decodeResponseData(assert *require.Assertions, w *httptest.ResponseRecorder) map[string]any {
	var body map[string]any
	assert.NoError(json.Unmarshal(w.Body.Bytes(), &body))

	data, _ := body["data"].(map[string]any)
	return data
}
