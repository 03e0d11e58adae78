package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHealthHandler_NoDatabase(t *testing.T) {
	assert := assert.New(t)

	s := &Server{}
	server := httptest.NewServer(http.HandlerFunc(s.healthHandler))
	defer server.Close()

	resp, err := http.Get(server.URL)
	assert.NoError(err)
	defer resp.Body.Close()

	assert.Equal(http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	assert.NoError(err)

	var health map[string]string
	assert.NoError(json.Unmarshal(body, &health))
	assert.Equal("up", health["status"])
}

func TestResultsHandler_NotConfigured(t *testing.T) {
	assert := assert.New(t)

	s := &Server{}
	server := httptest.NewServer(http.HandlerFunc(s.resultsHandler))
	defer server.Close()

	resp, err := http.Get(server.URL)
	assert.NoError(err)
	defer resp.Body.Close()

	assert.Equal(http.StatusServiceUnavailable, resp.StatusCode)
}

func TestCORSMiddleware(t *testing.T) {
	assert := assert.New(t)

	s := &Server{
		connectionManager: NewConnectionManager(),
		gameManager:       NewGameManager(0),
		sessionManager:    NewSessionManager(),
		rateLimiter:       NewRateLimiter(10, time.Second),
	}
	server := httptest.NewServer(s.RegisterRoutes())
	defer server.Close()

	req, err := http.NewRequest(http.MethodOptions, server.URL+"/health", nil)
	assert.NoError(err)

	resp, err := http.DefaultClient.Do(req)
	assert.NoError(err)
	defer resp.Body.Close()

	assert.Equal(http.StatusNoContent, resp.StatusCode)
	assert.Equal("*", resp.Header.Get("Access-Control-Allow-Origin"))
}
