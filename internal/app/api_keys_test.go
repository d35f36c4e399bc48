package app

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"raillog.org/engine/internal/appconf"
)

func TestIsInvalidAPIKey(t *testing.T) {
	app := &Application{Config: appconf.Config{ApiKeys: []string{"test", "other"}}}

	tests := map[string]bool{
		"":      true,
		"test":  false,
		"other": false,
		"tes":   true,
		"TEST":  true,
	}
	for key, invalid := range tests {
		assert.Equal(t, invalid, app.IsInvalidAPIKey(key), key)
	}
}

func TestNoConfiguredKeysRejectsEverything(t *testing.T) {
	app := &Application{}
	assert.True(t, app.IsInvalidAPIKey("anything"))
}

func TestRequestHasInvalidAPIKey(t *testing.T) {
	app := &Application{Config: appconf.Config{ApiKeys: []string{"test"}}}

	req := httptest.NewRequest(http.MethodGet, "/api/lines.json?key=test", nil)
	assert.False(t, app.RequestHasInvalidAPIKey(req))

	req = httptest.NewRequest(http.MethodGet, "/api/lines.json", nil)
	req.Header.Set(APIKeyHeader, "test")
	assert.False(t, app.RequestHasInvalidAPIKey(req))

	req = httptest.NewRequest(http.MethodGet, "/api/lines.json?key=wrong", nil)
	req.Header.Set(APIKeyHeader, "test")
	assert.True(t, app.RequestHasInvalidAPIKey(req), "the query parameter wins")
}
