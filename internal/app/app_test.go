package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsight/docsight/internal/config"
	"github.com/docsight/docsight/internal/testutil"
	apperrors "github.com/docsight/docsight/pkg/errors"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Server.Mode = "test"
	return cfg
}

func TestNew_MemoryBackend(t *testing.T) {
	a, err := New(context.Background(), testConfig(), testutil.NewMockLogger())
	require.NoError(t, err)
	defer a.Close()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	require.NotNil(t, a.Store())
}

func TestNew_UnknownBackend(t *testing.T) {
	cfg := testConfig()
	cfg.Store.Backend = "filesystem"

	_, err := New(context.Background(), cfg, testutil.NewMockLogger())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeValidation, apperrors.CodeOf(err))
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	cfg := testConfig()
	cfg.Server.Port = 0 // ephemeral port

	a, err := New(context.Background(), cfg, testutil.NewMockLogger())
	require.NoError(t, err)
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	cancel()
	require.NoError(t, <-done)
}
