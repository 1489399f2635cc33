package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JerraForge/hydroponic-backend/internal/client"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseParams(t *testing.T) {
	params, err := parseParams([]string{"start_date=2024-05-01", "show_ph=on", "min_value="})
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", params.Get("start_date"))
	assert.Equal(t, "on", params.Get("show_ph"))
	assert.True(t, params.Has("min_value"))

	_, err = parseParams([]string{"page"})
	assert.Error(t, err)
	_, err = parseParams([]string{"=3"})
	assert.Error(t, err)
}

func TestRun_ArgumentErrors(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)
	c := client.New(srv.URL, "alice", client.Options{}, zap.NewNop())
	ctx := context.Background()

	assert.Error(t, run(ctx, c, []string{"create"}))
	assert.Error(t, run(ctx, c, []string{"show"}))
	assert.Error(t, run(ctx, c, []string{"ingest", "sys-1"}))
	assert.Error(t, run(ctx, c, []string{"ingest", "sys-1", `{"ph":7}`}))
	assert.Error(t, run(ctx, c, []string{"export", "sys-1"}))
	assert.Error(t, run(ctx, c, []string{"frobnicate"}))
}

func TestRun_NotFoundPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":-1,"type":"error","message":"hydroponic system not found","result":null}`))
	}))
	t.Cleanup(srv.Close)
	c := client.New(srv.URL, "alice", client.Options{}, zap.NewNop())

	err := run(context.Background(), c, []string{"show", "sys-1"})
	require.Error(t, err)
	assert.True(t, client.IsNotFound(err))
	assert.Contains(t, err.Error(), "hydroponic system not found")
}
