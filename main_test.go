package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"kedai/internal/config"
	"kedai/internal/session"

	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	v := viper.New()
	config.SetDefaults(v)
	v.Set("DATABASE_DRIVER", config.DriverMemory)
	v.Set("JWT_SECRET", "test_jwt_secret")
	v.Set("CARD_PROCESSING_DELAY", "0s")
	v.Set("EWALLET_PROCESSING_DELAY", "0s")
	cfg, err := config.FromViper(v)
	require.NoError(t, err)
	return cfg
}

func TestHealthCheck(t *testing.T) {
	cfg := testConfig(t)
	app := NewApp(cfg, Deps{
		Repos:    NewRepositories(nil),
		Sessions: session.NewMemoryProvider(),
		Log:      zap.NewNop(),
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestSeededMenuIsOrderable(t *testing.T) {
	cfg := testConfig(t)
	repos := NewRepositories(nil)
	seedDemoData(context.Background(), repos, zap.NewNop())
	app := NewApp(cfg, Deps{Repos: repos, Sessions: session.NewMemoryProvider(), Log: zap.NewNop()})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(`{"menu_item_id":"nasi-lemak","quantity":2}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Session-ID"))

	code, err := repos.Discounts.FindByCode(context.Background(), "save10")
	require.NoError(t, err)
	assert.True(t, code.IsActive)
}

func TestOrderEventLogger(t *testing.T) {
	handle := orderEventLogger(zap.NewNop())

	assert.NoError(t, handle(amqp.Delivery{Body: []byte(`{"event":"order.created","order_id":"o1","status":"Received"}`)}))
	assert.Error(t, handle(amqp.Delivery{Body: []byte(`not json`)}))
}
