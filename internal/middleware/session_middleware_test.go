package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kedai/internal/cart"
	"kedai/internal/middleware"
	"kedai/internal/models"
	"kedai/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSession_IssuesAndReusesID(t *testing.T) {
	provider := session.NewMemoryProvider()
	app := fiber.New()
	app.Use(middleware.Session(middleware.NewSessionStore(time.Hour), provider, zap.NewNop()))
	app.Post("/add", func(c *fiber.Ctx) error {
		store := middleware.CartStore(c)
		lines, err := store.Lines(c.UserContext())
		if err != nil {
			return err
		}
		lines = append(lines, models.CartLine{MenuItemID: "teh-tarik", UnitPrice: decimal.RequireFromString("3.50"), Quantity: 1})
		if err := store.SaveLines(c.UserContext(), lines); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"lines": len(lines)})
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/add", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	sid := resp.Header.Get(middleware.SessionHeader)
	require.NotEmpty(t, sid)

	req := httptest.NewRequest(http.MethodPost, "/add", nil)
	req.Header.Set(middleware.SessionHeader, sid)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, sid, resp.Header.Get(middleware.SessionHeader))

	lines, err := cart.NewStore(provider.Open(sid)).Lines(context.Background())
	require.NoError(t, err)
	assert.Len(t, lines, 2)
}
