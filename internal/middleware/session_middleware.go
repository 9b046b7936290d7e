package middleware

import (
	"time"

	"kedai/internal/cart"
	"kedai/internal/session"

	"github.com/gofiber/fiber/v2"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionHeader carries the browsing session id in both directions.
const SessionHeader = "X-Session-ID"

const localCart = "cart_store"

// NewSessionStore returns the fiber session store that issues and reads
// session ids from SessionHeader.
func NewSessionStore(ttl time.Duration) *fibersession.Store {
	return fibersession.New(fibersession.Config{
		Expiration:   ttl,
		KeyLookup:    "header:" + SessionHeader,
		KeyGenerator: func() string { return uuid.New().String() },
	})
}

// Session resolves the caller's session id, echoes it back in SessionHeader
// and makes the session cart available through CartStore.
func Session(store *fibersession.Store, provider session.Provider, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			log.Error("failed to load session", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Could not load session",
				"error":   err.Error(),
			})
		}
		// Save releases sess, so read the id first.
		id := sess.ID()
		if sess.Fresh() {
			if err := sess.Save(); err != nil {
				log.Warn("failed to save session", zap.Error(err))
			}
		}

		c.Set(SessionHeader, id)
		c.Locals(localCart, cart.NewStore(provider.Open(id)))
		return c.Next()
	}
}

// CartStore returns the cart of the current session. It must run after Session.
func CartStore(c *fiber.Ctx) *cart.Store {
	store, _ := c.Locals(localCart).(*cart.Store)
	return store
}
