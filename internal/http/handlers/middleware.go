package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/session"

	"hellosession/internal/domain"
	"hellosession/internal/services"
)

const (
	localSession  = "session"
	localUser     = "user"
	localUserID   = "user_id"
	localLoggedIn = "logged_in"
	localBasic    = "basic_email"
	localBasicPw  = "basic_password"

	sessionUserKey = "user_id"
)

// CurrentUser returns the user the request is authenticated as, if any.
func CurrentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals(localUser).(*domain.User)
	return u
}

func setUser(c *fiber.Ctx, u *domain.User) {
	c.Locals(localUser, u)
	if u != nil {
		c.Locals(localUserID, u.ID)
	}
}

// authenticate marks the request as freshly logged in for the rest of its
// lifecycle. Persist binds it to the session once the handler returns.
func authenticate(c *fiber.Ctx, u *domain.User) {
	setUser(c, u)
	c.Locals(localLoggedIn, u != nil)
}

func currentSession(c *fiber.Ctx) *session.Session {
	s, _ := c.Locals(localSession).(*session.Session)
	return s
}

// Sessions resolves the session for the request's cookie. Nothing is written
// back unless a later handler saves or destroys it.
func Sessions(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return err
		}
		c.Locals(localSession, sess)
		return c.Next()
	}
}

// Persist loads the user bound to the session. After a login that completes
// without error it saves the session, which reissues the cookie; a different
// user also gets a new token.
func Persist(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := currentSession(c)
		if sess == nil {
			return c.Next()
		}
		bound, _ := sess.Get(sessionUserKey).(string)
		if bound != "" {
			if u, err := auth.UserByID(bound); err == nil {
				setUser(c, u)
			}
		}

		if err := c.Next(); err != nil {
			return err
		}

		u := CurrentUser(c)
		if fresh, _ := c.Locals(localLoggedIn).(bool); !fresh || u == nil {
			return nil
		}
		if u.ID != bound {
			if err := sess.Regenerate(); err != nil {
				return err
			}
			sess.Set(sessionUserKey, u.ID)
		}
		return sess.Save()
	}
}

// RequirePassword lets session-authenticated requests through and otherwise
// demands HTTP Basic credentials (email:password).
func RequirePassword(auth *services.AuthService) fiber.Handler {
	return basicauth.New(basicauth.Config{
		Next:  func(c *fiber.Ctx) bool { return CurrentUser(c) != nil },
		Realm: "hellosession",
		Authorizer: func(email, password string) bool {
			_, err := auth.Authenticate(email, password)
			return err == nil
		},
		Unauthorized: func(c *fiber.Ctx) error {
			c.Set(fiber.HeaderWWWAuthenticate, `basic realm="hellosession"`)
			return fiber.ErrUnauthorized
		},
		ContextUsername: localBasic,
		ContextPassword: localBasicPw,
	})
}

// BasicUser turns credentials accepted by RequirePassword into the request's
// user. It must follow RequirePassword in the chain. The credentials are
// checked again since several accounts may share an email.
func BasicUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CurrentUser(c) == nil {
			email, _ := c.Locals(localBasic).(string)
			pass, _ := c.Locals(localBasicPw).(string)
			u, err := auth.Authenticate(email, pass)
			if err != nil {
				return fiber.ErrUnauthorized
			}
			authenticate(c, u)
		}
		return c.Next()
	}
}
