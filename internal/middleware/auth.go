package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nretrorsum/work-test/internal/apierror"
	"github.com/nretrorsum/work-test/internal/apperr"
	"github.com/nretrorsum/work-test/internal/auth"
	"github.com/nretrorsum/work-test/internal/model"
)

const CurrentUserKey = "current_user"

// SessionResolver turns a session token into the user it names.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*model.User, error)
}

// sessionToken reads the session cookie, falling back to a Bearer header.
func sessionToken(c *gin.Context) string {
	if tok, err := c.Cookie(auth.CookieName); err == nil && tok != "" {
		return tok
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

// SessionAuth requires a valid session and stores the resolved user in the
// context under CurrentUserKey.
func SessionAuth(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := sessionToken(c)
		if tok == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Not authenticated"))
			return
		}

		user, err := resolver.Resolve(c.Request.Context(), tok)
		if err != nil {
			var body *apierror.APIError
			status := apierror.Status(apperr.KindOf(err))
			switch apperr.KindOf(err) {
			case apperr.Expired:
				body = apierror.New("Token has expired")
			case apperr.Unauthenticated:
				body = apierror.New("Could not validate credentials")
			case apperr.NotFound:
				body = apierror.New("User not found")
			default:
				_ = c.Error(err)
				status, body = apierror.FromError(err)
			}
			c.AbortWithStatusJSON(status, body)
			return
		}

		c.Set(CurrentUserKey, user)
		c.Next()
	}
}

// RequireRole rejects requests whose session user is not in the allowed list.
// It must run after SessionAuth.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Not authenticated"))
			return
		}
		if !allowed[user.Role] {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("Not enough permissions"))
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user stored by SessionAuth, or nil.
func CurrentUser(c *gin.Context) *model.User {
	v, ok := c.Get(CurrentUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*model.User)
	return user
}
