package middleware

// identity.go stores the resolved caller on the Echo context and reads it
// back for handlers and the rate limiter.

import (
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/movie-ticketing/internal/model"
)

const callerKey = "caller"

// SetCaller attaches the resolved caller to the request.
func SetCaller(c echo.Context, caller model.Caller) { c.Set(callerKey, caller) }

// CallerFrom returns the authenticated caller, if any.
func CallerFrom(c echo.Context) (model.Caller, bool) {
    caller, ok := c.Get(callerKey).(model.Caller)
    return caller, ok
}

// IdentityFrom returns the caller's identity, or Anonymous when the
// request carried no token.
func IdentityFrom(c echo.Context) model.Identity {
    if caller, ok := CallerFrom(c); ok {
        return caller.Identity()
    }
    return model.Anonymous()
}

// RequireAdmin rejects callers without the administrator capability with
// 403.  It must run after Authenticator.Required.
func RequireAdmin() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            caller, ok := CallerFrom(c)
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
            }
            if !caller.IsAdmin {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
            }
            return next(c)
        }
    }
}

// userKey identifies the caller for rate limiting.  Anonymous callers are
// told apart by ip so they do not share a single bucket.
func userKey(c echo.Context, ip string) string {
    if caller, ok := CallerFrom(c); ok {
        return strconv.FormatUint(caller.ID, 10)
    }
    return "anon@" + ip
}
