package middleware // middleware provides shared request processing for handlers

import (
    "errors"
    "net/http"
    "strconv"
    "strings"

    "github.com/golang-jwt/jwt/v5"
    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/movie-ticketing/internal/repository"
    "github.com/iliyamo/movie-ticketing/internal/service"
)

var (
    errNoToken  = errors.New("missing bearer token")
    errBadToken = errors.New("invalid token")
)

// Authenticator validates bearer tokens and resolves their subject to a
// caller.  Tokens are issued elsewhere; only verification happens here.
type Authenticator struct {
    secret   []byte
    resolver service.IdentityResolver
    log      *zap.Logger
}

// NewAuthenticator returns an Authenticator that verifies HS256 tokens
// signed with secret.
func NewAuthenticator(secret string, resolver service.IdentityResolver, log *zap.Logger) *Authenticator {
    if log == nil {
        log = zap.NewNop()
    }
    return &Authenticator{secret: []byte(secret), resolver: resolver, log: log.Named("auth")}
}

// Required rejects requests without a valid token with 401 and stores the
// resolved caller in the context.
func (a *Authenticator) Required() echo.MiddlewareFunc {
    return a.middleware(true)
}

// Optional lets requests without an Authorization header through as
// anonymous.  A header that is present must still carry a valid token.
func (a *Authenticator) Optional() echo.MiddlewareFunc {
    return a.middleware(false)
}

func (a *Authenticator) middleware(required bool) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            handle, err := a.subject(c.Request().Header.Get("Authorization"))
            switch {
            case errors.Is(err, errNoToken) && !required:
                return next(c)
            case err != nil:
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
            }

            caller, err := a.resolver.Resolve(c.Request().Context(), handle)
            if err != nil {
                if errors.Is(err, repository.ErrNotFound) {
                    return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unknown user"})
                }
                a.log.Error("resolve caller", zap.String("handle", handle), zap.Error(err))
                return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
            }
            SetCaller(c, caller)
            return next(c)
        }
    }
}

// subject extracts the "sub" claim of a "Bearer <jwt>" header value.
// Numeric subjects are accepted as well as strings.
func (a *Authenticator) subject(header string) (string, error) {
    if header == "" {
        return "", errNoToken
    }
    raw, ok := strings.CutPrefix(header, "Bearer ")
    if !ok || strings.TrimSpace(raw) == "" {
        return "", errNoToken
    }
    tok, err := jwt.Parse(strings.TrimSpace(raw), func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, errBadToken
        }
        return a.secret, nil
    })
    if err != nil || !tok.Valid {
        return "", errBadToken
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return "", errBadToken
    }
    switch sub := claims["sub"].(type) {
    case string:
        if sub != "" {
            return sub, nil
        }
    case float64:
        if sub > 0 {
            return strconv.FormatUint(uint64(sub), 10), nil
        }
    }
    return "", errBadToken
}
