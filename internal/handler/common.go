package handler

import (
    "errors"
    "fmt"
    "net/http"
    "strconv"
    "strings"

    "github.com/go-playground/validator/v10"
    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/movie-ticketing/internal/logger"
    "github.com/iliyamo/movie-ticketing/internal/middleware"
    "github.com/iliyamo/movie-ticketing/internal/model"
    "github.com/iliyamo/movie-ticketing/internal/service"
)

var validate = validator.New()

var errUnauthenticated = errors.New("authentication required")

// bind decodes the request body into dst and validates its tags.  The
// returned error wraps service.ErrValidation.
func bind(c echo.Context, dst any) error {
    if err := c.Bind(dst); err != nil {
        return fmt.Errorf("%w: invalid request body", service.ErrValidation)
    }
    if err := validate.Struct(dst); err != nil {
        return fmt.Errorf("%w: %s", service.ErrValidation, validationMessage(err))
    }
    return nil
}

func validationMessage(err error) string {
    var verrs validator.ValidationErrors
    if !errors.As(err, &verrs) {
        return err.Error()
    }
    msgs := make([]string, 0, len(verrs))
    for _, fe := range verrs {
        msgs = append(msgs, strings.ToLower(fe.Field())+" failed "+fe.Tag())
    }
    return strings.Join(msgs, "; ")
}

// paramID parses a positive numeric path parameter.
func paramID(c echo.Context, name string) (uint64, bool) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    return id, err == nil && id > 0
}

func badID(c echo.Context, what string) error {
    return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid " + what + " id"})
}

// caller returns the authenticated caller.  Routes using it sit behind
// Authenticator.Required, so a missing caller is a wiring bug.
func caller(c echo.Context) (model.Caller, error) {
    if who, ok := middleware.CallerFrom(c); ok {
        return who, nil
    }
    return model.Caller{}, errUnauthenticated
}

// writeError maps service errors to status codes.  Anything unexpected is
// logged and reported as 500 without details.
func writeError(c echo.Context, err error) error {
    status := http.StatusInternalServerError
    switch {
    case errors.Is(err, service.ErrValidation):
        status = http.StatusBadRequest
    case errors.Is(err, errUnauthenticated):
        status = http.StatusUnauthorized
    case errors.Is(err, service.ErrForbidden):
        status = http.StatusForbidden
    case errors.Is(err, service.ErrNotFound):
        status = http.StatusNotFound
    case errors.Is(err, service.ErrCapacity), errors.Is(err, service.ErrState), errors.Is(err, service.ErrConflict):
        status = http.StatusConflict
    }
    if status == http.StatusInternalServerError {
        logger.L().Error("request failed",
            zap.String("method", c.Request().Method),
            zap.String("route", c.Path()),
            zap.Error(err),
        )
        return c.JSON(status, echo.Map{"error": "internal error"})
    }
    return c.JSON(status, echo.Map{"error": err.Error()})
}
