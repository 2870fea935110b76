package utils

import (
    "testing"
    "time"

    "github.com/golang-jwt/jwt/v5"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestNewAccessToken(t *testing.T) {
    tok, err := NewAccessToken("s3cret", " neo ", time.Hour)
    require.NoError(t, err)
    assert.WithinDuration(t, time.Now().Add(time.Hour), tok.Exp, 5*time.Second)

    parsed, err := jwt.Parse(tok.Token, func(*jwt.Token) (interface{}, error) { return []byte("s3cret"), nil })
    require.NoError(t, err)
    sub, err := parsed.Claims.GetSubject()
    require.NoError(t, err)
    assert.Equal(t, "neo", sub)

    _, err = jwt.Parse(tok.Token, func(*jwt.Token) (interface{}, error) { return []byte("other"), nil })
    assert.Error(t, err)
}

func TestNewAccessTokenRejectsBadInput(t *testing.T) {
    _, err := NewAccessToken("", "1", time.Hour)
    assert.Error(t, err)
    _, err = NewAccessToken("k", "  ", time.Hour)
    assert.Error(t, err)
    _, err = NewAccessToken("k", "1", 0)
    assert.Error(t, err)
}
