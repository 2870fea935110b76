// Command token prints a bearer token for an existing user, signed with
// JWT_SECRET from the environment or a .env file.  It stands in for the
// external identity provider during local development.
package main

import (
    "errors"
    "flag"
    "fmt"
    "os"
    "time"

    "github.com/joho/godotenv"

    "github.com/iliyamo/movie-ticketing/internal/utils"
)

func main() {
    sub := flag.String("sub", "", "user id or username to embed as subject")
    ttl := flag.Duration("ttl", time.Hour, "token lifetime")
    flag.Parse()

    if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
        fmt.Fprintln(os.Stderr, "load .env:", err)
        os.Exit(1)
    }
    tok, err := utils.NewAccessToken(os.Getenv("JWT_SECRET"), *sub, *ttl)
    if err != nil {
        fmt.Fprintln(os.Stderr, "token:", err)
        os.Exit(2)
    }
    fmt.Println(tok.Token)
}
