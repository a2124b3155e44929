// Command devtoken mints a signed identity token for local testing against
// a server running with IDENTITY_JWT_SECRET set.
//
// Usage:
//
//	IDENTITY_JWT_SECRET=... go run ./cmd/devtoken -sub uid-ada -ttl 24h
//
// With no -sub, a fresh random subject is generated — handy for exercising
// the registration flow with a brand-new identity.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/xid"

	"painpal/internal/auth"
)

func main() {
	sub := flag.String("sub", "", "external UID to embed as the token subject (default: random)")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	_ = godotenv.Load()

	secret := os.Getenv("IDENTITY_JWT_SECRET")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "IDENTITY_JWT_SECRET is not set")
		os.Exit(1)
	}

	tokens, err := auth.NewTokenService(secret)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid secret: %v\n", err)
		os.Exit(1)
	}

	subject := *sub
	if subject == "" {
		subject = "dev-" + xid.New().String()
	}

	token, err := tokens.Generate(subject, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generating token: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("subject: %s\n", subject)
	fmt.Printf("token:   %s\n", token)
}
