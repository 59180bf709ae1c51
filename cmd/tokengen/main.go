// Package main provides a CLI tool for minting bearer tokens against a local
// bloodbank server. Tokens use the dev signing key unless -key is given.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	authmodels "bloodbank/internal/auth/models"
	jwttoken "bloodbank/internal/jwt_token"
	"bloodbank/internal/platform/config"
	id "bloodbank/pkg/domain"
)

type options struct {
	userID   string
	role     string
	key      string
	issuer   string
	audience string
	ttl      time.Duration
	asJSON   bool
}

type tokenOutput struct {
	Token     string `json:"token"`
	Type      string `json:"type"`
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	JTI       string `json:"jti"`
	ExpiresAt string `json:"expires_at"`
	Usage     string `json:"usage"`
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "tokengen:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("tokengen", flag.ContinueOnError)
	var opts options
	fs.StringVar(&opts.userID, "user-id", "", "User ID (UUID). Generated if empty.")
	fs.StringVar(&opts.role, "role", "user", "Role claim: user or admin")
	fs.StringVar(&opts.key, "key", config.DevJWTSecret, "HS256 signing key")
	fs.StringVar(&opts.issuer, "issuer", "bloodbank", "Issuer claim")
	fs.StringVar(&opts.audience, "audience", "bloodbank-api", "Audience claim")
	fs.DurationVar(&opts.ttl, "ttl", time.Hour, "Token time-to-live")
	fs.BoolVar(&opts.asJSON, "json", false, "Output as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	tok, userID, err := mint(opts)
	if err != nil {
		return err
	}

	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(tokenOutput{
			Token:     tok.Token,
			Type:      "Bearer",
			UserID:    userID.String(),
			Role:      opts.role,
			JTI:       tok.JTI,
			ExpiresAt: tok.ExpiresAt.UTC().Format(time.RFC3339),
			Usage:     "curl -H 'Authorization: Bearer " + tok.Token + "' http://localhost:8080/auth/profile",
		})
	}
	_, err = fmt.Fprintln(out, tok.Token)
	return err
}

func mint(opts options) (*jwttoken.IssuedToken, id.UserID, error) {
	role, ok := authmodels.ParseRole(strings.TrimSpace(opts.role))
	if !ok {
		return nil, id.UserID{}, fmt.Errorf("invalid role %q", opts.role)
	}
	if opts.ttl <= 0 {
		return nil, id.UserID{}, fmt.Errorf("ttl must be positive")
	}

	userID := id.NewUserID()
	if opts.userID != "" {
		parsed, err := id.ParseUserID(opts.userID)
		if err != nil {
			return nil, id.UserID{}, fmt.Errorf("invalid user id: %w", err)
		}
		userID = parsed
	}

	svc := jwttoken.NewJWTService(opts.key, opts.issuer, opts.audience, opts.ttl)
	tok, err := svc.GenerateAccessToken(context.Background(), userID, role.String())
	if err != nil {
		return nil, id.UserID{}, err
	}
	return tok, userID, nil
}
