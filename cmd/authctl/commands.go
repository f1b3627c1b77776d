package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/cafecrawl/backend/internal/infrastructure/auth"
)

var errUnknownCommand = errors.New("unknown command")

type cli struct {
	jwt       *auth.JWTService
	blacklist auth.TokenBlacklist
	out       io.Writer
	now       func() time.Time
}

func (c *cli) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "issue":
		return c.issue(args)
	case "revoke":
		return c.revoke(ctx, args)
	case "logout-all":
		return c.logoutAll(ctx, args)
	default:
		return fmt.Errorf("%w: %q", errUnknownCommand, command)
	}
}

func (c *cli) issue(args []string) error {
	fs := flag.NewFlagSet("issue", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	sub := fs.String("sub", "", "user ID the token is issued to")
	ttl := fs.Duration("ttl", 0, "token lifetime (default: jwt.access_token_expiration)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	token, err := c.jwt.IssueAccessToken(*sub, *ttl)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(token)
}

func (c *cli) revoke(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("revoke", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	raw := fs.String("token", "", "access token to revoke")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *raw == "" {
		return errors.New("-token is required")
	}
	if c.blacklist == nil {
		return errors.New("no token blacklist configured")
	}

	claims, err := c.jwt.ParseUnverified(*raw)
	if err != nil {
		return err
	}
	if claims.ID == "" {
		return auth.ErrMissingTokenID
	}

	ttl := claims.RemainingLifetime(c.clock())
	if err := c.blacklist.Revoke(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("revoke %s: %w", claims.ID, err)
	}
	_, err = fmt.Fprintf(c.out, "revoked %s (subject %s) for %s\n", claims.ID, claims.Subject, ttl.Round(time.Second))
	return err
}

func (c *cli) logoutAll(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("logout-all", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	sub := fs.String("sub", "", "user ID whose tokens are revoked")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *sub == "" {
		return auth.ErrMissingSubject
	}
	if c.blacklist == nil {
		return errors.New("no token blacklist configured")
	}

	// Tokens minted before now stay invalid until the longest possible
	// lifetime has passed.
	if err := c.blacklist.RevokeAllBefore(ctx, *sub, c.jwt.Expiration()); err != nil {
		return fmt.Errorf("revoke tokens of %s: %w", *sub, err)
	}
	_, err := fmt.Fprintf(c.out, "revoked all tokens issued to %s\n", *sub)
	return err
}

func (c *cli) clock() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}
