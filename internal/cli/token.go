package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"issueapi/internal/config"
	"issueapi/internal/http/middleware"
	"issueapi/internal/model"
)

// TokenOptions holds flags for the token command.
type TokenOptions struct {
	*RootOptions
	Subject string
	Role    string
	TTL     time.Duration
}

// NewTokenCommand creates the token command.
func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TokenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign a bearer token for the API",
		Long: `Sign a bearer token with JWT_SECRET for the given user id and role. Meant for
local development and smoke tests; production tokens come from the identity
service.

Examples:
  issuectl token --sub 6f1c0d2e-8a8b-4a52-9d0e-0c3f1f4f7a11
  issuectl token --sub 6f1c0d2e-8a8b-4a52-9d0e-0c3f1f4f7a11 --role admin --ttl 15m`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := config.Load().JWTSecret
			tok, err := signToken(secret, opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Subject, "sub", "", "user id (required)")
	_ = cmd.MarkFlagRequired("sub")
	cmd.Flags().StringVar(&opts.Role, "role", string(model.RoleUser), "user or admin")
	cmd.Flags().DurationVar(&opts.TTL, "ttl", time.Hour, "token lifetime")

	return cmd
}

func signToken(secret string, opts *TokenOptions) (string, error) {
	if secret == "" {
		return "", errors.New("JWT_SECRET is not set")
	}
	if _, err := uuid.Parse(opts.Subject); err != nil {
		return "", fmt.Errorf("invalid --sub %q: %w", opts.Subject, err)
	}
	role := model.Role(opts.Role)
	if role != model.RoleUser && role != model.RoleAdmin {
		return "", fmt.Errorf("invalid --role %q: must be user or admin", opts.Role)
	}
	if opts.TTL <= 0 {
		return "", errors.New("--ttl must be positive")
	}
	return middleware.NewToken(secret, model.Actor{ID: opts.Subject, Role: role}, opts.TTL)
}
