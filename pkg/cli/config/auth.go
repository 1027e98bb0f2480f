package config

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
	"github.com/secmon-lab/themis/pkg/domain/types"
	"github.com/secmon-lab/themis/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// Auth holds CLI flags for bearer token verification
type Auth struct {
	JWTSecret  string `masq:"secret"`
	clockSkew  time.Duration
	noAuthUID  string
	noAuthRole string
}

// Flags returns CLI flags for authentication
func (a *Auth) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "jwt-secret",
			Usage:       "HS256 secret shared with the identity provider",
			Category:    "Authentication",
			Sources:     cli.EnvVars("THEMIS_JWT_SECRET"),
			Destination: &a.JWTSecret,
		},
		&cli.DurationFlag{
			Name:        "jwt-clock-skew",
			Usage:       "Tolerated clock difference when checking token expiry",
			Value:       10 * time.Second,
			Category:    "Authentication",
			Sources:     cli.EnvVars("THEMIS_JWT_CLOCK_SKEW"),
			Destination: &a.clockSkew,
		},
		&cli.StringFlag{
			Name:        "no-auth",
			Usage:       "Skip authentication and act as the given user ID (development only). Example: --no-auth=admin-1",
			Category:    "Authentication",
			Sources:     cli.EnvVars("THEMIS_NO_AUTH"),
			Destination: &a.noAuthUID,
		},
		&cli.StringFlag{
			Name:        "no-auth-role",
			Usage:       "Role used with --no-auth when the user is not registered",
			Value:       string(types.RoleSubmitter),
			Category:    "Authentication",
			Sources:     cli.EnvVars("THEMIS_NO_AUTH_ROLE"),
			Destination: &a.noAuthRole,
		},
	}
}

// IsNoAuthMode reports whether requests skip token verification
func (a *Auth) IsNoAuthMode() bool {
	return a.noAuthUID != ""
}

// NoAuthUID returns the user ID used in no-auth mode
func (a *Auth) NoAuthUID() string {
	return a.noAuthUID
}

// Configure returns the authenticator selected by the flags
func (a *Auth) Configure(repo interfaces.Repository) (usecase.AuthUseCaseInterface, error) {
	if a.noAuthUID != "" {
		role, err := types.ParseRole(a.noAuthRole)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid no-auth role", goerr.V("role", a.noAuthRole))
		}
		return usecase.NewNoAuthnUseCase(repo, a.noAuthUID, role), nil
	}

	if a.JWTSecret == "" {
		return nil, goerr.New("either --jwt-secret or --no-auth is required")
	}
	if len(a.JWTSecret) < 32 {
		return nil, goerr.New("jwt-secret must be at least 32 bytes")
	}

	return usecase.NewAuthUseCase(repo, a.JWTSecret, usecase.WithAcceptableSkew(a.clockSkew)), nil
}
