package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/cli/config"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/model/auth"
	"github.com/secmon-lab/themis/pkg/domain/types"
	"github.com/secmon-lab/themis/pkg/usecase"
	"github.com/secmon-lab/themis/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// withUserUseCase opens the configured repository for the duration of fn
func withUserUseCase(ctx context.Context, repoCfg *config.Repository, fn func(uc *usecase.UserUseCase) error) error {
	repo, err := repoCfg.Configure(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to initialize repository")
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logging.Default().Error("failed to close repository", "error", err.Error())
		}
	}()

	return fn(usecase.NewUserUseCase(repo))
}

func cmdUser() *cli.Command {
	return &cli.Command{
		Name:  "user",
		Usage: "Manage the user directory",
		Commands: []*cli.Command{
			cmdUserAdd(),
			cmdUserList(),
			cmdUserToken(),
		},
	}
}

func cmdUserAdd() *cli.Command {
	var repoCfg config.Repository
	var id, name, email, role string
	var inactive bool

	flags := []cli.Flag{
		&cli.StringFlag{Name: "id", Usage: "User ID (subject of issued tokens)", Required: true, Destination: &id},
		&cli.StringFlag{Name: "name", Usage: "Display name", Required: true, Destination: &name},
		&cli.StringFlag{Name: "email", Usage: "Email address", Destination: &email},
		&cli.StringFlag{Name: "role", Usage: "submitter, approver or assignee", Required: true, Destination: &role},
		&cli.BoolFlag{Name: "inactive", Usage: "Register the user as inactive", Destination: &inactive},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "add",
		Usage: "Create or replace a user",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			r, err := types.ParseRole(role)
			if err != nil {
				return err
			}

			return withUserUseCase(ctx, &repoCfg, func(uc *usecase.UserUseCase) error {
				u := &model.User{
					ID:     id,
					Name:   name,
					Email:  email,
					Role:   r,
					Active: !inactive,
				}
				if err := uc.Register(ctx, u); err != nil {
					return err
				}
				logging.Default().Info("User registered", "id", u.ID, "role", u.Role, "active", u.Active)
				return nil
			})
		},
	}
}

func cmdUserList() *cli.Command {
	var repoCfg config.Repository
	var role string
	var all bool

	flags := []cli.Flag{
		&cli.StringFlag{Name: "role", Usage: "Only list users of this role", Destination: &role},
		&cli.BoolFlag{Name: "all", Usage: "Include inactive users", Destination: &all},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List users",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			roles := types.AllRoles()
			if role != "" {
				r, err := types.ParseRole(role)
				if err != nil {
					return err
				}
				roles = []types.Role{r}
			}

			return withUserUseCase(ctx, &repoCfg, func(uc *usecase.UserUseCase) error {
				for _, r := range roles {
					users, err := uc.ListByRole(ctx, r, all)
					if err != nil {
						return err
					}
					printUsers(c.Root().Writer, r, users)
				}
				return nil
			})
		},
	}
}

func printUsers(w io.Writer, role types.Role, users []*model.User) {
	header := color.New(color.FgCyan, color.Bold).SprintFunc()
	inactive := color.New(color.FgHiBlack).SprintFunc()

	_, _ = fmt.Fprintf(w, "%s (%d)\n", header(role.String()), len(users))
	for _, u := range users {
		line := fmt.Sprintf("  %-24s %-24s %s", u.ID, u.Name, u.Email)
		if !u.Active {
			line = inactive(line + " [inactive]")
		}
		_, _ = fmt.Fprintln(w, line)
	}
}

func cmdUserToken() *cli.Command {
	var repoCfg config.Repository
	var id, role, secret string
	var ttl time.Duration

	flags := []cli.Flag{
		&cli.StringFlag{Name: "id", Usage: "User ID", Required: true, Destination: &id},
		&cli.StringFlag{Name: "role", Usage: "Role claim for users not in the directory", Destination: &role},
		&cli.DurationFlag{Name: "ttl", Usage: "Token lifetime", Value: 24 * time.Hour, Destination: &ttl},
		&cli.StringFlag{
			Name:        "jwt-secret",
			Usage:       "HS256 secret shared with the server",
			Required:    true,
			Sources:     cli.EnvVars("THEMIS_JWT_SECRET"),
			Destination: &secret,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "token",
		Usage: "Issue a bearer token for development and testing",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			return withUserUseCase(ctx, &repoCfg, func(uc *usecase.UserUseCase) error {
				p, err := tokenPrincipal(ctx, uc, id, role)
				if err != nil {
					return err
				}

				token, err := usecase.IssueToken(secret, p, ttl)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(c.Root().Writer, token)
				return nil
			})
		},
	}
}

// tokenPrincipal prefers the directory entry and falls back to the role flag
func tokenPrincipal(ctx context.Context, uc *usecase.UserUseCase, id, role string) (*auth.Principal, error) {
	u, err := uc.Get(ctx, id)
	switch {
	case err == nil:
		if !u.Active {
			return nil, goerr.New("user is inactive", goerr.V("id", id))
		}
		return &auth.Principal{ID: u.ID, Role: u.Role, Name: u.Name}, nil
	case errors.Is(err, usecase.ErrUserNotFound):
		if role == "" {
			return nil, goerr.New("--role is required for users not in the directory", goerr.V("id", id))
		}
		r, err := types.ParseRole(role)
		if err != nil {
			return nil, err
		}
		return &auth.Principal{ID: id, Role: r, Name: id}, nil
	default:
		return nil, err
	}
}
