package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"byod/internal/config"
	"byod/internal/domain"
	"byod/internal/dto"
	"byod/internal/service"
	impl "byod/internal/service/impl"
	"byod/internal/store"

	"github.com/spf13/pflag"
)

type createUserOpts struct {
	username string
	password string
	role     string
	fullName string
	email    string
}

func runCreateUser(cfg config.Config, args []string) error {
	var opts createUserOpts
	fs := pflag.NewFlagSet("create-user", pflag.ContinueOnError)
	dbFlags(fs, &cfg)
	fs.StringVar(&opts.username, "username", "", "login name (required)")
	fs.StringVar(&opts.password, "password", "", "password, at least 8 characters (required)")
	fs.StringVar(&opts.role, "role", "student", "student|teacher|admin")
	fs.StringVar(&opts.fullName, "full-name", "", "display name")
	fs.StringVar(&opts.email, "email", "", "email address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(opts.username) == "" || opts.password == "" {
		return errors.New("--username and --password are required")
	}

	ctx := context.Background()
	st, err := openStore(ctx, cfg, false)
	if err != nil {
		return err
	}
	u, err := createUser(ctx, newAuth(st, impl.NewPasswordServiceArgon2id()), opts)
	if err != nil {
		return err
	}
	fmt.Printf("created %s %s (%s)\n", u.Role, u.Username, u.ID)
	return nil
}

func newAuth(st *store.Store, ps service.PasswordService) *impl.AuthServiceImpl {
	// token issuing is never exercised from the CLI
	return impl.NewAuthServiceImpl(st, ps, nil)
}

func createUser(ctx context.Context, auth service.AuthService, opts createUserOpts) (*domain.User, error) {
	return auth.CreateUser(ctx, nil, dto.CreateUserRequest{
		Username: opts.username,
		Password: opts.password,
		Role:     opts.role,
		FullName: opts.fullName,
		Email:    opts.email,
	})
}
