package main

import (
	"context"
	"errors"
	"fmt"

	"byod/internal/cache"
	"byod/internal/config"
	"byod/internal/domain"
	"byod/internal/dto"
	"byod/internal/service"
	impl "byod/internal/service/impl"
	"byod/internal/store"

	"github.com/spf13/pflag"
)

var demoUsers = []createUserOpts{
	{username: "admin", password: "admin123", role: "admin", fullName: "System Administrator", email: "admin@byod.local"},
	{username: "teacher", password: "teacher123", role: "teacher", fullName: "John Teacher", email: "teacher@byod.local"},
	{username: "teacher2", password: "teacher123", role: "teacher", fullName: "Mary Teacher", email: "teacher2@byod.local"},
	{username: "student", password: "student123", role: "student", fullName: "Jane Student", email: "student@byod.local"},
	{username: "student2", password: "student123", role: "student", fullName: "Tom Student", email: "student2@byod.local"},
	{username: "student3", password: "student123", role: "student", fullName: "Ann Student", email: "student3@byod.local"},
}

type demoDevice struct {
	owner string
	req   dto.DeviceRegisterRequest
}

var demoDevices = []demoDevice{
	{owner: "teacher", req: dto.DeviceRegisterRequest{Name: "Teacher MacBook", DeviceType: "laptop", MACAddress: "02:1A:2B:3C:4D:01", OperatingSystem: "macos"}},
	{owner: "student", req: dto.DeviceRegisterRequest{Name: "Student Laptop", DeviceType: "laptop", MACAddress: "02:1A:2B:3C:4D:02", OperatingSystem: "windows"}},
	{owner: "student2", req: dto.DeviceRegisterRequest{Name: "Student Phone", DeviceType: "smartphone", MACAddress: "02:1A:2B:3C:4D:03", OperatingSystem: "android"}},
}

func runSeedDemo(cfg config.Config, args []string) error {
	fs := pflag.NewFlagSet("seed-demo", pflag.ContinueOnError)
	dbFlags(fs, &cfg)
	migrate := fs.Bool("migrate", true, "migrate the schema first")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	st, err := openStore(ctx, cfg, *migrate)
	if err != nil {
		return err
	}
	created, err := seedDemo(ctx, st, impl.NewPasswordServiceArgon2id())
	if err != nil {
		return err
	}
	fmt.Printf("demo data ready, %d new users\n", created)
	return nil
}

// seedDemo is idempotent: users and devices that already exist are kept.
func seedDemo(ctx context.Context, st *store.Store, ps service.PasswordService) (int, error) {
	auth := newAuth(st, ps)
	created := 0
	for _, u := range demoUsers {
		_, err := createUser(ctx, auth, u)
		switch {
		case err == nil:
			created++
		case errors.Is(err, domain.ErrDuplicateUsername):
		default:
			return created, fmt.Errorf("seed user %s: %w", u.username, err)
		}
	}

	devices := impl.NewDeviceServiceImpl(st, impl.NewNotificationServiceImpl(st, cache.Noop{}))
	for _, d := range demoDevices {
		owner, err := st.Users().GetByUsername(ctx, d.owner)
		if err != nil {
			return created, fmt.Errorf("seed device owner %s: %w", d.owner, err)
		}
		_, err = devices.Register(ctx, domain.ActorFromUser(owner), d.req)
		if err != nil && !errors.Is(err, domain.ErrDuplicateMAC) {
			return created, fmt.Errorf("seed device %s: %w", d.req.Name, err)
		}
	}
	return created, nil
}
