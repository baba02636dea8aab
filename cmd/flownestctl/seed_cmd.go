package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/flownest/flownest-server/internal/bootstrap"
	"github.com/flownest/flownest-server/internal/config"
	"github.com/flownest/flownest-server/internal/models"
	"github.com/flownest/flownest-server/internal/storage"
	"github.com/flownest/flownest-server/internal/subscription"
	"github.com/flownest/flownest-server/pkg/crypto"
)

// Demo accounts created by seed
const (
	seedAdminEmail = "admin@flownest.app"
	seedOwnerEmail = "owner@demo.flownest.app"
	seedStaffEmail = "staff@demo.flownest.app"
)

type seedOutput struct {
	Created  []string `json:"created"`
	Skipped  []string `json:"skipped"`
	TenantID string   `json:"tenantId,omitempty"`
}

func newSeedCmd(load func() (*config.Config, error)) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a superadmin and a demo tenant with owner, staff and services",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			store, err := bootstrap.OpenStore(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer store.Close()

			out, err := seed(cmd.Context(), store, cfg.Subscription.TrialPeriod, password, time.Now())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVar(&password, "password", "flownest123", "Password for every seeded account")
	return cmd
}

// seed creates the demo data. Accounts that already exist are left alone,
// so running it twice is harmless.
func seed(ctx context.Context, store storage.Store, trial time.Duration, password string, now time.Time) (*seedOutput, error) {
	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	out := &seedOutput{Created: []string{}, Skipped: []string{}}

	exists := func(email string) (bool, error) {
		_, err := store.GetUserByEmail(ctx, email)
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return err == nil, err
	}

	// Superadmin
	if ok, err := exists(seedAdminEmail); err != nil {
		return nil, err
	} else if ok {
		out.Skipped = append(out.Skipped, seedAdminEmail)
	} else {
		admin := &models.User{Name: "Platform Admin", Email: seedAdminEmail, PasswordHash: hash, Role: models.RoleSuperadmin}
		if err := store.CreateUser(ctx, admin); err != nil {
			return nil, fmt.Errorf("create superadmin: %w", err)
		}
		out.Created = append(out.Created, seedAdminEmail)
	}

	// Owner and tenant
	if ok, err := exists(seedOwnerEmail); err != nil {
		return nil, err
	} else if ok {
		out.Skipped = append(out.Skipped, seedOwnerEmail, seedStaffEmail)
		return out, nil
	}

	tx, err := store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	owner := &models.User{Name: "Demo Owner", Email: seedOwnerEmail, Phone: "9000000001", PasswordHash: hash, Role: models.RoleOwner}
	if err := tx.CreateUser(ctx, owner); err != nil {
		return nil, fmt.Errorf("create owner: %w", err)
	}

	tenant := &models.Tenant{
		Name:         "FlowNest Demo Salon",
		Address:      "12 Market Road",
		Phone:        "9000000001",
		BusinessType: "Salon",
		OwnerID:      &owner.ID,
	}
	subscription.StartTrial(tenant, now, trial)
	if err := tx.CreateTenant(ctx, tenant); err != nil {
		return nil, fmt.Errorf("create tenant: %w", err)
	}
	if err := tx.SetUserTenant(ctx, owner.ID, tenant.ID); err != nil {
		return nil, fmt.Errorf("link owner: %w", err)
	}

	staff := &models.User{
		Name:         "Demo Staff",
		Email:        seedStaffEmail,
		PasswordHash: hash,
		Role:         models.RoleStaff,
		TenantID:     &tenant.ID,
		HourlyRate:   120,
	}
	if err := tx.CreateUser(ctx, staff); err != nil {
		return nil, fmt.Errorf("create staff: %w", err)
	}

	services := []models.Service{
		{Name: "Haircut", SellPrice: 250, OriginalPrice: 50, Duration: 30, Category: "Hair"},
		{Name: "Facial", SellPrice: 800, OriginalPrice: 250, Duration: 60, Category: "Skin"},
		{Name: "Manicure", SellPrice: 400, OriginalPrice: 100, Duration: 45, Category: "Nails"},
	}
	for i := range services {
		svc := services[i]
		svc.TenantID = tenant.ID
		if err := tx.CreateService(ctx, &svc); err != nil {
			return nil, fmt.Errorf("create service %s: %w", svc.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	out.Created = append(out.Created, seedOwnerEmail, seedStaffEmail)
	out.TenantID = tenant.ID.String()
	return out, nil
}
