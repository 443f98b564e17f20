package service

import (
	"context"
	"log"

	"github.com/iliyamo/document-manager/internal/config"
	"github.com/iliyamo/document-manager/internal/model"
	"github.com/iliyamo/document-manager/internal/utils"
)

// AdminStore is the slice of the user repository the bootstrap needs.
type AdminStore interface {
	CountByRole(ctx context.Context, role string) (int, error)
	Create(ctx context.Context, u *model.User) error
}

// EnsureAdmin creates the default ADMIN account on first startup.  When at
// least one admin already exists the routine does nothing, so rotating the
// bootstrap credentials later has no effect on a provisioned database.
func EnsureAdmin(ctx context.Context, users AdminStore, cfg config.Config) error {
	n, err := users.CountByRole(ctx, model.RoleAdmin)
	if err != nil {
		return err
	}
	if n > 0 {
		log.Printf("bootstrap: admin user already exists, skipping creation")
		return nil
	}
	hash, err := utils.HashPassword(cfg.AdminPassword, cfg.BcryptCost)
	if err != nil {
		return err
	}
	admin := model.User{
		Email:        cfg.AdminEmail,
		FirstName:    cfg.AdminFirstName,
		LastName:     cfg.AdminLastName,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		IsActive:     true,
	}
	if err := users.Create(ctx, &admin); err != nil {
		return err
	}
	log.Printf("bootstrap: default ADMIN user created: %s", admin.Email)
	return nil
}
