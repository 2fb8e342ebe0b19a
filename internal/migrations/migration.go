package migrations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"moving_ops/internal/database"
	"moving_ops/internal/models"
	"moving_ops/internal/repository"
	"moving_ops/internal/services"

	"gorm.io/gorm"
)

// Options controls what RunMigrations does besides migrating the schema.
type Options struct {
	// Reset drops every table before migrating.
	Reset bool
	// AdminEmail and AdminPassword seed the first super admin. No admin is
	// created when the password is empty.
	AdminEmail    string
	AdminPassword string
	// CompanyName seeds a default moving company.
	CompanyName string
}

// DefaultServices are the service types every installation offers.
var DefaultServices = []string{"Packing", "Transport", "Assembly", "Cleaning", "Storage"}

// RunMigrations migrates the schema and creates default data.
func RunMigrations(ctx context.Context, db *gorm.DB, opts Options, l *slog.Logger) error {
	l.Info("running database migrations", slog.Bool("reset", opts.Reset))

	if opts.Reset {
		err := db.Migrator().DropTable(
			&models.Transaction{},
			&models.Offer{},
			&models.OrderService{},
			&models.Order{},
			&models.Employment{},
			&models.Service{},
			&models.User{},
			&models.Company{},
		)
		if err != nil {
			l.Warn("failed to drop tables", slog.Any("err", err))
		}
	}

	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := createDefaultData(ctx, db, opts, l); err != nil {
		l.Warn("failed to create default data", slog.Any("err", err))
	}

	l.Info("database migrations completed")
	return nil
}

func createDefaultData(ctx context.Context, db *gorm.DB, opts Options, l *slog.Logger) error {
	catalogRepo := repository.NewCatalogRepository(db)
	for _, name := range DefaultServices {
		_, err := catalogRepo.GetServiceByName(ctx, name)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up service %s: %w", name, err)
		}
		if err := catalogRepo.CreateService(ctx, &models.Service{Name: name, IsActive: true}); err != nil {
			return fmt.Errorf("failed to create service %s: %w", name, err)
		}
		l.Info("service created", slog.String("name", name))
	}

	if opts.CompanyName != "" {
		var count int64
		if err := db.WithContext(ctx).Model(&models.Company{}).Where("name = ?", opts.CompanyName).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to look up company: %w", err)
		}
		if count == 0 {
			if err := catalogRepo.CreateCompany(ctx, &models.Company{Name: opts.CompanyName, IsActive: true}); err != nil {
				return fmt.Errorf("failed to create company: %w", err)
			}
			l.Info("company created", slog.String("name", opts.CompanyName))
		}
	}

	if opts.AdminPassword == "" {
		return nil
	}

	userRepo := repository.NewUserRepository(db)
	if _, err := userRepo.GetByEmail(ctx, opts.AdminEmail); err == nil {
		l.Info("super admin already exists", slog.String("email", opts.AdminEmail))
		return nil
	}

	userService := services.NewUserService(userRepo)
	superAdmin := &models.User{
		Name:     "Administrator",
		Email:    opts.AdminEmail,
		Role:     string(models.RoleSuperAdmin),
		IsActive: true,
	}
	if err := userService.CreateUser(ctx, superAdmin, opts.AdminPassword); err != nil {
		return fmt.Errorf("failed to create super admin: %w", err)
	}
	l.Info("super admin created", slog.String("email", superAdmin.Email), slog.Uint64("id", uint64(superAdmin.ID)))
	return nil
}
