package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cashon/internal/config"
	"cashon/internal/logger"
	"cashon/internal/models"
	"cashon/internal/repositories"
	"cashon/internal/utils"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(seedAdminCmd)
	seedAdminCmd.Flags().String("email", "", "Admin email, defaults to ADMIN_EMAIL")
	seedAdminCmd.Flags().Duration("ttl", 24*time.Hour, "Lifetime of the printed access token")
}

var seedAdminCmd = &cobra.Command{
	Use:   "seed-admin",
	Short: "Create the admin account if missing and print an access token",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		if email == "" {
			email = strings.TrimSpace(config.GetEnv("ADMIN_EMAIL", ""))
		}
		if email == "" {
			return errors.New("--email or ADMIN_EMAIL must be set")
		}
		ttl, _ := cmd.Flags().GetDuration("ttl")

		db, err := repositories.InitDB(cfg.DB)
		if err != nil {
			return err
		}
		defer repositories.Close(db)

		admin, err := ensureAdmin(cmd.Context(), repositories.NewStore(db), email)
		if err != nil {
			return err
		}

		token, err := utils.GenerateToken(&models.UserClaims{
			UserID: admin.ID,
			Email:  admin.Email,
			Role:   models.RoleAdmin,
		}, cfg.JWTSecret, ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func ensureAdmin(ctx context.Context, store *repositories.Store, email string) (*models.User, error) {
	existing, err := store.Users.GetByEmail(ctx, email)
	if err == nil {
		if existing.Role != models.RoleAdmin {
			return nil, fmt.Errorf("user %s exists without the admin role", email)
		}
		logger.Info().Str("email", email).Msg("admin user already exists")
		return existing, nil
	}
	if !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, err
	}

	admin := &models.User{Email: email, FirstName: "Admin", Role: models.RoleAdmin}
	if err := store.Users.Create(ctx, admin); err != nil {
		return nil, fmt.Errorf("failed to create admin user: %w", err)
	}
	logger.Info().Str("email", email).Uint("user_id", admin.ID).Msg("admin account created")
	return admin, nil
}
