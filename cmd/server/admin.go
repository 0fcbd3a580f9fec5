package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/Greybash/ngo-service/internal/logger"
	"github.com/Greybash/ngo-service/internal/logic"
	"github.com/Greybash/ngo-service/internal/notify"
	"github.com/Greybash/ngo-service/internal/repository"
	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			// Init 会执行迁移
			if _, err := repository.Init(cfg.Database); err != nil {
				return fmt.Errorf("迁移数据库失败: %w", err)
			}
			logger.Info("Database migrated")
			return nil
		},
	}
}

func createProfilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create-profiles",
		Short: "Create a profile for every user that lacks one",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := repository.Init(cfg.Database)
			if err != nil {
				return fmt.Errorf("初始化数据库失败: %w", err)
			}

			created, err := logic.NewProfileLogic(db).EnsureProfiles(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Successfully created %d user profiles\n", created)
			return nil
		},
	}
}

func promoteStaffCmd() *cobra.Command {
	var (
		email  string
		revoke bool
	)
	cmd := &cobra.Command{
		Use:   "promote-staff",
		Short: "Grant or revoke staff access for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return errors.New("--email is required")
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := repository.Init(cfg.Database)
			if err != nil {
				return fmt.Errorf("初始化数据库失败: %w", err)
			}

			accounts := logic.NewAccountLogic(db, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
			if err := accounts.SetStaff(context.Background(), email, !revoke); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated staff flag for %s to %t\n", email, !revoke)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "user email")
	cmd.Flags().BoolVar(&revoke, "revoke", false, "remove staff access instead of granting it")
	return cmd
}

func workerCmd() *cobra.Command {
	var concurrency int
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run the mail delivery worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			defer logger.Sync()

			if cfg.Redis.Addr == "" {
				return errors.New("redis.addr must be set to run the worker")
			}

			w := notify.NewWorker(asynq.RedisClientOpt{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			}, concurrency, notify.NewMailer(cfg.Mail))
			return w.Run()
		},
	}
	cmd.Flags().IntVar(&concurrency, "concurrency", 5, "number of concurrent deliveries")
	return cmd
}
