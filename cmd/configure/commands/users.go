package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/chroniclehq/feedgen/internal/database"
)

// NewUsersCmd creates the users command with its subcommands
func NewUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage the feed user registry",
		Long:  "Pause or resume scheduled generation for a user. Paused users keep API access; only the daily fan-out skips them.",
	}
	cmd.AddCommand(newUsersPauseCmd())
	cmd.AddCommand(newUsersResumeCmd())
	return cmd
}

func newUsersPauseCmd() *cobra.Command {
	var userFlag string
	cmd := &cobra.Command{
		Use:   "pause",
		Short: "Pause scheduled generation for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return setGenerationPaused(userFlag, true)
		},
	}
	cmd.Flags().StringVar(&userFlag, "user", "", "User ID (UUID) (required)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newUsersResumeCmd() *cobra.Command {
	var userFlag string
	cmd := &cobra.Command{
		Use:   "resume",
		Short: "Resume scheduled generation for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return setGenerationPaused(userFlag, false)
		},
	}
	cmd.Flags().StringVar(&userFlag, "user", "", "User ID (UUID) (required)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func setGenerationPaused(rawUser string, paused bool) error {
	userID, err := uuid.Parse(rawUser)
	if err != nil {
		return fmt.Errorf("--user must be a valid UUID: %w", err)
	}

	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer closeDatabase(db)

	repo := database.NewUserRepository(db)
	if err := repo.SetGenerationPaused(context.Background(), userID, paused); err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return fmt.Errorf("user %s is not in the registry; users appear after their first API request", userID)
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	if paused {
		fmt.Printf("✓ Paused scheduled generation for %s\n", userID)
	} else {
		fmt.Printf("✓ Resumed scheduled generation for %s\n", userID)
	}
	return nil
}
