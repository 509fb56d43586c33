package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/chroniclehq/feedgen/internal/database"
	"github.com/chroniclehq/feedgen/internal/models"
	"github.com/chroniclehq/feedgen/internal/validation"
)

// NewCooldownsCmd creates the cooldowns command with its subcommands
func NewCooldownsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cooldowns",
		Short: "Inspect and clear cooldown stamps",
		Long:  "List a user's cooldown stamps or clear one so its type can generate again immediately",
	}
	cmd.AddCommand(newCooldownsListCmd())
	cmd.AddCommand(newCooldownsClearCmd())
	return cmd
}

func newCooldownsListCmd() *cobra.Command {
	var userFlag string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's cooldown stamps",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(userFlag)
			if err != nil {
				return fmt.Errorf("--user must be a valid UUID: %w", err)
			}

			db, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDatabase(db)

			repo := database.NewCooldownRepository(db)
			stamps, err := repo.ListForUser(context.Background(), userID)
			if err != nil {
				return fmt.Errorf("failed to list cooldowns: %w", err)
			}

			if len(stamps) == 0 {
				fmt.Println("No cooldown stamps; every content type is eligible.")
				return nil
			}

			now := time.Now().UTC()
			fmt.Printf("Cooldowns for %s:\n", userID)
			for _, s := range stamps {
				state := fmt.Sprintf("eligible again %s", s.NextEligibleAt().Format("2006-01-02 15:04"))
				if s.Elapsed(now) {
					state = "elapsed"
				}
				fmt.Printf("  - %-22s last generated %s  %s\n",
					s.Type, s.LastGeneratedAt.Format("2006-01-02 15:04"), state)
			}

			return nil
		},
	}
	cmd.Flags().StringVar(&userFlag, "user", "", "User ID (UUID) (required)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newCooldownsClearCmd() *cobra.Command {
	var (
		userFlag string
		typeFlag string
	)
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear one cooldown stamp",
		Long:  "Remove a user's cooldown stamp for one content type so the next cycle can select it again",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(userFlag)
			if err != nil {
				return fmt.Errorf("--user must be a valid UUID: %w", err)
			}
			if err := validation.ValidateContentType(typeFlag); err != nil {
				return err
			}

			db, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDatabase(db)

			repo := database.NewCooldownRepository(db)
			if err := repo.Clear(context.Background(), userID, models.ContentType(typeFlag)); err != nil {
				return fmt.Errorf("failed to clear cooldown: %w", err)
			}

			fmt.Printf("✓ Cleared %s cooldown for %s\n", typeFlag, userID)
			return nil
		},
	}
	cmd.Flags().StringVar(&userFlag, "user", "", "User ID (UUID) (required)")
	cmd.Flags().StringVar(&typeFlag, "type", "", "Content type (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}
