package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/chroniclehq/feedgen/internal/database"
	"github.com/chroniclehq/feedgen/internal/models"
	"github.com/chroniclehq/feedgen/internal/validation"
)

// NewPrefsCmd creates the prefs command with its subcommands
func NewPrefsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Manage per-user content type preferences",
		Long:  "List or set a user's opt-outs. Types without a stored preference default to enabled.",
	}
	cmd.AddCommand(newPrefsListCmd())
	cmd.AddCommand(newPrefsSetCmd())
	return cmd
}

func newPrefsListCmd() *cobra.Command {
	var userFlag string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's stored preferences",
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

			repo := database.NewPreferenceRepository(db)
			prefs, err := repo.GetForUser(context.Background(), userID)
			if err != nil {
				return fmt.Errorf("failed to list preferences: %w", err)
			}

			if len(prefs) == 0 {
				fmt.Println("No stored preferences; all content types default to enabled.")
				return nil
			}

			fmt.Printf("Preferences for %s:\n", userID)
			for _, p := range prefs {
				state := "enabled"
				if !p.Enabled {
					state = "disabled"
				}
				fmt.Printf("  - %-22s %s (updated %s)\n", p.Type, state, p.UpdatedAt.Format("2006-01-02 15:04"))
			}
			fmt.Println("\nTypes not listed default to enabled.")

			return nil
		},
	}
	cmd.Flags().StringVar(&userFlag, "user", "", "User ID (UUID) (required)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newPrefsSetCmd() *cobra.Command {
	var (
		userFlag string
		typeFlag string
		enabled  bool
	)
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set a user's preference for one content type",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("enabled") {
				return fmt.Errorf("--enabled=true or --enabled=false is required")
			}

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

			repo := database.NewPreferenceRepository(db)
			if err := repo.Set(context.Background(), userID, models.ContentType(typeFlag), enabled); err != nil {
				return fmt.Errorf("failed to set preference: %w", err)
			}

			state := "enabled"
			if !enabled {
				state = "disabled"
			}
			fmt.Printf("✓ %s %s for %s\n", typeFlag, state, userID)
			return nil
		},
	}
	cmd.Flags().StringVar(&userFlag, "user", "", "User ID (UUID) (required)")
	cmd.Flags().StringVar(&typeFlag, "type", "", "Content type (required)")
	cmd.Flags().BoolVar(&enabled, "enabled", true, "Whether the type is enabled for this user (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}
