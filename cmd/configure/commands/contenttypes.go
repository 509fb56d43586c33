package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/chroniclehq/feedgen/internal/database"
	"github.com/chroniclehq/feedgen/internal/models"
	"github.com/chroniclehq/feedgen/internal/validation"
)

// NewContentTypesCmd creates the contenttypes command with its subcommands
func NewContentTypesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contenttypes",
		Short: "Manage admin content type toggles",
		Long:  "List, enable, disable, or seed the admin toggles that gate content generation globally",
	}
	cmd.AddCommand(newContentTypesListCmd())
	cmd.AddCommand(newContentTypesEnableCmd())
	cmd.AddCommand(newContentTypesDisableCmd())
	cmd.AddCommand(newContentTypesSeedCmd())
	return cmd
}

func newContentTypesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List content types with their admin toggle state",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDatabase(db)

			repo := database.NewAdminConfigRepository(db)
			configs, err := repo.GetAll(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list admin config: %w", err)
			}

			stored := make(map[models.ContentType]models.AdminTypeConfig, len(configs))
			for _, c := range configs {
				stored[c.Type] = c
			}

			fmt.Println("Content types:")
			for _, def := range models.ContentTypeDefinitions() {
				state := "enabled (default)"
				if c, ok := stored[def.Type]; ok {
					state = "enabled"
					if !c.Enabled {
						state = "disabled"
					}
					if c.UpdatedBy != "" {
						state += fmt.Sprintf(" (by %s at %s)", c.UpdatedBy, c.UpdatedAt.Format("2006-01-02 15:04"))
					}
				}
				fmt.Printf("  - %-22s cooldown %2dd  %s\n", def.Type, def.CooldownDays, state)
			}

			return nil
		},
	}
}

func newContentTypesEnableCmd() *cobra.Command {
	var updatedBy string
	cmd := &cobra.Command{
		Use:   "enable <content-type>",
		Short: "Enable a content type globally",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setContentTypeEnabled(args[0], true, updatedBy)
		},
	}
	cmd.Flags().StringVar(&updatedBy, "by", "configure-cli", "Who is making the change")
	return cmd
}

func newContentTypesDisableCmd() *cobra.Command {
	var updatedBy string
	cmd := &cobra.Command{
		Use:   "disable <content-type>",
		Short: "Disable a content type globally",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setContentTypeEnabled(args[0], false, updatedBy)
		},
	}
	cmd.Flags().StringVar(&updatedBy, "by", "configure-cli", "Who is making the change")
	return cmd
}

func setContentTypeEnabled(rawType string, enabled bool, updatedBy string) error {
	if err := validation.ValidateContentType(rawType); err != nil {
		return err
	}

	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer closeDatabase(db)

	repo := database.NewAdminConfigRepository(db)
	if err := repo.SetEnabled(context.Background(), models.ContentType(rawType), enabled, updatedBy); err != nil {
		return fmt.Errorf("failed to update admin config: %w", err)
	}

	state := "enabled"
	if !enabled {
		state = "disabled"
	}
	fmt.Printf("✓ %s %s\n", rawType, state)
	return nil
}

// seedFile is the YAML shape consumed by `contenttypes seed`
type seedFile struct {
	ContentTypes []seedEntry `yaml:"content_types"`
}

type seedEntry struct {
	Type    string `yaml:"type" validate:"required,content_type"`
	Enabled bool   `yaml:"enabled"`
}

func newContentTypesSeedCmd() *cobra.Command {
	var updatedBy string
	cmd := &cobra.Command{
		Use:   "seed <file>",
		Short: "Seed admin toggles from a YAML file",
		Long: `Seed admin toggles from a YAML file of the form:

  content_types:
    - type: life_summary
      enabled: true
    - type: comparison
      enabled: false

Every entry is validated before anything is written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read seed file: %w", err)
			}

			var seed seedFile
			if err := yaml.Unmarshal(data, &seed); err != nil {
				return fmt.Errorf("failed to parse seed file: %w", err)
			}
			if len(seed.ContentTypes) == 0 {
				return fmt.Errorf("seed file has no content_types entries")
			}

			for i, entry := range seed.ContentTypes {
				if err := validation.Validate.Struct(entry); err != nil {
					return fmt.Errorf("invalid entry %d (%q): %w", i+1, entry.Type, err)
				}
			}

			db, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDatabase(db)

			repo := database.NewAdminConfigRepository(db)
			ctx := context.Background()
			for _, entry := range seed.ContentTypes {
				if err := repo.SetEnabled(ctx, models.ContentType(entry.Type), entry.Enabled, updatedBy); err != nil {
					return fmt.Errorf("failed to seed %s: %w", entry.Type, err)
				}
			}

			fmt.Printf("✓ Seeded %d content type toggles\n", len(seed.ContentTypes))
			return nil
		},
	}
	cmd.Flags().StringVar(&updatedBy, "by", "configure-cli", "Who is making the change")
	return cmd
}
