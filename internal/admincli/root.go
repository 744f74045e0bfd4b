package admincli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/yatube/community/internal/config"
	"github.com/yatube/community/internal/database"
	"gorm.io/gorm"
)

// Opener returns the database the commands operate on.
type Opener func(ctx context.Context) (*gorm.DB, error)

// EnvOpener connects with the same environment settings as the server.
func EnvOpener(ctx context.Context) (*gorm.DB, error) {
	cfg := config.Load()
	db, err := database.Open(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return db.WithContext(ctx), nil
}

type app struct {
	open     Opener
	flagJSON bool
}

func (a *app) db(cmd *cobra.Command) (*gorm.DB, error) {
	return a.open(cmd.Context())
}

func (a *app) printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// NewRootCmd builds the communityctl command tree.
func NewRootCmd(open Opener) *cobra.Command {
	a := &app{open: open}

	root := &cobra.Command{
		Use:   "communityctl",
		Short: "Administer a community server from the terminal",
		Long: `communityctl manages the database behind a community server.
It reads the same DB_* environment variables as the server.

  communityctl migrate                              Create or update tables
  communityctl group create --title T --slug s      Add a community
  communityctl group list                           List communities
  communityctl user create leo --password secret    Add an account`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&a.flagJSON, "json", false, "Output as JSON")

	root.AddCommand(a.migrateCmd(), a.groupCmd(), a.userCmd())
	return root
}

// Execute runs the command tree and reports the error on stderr.
func Execute(ctx context.Context, open Opener, args []string, stderr io.Writer) error {
	root := NewRootCmd(open)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return err
	}
	return nil
}

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.db(cmd)
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return fmt.Errorf("migrating: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date.")
			return nil
		},
	}
}
