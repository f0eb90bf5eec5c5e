package main

import (
	"fmt"
	"os"
	"strconv"

	"blogsite/internal/models"
	"blogsite/internal/repository"
	"blogsite/internal/seed"
	"blogsite/internal/service"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type dbOpener func() (*gorm.DB, error)

func newRootCmd(open dbOpener) *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Blog administration tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		setAdminCmd(open, "promote", "Grant admin rights to a user", true),
		setAdminCmd(open, "demote", "Revoke admin rights from a user", false),
		listAdminsCmd(open),
		seedCmd(open),
		importCmd(open),
	)
	return root
}

// findUser resolves a numeric id or an email address.
func findUser(cmd *cobra.Command, users repository.UserRepository, ref string) (*models.User, error) {
	if id, err := strconv.ParseUint(ref, 10, 64); err == nil {
		return users.GetByID(cmd.Context(), uint(id))
	}
	u, err := users.GetByEmail(cmd.Context(), service.NormalizeEmail(ref))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, models.NewNotFoundError("User", ref)
	}
	return u, nil
}

func setAdminCmd(open dbOpener, use, short string, admin bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <user-id-or-email>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := open()
			if err != nil {
				return err
			}
			users := repository.NewUserRepository(db)

			user, err := findUser(cmd, users, args[0])
			if err != nil {
				return err
			}
			if user.IsAdmin == admin {
				fmt.Fprintf(cmd.OutOrStdout(), "User %s (ID: %d) is already %s\n", user.Email, user.ID, adminWord(admin))
				return nil
			}
			if err := users.SetAdmin(cmd.Context(), user.ID, admin); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User %s (ID: %d) is now %s\n", user.Email, user.ID, adminWord(admin))
			return nil
		},
	}
}

func adminWord(admin bool) string {
	if admin {
		return "an admin"
	}
	return "not an admin"
}

func listAdminsCmd(open dbOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "list-admins",
		Short: "List all admins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := open()
			if err != nil {
				return err
			}
			admins, err := repository.NewUserRepository(db).ListAdmins(cmd.Context())
			if err != nil {
				return err
			}
			if len(admins) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No admins found")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-6s  %-30s  %s\n", "ID", "Email", "Name")
			for _, a := range admins {
				fmt.Fprintf(cmd.OutOrStdout(), "%-6d  %-30s  %s\n", a.ID, a.Email, a.Name)
			}
			return nil
		},
	}
}

func seedCmd(open dbOpener) *cobra.Command {
	var opts seed.Options
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert generated demo users, posts and comments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := open()
			if err != nil {
				return err
			}
			sum, err := seed.Demo(cmd.Context(), db, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d users, %d posts, %d comments (password %q)\n",
				sum.Users, sum.Posts, sum.Comments, seed.DemoPassword)
			return nil
		},
	}
	cmd.Flags().IntVar(&opts.Users, "users", 5, "number of non-admin users")
	cmd.Flags().IntVar(&opts.Posts, "posts", 10, "number of posts")
	cmd.Flags().IntVar(&opts.CommentsPerPost, "comments", 3, "comments per post")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "random seed (0 for random)")
	return cmd
}

func importCmd(open dbOpener) *cobra.Command {
	var cost int
	cmd := &cobra.Command{
		Use:   "import <fixture.yml>",
		Short: "Import users, posts and comments from a YAML fixture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			fixture, err := seed.LoadFixture(f)
			if err != nil {
				return err
			}

			db, err := open()
			if err != nil {
				return err
			}
			sum, err := seed.Import(cmd.Context(), db, fixture, cost)
			if err != nil {
				return fmt.Errorf("import %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d users, %d posts, %d comments\n", sum.Users, sum.Posts, sum.Comments)
			return nil
		},
	}
	cmd.Flags().IntVar(&cost, "bcrypt-cost", bcrypt.DefaultCost, "bcrypt cost for imported passwords")
	return cmd
}
