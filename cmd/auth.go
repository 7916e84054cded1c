package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wkhart/workspace-mcp/internal/accounts"
	"github.com/wkhart/workspace-mcp/internal/auth"
	"github.com/wkhart/workspace-mcp/internal/google"
	"github.com/wkhart/workspace-mcp/internal/scopes"
)

// lifecycleDeps bundles the credential lifecycle components for CLI use.
type lifecycleDeps struct {
	manager  *auth.Manager
	accounts *accounts.Registry
	scopes   *scopes.Registry
}

func newLifecycleDeps() (*lifecycleDeps, error) {
	conf, err := google.OAuthConfig()
	if err != nil {
		return nil, err
	}

	scopesReg := scopes.NewRegistry()
	google.RegisterDefaultScopes(scopesReg)

	store := auth.NewFileStore(auth.CredentialsDir())
	manager := auth.NewManager(store, auth.NewGoogleExchanger(conf), scopesReg)

	return &lifecycleDeps{
		manager:  manager,
		accounts: accounts.NewRegistry(accounts.AccountsFile(), manager),
		scopes:   scopesReg,
	}, nil
}

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage Google OAuth tokens",
	}

	cmd.AddCommand(newAuthURLCmd())
	cmd.AddCommand(newAuthExchangeCmd())
	cmd.AddCommand(newAuthStatusCmd())

	return cmd
}

func newAuthURLCmd() *cobra.Command {
	var modules []string

	cmd := &cobra.Command{
		Use:   "url",
		Short: "Print the OAuth consent URL",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := newLifecycleDeps()
			if err != nil {
				return err
			}

			var requested []string
			for _, module := range modules {
				moduleScopes := deps.scopes.ModuleScopes(module)
				if len(moduleScopes) == 0 {
					return fmt.Errorf("unknown module %q (available: %s)", module, strings.Join(deps.scopes.Modules(), ", "))
				}
				requested = append(requested, moduleScopes...)
			}

			fmt.Println(deps.manager.AuthURL(requested))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&modules, "modules", nil, "Modules to request scopes for (gmail, calendar, drive). Defaults to all modules.")

	return cmd
}

func newAuthExchangeCmd() *cobra.Command {
	var (
		category    string
		description string
	)

	cmd := &cobra.Command{
		Use:   "exchange <email> <code>",
		Short: "Exchange an authorization code and store the token",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			email, code := args[0], args[1]

			deps, err := newLifecycleDeps()
			if err != nil {
				return err
			}

			if _, err := deps.accounts.Validate(email, category, description); err != nil {
				return fmt.Errorf("account %s is not registered: %w (pass --category and --description to register it)", email, err)
			}

			if _, err := deps.manager.ExchangeCode(context.Background(), email, code); err != nil {
				return err
			}

			fmt.Printf("Token stored for account %s\n", email)
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Account category (e.g. 'work'). Registers the account if it is unknown.")
	cmd.Flags().StringVar(&description, "description", "", "Account description. Registers the account if it is unknown.")

	return cmd
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [email]",
		Short: "Show token status for one or all accounts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := newLifecycleDeps()
			if err != nil {
				return err
			}
			ctx := context.Background()

			emails := args
			if len(emails) == 0 {
				accts, err := deps.accounts.List()
				if err != nil {
					return err
				}
				if len(accts) == 0 {
					fmt.Println("No accounts registered.")
					return nil
				}
				for _, acct := range accts {
					emails = append(emails, acct.Email)
				}
			}

			for _, email := range emails {
				status, err := deps.manager.ValidateToken(ctx, email, nil)
				if err != nil {
					return err
				}
				if status.Valid {
					fmt.Printf("%s: authenticated (token valid)\n", email)
				} else {
					fmt.Printf("%s: not authenticated (%s)\n", email, status.Reason)
					fmt.Printf("   re-authenticate at: %s\n", status.AuthURL)
				}
			}
			return nil
		},
	}
}

func newAccountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage the account registry",
	}

	cmd.AddCommand(newAccountsListCmd())
	cmd.AddCommand(newAccountsAddCmd())
	cmd.AddCommand(newAccountsRemoveCmd())

	return cmd
}

func newAccountsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := newLifecycleDeps()
			if err != nil {
				return err
			}

			accts, err := deps.accounts.List()
			if err != nil {
				return err
			}
			if len(accts) == 0 {
				fmt.Println("No accounts registered.")
				return nil
			}

			ctx := context.Background()
			for _, acct := range accts {
				tokenState := "no token"
				if deps.manager.HasToken(ctx, acct.Email) {
					tokenState = "token stored"
				}
				fmt.Printf("%s [%s] %s (%s)\n", acct.Email, acct.Category, acct.Description, tokenState)
			}
			return nil
		},
	}
}

func newAccountsAddCmd() *cobra.Command {
	var (
		category    string
		description string
	)

	cmd := &cobra.Command{
		Use:   "add <email>",
		Short: "Register an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := newLifecycleDeps()
			if err != nil {
				return err
			}

			acct, err := deps.accounts.Add(args[0], category, description)
			if err != nil {
				return err
			}

			fmt.Printf("Account %s registered [%s]\n", acct.Email, acct.Category)
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Account category (e.g. 'work', 'personal')")
	cmd.Flags().StringVar(&description, "description", "", "Short description of the account")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("description")

	return cmd
}

func newAccountsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <email>",
		Short: "Remove an account and delete its stored token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := newLifecycleDeps()
			if err != nil {
				return err
			}

			if err := deps.accounts.Remove(context.Background(), args[0]); err != nil {
				return err
			}

			fmt.Printf("Account %s removed\n", args[0])
			return nil
		},
	}
}
