// coursectl drives the same session core as the UI shell from the command
// line. It shares the credential file with the UI processes, so logging in
// or out here is visible to them (and vice versa).
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/abenov/coursehub/config"
	"github.com/abenov/coursehub/internal/api"
	"github.com/abenov/coursehub/internal/courses"
	"github.com/abenov/coursehub/internal/domain"
	"github.com/abenov/coursehub/internal/hydrate"
	"github.com/abenov/coursehub/internal/metrics"
	"github.com/abenov/coursehub/internal/session"
	"github.com/abenov/coursehub/internal/token"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

type app struct {
	cfg     *config.Config
	tokens  *token.Store
	api     *api.Client
	catalog *courses.Client
	sess    *session.Manager
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level := cfg.SlogLevel()
	if os.Getenv("COURSECTL_VERBOSE") == "" {
		level = slog.LevelError
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: level}))

	metrics.Register()

	tokens := token.NewStore(cfg.TokenPath)
	apiClient := api.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout(), tokens, logger)

	return &app{
		cfg:     cfg,
		tokens:  tokens,
		api:     apiClient,
		catalog: courses.NewClient(apiClient),
		sess:    session.NewManager(tokens, apiClient, logger),
	}, nil
}

// hydrate resolves the stored credential into a session, the same way the
// UI does on startup.
func (a *app) hydrate(ctx context.Context) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := hydrate.NewController(a.tokens, a.sess, logger)
	h.Run(ctx)
	<-h.Ready()
}

func (a *app) failure() error {
	if msg := a.sess.State().Err; msg != "" {
		return fmt.Errorf("%s", msg)
	}
	return fmt.Errorf("operation failed")
}

func main() {
	root := &cobra.Command{
		Use:           "coursectl",
		Short:         "Command-line client for the CourseHub marketplace",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		loginCmd(),
		signupCmd(),
		logoutCmd(),
		whoamiCmd(),
		coursesCmd(),
		passwordCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session credential",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.sess.Login(cmd.Context(), email, password); err != nil {
				return a.failure()
			}
			st := a.sess.State()
			fmt.Printf("signed in as %s (%s)\n", st.User.User.Email, st.User.User.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func signupCmd() *cobra.Command {
	var name, email, password, role string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.sess.Signup(cmd.Context(), name, email, password, roleOf(role)); err != nil {
				return a.failure()
			}
			st := a.sess.State()
			fmt.Printf("welcome, %s\n", st.User.User.FullName)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "full name")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().StringVar(&role, "role", "student", "student or instructor")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored credential",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			a.sess.Logout(cmd.Context())
			fmt.Println("signed out")
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			a.hydrate(cmd.Context())

			st := a.sess.State()
			if !st.Authenticated() {
				fmt.Println("not signed in")
				return nil
			}
			u := st.User.User
			fmt.Printf("%s <%s> role=%s verified=%t\n", u.FullName, u.Email, u.Role, u.IsVerified)
			return nil
		},
	}
}

func coursesCmd() *cobra.Command {
	var page int
	var category, query string

	cmd := &cobra.Command{
		Use:   "courses",
		Short: "Browse or search the course catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			opts := courses.ListOptions{Page: page, Category: category}
			var result *domain.Page[domain.Course]
			if query != "" {
				result, err = a.catalog.Search(cmd.Context(), query, opts)
			} else {
				result, err = a.catalog.List(cmd.Context(), opts)
			}
			if err != nil {
				return err
			}
			printCourses(result)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "result page")
	cmd.Flags().StringVar(&category, "category", "", "filter by category")
	cmd.Flags().StringVar(&query, "search", "", "search term")
	return cmd
}

func passwordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Password reset flow",
	}

	var email string
	forgot := &cobra.Command{
		Use:   "forgot",
		Short: "Email a one-time reset code",
		RunE: func(c *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.sess.ForgotPassword(c.Context(), email); err != nil {
				return a.failure()
			}
			fmt.Println("reset code sent, check your inbox")
			return nil
		},
	}
	forgot.Flags().StringVar(&email, "email", "", "account email")
	_ = forgot.MarkFlagRequired("email")

	var resetEmail, otp, newPassword string
	reset := &cobra.Command{
		Use:   "reset",
		Short: "Redeem a reset code for a new password",
		RunE: func(c *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.sess.ResetPassword(c.Context(), resetEmail, otp, newPassword); err != nil {
				return a.failure()
			}
			fmt.Println("password updated, sign in with the new one")
			return nil
		},
	}
	reset.Flags().StringVar(&resetEmail, "email", "", "account email")
	reset.Flags().StringVar(&otp, "otp", "", "one-time code from the email")
	reset.Flags().StringVar(&newPassword, "new-password", "", "new password")
	_ = reset.MarkFlagRequired("email")
	_ = reset.MarkFlagRequired("otp")
	_ = reset.MarkFlagRequired("new-password")

	cmd.AddCommand(forgot, reset)
	return cmd
}

func printCourses(p *domain.Page[domain.Course]) {
	if len(p.Items) == 0 {
		fmt.Println("no courses found")
		return
	}
	for _, c := range p.Items {
		fmt.Printf("%-40s %-16s $%.2f\n", c.Title, c.Category, c.Price)
	}
	fmt.Printf("page %d of %d (%d total)\n", p.Page, p.TotalPages, p.Total)
}

func roleOf(s string) domain.Role {
	if s == "instructor" {
		return domain.RoleInstructor
	}
	return domain.RoleStudent
}
