package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/tradeauth/internal/client/client"
	"github.com/dmitrijs2005/tradeauth/internal/client/services"
)

// ask returns v when set, otherwise prompts for it.
func (a *app) ask(cmd *cobra.Command, v, prompt string) (string, error) {
	if v != "" {
		return v, nil
	}
	return GetSimpleText(a.reader, prompt, cmd.OutOrStdout())
}

func (a *app) newRegisterCmd() *cobra.Command {
	var req client.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if req.Username, err = a.ask(cmd, req.Username, "Username"); err != nil {
				return err
			}
			if req.Email, err = a.ask(cmd, req.Email, "Email"); err != nil {
				return err
			}
			if req.Password, err = getPassword(cmd.OutOrStdout(), "Password"); err != nil {
				return err
			}
			if req.ConfirmPassword, err = getPassword(cmd.OutOrStdout(), "Confirm password"); err != nil {
				return err
			}

			return a.withService(cmd, func(svc services.AuthService) error {
				res, err := svc.Register(cmd.Context(), req)
				if err != nil {
					return err
				}
				cmd.Printf("Registered user #%d (password strength: %s)\n", res.UserID, res.PasswordStrength)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&req.Username, "username", "", "account username")
	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&req.FullName, "full-name", "", "full name")
	cmd.Flags().StringVar(&req.Company, "company", "", "company")
	return cmd
}

func (a *app) newLoginCmd() *cobra.Command {
	var login string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with a username or email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if login, err = a.ask(cmd, login, "Username or email"); err != nil {
				return err
			}
			password, err := getPassword(cmd.OutOrStdout(), "Password")
			if err != nil {
				return err
			}

			return a.withService(cmd, func(svc services.AuthService) error {
				s, err := svc.Login(cmd.Context(), login, password)
				if err != nil {
					return err
				}
				cmd.Printf("Logged in as %s (%s), session expires %s\n", s.Username, s.Role, s.ExpiresAt.Format(time.RFC3339))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&login, "login", "", "username or email")
	return cmd
}

func (a *app) newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withService(cmd, func(svc services.AuthService) error {
				err := svc.Logout(cmd.Context())
				if errors.Is(err, client.ErrUnavailable) {
					cmd.Println("Server unavailable; local session removed")
					return nil
				}
				if err != nil {
					return err
				}
				cmd.Println("Logged out")
				return nil
			})
		},
	}
}

func (a *app) newWhoAmICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the user of the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withService(cmd, func(svc services.AuthService) error {
				s, err := svc.WhoAmI(cmd.Context())
				if errors.Is(err, client.ErrUnauthorized) {
					return fmt.Errorf("session expired, please log in again: %w", err)
				}
				if err != nil {
					return err
				}

				cmd.Printf("user:    %s (#%d)\n", s.Username, s.UserID)
				cmd.Printf("email:   %s\n", s.Email)
				if s.FullName != "" {
					cmd.Printf("name:    %s\n", s.FullName)
				}
				cmd.Printf("role:    %s\n", s.Role)
				cmd.Printf("expires: %s\n", s.ExpiresAt.Format(time.RFC3339))
				return nil
			})
		},
	}
}

func (a *app) newResetRequestCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "reset-request",
		Short: "Request a password reset token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if email, err = a.ask(cmd, email, "Email"); err != nil {
				return err
			}

			return a.withService(cmd, func(svc services.AuthService) error {
				token, err := svc.RequestReset(cmd.Context(), email)
				if err != nil {
					return err
				}
				cmd.Println("If the account exists, a reset token has been issued")
				if token != "" {
					cmd.Printf("reset token: %s\n", token)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	return cmd
}

func (a *app) newResetConfirmCmd() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "reset-confirm",
		Short: "Set a new password with a reset token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if token, err = a.ask(cmd, token, "Reset token"); err != nil {
				return err
			}
			pw, err := getPassword(cmd.OutOrStdout(), "New password")
			if err != nil {
				return err
			}
			confirm, err := getPassword(cmd.OutOrStdout(), "Confirm password")
			if err != nil {
				return err
			}

			return a.withService(cmd, func(svc services.AuthService) error {
				if err := svc.ConfirmReset(cmd.Context(), token, pw, confirm); err != nil {
					return err
				}
				cmd.Println("Password changed; please log in again")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "reset token")
	return cmd
}
