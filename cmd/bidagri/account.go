package main

import (
	"time"

	"github.com/jrsteele09/go-bidagri-client/auth"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

func (a *app) loginCommand() *command {
	var userName, password string
	return &command{
		name:    "login",
		summary: "Sign in and store the session",
		usage:   "bidagri login --user EMAIL --password PASSWORD",
		flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("login", pflag.ContinueOnError)
			flagSet.StringVarP(&userName, "user", "u", "", "email or user name")
			flagSet.StringVarP(&password, "password", "p", "", "password")
			return flagSet
		},
		run: func(args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			user, err := a.auth.Login(a.ctx, userName, password)
			if err != nil {
				return err
			}
			a.printf("Signed in as %s (%s)\n", user.FullName(), user.Roles)
			a.printf("Dashboard: %s\n", a.auth.DashboardRoute())
			return nil
		},
	}
}

func (a *app) logoutCommand() *command {
	return &command{
		name:    "logout",
		summary: "Discard the stored session",
		run: func(args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			if err := a.auth.Logout(); err != nil {
				return err
			}
			a.printf("Signed out\n")
			return nil
		},
	}
}

func (a *app) whoamiCommand() *command {
	return &command{
		name:    "whoami",
		summary: "Show the signed-in user",
		run: func(args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			user, err := a.requireUser()
			if err != nil {
				return err
			}
			a.printf("User:      %s\n", user.ID)
			a.printf("Email:     %s\n", user.Email)
			a.printf("Roles:     %s\n", user.Roles)
			if claims, ok := a.sessions.CurrentClaims(); ok {
				if exp, ok, err := claims.ExpiresAt(); err == nil && ok {
					a.printf("Expires:   %s\n", exp.Local().Format(time.RFC1123))
				}
			}
			a.printf("Dashboard: %s\n", a.auth.DashboardRoute())
			return nil
		},
	}
}

func (a *app) passwordCommand() *command {
	return &command{
		name:    "password",
		summary: "Change or reset a password",
		subcommands: []*command{
			a.passwordChangeCommand(),
			a.passwordForgotCommand(),
			a.passwordResetCommand(),
		},
	}
}

func (a *app) passwordChangeCommand() *command {
	var oldPassword, newPassword string
	return &command{
		name:    "change",
		summary: "Change the signed-in user's password, then sign out",
		flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("change", pflag.ContinueOnError)
			flagSet.StringVar(&oldPassword, "old", "", "current password")
			flagSet.StringVar(&newPassword, "new", "", "new password")
			return flagSet
		},
		run: func(args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			if err := a.auth.ChangePassword(a.ctx, oldPassword, newPassword); err != nil {
				return err
			}
			a.printf("Password changed. Sign in again with the new password.\n")
			return nil
		},
	}
}

func (a *app) passwordForgotCommand() *command {
	var email string
	return &command{
		name:    "forgot",
		summary: "Mail a password reset link",
		flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("forgot", pflag.ContinueOnError)
			flagSet.StringVar(&email, "email", "", "account email")
			return flagSet
		},
		run: func(args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			if err := a.auth.RequestPasswordReset(a.ctx, email); err != nil {
				return err
			}
			a.printf("Reset link sent to %s\n", email)
			return nil
		},
	}
}

func (a *app) passwordResetCommand() *command {
	var token, email, password string
	return &command{
		name:    "reset",
		summary: "Set a new password with a reset token",
		flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("reset", pflag.ContinueOnError)
			flagSet.StringVar(&token, "token", "", "token from the reset link")
			flagSet.StringVar(&email, "email", "", "account email")
			flagSet.StringVar(&password, "password", "", "new password")
			return flagSet
		},
		run: func(args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			if err := a.auth.ResetPassword(a.ctx, token, email, password); err != nil {
				return err
			}
			a.printf("Password reset. Sign in with the new password.\n")
			return nil
		},
	}
}

func (a *app) registerCommand() *command {
	var reg auth.FarmerRegistration
	return &command{
		name:    "register",
		summary: "Create a farmer account",
		flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("register", pflag.ContinueOnError)
			flagSet.StringVar(&reg.FirstName, "first-name", "", "first name")
			flagSet.StringVar(&reg.LastName, "last-name", "", "last name")
			flagSet.StringVar(&reg.Email, "email", "", "email")
			flagSet.StringVar(&reg.Password, "password", "", "password")
			flagSet.StringVar(&reg.ConfirmPassword, "confirm", "", "password again")
			return flagSet
		},
		run: func(args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			if err := a.auth.RegisterFarmer(a.ctx, reg); err != nil {
				return err
			}
			a.printf("Account created. Check %s for the verification link.\n", reg.Email)
			return nil
		},
	}
}

func (a *app) verifyCommand() *command {
	return &command{
		name:    "verify",
		summary: "Confirm an account with the emailed token",
		usage:   "bidagri verify TOKEN",
		run: func(args []string) error {
			if len(args) != 1 {
				return errors.New("verify: expected exactly one TOKEN argument")
			}
			if err := a.open(); err != nil {
				return err
			}
			msg, err := a.auth.VerifyRegistration(a.ctx, args[0])
			if err != nil {
				return err
			}
			loginRoute := a.auth.VerificationLoginRoute()
			if err := a.auth.ClearRegistration(); err != nil {
				return err
			}
			if msg != "" {
				a.printf("%s\n", msg)
			}
			a.printf("Verified. Continue at %s\n", loginRoute)
			return nil
		},
	}
}

func (a *app) resendCommand() *command {
	return &command{
		name:    "resend",
		summary: "Mail the verification link again",
		run: func(args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			if err := a.auth.ResendVerification(a.ctx); err != nil {
				return err
			}
			reg, _ := a.auth.PendingRegistration()
			a.printf("Verification link sent to %s\n", reg.PendingEmail)
			return nil
		},
	}
}
