package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/paperdesk/paperdesk/internal/model"
	"github.com/paperdesk/paperdesk/internal/workflow"
)

func signupCommand() *cobra.Command {
	var (
		email    string
		password string
		role     string
	)

	cmd := &cobra.Command{
		Use:   "signup <username>",
		Short: "Register a new account",
		Args:  cobra.ExactArgs(1),
		RunE: runWithApp(func(a *app, cmd *cobra.Command, args []string) error {
			identity, err := a.auth().Signup(cmd.Context(), workflow.SignupForm{
				Username: args[0],
				Email:    email,
				Password: password,
				Role:     model.Role(strings.ToUpper(role)),
			})
			if err != nil {
				return err
			}

			fmt.Printf("Account %s registered as %s. Log in with: %s login %s\n",
				identity.Username, identity.Role, programName, identity.Username)
			return nil
		}),
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "email address")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (at least 8 characters)")
	cmd.Flags().StringVarP(&role, "role", "r", "STUDENT", "account role: STUDENT, AUTHOR or COMMITTEE")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func loginCommand() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Log in and store the session",
		Args:  cobra.ExactArgs(1),
		RunE: runWithApp(func(a *app, cmd *cobra.Command, args []string) error {
			route, err := a.auth().Login(cmd.Context(), args[0], password)
			if err != nil {
				return err
			}

			identity := a.session.CurrentUser()
			fmt.Printf("Logged in as %s (%s). Landing: %s\n", identity.Username, identity.Role, route)
			return nil
		}),
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "password")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and clear the stored session",
		Args:  cobra.NoArgs,
		RunE: runWithApp(func(a *app, cmd *cobra.Command, _ []string) error {
			if err := a.auth().Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		}),
	}
}

func whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in account",
		Args:  cobra.NoArgs,
		RunE: runWithApp(func(a *app, _ *cobra.Command, _ []string) error {
			identity := a.session.CurrentUser()
			if identity.IsZero() {
				fmt.Println("Not logged in.")
				return nil
			}
			fmt.Printf("%s <%s> (%s)\n", identity.Username, identity.Email, identity.Role)
			return nil
		}),
	}
}
