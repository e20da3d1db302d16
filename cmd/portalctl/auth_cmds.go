package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func (a *app) loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against the portal",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				fmt.Print("email: ")
				reader := bufio.NewReader(os.Stdin)
				line, err := reader.ReadString('\n')
				if err != nil {
					return err
				}
				email = strings.TrimSpace(line)
			}
			if password == "" {
				fmt.Print("password: ")
				reader := bufio.NewReader(os.Stdin)
				line, err := reader.ReadString('\n')
				if err != nil {
					return err
				}
				password = strings.TrimSpace(line)
			}

			state, err := a.manager.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Printf("logged in as %s (%s)\n", state.User.Name, state.User.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.manager.Logout()
			fmt.Println("logged out")
			return nil
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			state, ok := a.manager.Restore()
			if !ok {
				fmt.Println("not logged in")
				return nil
			}

			if remote {
				user, err := a.users.Me(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Printf("%s <%s> role=%s\n", user.Name, user.Email, user.Role)
				return nil
			}

			fmt.Printf("%s <%s> role=%s\n", state.User.Name, state.User.Email, state.User.Role)
			return nil
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "verify against the backend instead of the stored session")
	return cmd
}
