package cli

import (
	"context"
	"errors"
	"kanban/internal/client"
	"kanban/internal/database/dto"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// apiFlags registers the connection flags shared by the client commands.
// Each flag can also come from the environment: KANBAN_API, KANBAN_TOKEN,
// KANBAN_EMAIL and KANBAN_PASSWORD.
func apiFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("api", "http://localhost:8080", "base URL of the kanban API")
	cmd.PersistentFlags().String("token", "", "bearer token; skips login when set")
	cmd.PersistentFlags().String("email", "", "login email")
	cmd.PersistentFlags().String("password", "", "login password")
}

func apiSettings(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("kanban")
	v.AutomaticEnv()
	for _, name := range []string{"api", "token", "email", "password"} {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			flag = cmd.InheritedFlags().Lookup(name)
		}
		if err := v.BindPFlag(name, flag); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// newAPIClient returns a client with a session, logging in if no token was given.
func newAPIClient(ctx context.Context, cmd *cobra.Command) (*client.Client, error) {
	v, err := apiSettings(cmd)
	if err != nil {
		return nil, err
	}
	if token := v.GetString("token"); token != "" {
		return client.New(v.GetString("api"), client.WithSession(dto.Session{Token: token})), nil
	}
	email, password := v.GetString("email"), v.GetString("password")
	if email == "" || password == "" {
		return nil, errors.New("either --token or --email and --password are required")
	}
	c := client.New(v.GetString("api"))
	if _, err := c.Login(ctx, email, password); err != nil {
		return nil, err
	}
	return c, nil
}
