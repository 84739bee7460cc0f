package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ely.by/tailor/internal/security"
)

var tokenScopes []string
var tokenTtl time.Duration

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Creates a new token, which allows to interact with Tailor API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		scopes := make([]security.Scope, 0, len(tokenScopes))
		for _, value := range tokenScopes {
			scope, err := security.ParseScope(value)
			if err != nil {
				return err
			}

			scopes = append(scopes, scope)
		}

		container, err := shouldGetContainer()
		if err != nil {
			return err
		}

		var auth *security.Jwt
		err = container.Resolve(&auth)
		if err != nil {
			return err
		}

		token, err := auth.NewToken(tokenTtl, scopes...)
		if err != nil {
			return fmt.Errorf("unable to create a new token: %w", err)
		}

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), token)

		return nil
	},
}

func init() {
	tokenCmd.Flags().StringSliceVar(
		&tokenScopes,
		"scope",
		[]string{string(security.SkinsScope), string(security.TexturesScope)},
		"scopes granted to the token",
	)
	tokenCmd.Flags().DurationVar(&tokenTtl, "ttl", 0, "token lifetime, the token never expires when it's 0")
	RootCmd.AddCommand(tokenCmd)
}
