package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"ely.by/tailor/internal/skins"
	"ely.by/tailor/internal/textures"
)

var fetchSlim bool
var fetchApplyTo string

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Obtains the signed textures property for the skin from a file, an URL or a player",
}

var fetchFileCmd = &cobra.Command{
	Use:   "file <path>",
	Short: "Uploads the local PNG skin to MineSkin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return fetch(cmd, func(ctx context.Context, acquirer *skins.Acquirer) (*textures.Property, error) {
			return acquirer.AcquireFromFile(ctx, args[0], fetchSlim)
		})
	},
}

var fetchUrlCmd = &cobra.Command{
	Use:   "url <url>",
	Short: "Asks MineSkin to generate textures from the remote skin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return fetch(cmd, func(ctx context.Context, acquirer *skins.Acquirer) (*textures.Property, error) {
			return acquirer.AcquireFromUrl(ctx, args[0], fetchSlim)
		})
	},
}

var fetchPlayerCmd = &cobra.Command{
	Use:   "player <username>",
	Short: "Copies textures of the Mojang or ely.by player",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return fetch(cmd, func(ctx context.Context, acquirer *skins.Acquirer) (*textures.Property, error) {
			return acquirer.AcquireFromPlayerName(ctx, args[0])
		})
	},
}

func fetch(cmd *cobra.Command, acquire func(ctx context.Context, acquirer *skins.Acquirer) (*textures.Property, error)) error {
	container, err := shouldGetContainer()
	if err != nil {
		return err
	}

	return container.Invoke(func(ctx context.Context, acquirer *skins.Acquirer) error {
		property, err := acquire(ctx, acquirer)
		if err != nil {
			return err
		}

		if fetchApplyTo != "" {
			property, err = applyAcquiredSkin(cmd, property)
			if err != nil {
				return err
			}
		}

		return printProperty(cmd.OutOrStdout(), property)
	})
}

// The skin from the acquired property (with the model metadata, if any) replaces
// the skin of the existing one. The result isn't signed
func applyAcquiredSkin(cmd *cobra.Command, acquired *textures.Property) (*textures.Property, error) {
	existing, err := readProperty(fetchApplyTo, cmd.InOrStdin())
	if err != nil {
		return nil, err
	}

	skinUrl := textures.TextureUrl(acquired, textures.Skin)
	if skinUrl == "" {
		return nil, errors.New("the acquired textures property has no skin")
	}

	return textures.ApplyTexture(existing, textures.Skin, skinUrl, textures.TextureMetadata(acquired, textures.Skin))
}

func init() {
	fetchCmd.PersistentFlags().StringVar(&fetchApplyTo, "apply-to", "", `path to the JSON textures property which receives the skin ("-" for stdin)`)
	fetchFileCmd.Flags().BoolVar(&fetchSlim, "slim", false, "use the slim arms model")
	fetchUrlCmd.Flags().BoolVar(&fetchSlim, "slim", false, "use the slim arms model")

	fetchCmd.AddCommand(fetchFileCmd, fetchUrlCmd, fetchPlayerCmd)
	RootCmd.AddCommand(fetchCmd)
}
