package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"ely.by/tailor/internal/textures"
)

var applyType string
var applyUrl string
var applyMetadata string
var applyProperty string

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Puts the texture into the textures property and prints the resulting unsigned property",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		textureType, err := textures.ParseTextureType(applyType)
		if err != nil {
			return err
		}

		var metadata map[string]any
		if applyMetadata != "" {
			metadata, err = textures.ParseMetadata(applyMetadata)
			if err != nil {
				return fmt.Errorf("invalid --metadata: %w", err)
			}
		}

		existing, err := readProperty(applyProperty, cmd.InOrStdin())
		if err != nil {
			return err
		}

		property, err := textures.ApplyTexture(existing, textureType, applyUrl, metadata)
		if err != nil {
			return err
		}

		return printProperty(cmd.OutOrStdout(), property)
	},
}

func init() {
	applyCmd.Flags().StringVar(&applyType, "type", "", "texture type: SKIN, CAPE or ELYTRA")
	applyCmd.Flags().StringVar(&applyUrl, "url", "", "texture url")
	applyCmd.Flags().StringVar(&applyMetadata, "metadata", "", `texture metadata as a JSON object, e.g. {"model":"slim"}`)
	applyCmd.Flags().StringVar(&applyProperty, "property", "", `path to the JSON textures property to update ("-" for stdin)`)
	_ = applyCmd.MarkFlagRequired("type")
	_ = applyCmd.MarkFlagRequired("url")

	RootCmd.AddCommand(applyCmd)
}
