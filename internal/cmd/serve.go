package cmd

import (
	"github.com/spf13/cobra"

	"ely.by/tailor/internal/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts HTTP API for skins acquisition and textures building",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		container, err := shouldGetContainer()
		if err != nil {
			return err
		}

		return container.Invoke(http.StartServer)
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)
}
