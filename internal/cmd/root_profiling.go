//go:build profiling

package cmd

import (
	"log/slog"
	"os"
	"runtime/pprof"

	"github.com/spf13/cobra"
)

func init() {
	var profilePath string
	RootCmd.PersistentFlags().StringVar(&profilePath, "cpuprofile", "", "enables pprof profiling and sets its output path")

	var profileFile *os.File
	originalPersistentPreRunE := RootCmd.PersistentPreRunE
	RootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if originalPersistentPreRunE != nil {
			if err := originalPersistentPreRunE(cmd, args); err != nil {
				return err
			}
		}

		if profilePath == "" {
			return nil
		}

		f, err := os.Create(profilePath)
		if err != nil {
			return err
		}

		slog.Info("Enabling profiling", slog.String("path", profilePath))
		err = pprof.StartCPUProfile(f)
		if err != nil {
			_ = f.Close()
			return err
		}

		profileFile = f

		return nil
	}

	originalPersistentPostRunE := RootCmd.PersistentPostRunE
	RootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if profileFile != nil {
			slog.Info("Shutting down profiling")
			pprof.StopCPUProfile()
			_ = profileFile.Close()
		}

		if originalPersistentPostRunE != nil {
			return originalPersistentPostRunE(cmd, args)
		}

		return nil
	}
}
