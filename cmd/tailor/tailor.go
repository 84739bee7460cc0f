package main

import (
	"fmt"
	"os"

	. "ely.by/tailor/internal/cmd"
)

func main() {
	err := RootCmd.Execute()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
