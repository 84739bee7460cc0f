package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"ely.by/tailor/internal/textures"
)

// readProperty reads the JSON encoded textures property from the file.
// The "-" path means stdin. The result is nil when no path is passed
func readProperty(path string, stdin io.Reader) (*textures.Property, error) {
	if path == "" {
		return nil, nil
	}

	var content []byte
	var err error
	if path == "-" {
		content, err = io.ReadAll(stdin)
	} else {
		content, err = os.ReadFile(path)
	}

	if err != nil {
		return nil, fmt.Errorf("unable to read the textures property: %w", err)
	}

	var property *textures.Property
	err = json.Unmarshal(content, &property)
	if err != nil {
		return nil, fmt.Errorf("the textures property must be a JSON object: %w", err)
	}

	return property, nil
}

func printProperty(out io.Writer, property *textures.Property) error {
	encoder := json.NewEncoder(out)
	encoder.SetEscapeHTML(false)

	return encoder.Encode(property)
}
