package rosette

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// render writes a result map to w in the format selected by --output.
func render(w io.Writer, result map[string]any, format string) error {
	switch format {
	case "yaml":
		out, err := yaml.Marshal(result)
		if err != nil {
			return fmt.Errorf("failed to render result: %w", err)
		}
		_, err = w.Write(out)
		return err
	case "json":
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to render result: %w", err)
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	default:
		return fmt.Errorf("unknown output format %q (expected json or yaml)", format)
	}
}
