package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

func newSettingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Read and write lab settings",
	}
	cmd.AddCommand(newSettingsGetCmd(a), newSettingsPutCmd(a))
	return cmd
}

func newSettingsGetCmd(a *app) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Print a setting value",
		Long: `Print the value stored under a key. --path selects a field inside a JSON
object or array value.

Examples:
  flavorlab settings get lab.name
  flavorlab settings get label.defaults --path sweetener`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw json.RawMessage
			found, err := a.service.Store().GetSetting(cmd.Context(), args[0], &raw)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("setting %q is not set", args[0])
			}

			result := gjson.ParseBytes(raw)
			if path = strings.TrimSpace(path); path != "" {
				result = result.Get(path)
				if !result.Exists() {
					return fmt.Errorf("setting %q has no value at %q", args[0], path)
				}
			}

			value := map[string]any{
				"key":   args[0],
				"value": json.RawMessage(result.Raw),
			}
			return a.render(cmd, value, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, result.String())
				return err
			})
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "Path inside the JSON value")
	return cmd
}

func newSettingsPutCmd(a *app) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "put <key> <value>",
		Short: "Store a setting value",
		Long: `Store a value under a key. A value that parses as JSON is stored as is;
anything else is stored as a JSON string. --path sets one field inside the
current value and leaves the rest alone.

Examples:
  flavorlab settings put lab.name "Pilot Kitchen"
  flavorlab settings put label.defaults '{"sweetener":"Cane Sugar"}'
  flavorlab settings put label.defaults "Citric Acid" --path acid`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			raw := []byte(args[1])
			if !gjson.ValidBytes(raw) {
				quoted, err := json.Marshal(args[1])
				if err != nil {
					return err
				}
				raw = quoted
			}

			st := a.service.Store()
			if path = strings.TrimSpace(path); path != "" {
				var current json.RawMessage
				found, err := st.GetSetting(cmd.Context(), key, &current)
				if err != nil {
					return err
				}
				if !found {
					current = json.RawMessage("{}")
				}
				raw, err = sjson.SetRawBytes(current, path, raw)
				if err != nil {
					return fmt.Errorf("set %q in setting %q: %w", path, key, err)
				}
			}

			value := json.RawMessage(raw)
			if err := st.PutSetting(cmd.Context(), key, value); err != nil {
				return err
			}
			return a.render(cmd, map[string]any{"key": key, "value": value}, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Stored %s\n", key)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "Path inside the JSON value to set")
	return cmd
}
