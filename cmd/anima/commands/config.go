package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read and update the companion config document",
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print the config document or a single key",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var doc map[string]any
		if err := apiGet("/api/data?type=config", &doc); err != nil {
			return err
		}
		if len(args) == 1 {
			v, ok := doc[args[0]]
			if !ok {
				return fmt.Errorf("key %q not found", args[0])
			}
			return printJSON(v)
		}
		return printJSON(doc)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Update an existing config key",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Values that parse as JSON keep their type; everything else is a string.
		var value any
		if err := json.Unmarshal([]byte(args[1]), &value); err != nil {
			value = args[1]
		}
		update := map[string]any{"key": args[0], "value": value}
		if err := apiPost("/api/data?type=config", update, nil); err != nil {
			return err
		}
		fmt.Printf("%s updated\n", args[0])
		return nil
	},
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}
