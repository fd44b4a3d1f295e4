package commands

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/itchyny/gojq"
	"github.com/spf13/cobra"

	"github.com/animahq/anima/pkg/gateway"
	"github.com/animahq/anima/pkg/session"
)

var flagLogFilter string

var (
	logTimeStyle  = lipgloss.NewStyle().Faint(true)
	logTypeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	logErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Replay the action log from a running server",
	Long: `Fetches the full action log via an RPC Webhook dispatch and prints it.

With --filter, the log array is piped through a jq expression and the raw
results are printed as JSON:

  anima log --filter '.[] | select(.outputType == "Error")'`,
	Args: cobra.NoArgs,
	RunE: runLog,
}

func init() {
	logCmd.Flags().StringVar(&flagLogFilter, "filter", "", "jq expression applied to the log array")
	rootCmd.AddCommand(logCmd)
}

func runLog(cmd *cobra.Command, args []string) error {
	var out struct {
		Response []session.Entry `json:"response"`
		Error    string          `json:"error"`
	}
	req := gateway.Request{
		InputType: gateway.InputWebhook,
		Payload:   json.RawMessage(`{}`),
	}
	if err := apiPost("/api/dispatch", req, &out); err != nil {
		return err
	}
	if out.Error != "" {
		return fmt.Errorf("server: %s", out.Error)
	}

	if flagLogFilter != "" {
		return filterLog(out.Response, flagLogFilter)
	}

	for _, entry := range out.Response {
		line := fmt.Sprintf("%s %s %s",
			logTimeStyle.Render(entry.Timestamp.Format("2006-01-02 15:04:05")),
			logTypeStyle.Render(entry.InputType),
			entry.OutputType)
		if entry.Error != "" {
			line += " " + logErrorStyle.Render(entry.Error)
		} else if data, err := json.Marshal(entry.Response); err == nil {
			line += " " + string(data)
		}
		fmt.Println(line)
	}
	return nil
}

// filterLog pipes the log array through a jq expression.
func filterLog(entries []session.Entry, filter string) error {
	query, err := gojq.Parse(filter)
	if err != nil {
		return fmt.Errorf("parse filter: %w", err)
	}

	// gojq operates on generic JSON values.
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}

	iter := query.Run(value)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			return fmt.Errorf("filter: %w", err)
		}
		if err := printJSON(v); err != nil {
			return err
		}
	}
	return nil
}
