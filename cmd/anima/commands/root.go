// Package commands implements the anima CLI command tree.
package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose   bool
	serverURL string
)

var rootCmd = &cobra.Command{
	Use:   "anima",
	Short: "AI companion gateway",
	Long: `anima - request gateway and event broadcaster for an AI companion.

The server dispatches input events (chat, voice, images, social messages,
memory queries, reasoning bundles) to their processing collaborators and
multicasts live effects to connected viewers over SSE and WebSocket.

Credentials are read from environment variables:
  OPENAI_API_KEY        chat and Whisper transcription
  GEMINI_API_KEY        Gemini chat and vision
  TWITTER_BEARER_TOKEN  social posting
  ANIMA_API_ENABLED     feature gate; the API serves 503 unless set

Examples:
  ANIMA_API_ENABLED=true anima serve --config anima.yaml
  anima config get name
  anima log --filter '.[] | select(.outputType == "Error")'`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:3000", "base URL of a running anima server")
}

// IsVerbose returns whether verbose mode is enabled.
func IsVerbose() bool {
	return verbose
}
