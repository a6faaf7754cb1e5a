// ABOUTME: Root CLI command with global flags and subcommand wiring
// ABOUTME: Defines verbose/quiet/format flags shared by all commands
package commands

import (
	"github.com/spf13/cobra"
)

// Global flags shared across commands
var (
	verbose      bool
	quiet        bool
	outputFormat string
)

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docchat",
		Short: "Chat with your documents",
		Long: `
███████╗  ██████╗  ██████╗ ██████╗██╗  ██╗ █████╗ ████████╗
██╔═══██╗██╔═══██╗██╔════╝██╔════╝██║  ██║██╔══██╗╚══██╔══╝
██║   ██║██║   ██║██║     ██║     ███████║███████║   ██║
██║   ██║██║   ██║██║     ██║     ██╔══██║██╔══██║   ██║
███████╔╝╚██████╔╝╚██████╗╚██████╗██║  ██║██║  ██║   ██║
╚══════╝  ╚═════╝  ╚═════╝ ╚═════╝╚═╝  ╚═╝╚═╝  ╚═╝   ╚═╝

Retrieval-augmented question answering over your own documents.

Index a folder of .txt, .md, .pdf, and .docx files, then ask
questions grounded in their contents. Answers cite sources as
[filename#chunk]. Works against any OpenAI-compatible backend;
defaults target a local Ollama instance.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format (auto, json, table)")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(NewIngestCmd())
	cmd.AddCommand(NewAskCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMCPCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
