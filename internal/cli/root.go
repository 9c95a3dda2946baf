// Package cli wires configuration, stores, providers and services into the
// forgeheat commands.
package cli

import (
	"github.com/spf13/cobra"
)

type rootOptions struct {
	envFiles []string
}

// NewRootCommand builds the forgeheat command tree
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "forgeheat",
		Short: "Contribution heatmaps across GitHub, GitLab and ForgeJo",
		Long: `forgeheat merges daily contribution counts from several git forges into
one history, caches it per user and renders it as a calendar heatmap.

Configuration is read from the environment and from .env files.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", nil, "Env files to load (default .env)")

	cmd.AddCommand(newServeCommand(opts), newFetchCommand(opts))
	return cmd
}
