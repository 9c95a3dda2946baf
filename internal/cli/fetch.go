package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/xerrors"

	"github.com/jengzang/forgeheat/internal/config"
	"github.com/jengzang/forgeheat/internal/models"
	"github.com/jengzang/forgeheat/internal/render"
)

func newFetchCommand(root *rootOptions) *cobra.Command {
	var (
		uid     string
		forges  []string
		asJSON  bool
		history bool
	)
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch contributions once and print the heatmap",
		Long: `Fetch contributions once and print the heatmap.

Each --forge is name,username,token[,url]. The url is required for GitLab
and ForgeJo.

Examples:
  forgeheat fetch --forge github,octocat,$GH_TOKEN
  forgeheat fetch --uid me --forge github,octocat,$GH_TOKEN \
    --forge gitlab,tanuki,$GL_TOKEN,https://gitlab.com --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			query := models.ContributionQuery{UID: uid}
			for _, spec := range forges {
				req, err := parseForge(spec)
				if err != nil {
					return err
				}
				query.Forges = append(query.Forges, req)
			}
			if len(query.Forges) == 0 {
				return xerrors.New("at least one --forge is required")
			}

			cfg, err := config.Load(root.envFiles...)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, cfg, newLogger(cmd.ErrOrStderr(), cfg))
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			if history {
				res := a.contributions.GetHistory(ctx, query)
				if asJSON {
					return writeJSON(cmd, res)
				}
				for _, d := range res.History {
					_, _ = fmt.Fprintf(out, "%s\t%d\n", d.Date, d.Count)
				}
				return nil
			}

			res := a.contributions.GetHeatmap(ctx, query)
			if asJSON {
				return writeJSON(cmd, res)
			}
			_, _ = fmt.Fprintln(out, render.Heatmap(res.Heatmap))
			_, _ = fmt.Fprintln(out)
			_, _ = fmt.Fprintln(out, render.Summary(res.Summary))
			if len(res.Sources) > 0 {
				_, _ = fmt.Fprintln(out)
				_, _ = fmt.Fprintln(out, render.Sources(res.Sources))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&uid, "uid", "", "Cache key for the merged history; empty skips the cache")
	cmd.Flags().StringArrayVar(&forges, "forge", nil, "Forge account as name,username,token[,url] (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a terminal heatmap")
	cmd.Flags().BoolVar(&history, "history", false, "Print the sorted daily history instead of the heatmap")
	return cmd
}

// parseForge parses name,username,token[,url]
func parseForge(spec string) (models.ForgeRequest, error) {
	parts := strings.Split(spec, ",")
	if len(parts) != 3 && len(parts) != 4 {
		return models.ForgeRequest{}, xerrors.Errorf("invalid --forge %q: want name,username,token[,url]", redact(parts))
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if parts[0] == "" {
		return models.ForgeRequest{}, xerrors.New("invalid --forge: empty provider name")
	}

	req := models.ForgeRequest{Name: parts[0], Username: parts[1], Token: parts[2]}
	if len(parts) == 4 {
		req.URL = parts[3]
	}
	return req, nil
}

// redact hides the token position of a malformed forge spec
func redact(parts []string) string {
	shown := make([]string, len(parts))
	copy(shown, parts)
	if len(shown) > 2 {
		shown[2] = "***"
	}
	return strings.Join(shown, ",")
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
