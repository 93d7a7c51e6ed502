package main

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/xxxsen/ghostkube/internal/model"
	"github.com/xxxsen/ghostkube/internal/tui"
)

func newSearchCmd(configPath *string) *cobra.Command {
	var topK int
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "query the index; without a query opens the interactive search",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			initLogger(cfg)
			if topK <= 0 {
				topK = cfg.Retrieval.DefaultTopK
			}
			ctx := context.Background()
			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				n, err := a.pipe.Count(ctx)
				if err != nil {
					return err
				}
				summary := fmt.Sprintf("%d chunks indexed · embedder %s · reranker %s", n, a.pipe.EmbedderName(), a.pipe.RerankerName())
				_, err = tea.NewProgram(tui.New(ctx, a.search, topK, summary), tea.WithAltScreen()).Run()
				return err
			}

			resp := a.search.Search(ctx, model.Query{Text: query, TopK: topK})
			out := cmd.OutOrStdout()
			if len(resp.Results) == 0 {
				fmt.Fprintln(out, "no results")
				return nil
			}
			for i, r := range resp.Results {
				fmt.Fprintln(out, tui.FormatResult(i, len(resp.Results), r))
				fmt.Fprintln(out)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&topK, "top", "k", 0, "number of results, defaults to retrieval.default_top_k")
	return cmd
}
