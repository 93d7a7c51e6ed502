package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xxxsen/ghostkube/internal/service"
)

func newIngestCmd(configPath *string) *cobra.Command {
	var (
		sourceType string
		meta       []string
	)
	cmd := &cobra.Command{
		Use:   "ingest <url>",
		Short: "fetch a url and index its documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			metadata, err := parseMeta(meta)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			initLogger(cfg)
			ctx := context.Background()
			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			res := a.ingest.IngestURL(ctx, service.IngestRequest{URL: args[0], SourceType: sourceType, Metadata: metadata})
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(res); err != nil {
				return err
			}
			if !res.OK() {
				return fmt.Errorf("ingest failed: %s", res.Message)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&sourceType, "source-type", "", "source_type recorded on every chunk")
	cmd.Flags().StringArrayVar(&meta, "meta", nil, "extra metadata as key=value, repeatable")
	return cmd
}

// parseMeta turns key=value pairs into metadata. Numbers and booleans keep their type.
func parseMeta(pairs []string) (map[string]interface{}, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]interface{}, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --meta %q, want key=value", pair)
		}
		switch {
		case value == "true" || value == "false":
			out[key] = value == "true"
		default:
			if n, err := strconv.ParseFloat(value, 64); err == nil {
				out[key] = n
			} else {
				out[key] = value
			}
		}
	}
	return out, nil
}
