package cli

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var ratelimitCmd = &cobra.Command{
	Use:   "ratelimit",
	Short: "Show per-endpoint rate limit quotas",
	Long: `Makes a cheap account lookup to obtain fresh quota headers, then
prints the tracked per-endpoint rate limit state.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}

		if _, err := client.GetAccountInfo(cmd.Context()); err != nil {
			return err
		}

		limits := client.RateLimits()
		if len(limits) == 0 {
			fmt.Println("no rate limit headers observed")
			return nil
		}

		endpoints := make([]string, 0, len(limits))
		for endpoint := range limits {
			endpoints = append(endpoints, endpoint)
		}
		sort.Strings(endpoints)

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetStyle(table.StyleRounded)
		t.AppendHeader(table.Row{"Endpoint", "Limit", "Remaining", "Resets"})
		now := time.Now()
		for _, endpoint := range endpoints {
			snap := limits[endpoint]
			resets := "-"
			if snap.ResetAt.After(now) {
				resets = snap.ResetAt.Sub(now).Round(time.Second).String()
			}
			t.AppendRow(table.Row{endpoint, snap.Limit, snap.Remaining, resets})
		}
		t.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ratelimitCmd)
}
