package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/timefiles/timefiles/internal/types"
)

var rangeFlag string

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Show the task tree with durations over a window",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := engine.GetOverview(cmd.Context(), types.Range(rangeFlag))
		if err != nil {
			return err
		}
		if jsonOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(snap)
		}
		renderOverview(snap)
		return nil
	},
}

func init() {
	overviewCmd.Flags().StringVar(&rangeFlag, "range", string(types.RangeToday), "all, day, week, or today")
}

func renderOverview(snap *types.OverviewSnapshot) {
	fmt.Println(boldStyle.Render(fmt.Sprintf("TimeFiles — %s", snap.Range)))
	if snap.ActiveTaskID != nil {
		fmt.Println(passStyle.Render("active: " + *snap.ActiveTaskID))
	} else {
		fmt.Println(mutedStyle.Render("active: none"))
	}

	children := make(map[string][]types.TaskView)
	var roots []types.TaskView
	for _, t := range snap.Tasks {
		if t.ParentID == nil {
			roots = append(roots, t)
		} else {
			children[*t.ParentID] = append(children[*t.ParentID], t)
		}
	}
	for _, root := range roots {
		printTaskTree(root, children, 0)
	}

	if snap.RestSuggestion != nil && snap.RestSuggestion.SuggestedMins > 0 {
		s := snap.RestSuggestion
		fmt.Println(warnStyle.Render(fmt.Sprintf(
			"rest suggestion %s: take %d min (%s)", s.ID, s.SuggestedMins, strings.Join(s.Reasons, ","),
		)))
	}
}

func printTaskTree(t types.TaskView, children map[string][]types.TaskView, depth int) {
	indent := strings.Repeat("  ", depth)
	line := fmt.Sprintf("%s%s  [%s]  excl=%s incl=%s", indent, t.Title, t.Status, fmtDuration(t.ExclusiveSeconds), fmtDuration(t.InclusiveSeconds))
	if t.Status == types.TaskRunning {
		fmt.Println(passStyle.Render(line))
	} else {
		fmt.Println(line)
	}
	for _, child := range children[t.ID] {
		printTaskTree(child, children, depth+1)
	}
}

func fmtDuration(seconds int64) string {
	return (time.Duration(seconds) * time.Second).String()
}
