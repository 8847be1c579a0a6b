// Package display formats tracked listings, copy summaries and journal
// tables for the terminal. Formatting functions return plain rows; color
// is applied per row when the caller passes colorOutput=true, matching the
// red/blue conflict cues of the tracked listing.
package display

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/fernwright/trackcopy/internal/api"
	"github.com/fernwright/trackcopy/internal/history"
	"github.com/fernwright/trackcopy/internal/rule"
)

// FormatTrackedTable formats tracked files as table rows. Rows whose
// planned name collides inside the batch are red, rows whose name already
// exists in the destination are blue.
func FormatTrackedTable(files []api.TrackedFileInfo, colorOutput bool) []string {
	if len(files) == 0 {
		return []string{"No tracked files"}
	}

	widths := map[string]int{
		"index":    3, // "#"
		"original": 13,
		"new":      8,
		"state":    5,
	}
	for _, f := range files {
		if len(f.OriginalName) > widths["original"] {
			widths["original"] = len(f.OriginalName)
		}
		if len(f.NewName) > widths["new"] {
			widths["new"] = len(f.NewName)
		}
		if len(f.State) > widths["state"] {
			widths["state"] = len(f.State)
		}
	}

	header := fmt.Sprintf("%-*s  %-*s  %-*s  %-*s",
		widths["index"], "#",
		widths["original"], "Original Name",
		widths["new"], "New Name",
		widths["state"], "State")

	rows := []string{header, strings.Repeat("-", len(header))}

	for i, f := range files {
		row := fmt.Sprintf("%-*d  %-*s  %-*s  %-*s",
			widths["index"], i+1,
			widths["original"], f.OriginalName,
			widths["new"], f.NewName,
			widths["state"], f.State)

		if colorOutput {
			switch f.State {
			case "duplicate":
				row = color.RedString(row)
			case "exists":
				row = color.BlueString(row)
			}
		}

		rows = append(rows, row)
	}

	return rows
}

// FormatBatchTable formats journal passes as table rows, newest first as
// delivered by the store. Failed passes are red.
func FormatBatchTable(batches []*history.Batch, colorOutput bool) []string {
	if len(batches) == 0 {
		return []string{"No recorded passes"}
	}

	widths := map[string]int{
		"id":      8,
		"started": 19, // "2006-01-02 15:04:05"
		"copied":  6,
		"ignored": 7,
		"gone":    8,
		"policy":  9,
	}

	header := fmt.Sprintf("%-*s  %-*s  %-*s  %-*s  %-*s  %-*s  %s",
		widths["id"], "ID",
		widths["started"], "Started",
		widths["copied"], "Copied",
		widths["ignored"], "Ignored",
		widths["gone"], "Vanished",
		widths["policy"], "Policy",
		"Destination")

	rows := []string{header, strings.Repeat("-", len(header))}

	for _, b := range batches {
		idStr := b.ID
		if len(idStr) > widths["id"] {
			idStr = idStr[:widths["id"]]
		}

		row := fmt.Sprintf("%-*s  %-*s  %-*d  %-*d  %-*d  %-*s  %s",
			widths["id"], idStr,
			widths["started"], b.StartedAt.Format("2006-01-02 15:04:05"),
			widths["copied"], b.Copied,
			widths["ignored"], b.Ignored,
			widths["gone"], b.Vanished,
			widths["policy"], b.Policy,
			b.DestPath)

		if colorOutput && b.Error != "" {
			row = color.RedString(row)
		}

		rows = append(rows, row)
	}

	return rows
}

// FormatBatchFiles formats the per-file outcomes of one pass. Failed files
// are red, vanished ones yellow.
func FormatBatchFiles(files []history.File, colorOutput bool) []string {
	if len(files) == 0 {
		return []string{"No files recorded for this pass"}
	}

	widths := map[string]int{
		"index":   3,
		"source":  40,
		"final":   10,
		"outcome": 8,
	}
	for _, f := range files {
		if len(f.FinalName) > widths["final"] {
			widths["final"] = len(f.FinalName)
		}
	}

	header := fmt.Sprintf("%-*s  %-*s  %-*s  %-*s",
		widths["index"], "#",
		widths["source"], "Source",
		widths["final"], "Final Name",
		widths["outcome"], "Outcome")

	rows := []string{header, strings.Repeat("-", len(header))}

	for i, f := range files {
		srcStr := f.SourcePath
		if len(srcStr) > widths["source"] {
			srcStr = "..." + srcStr[len(srcStr)-widths["source"]+3:]
		}

		row := fmt.Sprintf("%-*d  %-*s  %-*s  %-*s",
			widths["index"], i+1,
			widths["source"], srcStr,
			widths["final"], f.FinalName,
			widths["outcome"], f.Outcome)

		if colorOutput {
			switch f.Outcome {
			case "failed":
				row = color.RedString(row)
			case "vanished":
				row = color.YellowString(row)
			}
		}

		rows = append(rows, row)
	}

	return rows
}

// FormatRules formats naming rules as table rows in pattern evaluation
// order.
func FormatRules(rules []rule.Snapshot) []string {
	if len(rules) == 0 {
		return []string{"No rules defined"}
	}

	widths := map[string]int{
		"index": 3,
		"tag":   3,
		"kind":  7,
	}
	for _, r := range rules {
		if len(r.Tag) > widths["tag"] {
			widths["tag"] = len(r.Tag)
		}
	}

	header := fmt.Sprintf("%-*s  %-*s  %-*s  %s",
		widths["index"], "#",
		widths["tag"], "Tag",
		widths["kind"], "Kind",
		"Details")

	rows := []string{header, strings.Repeat("-", len(header))}

	for i, r := range rules {
		rows = append(rows, fmt.Sprintf("%-*d  %-*s  %-*s  %s",
			widths["index"], i+1,
			widths["tag"], r.Tag,
			widths["kind"], string(r.Kind),
			ruleDetails(r)))
	}

	return rows
}

func ruleDetails(r rule.Snapshot) string {
	switch r.Kind {
	case rule.KindList:
		values := strings.Join(r.Values, ", ")
		if len(values) > 60 {
			values = values[:57] + "..."
		}
		return fmt.Sprintf("values: %s", values)
	case rule.KindCounter, rule.KindBatch:
		parts := []string{
			fmt.Sprintf("start %d", r.StartValue),
			fmt.Sprintf("increment %d", r.Increment),
		}
		step := r.Step
		if step < 1 {
			step = 1
		}
		parts = append(parts, fmt.Sprintf("step %d", step))
		if r.MinValue != nil {
			parts = append(parts, fmt.Sprintf("min %d", *r.MinValue))
		}
		if r.MaxValue != nil {
			parts = append(parts, fmt.Sprintf("max %d", *r.MaxValue))
		}
		if r.Kind == rule.KindBatch && r.CurrentValue != nil && r.BatchCount != nil {
			parts = append(parts, fmt.Sprintf("now %d after %d batches", *r.CurrentValue, *r.BatchCount))
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}
