package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/docker/go-units"
	"github.com/stupid-simple/retention/database"
	"github.com/stupid-simple/retention/enforcer"
	"github.com/stupid-simple/retention/retention"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	keepStyle   = cellStyle.Foreground(lipgloss.Color("2"))
	deleteStyle = cellStyle.Foreground(lipgloss.Color("1"))
)

func renderTable(headers []string, rows [][]string, style func(row, col int) lipgloss.Style) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if style != nil {
				return style(row, col)
			}
			return cellStyle
		}).
		String()
}

func writeDecisionTable(w io.Writer, classifications []retention.Classification, decisions []enforcer.Decision) error {
	ages := make(map[string]int, len(classifications))
	for _, cl := range classifications {
		ages[cl.Artifact.Identifier] = cl.AgeDays
	}

	rows := make([][]string, 0, len(decisions))
	for _, d := range decisions {
		tier := ""
		if d.Action == enforcer.Keep {
			tier = d.Tier.String()
		}
		created := "-"
		if !d.Artifact.CreatedAt.IsZero() {
			created = d.Artifact.CreatedAt.Format(time.DateTime)
		}
		rows = append(rows, []string{
			d.Artifact.Identifier,
			created,
			strconv.Itoa(ages[d.Artifact.Identifier]),
			units.HumanSize(float64(d.Artifact.SizeBytes)),
			d.Action.String(),
			tier,
			d.Reason,
		})
	}

	const actionCol = 4
	out := renderTable(
		[]string{"BACKUP", "CREATED", "AGE", "SIZE", "ACTION", "TIER", "REASON"},
		rows,
		func(row, col int) lipgloss.Style {
			if col != actionCol || row < 0 || row >= len(decisions) {
				return cellStyle
			}
			if decisions[row].Action == enforcer.Delete {
				return deleteStyle
			}
			return keepStyle
		},
	)
	_, err := fmt.Fprintln(w, out)
	return err
}

func writeRunTable(w io.Writer, runs []database.Run) error {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		mode := "apply"
		if r.DryRun {
			mode = "dry run"
		}
		rows = append(rows, []string{
			strconv.FormatUint(uint64(r.ID), 10),
			r.Target,
			r.StartedAt.Local().Format(time.DateTime),
			r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String(),
			mode,
			strconv.Itoa(r.KeptCount),
			strconv.Itoa(r.DeletedCount),
			strconv.Itoa(r.FailedCount),
			units.HumanSize(float64(r.FreedBytes)),
		})
	}
	out := renderTable(
		[]string{"RUN", "TARGET", "STARTED", "TOOK", "MODE", "KEPT", "DELETED", "FAILED", "FREED"},
		rows, nil,
	)
	_, err := fmt.Fprintln(w, out)
	return err
}

func writeRunDecisionTable(w io.Writer, rows []database.RunDecision) error {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			r.Identifier,
			r.Outcome,
			r.Tier,
			units.HumanSize(float64(r.SizeBytes)),
			r.Reason,
		})
	}
	_, err := fmt.Fprintln(w, renderTable(
		[]string{"BACKUP", "OUTCOME", "TIER", "SIZE", "REASON"},
		out, nil,
	))
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
