package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/handiism/spotrip/internal/config"
	"github.com/handiism/spotrip/internal/download"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))
)

type printer struct {
	w io.Writer
}

func newPrinter(w io.Writer) *printer {
	return &printer{w: w}
}

func (p *printer) banner(s *config.Settings, collections bool) {
	mode := "tracks"
	if collections {
		mode = "collections"
	}
	dest := s.OutputPath
	if s.HookPath != "" {
		dest = "hook " + s.HookPath
	}
	fmt.Fprintln(p.w, titleStyle.Render("spotrip "+version))
	fmt.Fprintln(p.w, dimStyle.Render(fmt.Sprintf("Reading %s from stdin, writing to %s", mode, dest)))
	fmt.Fprintln(p.w)
}

// result prints one outcome line.
func (p *printer) result(r download.Result) {
	fmt.Fprintln(p.w, outcomeLine(r))
}

func outcomeLine(r download.Result) string {
	label := r.ID.Base62()
	if r.Title != "" {
		label = r.Artist + " - " + r.Title
	}
	if r.Collection != "" {
		label = r.Collection + " / " + label
	}

	var style lipgloss.Style
	switch r.Status {
	case download.StatusDownloaded, download.StatusHooked:
		style = successStyle
	case download.StatusRetagged:
		style = infoStyle
	case download.StatusSkipped:
		style = dimStyle
	default:
		style = errorStyle
	}

	line := style.Render(fmt.Sprintf("%-10s", r.Status)) + " " + label
	if r.Status == download.StatusFailed && r.Err != nil {
		line += " " + warningStyle.Render("("+r.Err.Error()+")")
	}
	return line
}

func (p *printer) summary(results []download.Result) {
	if len(results) == 0 {
		fmt.Fprintln(p.w, dimStyle.Render("No tracks processed."))
		return
	}
	s := download.Summarize(results)

	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, renderTable(
		[]string{"Outcome", "Tracks"},
		[][]string{
			{"Downloaded", strconv.Itoa(s.Downloaded)},
			{"Retagged", strconv.Itoa(s.Retagged)},
			{"Skipped", strconv.Itoa(s.Skipped)},
			{"Hooked", strconv.Itoa(s.Hooked)},
			{"Failed", strconv.Itoa(s.Failed)},
		},
		[]columnAlignment{alignLeft, alignRight},
	))

	if s.Failed == 0 {
		return
	}
	var rows [][]string
	for _, r := range results {
		if r.Status != download.StatusFailed {
			continue
		}
		rows = append(rows, []string{r.ID.Base62(), r.Stage, firstLine(r.Err)})
	}
	fmt.Fprintln(p.w, renderTable([]string{"Track", "Stage", "Error"}, rows, nil))
}

func firstLine(err error) string {
	if err == nil {
		return ""
	}
	msg, _, _ := strings.Cut(err.Error(), "\n")
	return msg
}

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}
