package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/handiism/spotrip/internal/download"
	"github.com/handiism/spotrip/internal/model"
)

func TestOutcomeLine(t *testing.T) {
	tests := []struct {
		name   string
		result download.Result
		want   []string
	}{
		{
			name:   "downloaded single",
			result: download.Result{Status: download.StatusDownloaded, Artist: "Daft Punk", Title: "Aerodynamic"},
			want:   []string{"downloaded", "Daft Punk - Aerodynamic"},
		},
		{
			name:   "collection member",
			result: download.Result{Status: download.StatusSkipped, Collection: "Road Trip", Artist: "AC/DC", Title: "Thunderstruck"},
			want:   []string{"skipped", "Road Trip / AC/DC - Thunderstruck"},
		},
		{
			name:   "failure before resolve falls back to id",
			result: download.Result{ID: model.ID{15: 1}, Status: download.StatusFailed, Err: errors.New("not found")},
			want:   []string{"failed", model.ID{15: 1}.Base62(), "(not found)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := outcomeLine(tt.result)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("outcomeLine() = %q, missing %q", got, w)
				}
			}
		})
	}
}

func TestSummaryTable(t *testing.T) {
	var buf bytes.Buffer
	p := newPrinter(&buf)
	p.summary([]download.Result{
		{Status: download.StatusDownloaded},
		{Status: download.StatusDownloaded},
		{ID: model.ID{15: 7}, Status: download.StatusFailed, Stage: download.StageTranscode, Err: errors.New("transcode failed: exit status 1\nmore")},
	})

	out := buf.String()
	for _, want := range []string{"Downloaded", "Failed", "transcode", "transcode failed: exit status 1", model.ID{15: 7}.Base62()} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "more") {
		t.Error("only the first line of an error belongs in the table")
	}
}

func TestRenderTable(t *testing.T) {
	out := renderTable([]string{"A", "B"}, [][]string{{"1"}, {"2", "3"}}, []columnAlignment{alignLeft, alignRight})
	if !strings.Contains(out, "╭") || !strings.Contains(out, "A") || !strings.Contains(out, "3") {
		t.Errorf("renderTable() = %q", out)
	}
	if renderTable(nil, nil, nil) != "" {
		t.Error("no headers should render nothing")
	}
}

func TestLoadSettings_FlagsOverride(t *testing.T) {
	t.Setenv("SPOTRIP_USERNAME", "env-user")
	t.Setenv("SPOTRIP_OUTPUT", "/env/music")

	opts := &options{}
	cmd := newRootCommand(opts)
	if err := cmd.ParseFlags([]string{"-u", "flag-user", "--config", t.TempDir() + "/absent.toml", "--no-ledger", "--update-tags"}); err != nil {
		t.Fatal(err)
	}

	s, err := loadSettings(cmd, opts)
	if err != nil {
		t.Fatalf("loadSettings: %v", err)
	}
	if s.Username != "flag-user" {
		t.Errorf("Username = %q, flag should win", s.Username)
	}
	if s.OutputPath != "/env/music" {
		t.Errorf("OutputPath = %q, env should apply", s.OutputPath)
	}
	if s.UseLedger || !s.UpdateTags {
		t.Errorf("bool flags not applied: %+v", s)
	}
}

func TestLoadSettings_Invalid(t *testing.T) {
	t.Setenv("SPOTRIP_USERNAME", "")
	opts := &options{}
	cmd := newRootCommand(opts)
	if err := cmd.ParseFlags([]string{"--config", t.TempDir() + "/absent.toml", "--log-format", "xml", "-u", "x"}); err != nil {
		t.Fatal(err)
	}
	if _, err := loadSettings(cmd, opts); err == nil || !strings.Contains(err.Error(), "log_format") {
		t.Errorf("error = %v", err)
	}
}
