package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/bnema/displaywake/internal/display"
	"github.com/bnema/displaywake/internal/ui"
	"github.com/bnema/displaywake/internal/wake"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

// TargetsInfo is the JSON form of the targets command
type TargetsInfo struct {
	Backend string       `json:"backend,omitempty"`
	Targets []TargetInfo `json:"targets"`
	Error   string       `json:"error,omitempty"`
}

// TargetInfo describes one display target
type TargetInfo struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Adapter  string     `json:"adapter"`
	Usage    string     `json:"usage"`
	Modes    []ModeJSON `json:"modes,omitempty"`
	Selected *ModeJSON  `json:"selected,omitempty"`
	Error    string     `json:"error,omitempty"`
}

// ModeJSON describes one mode
type ModeJSON struct {
	ID        uint32  `json:"id"`
	Width     uint32  `json:"width"`
	Height    uint32  `json:"height"`
	Refresh   string  `json:"refresh"`
	RefreshHz float64 `json:"refresh_hz"`
	Preferred bool    `json:"preferred"`
}

func newTargetsCmd(a *app) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "targets",
		Short: "Show display targets and the mode each would be woken with",
		Long: `List every display target the backend reports, its usage kind and, for
special-purpose targets, the candidate modes and the one that would be selected.
Nothing is applied.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := collectTargets(cmd, a)
			if jsonOutput {
				if err != nil {
					info.Error = err.Error()
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}
			if err != nil {
				return err
			}
			renderTargets(cmd.OutOrStdout(), info)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	return cmd
}

func collectTargets(cmd *cobra.Command, a *app) (TargetsInfo, error) {
	info := TargetsInfo{Targets: []TargetInfo{}}

	platform, err := openPlatform(platformOptions(a.cfg))
	if err != nil {
		return info, fmt.Errorf("failed to open display backend: %w", err)
	}
	defer platform.Close()
	info.Backend = platform.Name()

	ctx := cmd.Context()
	targets, err := platform.CurrentTargets(ctx)
	if err != nil {
		return info, fmt.Errorf("failed to enumerate display targets: %w", err)
	}

	orchestrator := wake.NewOrchestrator(platform, wake.Options{CallTimeout: a.cfg.CallTimeout})
	for _, target := range targets {
		ti := TargetInfo{
			ID:      target.ID,
			Name:    target.Name,
			Adapter: target.Adapter,
			Usage:   target.UsageKind.String(),
		}
		if target.UsageKind == wake.DefaultRunOptions.Filter {
			ins := orchestrator.Inspect(ctx, target, a.cfg.PreferredOnly())
			for _, m := range ins.Modes {
				ti.Modes = append(ti.Modes, modeJSON(m))
			}
			if ins.Selected != nil {
				selected := modeJSON(*ins.Selected)
				ti.Selected = &selected
			}
			if ins.Err != nil {
				ti.Error = ins.Err.Error()
			}
		}
		info.Targets = append(info.Targets, ti)
	}
	return info, nil
}

func modeJSON(m display.ModeInfo) ModeJSON {
	return ModeJSON{
		ID:        m.ID,
		Width:     m.Resolution.Width,
		Height:    m.Resolution.Height,
		Refresh:   m.RefreshRate.String(),
		RefreshHz: m.RefreshRate.Hz(),
		Preferred: m.Preferred,
	}
}

func renderTargets(w io.Writer, info TargetsInfo) {
	var output strings.Builder
	output.WriteString(ui.FormatHeader(fmt.Sprintf("DISPLAY TARGETS (%s)", info.Backend)))
	output.WriteString("\n\n")

	if len(info.Targets) == 0 {
		output.WriteString(ui.SubtleStyle.Render("No display targets detected"))
		fmt.Fprintln(w, output.String())
		return
	}

	rows := [][]string{}
	for _, t := range info.Targets {
		selected := ""
		switch {
		case t.Selected != nil:
			selected = formatMode(*t.Selected)
		case t.Error != "":
			selected = ui.IconError + " " + t.Error
		}
		rows = append(rows, []string{t.Name, t.ID, t.Usage, fmt.Sprintf("%d", len(t.Modes)), selected})
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ui.ColorSubtle)).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return lipgloss.NewStyle().
					Foreground(ui.ColorPrimary).
					Bold(true).
					Padding(0, 1)
			case col == 2 && rows[row][2] == display.UsageSpecialPurpose.String():
				return lipgloss.NewStyle().
					Foreground(ui.ColorInfo).
					Bold(true).
					Padding(0, 1)
			default:
				return lipgloss.NewStyle().
					Foreground(ui.ColorText).
					Padding(0, 1)
			}
		}).
		Headers("NAME", "ID", "USAGE", "MODES", "WOULD WAKE WITH").
		Rows(rows...)
	output.WriteString(tbl.String())

	for _, t := range info.Targets {
		if len(t.Modes) == 0 {
			continue
		}
		output.WriteString("\n\n")
		output.WriteString(ui.HeaderStyle.Render(t.Name))
		for _, m := range t.Modes {
			line := "  " + formatMode(m)
			if t.Selected != nil && t.Selected.ID == m.ID {
				line = ui.SuccessStyle.Render(line + " " + ui.IconSuccess)
			}
			output.WriteString("\n" + line)
		}
	}

	fmt.Fprintln(w, output.String())
}

func formatMode(m ModeJSON) string {
	s := fmt.Sprintf("%dx%d@%.3fHz", m.Width, m.Height, m.RefreshHz)
	if m.Preferred {
		s += " (preferred)"
	}
	return s
}
