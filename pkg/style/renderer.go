package style

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"github.com/dibs-cli/dibs/pkg/errors"
	"github.com/dibs-cli/dibs/pkg/types"
)

// RenderSyncReport formats a bulk sync outcome for the terminal.
func RenderSyncReport(report *types.SyncReport) string {
	var out strings.Builder

	title := "Sync"
	if report.DryRun {
		title = "Sync (dry run)"
	}
	out.WriteString(TitleStyle.Render(title) + "\n")

	for _, ext := range report.Succeeded {
		verb := "applied"
		if report.DryRun {
			verb = "would apply"
		}
		out.WriteString(fmt.Sprintf("%s .%s %s\n", pterm.Info.Prefix.Text, Bold(ext), verb))
	}
	for _, ext := range report.Skipped {
		out.WriteString(Indent(MutedStyle.Render(fmt.Sprintf(".%s already in sync", ext)), 1) + "\n")
	}
	for _, f := range report.Failed {
		line := fmt.Sprintf(".%s failed [%s]: %s", f.Extension, f.Code, f.Message)
		out.WriteString(ErrorStyle.Render(line) + "\n")
	}

	if report.Total() == 0 {
		out.WriteString(MutedStyle.Render("No active bindings to sync") + "\n")
	} else {
		summary := fmt.Sprintf("%d applied, %d skipped, %d failed",
			len(report.Succeeded), len(report.Skipped), len(report.Failed))
		out.WriteString("\n" + MutedStyle.Render(summary) + "\n")
	}

	return out.String()
}

// RenderBindings formats the status table.
func RenderBindings(bindings []types.Binding, defaults map[string]string) string {
	if len(bindings) == 0 {
		return MutedStyle.Render("No bindings on record") + "\n"
	}

	data := pterm.TableData{{"Extension", "Application", "State", "Synced", "OS default"}}
	for _, b := range bindings {
		synced := "no"
		if b.OSSynced {
			synced = "yes"
		}
		current := defaults[types.NormalizeExtension(b.Extension)]
		if current == "" {
			current = "(unknown)"
		}
		data = append(data, []string{
			"." + types.NormalizeExtension(b.Extension),
			b.ApplicationPath,
			string(b.State),
			synced,
			current,
		})
	}

	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		// Table rendering never fails on sane input; fall back to plain rows.
		var plain strings.Builder
		for _, row := range data {
			plain.WriteString(strings.Join(row, "\t") + "\n")
		}
		return plain.String()
	}
	return out + "\n"
}

// RenderError formats a failure with its code and, when present, a
// recovery hint.
func RenderError(err error) string {
	var out strings.Builder
	code := string(errors.CodeOf(err))
	msg := strings.TrimPrefix(err.Error(), "["+code+"] ")
	out.WriteString(ErrorStyle.Render("[" + code + "]"))
	out.WriteString(" " + msg + "\n")
	if hint := errors.HintOf(err); hint != "" {
		out.WriteString(Indent(MutedStyle.Render("hint: "+hint), 1) + "\n")
	}
	return out.String()
}

// RenderWarning formats a non-fatal problem.
func RenderWarning(msg string) string {
	return WarningStyle.Render("warning: ") + msg + "\n"
}
