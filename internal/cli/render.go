package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Veraticus/restaurant-ai/internal/config"
	"github.com/Veraticus/restaurant-ai/internal/engine"
	"github.com/Veraticus/restaurant-ai/internal/model"
	"github.com/Veraticus/restaurant-ai/internal/validation"
)

// RenderResult formats an inference result for the terminal. report may be nil
// when the result was not validated.
func RenderResult(result model.InferenceResult, report *validation.Report) string {
	var b strings.Builder

	if !result.OK() {
		b.WriteString(FormatError(result.Error()))
		if result.Failure.RawResponse != "" {
			b.WriteString("\n" + SubtleStyle.Render("Response body: "+result.Failure.RawResponse))
		}
		if report != nil {
			b.WriteString("\n" + RenderReport(*report))
		}
		return b.String()
	}

	success := result.Success
	rows := [][2]string{
		{"Model", success.Model},
		{"Request", success.RequestID},
		{"Elapsed", fmt.Sprintf("%.2fs", success.Elapsed.Seconds())},
	}
	if success.Usage != nil {
		rows = append(rows, [2]string{"Tokens", strconv.Itoa(success.Usage.TotalTokens)})
	}
	b.WriteString(RenderFields(rows))
	b.WriteString("\n\n" + BoldStyle.Render("Raw output:") + "\n" + success.RawOutput + "\n")

	if success.Normalized.Err != nil {
		b.WriteString("\n" + FormatWarning("Could not parse reply: "+success.Normalized.Err.Error()))
		if fragment := success.Normalized.Fragment; fragment != "" {
			b.WriteString("\n" + SubtleStyle.Render("Fragment: "+truncate(fragment, maxFragmentLen)))
		}
	} else if txns, err := success.Normalized.Transactions(); err == nil && len(txns) > 0 {
		b.WriteString("\n" + BoldStyle.Render("Transactions:"))
		for i, txn := range txns {
			b.WriteString(fmt.Sprintf("\n  %d. %s", i+1, formatTransaction(txn)))
		}
	}

	if report != nil {
		b.WriteString("\n" + RenderReport(*report))
	}

	return RenderBox(ReceiptIcon+" Result", strings.TrimRight(b.String(), "\n"))
}

// maxFragmentLen bounds how much of an unparseable JSON fragment is shown.
const maxFragmentLen = 120

// truncate shortens s to at most limit runes, marking the cut with "...".
func truncate(s string, limit int) string {
	runes := []rune(strings.Join(strings.Fields(s), " "))
	if len(runes) <= limit {
		return string(runes)
	}
	return string(runes[:limit]) + "..."
}

func formatTransaction(txn model.Transaction) string {
	amount := "?"
	if txn.HasAmount {
		amount = txn.Amount.String()
	}
	return fmt.Sprintf("%s / %s  %s  [%s]", txn.Type, txn.Category, amount, txn.Status)
}

// RenderReport formats a validation verdict followed by its issues.
func RenderReport(report validation.Report) string {
	var b strings.Builder

	if report.Valid {
		b.WriteString(FormatSuccess("Validation passed"))
	} else {
		b.WriteString(FormatError("Validation failed"))
	}
	for _, msg := range report.Messages() {
		b.WriteString("\n  " + FormatWarning(msg))
	}
	return b.String()
}

// RenderHistory lists the results produced in this session, oldest first.
func RenderHistory(history []model.InferenceResult) string {
	if len(history) == 0 {
		return FormatInfo("No requests yet in this session")
	}

	lines := make([]string, 0, len(history))
	for i, result := range history {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, historyLine(result)))
	}
	return RenderBox(fmt.Sprintf("Session history (%d)", len(history)), strings.Join(lines, "\n"))
}

func historyLine(result model.InferenceResult) string {
	if !result.OK() {
		failure := result.Failure
		return fmt.Sprintf("[%s] %s", failure.Modality, ErrorStyle.Render(ErrorIcon+" "+result.Error()))
	}

	success := result.Success
	outcome := SuccessStyle.Render(fmt.Sprintf("%s %d transaction(s)", SuccessIcon, len(success.Normalized.Records())))
	if success.Normalized.Err != nil {
		outcome = WarningStyle.Render("unparsed reply")
	}
	return fmt.Sprintf("[%s] %s %.2fs  %s", success.Modality, success.Model, success.Elapsed.Seconds(), outcome)
}

// RenderModelInfo formats the models and endpoint in use.
func RenderModelInfo(info engine.ModelInfo) string {
	return RenderBox(RobotIcon+" Model configuration", RenderFields([][2]string{
		{"Config file", info.ConfigFile},
		{"Text model", info.TextModel},
		{"Image model", info.ImageModel},
		{"Endpoint", info.Endpoint},
	}))
}

// RenderConfigSummary formats the key settings and settlement rules of doc.
func RenderConfigSummary(doc *config.Document) string {
	var b strings.Builder

	b.WriteString(RenderFields([][2]string{
		{"Text model", doc.String("", config.SectionModels, "text")},
		{"Image model", doc.String("", config.SectionModels, "image")},
		{"Text temp", formatOptional(doc, config.SectionParameters, "text", "temperature")},
		{"Image temp", formatOptional(doc, config.SectionParameters, "image", "temperature")},
		{"Timeout", formatOptional(doc, config.SectionAPI, "timeout") + "s"},
	}))

	rules := doc.SettlementRules()
	b.WriteString(fmt.Sprintf("\n\n%s %d", BoldStyle.Render("Settlement rules:"), len(rules)))

	categories := make([]string, 0, len(rules))
	for category := range rules {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		rule := rules[category]
		b.WriteString(fmt.Sprintf("\n  - %s: %s (settles after %d days)", category, rule.Status, rule.DelayDays))
	}

	return RenderBox("Current configuration", b.String())
}

func formatOptional(doc *config.Document, keys ...string) string {
	v, ok := doc.Get(keys...)
	if !ok {
		return "-"
	}
	return fmt.Sprint(v)
}
