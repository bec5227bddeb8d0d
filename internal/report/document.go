// Package report turns a date-ranged slice of the ledger into a
// renderer-agnostic document: header metadata, summary figure, line items
// sorted ascending by date, and a footer total.
package report

import (
	"context"
	"time"

	"spendlog/internal/core"
)

type (
	// Header carries the report metadata.
	Header struct {
		Recipient   string    `json:"recipient"`
		PeriodStart core.Date `json:"period_start"`
		PeriodEnd   core.Date `json:"period_end"`
		GeneratedAt time.Time `json:"generated_at"`
	}

	// Line is one expense row of the report table.
	Line struct {
		Date        core.Date     `json:"date"`
		Description string        `json:"description"`
		Category    core.Category `json:"category"`
		Amount      core.Money    `json:"amount_cents"`
	}

	// Footer repeats the period total; pagination is a rendering concern.
	Footer struct {
		Total core.Money `json:"total_cents"`
	}

	// Document is the complete, self-contained report model. The summary
	// total always equals the sum of the line amounts, so a renderer can
	// consume it without recomputing anything.
	Document struct {
		Header Header     `json:"header"`
		Total  core.Money `json:"total_cents"`
		Lines  []Line     `json:"lines"`
		Footer Footer     `json:"footer"`
	}
)

// Renderer is the outbound port for turning a document into a
// downloadable artifact (PDF, spreadsheet, ...). Rendering itself lives
// outside this engine; the document JSON served over HTTP is the handoff.
type Renderer interface {
	Render(ctx context.Context, doc Document) ([]byte, error)
}
