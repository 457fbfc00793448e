package report

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/hed1ad/syscallguard/pkg/detectors"
)

// NewDefaultTableStyle returns the rounded style used for terminal output.
func NewDefaultTableStyle() *table.Style {
	style := table.Style{
		Name:    "StyleRounded",
		Box:     table.StyleBoxRounded,
		Format:  table.FormatOptionsDefault,
		HTML:    table.DefaultHTMLOptions,
		Options: table.OptionsDefault,
		Title:   table.TitleOptionsDefault,
		Color:   table.ColorOptionsDefault,
	}
	return &style
}

// Printer renders results as tables.
type Printer struct {
	out   io.Writer
	style *table.Style
}

// NewPrinter returns a Printer writing to out with the default style.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out, style: NewDefaultTableStyle()}
}

// WithStyle overrides the table style.
func (p *Printer) WithStyle(style table.Style) *Printer {
	p.style = &style
	return p
}

func (p *Printer) newTable(title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(p.out)
	t.SetStyle(*p.style)
	t.SetTitle(title)
	return t
}

// Results prints one row per score.
func (p *Printer) Results(scores []detectors.Score) {
	t := p.newTable("Detection Results")
	t.AppendHeader(table.Row{"Process", "Anomaly Score", "Classification", "Ground Truth"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
	})

	for _, s := range scores {
		t.AppendRow(table.Row{s.ID, fmt.Sprintf("%.4f", s.Value), classification(s), groundTruth(s)})
	}
	t.Render()
}

// Metrics prints the confusion matrix and derived rates.
func (p *Printer) Metrics(s Summary) {
	t := p.newTable("Detection Performance")
	t.AppendHeader(table.Row{"Metric", "Value"})

	m := s.Matrix
	t.AppendRows([]table.Row{
		{"True Positives", m.TruePositives},
		{"True Negatives", m.TrueNegatives},
		{"False Positives", m.FalsePositives},
		{"False Negatives", m.FalseNegatives},
	})
	t.AppendSeparator()
	t.AppendRow(table.Row{"Accuracy", percent(m.Accuracy())})
	if precision, ok := m.Precision(); ok {
		t.AppendRow(table.Row{"Precision", percent(precision)})
	}
	if recall, ok := m.Recall(); ok {
		t.AppendRow(table.Row{"Recall", percent(recall)})
	}
	t.AppendSeparator()
	t.AppendRow(table.Row{"Flagged", s.Flagged})
	if s.Unlabeled > 0 {
		t.AppendRow(table.Row{"Unlabeled", s.Unlabeled})
	}
	t.AppendRow(table.Row{"Mean Score", fmt.Sprintf("%.4f", s.MeanScore)})
	if m.TruePositives+m.FalseNegatives > 0 {
		t.AppendRow(table.Row{"Mean Score (anomalous)", fmt.Sprintf("%.4f", s.MeanAnomalousScore)})
	}
	if m.TrueNegatives+m.FalsePositives > 0 {
		t.AppendRow(table.Row{"Mean Score (normal)", fmt.Sprintf("%.4f", s.MeanNormalScore)})
	}
	t.Render()
}

func classification(s detectors.Score) string {
	if s.IsAnomaly() {
		return "INTRUSION"
	}
	return "NORMAL"
}

func groundTruth(s detectors.Score) string {
	switch {
	case s.GroundTruth == nil:
		return "-"
	case *s.GroundTruth:
		return "ANOMALY"
	default:
		return "NORMAL"
	}
}

func percent(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}
