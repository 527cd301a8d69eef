package dca

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"dcareport/internal/domain/model"
)

const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiDim   = "\033[2m"
)

type Formatter struct {
	Color bool
}

func NewFormatter(color bool) *Formatter {
	return &Formatter{Color: color}
}

func (f *Formatter) colorize(s, c string) string {
	if !f.Color {
		return s
	}
	return c + s + ansiReset
}

// Render draws the per-asset table followed by the grand total.
// Every figure has exactly model.ReportPlaces decimals; a missing average is "-".
func (f *Formatter) Render(r *model.Report) string {
	var sb strings.Builder

	if r.NoActivity {
		sb.WriteString(f.colorize("no filled orders", ansiDim))
		sb.WriteString("\n")
	}

	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "crypto\ttotalAmount\ttotalPrice\tavgEntry\t")
	for _, a := range r.Assets {
		avg := "-"
		if a.AvgEntry.Valid {
			avg = a.AvgEntry.Decimal.StringFixed(model.ReportPlaces)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n",
			a.Crypto,
			a.TotalAmount.StringFixed(model.ReportPlaces),
			a.TotalPrice.StringFixed(model.ReportPlaces),
			avg,
		)
	}
	_ = tw.Flush()

	sb.WriteString(f.colorize("total spent: "+r.TotalSpent.StringFixed(model.ReportPlaces), ansiBold))
	sb.WriteString("\n")
	return sb.String()
}
