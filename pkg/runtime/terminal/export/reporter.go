package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/de-tools/claim-audit/pkg/models/domain"
)

type TableConfig struct {
	MetricWidth int
	ValueWidth  int
	ChangeWidth int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		MetricWidth: 34,
		ValueWidth:  14,
		ChangeWidth: 14,
	}
}

// Reporter renders evaluation results as text tables on the console.
type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

// HandleComparison prints the metric trend table, one row per metric.
func (c *Reporter) HandleComparison(rows []domain.ComparisonRow) error {
	funcMap := template.FuncMap{
		"formatRow": func(metric string, current, old, abs, pct float64) string {
			return fmt.Sprintf("| %-*s | %*.2f | %*.2f | %*.2f | %*.2f |",
				c.config.MetricWidth, metric,
				c.config.ValueWidth, current,
				c.config.ValueWidth, old,
				c.config.ChangeWidth, abs,
				c.config.ChangeWidth, pct)
		},
		"header": func() string {
			return fmt.Sprintf("| %-*s | %*s | %*s | %*s | %*s |",
				c.config.MetricWidth, "Metric",
				c.config.ValueWidth, "Current",
				c.config.ValueWidth, "Previous",
				c.config.ChangeWidth, "Change",
				c.config.ChangeWidth, "Change %")
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+%s+%s+%s+",
				strings.Repeat("-", c.config.MetricWidth+2),
				strings.Repeat("-", c.config.ValueWidth+2),
				strings.Repeat("-", c.config.ValueWidth+2),
				strings.Repeat("-", c.config.ChangeWidth+2),
				strings.Repeat("-", c.config.ChangeWidth+2))
		},
	}

	tmpl := `{{separator}}
{{header}}
{{separator}}
{{range .}}{{formatRow .Metric .Current .Previous .AbsoluteChange .PercentChange}}
{{end}}{{separator}}
`
	t, err := template.New("comparison").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	return t.Execute(c.writer, rows)
}

// HandleSummary prints the rollup counters of a finished run.
func (c *Reporter) HandleSummary(snap *domain.Snapshot) error {
	tmpl := `
Evaluation finished at {{.CreatedAt.Format "2006-01-02 15:04:05"}}

Numeric issues: {{.Rollups.NumericIssues}}
Text issues:    {{.Rollups.TextIssues}}
Plausibility:   {{.Rollups.PlausiIssues}}
Overall:        {{.Rollups.OverallIssues}}

Semantic detector: {{.SemanticStatus}}{{if .SemanticError}} ({{.SemanticError}}){{end}}
`
	t, err := template.New("summary").Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	return t.Execute(c.writer, snap)
}
