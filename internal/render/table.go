package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"eurostat/internal/models"
)

var printer = message.NewPrinter(language.English)

// FormatNumber prints v with two decimals and thousands separators.
func FormatNumber(v float64) string {
	return printer.Sprintf("%.2f", v)
}

var tableTmpl = template.Must(template.New("table").Funcs(template.FuncMap{
	"num":  FormatNumber,
	"cell": func(r models.TableRow, ind models.Indicator) models.TableCell { return r.Cells[ind] },
	"css":  func(c models.RGB) template.CSS { return template.CSS("background-color: " + c.String()) },
}).Parse(`<table id="dataTable">
<thead><tr><th>Tara</th>{{range .Indicators}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{- range $row := .Table.Rows}}
<tr><td title="{{$row.Name}}">{{$row.Country}}</td>
{{- range $.Indicators}}{{$c := cell $row .}}<td style="{{css $c.Color}}">{{num $c.Value}}</td>{{end}}</tr>
{{- end}}
</tbody>
</table>
`))

// TableHTML renders the summary table as an HTML fragment.
func TableHTML(table models.SummaryTable) ([]byte, error) {
	var buf bytes.Buffer
	err := tableTmpl.Execute(&buf, struct {
		Table      models.SummaryTable
		Indicators []models.Indicator
	}{table, models.Indicators})
	if err != nil {
		return nil, fmt.Errorf("render table: %w", err)
	}
	return buf.Bytes(), nil
}

// Terminal colors are bucketed; most terminals cannot show the exact RGB.
func cellColor(c models.RGB) *color.Color {
	switch {
	case c.G < 85:
		return color.New(color.BgRed, color.FgBlack)
	case c.G < 170:
		return color.New(color.BgYellow, color.FgBlack)
	default:
		return color.New(color.BgGreen, color.FgBlack)
	}
}

// WriteTableTerminal prints the table with aligned columns. When colored is
// false the cell colors are dropped.
func WriteTableTerminal(w io.Writer, table models.SummaryTable, colored bool) error {
	header := []string{"Tara"}
	for _, ind := range models.Indicators {
		header = append(header, strings.ToUpper(string(ind)))
	}

	rows := make([][]string, 0, len(table.Rows))
	for _, r := range table.Rows {
		row := []string{r.Country}
		for _, ind := range models.Indicators {
			row = append(row, FormatNumber(r.Cells[ind].Value))
		}
		rows = append(rows, row)
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, s := range row {
			if n := runewidth.StringWidth(s); n > widths[i] {
				widths[i] = n
			}
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Anul %d\n", table.Year)
	for i, h := range header {
		sb.WriteString(runewidth.FillRight(h, widths[i]))
		sb.WriteString("  ")
	}
	sb.WriteString("\n")

	for ri, row := range rows {
		sb.WriteString(runewidth.FillRight(row[0], widths[0]))
		sb.WriteString("  ")
		for i, ind := range models.Indicators {
			text := runewidth.FillLeft(row[i+1], widths[i+1])
			if colored {
				text = cellColor(table.Rows[ri].Cells[ind].Color).Sprint(text)
			}
			sb.WriteString(text)
			sb.WriteString("  ")
		}
		sb.WriteString("\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
