// # internal/output/tsv.go
package output

import (
	"fmt"
	"sort"
	"strings"

	"bindgen/internal/emit"
)

// SkippedRow is a skipped record together with the document it came from.
type SkippedRow struct {
	Source string
	emit.SkippedRecord
}

type TSVGenerator struct {
	rows []SkippedRow
}

func NewTSVGenerator(rows []SkippedRow) *TSVGenerator {
	return &TSVGenerator{rows: rows}
}

// Generate renders the rows sorted by source and position.
func (t *TSVGenerator) Generate() (string, error) {
	rows := make([]SkippedRow, len(t.rows))
	copy(rows, t.rows)
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Source != rows[j].Source {
			return rows[i].Source < rows[j].Source
		}
		if rows[i].Line != rows[j].Line {
			return rows[i].Line < rows[j].Line
		}
		return rows[i].Column < rows[j].Column
	})

	var buf strings.Builder
	buf.WriteString("File\tLine\tColumn\tKind\tName\tReason\n")
	for _, row := range rows {
		buf.WriteString(fmt.Sprintf("%s\t%d\t%d\t%s\t%s\t%s\n",
			row.Source,
			row.Line,
			row.Column,
			row.Kind,
			escapeTSV(row.Name),
			row.Reason,
		))
	}

	return buf.String(), nil
}

func escapeTSV(s string) string {
	return strings.NewReplacer("\t", " ", "\n", " ", "\r", " ").Replace(s)
}
