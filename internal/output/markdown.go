// # internal/output/markdown.go
package output

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"bindgen/internal/emit"
	"bindgen/internal/shared/util"
)

// SkippedMarkdown renders a per-kind count table followed by every skipped
// node, for review in project docs.
func SkippedMarkdown(rows []SkippedRow) string {
	var b strings.Builder
	if len(rows) == 0 {
		b.WriteString("No skipped nodes.\n")
		return b.String()
	}

	type key struct {
		kind   string
		reason emit.Reason
	}
	counts := make(map[key]int)
	for _, r := range rows {
		counts[key{r.Kind, r.Reason}]++
	}
	keys := make([]key, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		if keys[i].kind != keys[j].kind {
			return keys[i].kind < keys[j].kind
		}
		return keys[i].reason < keys[j].reason
	})

	b.WriteString("| Kind | Reason | Count |\n|---|---|---|\n")
	for _, k := range keys {
		b.WriteString(fmt.Sprintf("| `%s` | %s | %d |\n", k.kind, k.reason, counts[k]))
	}

	b.WriteString("\n<details><summary>Skipped nodes</summary>\n\n")
	b.WriteString("| File | Position | Kind | Name | Reason |\n|---|---|---|---|---|\n")
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("| %s | %d:%d | `%s` | %s | %s |\n",
			r.Source, r.Line, r.Column, r.Kind, escapeMarkdown(r.Name), r.Reason))
	}
	b.WriteString("\n</details>\n")
	return b.String()
}

func escapeMarkdown(s string) string {
	return strings.NewReplacer("|", `\|`, "\n", " ").Replace(s)
}

// InjectReport replaces the block between the bindgen markers named marker
// in the markdown file at path.
func InjectReport(path, marker, report string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read markdown file %q: %w", path, err)
	}

	next, err := ReplaceBetweenMarkers(string(content), marker, report)
	if err != nil {
		return err
	}
	if err := util.WriteFileAtomic(path, []byte(next), 0o644); err != nil {
		return fmt.Errorf("replace markdown file %q: %w", path, err)
	}
	return nil
}

func ReplaceBetweenMarkers(content, marker, replacement string) (string, error) {
	marker = strings.TrimSpace(marker)
	if marker == "" {
		return "", fmt.Errorf("markdown marker must not be empty")
	}

	newline := "\n"
	if strings.Contains(content, "\r\n") {
		newline = "\r\n"
	}

	start := fmt.Sprintf("<!-- bindgen:%s:start -->", marker)
	end := fmt.Sprintf("<!-- bindgen:%s:end -->", marker)

	if strings.Count(content, start) != 1 || strings.Count(content, end) != 1 {
		return "", fmt.Errorf("markdown marker %q must appear exactly once for start and end", marker)
	}

	startIdx := strings.Index(content, start)
	endIdx := strings.Index(content, end)
	if endIdx < startIdx {
		return "", fmt.Errorf("invalid marker order for %q", marker)
	}

	prefix := content[:startIdx+len(start)]
	suffix := content[endIdx:]
	body := strings.ReplaceAll(strings.TrimRight(replacement, "\r\n"), "\n", newline)
	return prefix + newline + body + newline + suffix, nil
}
