// # internal/output/binding.go
package output

import (
	"fmt"
	"path/filepath"
	"strings"

	"bindgen/internal/shared/util"
)

const DefaultExtension = ".cpp"

// BindingPath maps source, found under inputRoot, to its binding file under
// outDir. The relative directory layout is preserved.
func BindingPath(outDir, inputRoot, source, ext string) string {
	if ext == "" {
		ext = DefaultExtension
	}
	rel := util.RelativeTo(inputRoot, source)
	return filepath.Join(outDir, filepath.FromSlash(util.ReplaceExt(rel, ext)))
}

// WriteBinding writes the assembled lines of one module to path.
func WriteBinding(path string, lines []string) error {
	var buf strings.Builder
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	if err := util.WriteFileAtomic(path, []byte(buf.String()), 0o644); err != nil {
		return fmt.Errorf("write binding %q: %w", path, err)
	}
	return nil
}
