package ingest

import (
	"fmt"
	"regexp"
	"strings"

	"code.sajari.com/docconv"
)

// Export footers repeated on every page of a BizReach PDF. Each pattern
// may be followed by a "page / total" counter.
var defaultBoilerplate = []string{
	"ビズリーチ",
	"BizReach",
	"Copyright",
	"無断転載を禁じます",
}

// ExtractText pulls plain text out of a PDF, dropping boilerplate lines.
// excludePatterns defaults to the standard BizReach footers when nil.
func ExtractText(pdfPath string, excludePatterns []string) (string, error) {
	res, err := docconv.ConvertPath(pdfPath)
	if err != nil {
		return "", fmt.Errorf("extracting text from %s: %w", pdfPath, err)
	}
	if excludePatterns == nil {
		excludePatterns = defaultBoilerplate
	}
	return stripBoilerplate(res.Body, excludePatterns), nil
}

func stripBoilerplate(text string, excludePatterns []string) string {
	matchers := make([]*regexp.Regexp, 0, len(excludePatterns))
	for _, pattern := range excludePatterns {
		matchers = append(matchers, regexp.MustCompile(
			regexp.QuoteMeta(pattern)+`(?:\s+\d+\s*/\s*\d+)?\s*$`))
	}
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		stripped := strings.TrimSpace(line)
		excluded := false
		for _, matcher := range matchers {
			if matcher.MatchString(stripped) {
				excluded = true
				break
			}
		}
		if !excluded {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
