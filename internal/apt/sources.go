package apt

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/julien-sobczak/rootpkg/internal/models"
	"github.com/sirupsen/logrus"
)

// SourcesListPath returns the location of the repositories configuration.
// Ex: /R/etc/apt/sources.list
func SourcesListPath(root string) string {
	return filepath.Join(root, "etc", "apt", "sources.list")
}

// ParseSourceFile reads one source per line.
// Lines without exactly 4 whitespace-separated fields are skipped.
// Ex: deb http://deb.debian.org/debian stable main
func ParseSourceFile(content string) []models.Source {
	var results []models.Source

	scanner := bufio.NewScanner(strings.NewReader(content))
	lineNumber := 0
	for scanner.Scan() {
		line := scanner.Text()
		lineNumber++
		if strings.TrimSpace(line) == "" || strings.HasPrefix(strings.TrimSpace(line), "#") {
			// Ignore blank lines and comments
			continue
		}
		parts := strings.Fields(line)
		if len(parts) != 4 {
			logrus.Debugf("Skipping malformed source at line %d: %q", lineNumber, line)
			continue
		}
		results = append(results, models.Source{
			Type:         parts[0],
			URL:          parts[1],
			Distribution: parts[2],
			Component:    parts[3],
		})
	}

	return results
}

// ReadSourcesList parses the sources.list file of the target root.
func ReadSourcesList(root string) ([]models.Source, error) {
	path := SourcesListPath(root)
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, models.NewError(models.ErrIO, path, err)
	}
	return ParseSourceFile(string(content)), nil
}
