// internal/objectives/objectives.go
//
// Objective list and featured catalog loading.
//
// File format:
//   - One record per line.
//   - A record's label is the text before the first Separator ('µ'); the rest
//     of the record is ignored. The separator is chosen because it does not
//     occur in natural-language objectives, which routinely contain commas.
//   - Labels are trimmed; blank records are skipped.
//   - Duplicate labels collapse to their first occurrence (order preserved).
//
// Featured catalog:
//   - Loaded once per process (sync.Once) from a configured file, or from the
//     embedded default catalog when no file is configured.

package objectives

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/OriginOfChaos/Bearathon5/assets"
)

// Separator delimits the fields of a record.
const Separator = 'µ'

// ErrEmpty is returned when a list yields no labels.
var ErrEmpty = errors.New("objectives: list is empty")

var (
	featuredOnce sync.Once
	featured     []string
	featuredErr  error
)

// ReadFile loads an objective list from path.
func ReadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	labels, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	log.Debug().Str("file", path).Int("objectives", len(labels)).Msg("objective list loaded")
	return labels, nil
}

// Parse reads records from r and returns the unique labels in order.
func Parse(r io.Reader) ([]string, error) {
	var out []string
	seen := make(map[string]struct{})
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		label := Label(sc.Text())
		if label == "" {
			continue
		}
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		out = append(out, label)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrEmpty
	}
	return out, nil
}

// Label extracts the label of one record.
func Label(record string) string {
	if i := strings.IndexRune(record, Separator); i >= 0 {
		record = record[:i]
	}
	return strings.TrimSpace(strings.TrimPrefix(record, "\ufeff"))
}

// Featured returns the featured catalog. An empty path selects the embedded
// default. The first call wins; later calls return the cached catalog.
func Featured(path string) ([]string, error) {
	featuredOnce.Do(func() {
		if path == "" {
			featured, featuredErr = assets.FeaturedList()
			if featuredErr == nil && len(featured) == 0 {
				featuredErr = ErrEmpty
			}
			return
		}
		featured, featuredErr = ReadFile(path)
	})
	return featured, featuredErr
}
