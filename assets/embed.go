package assets

import (
	"bufio"
	"embed"
	"strings"
)

//go:embed featured.txt index.html
var FS embed.FS

func readLines(name string) ([]string, error) {
	f, err := FS.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, s)
	}
	return out, sc.Err()
}

// FeaturedList returns the bundled featured catalog.
func FeaturedList() ([]string, error) {
	return readLines("featured.txt")
}

// IndexHTML returns the web board page.
func IndexHTML() ([]byte, error) {
	return FS.ReadFile("index.html")
}
