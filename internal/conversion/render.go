package conversion

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Render serializes view nodes in order. Comment data is written verbatim.
func Render(nodes []*html.Node) (string, error) {
	var buf strings.Builder
	for _, n := range nodes {
		if err := html.Render(&buf, n); err != nil {
			return "", fmt.Errorf("render html: %w", err)
		}
	}
	return buf.String(), nil
}
