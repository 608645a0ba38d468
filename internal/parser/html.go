package parser

import (
	"io"

	"golang.org/x/net/html"
)

// HTMLParser handles HTML files. Documents are parsed as body content, so
// <html>, <head> and <body> wrappers are dropped while comments are kept.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) ([]*html.Node, error) {
	nodes, err := Fragment(r)
	if err != nil {
		return nil, err
	}
	out := nodes[:0]
	for _, n := range nodes {
		if n.Type == html.DoctypeNode {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}
