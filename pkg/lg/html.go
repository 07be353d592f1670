package lg

import (
	"strings"

	"golang.org/x/net/html"
)

// Small helpers over the x/net/html node tree shared by the HTML-scraping
// vendor clients.

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func walk(n *html.Node, visit func(*html.Node)) {
	visit(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

// selectOptions returns the option values of the <select> with the given
// name. A missing select yields nil.
func selectOptions(root *html.Node, selectName string) []string {
	var values []string
	walk(root, func(n *html.Node) {
		if n.Type != html.ElementNode || n.Data != "select" || attr(n, "name") != selectName {
			return
		}
		walk(n, func(opt *html.Node) {
			if opt.Type != html.ElementNode || opt.Data != "option" {
				return
			}
			v := attr(opt, "value")
			if v == "" {
				v = strings.TrimSpace(nodeText(opt))
			}
			if v != "" {
				values = append(values, v)
			}
		})
	})
	return values
}

// nodeText concatenates the text content beneath a node.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	})
	return sb.String()
}

// preBlocks returns the text content of every <pre> element in the document.
func preBlocks(root *html.Node) []string {
	var blocks []string
	walk(root, func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "pre" {
			blocks = append(blocks, nodeText(n))
		}
	})
	return blocks
}

// tables returns every <table> element whose class attribute contains class,
// or all tables when class is empty.
func tables(root *html.Node, class string) []*html.Node {
	var found []*html.Node
	walk(root, func(n *html.Node) {
		if n.Type != html.ElementNode || n.Data != "table" {
			return
		}
		if class == "" || strings.Contains(attr(n, "class"), class) {
			found = append(found, n)
		}
	})
	return found
}

// tableRows returns the cell texts of each row of a table, header included.
func tableRows(table *html.Node) [][]string {
	var rows [][]string
	walk(table, func(n *html.Node) {
		if n.Type != html.ElementNode || n.Data != "tr" {
			return
		}
		var cells []string
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
				cells = append(cells, strings.TrimSpace(nodeText(c)))
			}
		}
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	})
	return rows
}
