package report

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pgossip/pgossip/pkg/fetch"
)

// DefaultPasteBaseURL is the glot.io snippet API.
const DefaultPasteBaseURL = "https://glot.io"

// PasteClient publishes a finished report as a public glot.io snippet and
// returns the shareable link. Paste failures are reported to the caller but
// treated as non-fatal by it.
type PasteClient struct {
	BaseURL string
	Fetch   *fetch.Client
}

type pasteFile struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type pasteRequest struct {
	Language string      `json:"language"`
	Title    string      `json:"title"`
	Public   bool        `json:"public"`
	Files    []pasteFile `json:"files"`
}

type pasteResponse struct {
	ID string `json:"id"`
}

// Publish uploads the report's text rendering and returns the snippet URL.
func (p *PasteClient) Publish(ctx context.Context, r *Report) (string, error) {
	base := p.BaseURL
	if base == "" {
		base = DefaultPasteBaseURL
	}
	payload := pasteRequest{
		Language: "plaintext",
		Title:    fmt.Sprintf("Hall of Shame @ %s", r.Endpoint.Name()),
		Public:   true,
		Files:    []pasteFile{{Name: "report.txt", Content: r.Text()}},
	}
	body, err := p.Fetch.PostJSON(ctx, base+"/api/snippets", payload)
	if err != nil {
		return "", fmt.Errorf("failed to create snippet: %w", err)
	}
	var resp pasteResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to decode snippet response: %w", err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("snippet response carried no id")
	}
	return fmt.Sprintf("%s/snippets/%s", base, resp.ID), nil
}
