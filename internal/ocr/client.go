// Package ocr talks to the remote document-understanding service.
package ocr

import (
	"context"
)

// Page is one page of extracted text. Index is zero-based and follows the
// document's page order.
type Page struct {
	Index    int    `json:"index"`
	Markdown string `json:"markdown"`
}

// Request describes one extraction call.
type Request struct {
	Model              string
	DocumentURL        string
	IncludeImageBase64 bool
}

// Response is the ordered sequence of extracted pages.
type Response struct {
	Pages []Page `json:"pages"`
}

// Client defines the interface for the extraction service.
type Client interface {
	Process(ctx context.Context, req Request) (*Response, error)
}
