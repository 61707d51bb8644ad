// Package assembler renders extraction results and failures into the public
// JSON payloads and picks the HTTP status for each.
package assembler

import (
	"errors"
	"net/http"

	"mediascraper/internal/domain"
	"mediascraper/internal/fetcher"
)

// RawResponse is the flat list shape.
type RawResponse struct {
	Success  bool            `json:"success"`
	Data     []string        `json:"data"`
	Total    int             `json:"total"`
	Platform domain.Platform `json:"platform"`
}

// CutResponse is the structured shape.
type CutResponse struct {
	Success   bool                `json:"success"`
	Platform  domain.Platform     `json:"platform"`
	Content   domain.Content      `json:"content"`
	Author    *domain.Author      `json:"author,omitempty"`
	Media     []domain.MediaAsset `json:"media"`
	Music     *domain.Music       `json:"music,omitempty"`
	DeafMedia *domain.DeafMedia   `json:"deaf_media,omitempty"`
}

// ErrorResponse is returned for every failure.
type ErrorResponse struct {
	Error        bool   `json:"error"`
	Message      string `json:"message"`
	ErrorMessage string `json:"error_message"`
}

// Outcomes recorded per extraction.
const (
	OutcomeSuccess       = "success"
	OutcomeCallerError   = "caller_error"
	OutcomeNotFound      = "not_found"
	OutcomeUpstreamError = "upstream_error"
	OutcomeInternalError = "internal_error"
)

// Render returns the status and payload for a successful extraction.
func Render(res *domain.Result) (int, any) {
	if res.Mode == domain.Cut {
		media := res.Media
		if media == nil {
			media = []domain.MediaAsset{}
		}
		return http.StatusOK, CutResponse{
			Success:   true,
			Platform:  res.Platform,
			Content:   res.Content,
			Author:    res.Author,
			Media:     media,
			Music:     res.Music,
			DeafMedia: res.DeafMedia,
		}
	}

	urls := res.URLs
	if urls == nil {
		urls = []string{}
	}
	return http.StatusOK, RawResponse{
		Success:  true,
		Data:     urls,
		Total:    len(urls),
		Platform: res.Platform,
	}
}

type classification struct {
	status  int
	message string
	outcome string
}

func classify(err error) classification {
	var fe *fetcher.FetchError
	switch {
	case errors.Is(err, domain.ErrURLRequired):
		return classification{http.StatusBadRequest, "URL is required", OutcomeCallerError}
	case errors.Is(err, domain.ErrUnsupportedURL):
		return classification{http.StatusBadRequest, "Unsupported URL", OutcomeCallerError}
	case errors.Is(err, domain.ErrItemNotFound):
		return classification{http.StatusNotFound, "Item not found", OutcomeNotFound}
	case errors.Is(err, domain.ErrSourceNotFound):
		return classification{http.StatusBadGateway, "Source not found", OutcomeUpstreamError}
	case errors.As(err, &fe):
		return classification{http.StatusBadGateway, "Upstream request failed", OutcomeUpstreamError}
	case errors.Is(err, domain.ErrIslandNotFound), errors.Is(err, domain.ErrInvalidJSON):
		return classification{http.StatusBadGateway, "Failed to parse upstream response", OutcomeUpstreamError}
	default:
		return classification{http.StatusInternalServerError, "Internal server error", OutcomeInternalError}
	}
}

// RenderError maps err to a status and the error payload. Caller errors carry
// their public message in both fields; everything else exposes the cause chain
// in error_message.
func RenderError(err error) (int, ErrorResponse) {
	c := classify(err)
	detail := c.message
	if c.status != http.StatusBadRequest && err != nil {
		detail = err.Error()
	}
	return c.status, ErrorResponse{Error: true, Message: c.message, ErrorMessage: detail}
}

// Outcome labels err for metrics and logs.
func Outcome(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	return classify(err).outcome
}
