package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"mediascraper/internal/assembler"
	"mediascraper/internal/domain"
)

const maxRequestBody = 1 << 20

type extractRequest struct {
	URL string          `json:"url"`
	Cut json.RawMessage `json:"cut"`
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	rawURL, mode := decodeExtractRequest(r)

	res, err := s.scraper.Scrape(r.Context(), rawURL, mode)
	if err != nil {
		status, payload := assembler.RenderError(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("extraction failed", zap.String("url", rawURL), zap.Int("status", status), zap.Error(err))
		}
		s.respondWithJSON(w, status, payload)
		return
	}

	status, payload := assembler.Render(res)
	s.respondWithJSON(w, status, payload)
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	s.respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeExtractRequest reads url and cut from a JSON body, a form body or the
// query string, in that order of precedence. Unreadable bodies are ignored.
func decodeExtractRequest(r *http.Request) (string, domain.Mode) {
	var rawURL, cut string
	if r.Body != nil && r.Method == http.MethodPost {
		body, _ := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
		rawURL, cut = decodeBody(r.Header.Get("Content-Type"), body)
	}

	q := r.URL.Query()
	if rawURL == "" {
		rawURL = q.Get("url")
	}
	if cut == "" {
		cut = q.Get("cut")
	}
	return rawURL, domain.ModeFromFlag(domain.ParseFlag(cut))
}

func decodeBody(contentType string, body []byte) (string, string) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return "", ""
	}

	mediaType, _, _ := mime.ParseMediaType(contentType)
	if mediaType == "application/x-www-form-urlencoded" {
		form, err := url.ParseQuery(string(body))
		if err != nil {
			return "", ""
		}
		return form.Get("url"), form.Get("cut")
	}

	var req extractRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return "", ""
	}
	return req.URL, flagText(req.Cut)
}

// flagText turns a JSON bool, number or string into the textual flag form.
func flagText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return strconv.FormatBool(b)
	}
	return string(raw)
}

// --- Helper Functions ---

func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("encode response", zap.Error(err))
		code = http.StatusInternalServerError
		response = []byte(`{"error":true,"message":"Internal server error","error_message":"encode response"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
