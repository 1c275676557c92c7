package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"lumi/internal/core/domain"
)

// Parser turns a stored source payload into locatable text segments. PDF
// sources yield one segment per page so answers can cite page numbers; plain
// text sources yield a single segment.
type Parser struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Parser {
	return &Parser{logger: logger}
}

func (p *Parser) Parse(ctx context.Context, src *domain.Source, r io.Reader) ([]domain.Segment, error) {
	switch src.Kind {
	case domain.SourcePDF:
		return p.parsePDF(src, r)
	case domain.SourcePlainText:
		return parsePlainText(src, r)
	default:
		return nil, fmt.Errorf("unsupported source kind: %s", src.Kind)
	}
}

func (p *Parser) parsePDF(src *domain.Source, r io.Reader) ([]domain.Segment, error) {
	// The pdf library needs io.ReaderAt plus size, so buffer the payload.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pdf payload: %w", err)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", src.Name, err)
	}

	pages := reader.NumPage()
	segments := make([]domain.Segment, 0, pages)
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			p.logger.Warn("failed to extract pdf page text",
				"source_id", src.ID, "page", i, "error", err)
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		segments = append(segments, domain.Segment{
			Text:    text,
			Locator: domain.Locator{Page: i},
		})
	}
	return segments, nil
}

func parsePlainText(src *domain.Source, r io.Reader) ([]domain.Segment, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read source payload: %w", err)
	}
	if !utf8.Valid(raw) {
		return nil, fmt.Errorf("source %s is not valid utf-8 text", src.Name)
	}
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return nil, nil
	}
	return []domain.Segment{{Text: text}}, nil
}
