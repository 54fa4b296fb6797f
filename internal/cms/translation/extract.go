package translation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/openlocalize/blankpage/internal/cms/page"
)

// ExtractedSegment is a translatable field pulled out of a page, before it
// has been persisted as a string plus segment pair.
type ExtractedSegment struct {
	ContextPath string
	Order       int
	Text        string
}

// SegmentsForPage walks a page's translatable fields in a stable order and
// returns one segment per non-empty field. The context path addresses the
// field within the page, so block fields stay individually translatable.
func SegmentsForPage(p page.Page) []ExtractedSegment {
	var out []ExtractedSegment
	add := func(path, text string) {
		if text == "" {
			return
		}
		out = append(out, ExtractedSegment{
			ContextPath: path,
			Order:       len(out),
			Text:        text,
		})
	}

	add("title", p.Title)

	switch p.Kind {
	case page.KindHome:
		add("tagline", p.Content.Tagline)
		add("body", p.Content.Body)
		for i, feature := range p.Content.Features {
			add(fmt.Sprintf("features.%d.heading", i), feature.Heading)
			add(fmt.Sprintf("features.%d.paragraph", i), feature.Paragraph)
			add(fmt.Sprintf("features.%d.image_caption", i), feature.ImageCaption)
		}
	case page.KindArticle:
		add("intro", p.Content.Intro)
		add("body", p.Content.Body)
		for i, spec := range p.Content.Specs {
			add(fmt.Sprintf("specs.%d.name", i), spec.Name)
			add(fmt.Sprintf("specs.%d.value", i), spec.Value)
		}
	}

	return out
}

// ApplySegments writes rendered segment texts back onto a copy of the page,
// addressing fields by context path. Unknown paths are skipped so stale
// segments cannot corrupt content.
func ApplySegments(p page.Page, segments []SegmentStatus) page.Page {
	features := make([]page.FeatureBlock, len(p.Content.Features))
	copy(features, p.Content.Features)
	p.Content.Features = features
	specs := make([]page.TechnicalSpecBlock, len(p.Content.Specs))
	copy(specs, p.Content.Specs)
	p.Content.Specs = specs

	for _, seg := range segments {
		switch {
		case seg.ContextPath == "title":
			p.Title = seg.Text
		case seg.ContextPath == "tagline":
			p.Content.Tagline = seg.Text
		case seg.ContextPath == "intro":
			p.Content.Intro = seg.Text
		case seg.ContextPath == "body":
			p.Content.Body = seg.Text
		case strings.HasPrefix(seg.ContextPath, "features."):
			applyFeatureSegment(&p, seg)
		case strings.HasPrefix(seg.ContextPath, "specs."):
			applySpecSegment(&p, seg)
		}
	}
	return p
}

func applyFeatureSegment(p *page.Page, seg SegmentStatus) {
	index, field, ok := splitBlockPath(strings.TrimPrefix(seg.ContextPath, "features."))
	if !ok || index >= len(p.Content.Features) {
		return
	}
	switch field {
	case "heading":
		p.Content.Features[index].Heading = seg.Text
	case "paragraph":
		p.Content.Features[index].Paragraph = seg.Text
	case "image_caption":
		p.Content.Features[index].ImageCaption = seg.Text
	}
}

func applySpecSegment(p *page.Page, seg SegmentStatus) {
	index, field, ok := splitBlockPath(strings.TrimPrefix(seg.ContextPath, "specs."))
	if !ok || index >= len(p.Content.Specs) {
		return
	}
	switch field {
	case "name":
		p.Content.Specs[index].Name = seg.Text
	case "value":
		p.Content.Specs[index].Value = seg.Text
	}
}

func splitBlockPath(rest string) (int, string, bool) {
	dot := strings.Index(rest, ".")
	if dot <= 0 {
		return 0, "", false
	}
	index, err := strconv.Atoi(rest[:dot])
	if err != nil || index < 0 {
		return 0, "", false
	}
	return index, rest[dot+1:], true
}
