package translation

import (
	"testing"

	"github.com/openlocalize/blankpage/internal/cms/page"
)

func TestSegmentsForHomePage(t *testing.T) {
	t.Parallel()

	p := page.Page{
		Title: "Welcome",
		Kind:  page.KindHome,
		Content: page.Content{
			Tagline: "Localization made simple",
			Body:    "<p>Intro body.</p>",
			Features: []page.FeatureBlock{
				{Heading: "Fast", Paragraph: "Very fast.", ImageCaption: "Speedometer"},
				{Heading: "Simple", Paragraph: "Very simple."},
			},
		},
	}

	got := SegmentsForPage(p)
	wantPaths := []string{
		"title",
		"tagline",
		"body",
		"features.0.heading",
		"features.0.paragraph",
		"features.0.image_caption",
		"features.1.heading",
		"features.1.paragraph",
	}
	if len(got) != len(wantPaths) {
		t.Fatalf("len(segments) = %d, want %d", len(got), len(wantPaths))
	}
	for i, seg := range got {
		if seg.ContextPath != wantPaths[i] {
			t.Errorf("segment %d ContextPath = %q, want %q", i, seg.ContextPath, wantPaths[i])
		}
		if seg.Order != i {
			t.Errorf("segment %d Order = %d, want %d", i, seg.Order, i)
		}
		if seg.Text == "" {
			t.Errorf("segment %d has empty text", i)
		}
	}
}

func TestSegmentsForArticlePage(t *testing.T) {
	t.Parallel()

	p := page.Page{
		Title: "Product Launch",
		Kind:  page.KindArticle,
		Content: page.Content{
			Intro: "We are launching.",
			Body:  "<p>The details.</p>",
			Specs: []page.TechnicalSpecBlock{
				{Name: "Model", Value: "BP-100"},
			},
		},
	}

	got := SegmentsForPage(p)
	wantPaths := []string{"title", "intro", "body", "specs.0.name", "specs.0.value"}
	if len(got) != len(wantPaths) {
		t.Fatalf("len(segments) = %d, want %d", len(got), len(wantPaths))
	}
	for i, seg := range got {
		if seg.ContextPath != wantPaths[i] {
			t.Errorf("segment %d ContextPath = %q, want %q", i, seg.ContextPath, wantPaths[i])
		}
	}
}

func TestSegmentsSkipEmptyFields(t *testing.T) {
	t.Parallel()

	p := page.Page{
		Title: "Sparse",
		Kind:  page.KindHome,
		Content: page.Content{
			Features: []page.FeatureBlock{
				{Heading: "Only heading"},
			},
		},
	}

	got := SegmentsForPage(p)
	wantPaths := []string{"title", "features.0.heading"}
	if len(got) != len(wantPaths) {
		t.Fatalf("len(segments) = %d, want %d", len(got), len(wantPaths))
	}
	for i, seg := range got {
		if seg.ContextPath != wantPaths[i] {
			t.Errorf("segment %d ContextPath = %q, want %q", i, seg.ContextPath, wantPaths[i])
		}
	}
}

func TestSegmentsForRootPage(t *testing.T) {
	t.Parallel()

	if got := SegmentsForPage(page.Page{Kind: page.KindRoot}); len(got) != 0 {
		t.Fatalf("len(segments) = %d, want 0 for root page", len(got))
	}
}

func TestApplySegments(t *testing.T) {
	t.Parallel()

	original := page.Page{
		Title: "Welcome",
		Kind:  page.KindHome,
		Content: page.Content{
			Tagline: "Localization made simple",
			Features: []page.FeatureBlock{
				{Heading: "Fast", Paragraph: "Very fast."},
			},
		},
	}

	applied := ApplySegments(original, []SegmentStatus{
		{ContextPath: "title", Text: "Bienvenue"},
		{ContextPath: "tagline", Text: "La localisation en toute simplicité"},
		{ContextPath: "features.0.heading", Text: "Rapide"},
		{ContextPath: "features.9.heading", Text: "out of range"},
		{ContextPath: "unknown.path", Text: "ignored"},
	})

	if applied.Title != "Bienvenue" {
		t.Errorf("Title = %q", applied.Title)
	}
	if applied.Content.Tagline != "La localisation en toute simplicité" {
		t.Errorf("Tagline = %q", applied.Content.Tagline)
	}
	if applied.Content.Features[0].Heading != "Rapide" {
		t.Errorf("Feature heading = %q", applied.Content.Features[0].Heading)
	}
	if applied.Content.Features[0].Paragraph != "Very fast." {
		t.Errorf("Feature paragraph = %q, want untouched source", applied.Content.Features[0].Paragraph)
	}

	// The input page must not be mutated through the shared slice.
	if original.Content.Features[0].Heading != "Fast" {
		t.Errorf("original feature heading = %q, want %q", original.Content.Features[0].Heading, "Fast")
	}
}

func TestApplySegmentsSpecs(t *testing.T) {
	t.Parallel()

	p := page.Page{
		Title: "Product Launch",
		Kind:  page.KindArticle,
		Content: page.Content{
			Specs: []page.TechnicalSpecBlock{
				{Name: "Model", Value: "BP-100"},
			},
		},
	}

	applied := ApplySegments(p, []SegmentStatus{
		{ContextPath: "specs.0.name", Text: "Modèle"},
		{ContextPath: "specs.0.value", Text: "BP-100"},
	})
	if applied.Content.Specs[0].Name != "Modèle" {
		t.Errorf("spec name = %q", applied.Content.Specs[0].Name)
	}
	if applied.Content.Specs[0].Value != "BP-100" {
		t.Errorf("spec value = %q", applied.Content.Specs[0].Value)
	}
}
