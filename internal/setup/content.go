package setup

import "github.com/openlocalize/blankpage/internal/cms/page"

// homePageInput is the demo home page. Slugs are the identity for
// idempotent seeding, so edits here only affect fresh databases.
func homePageInput(rootID, localeID string) page.CreatePageInput {
	return page.CreatePageInput{
		ParentID: rootID,
		Slug:     "home",
		Title:    "Welcome to Intentional Blanks Demo",
		Kind:     page.KindHome,
		LocaleID: localeID,
		Content: page.Content{
			Tagline: "Demonstrating the intentional blanks translation workflow",
			Body: `<p>This demo shows how translators can mark segments as "do not translate" ` +
				"to preserve source language values.</p>" +
				"<p>Common use cases:</p>" +
				"<ul>" +
				"<li>Brand names and trademarks</li>" +
				"<li>Technical specifications</li>" +
				"<li>Product codes and SKUs</li>" +
				"<li>Proper nouns</li>" +
				"</ul>",
			Features: []page.FeatureBlock{
				{
					Heading:      "Segment-level control",
					Paragraph:    "Toggle a single heading or caption without touching the rest of the page.",
					ImageCaption: "A translator marking one segment",
				},
				{
					Heading:      "Reversible marks",
					Paragraph:    "Unmarking restores the previous translation; nothing is lost.",
					ImageCaption: "Undo arrow over a translated sentence",
				},
				{
					Heading:   "Brand names stay intact",
					Paragraph: "Trademarks and product names keep their original form in every market.",
				},
			},
		},
	}
}

// articlePageInput is the demo article, a child of the home page.
func articlePageInput(homeID, localeID string) page.CreatePageInput {
	return page.CreatePageInput{
		ParentID: homeID,
		Slug:     "firefox-specs",
		Title:    "Mozilla Firefox Technical Specs",
		Kind:     page.KindArticle,
		LocaleID: localeID,
		Content: page.Content{
			Date:  "2026-08-29",
			Intro: "Technical specifications for Mozilla Firefox browser.",
			Body: "<p>Mozilla Firefox is a free and open-source web browser developed by the Mozilla Foundation.</p>" +
				"<p>Key features include enhanced privacy protection, customizable interface, and cross-platform support.</p>",
			Specs: []page.TechnicalSpecBlock{
				{Name: "Engine", Value: "Gecko"},
				{Name: "License", Value: "MPL 2.0"},
				{Name: "Platforms", Value: "Windows / macOS / Linux"},
			},
		},
	}
}
