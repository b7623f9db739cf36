package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"ghostal/pkg/domain"
	"ghostal/pkg/filter"
)

var (
	ErrEmptyHTML      = errors.New("empty HTML content")
	ErrNoEpisodeLinks = errors.New("no episode links found on listing page")
)

const (
	guestStarsLabel = "Guest Stars:"
	synopsisLabel   = "Synopsis:"

	// feedMarker marks paragraphs of the page chrome that look like dialogue.
	feedMarker = ":START FEED"
)

// ExtractEpisodeLinks returns the hrefs of anchors that begin with prefix, in page
// order, without duplicates.
func ExtractEpisodeLinks(html, prefix string) ([]string, error) {
	doc, err := parseHTML(html)
	if err != nil {
		return nil, err
	}

	var hrefs []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		hrefs = append(hrefs, strings.TrimSpace(href))
	})

	links, err := filter.FilterURLs(context.Background(), hrefs,
		filter.NewPrefixFilter(prefix),
		filter.NewDedupFilter(),
	)
	if err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return nil, ErrNoEpisodeLinks
	}
	return links, nil
}

// ExtractEpisode converts one episode page into a raw Episode. Missing fields
// degrade to nil rather than failing the page.
func ExtractEpisode(html, href string) (*domain.Episode, error) {
	doc, err := parseHTML(html)
	if err != nil {
		return nil, err
	}

	return &domain.Episode{
		EpisodeMeta: domain.EpisodeMeta{
			Title:      extractTitle(doc, html),
			URL:        href,
			GuestStars: labeledCell(doc, guestStarsLabel),
			Synopsis:   labeledCell(doc, synopsisLabel),
		},
		Transcript: extractTranscript(doc),
	}, nil
}

func parseHTML(html string) (*goquery.Document, error) {
	if strings.TrimSpace(html) == "" {
		return nil, ErrEmptyHTML
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

// extractTitle prefers the <title> element and falls back to readability's guess.
func extractTitle(doc *goquery.Document, html string) *string {
	if title := domain.Str(doc.Find("title").First().Text()); title != nil {
		return title
	}

	article, err := readability.FromReader(strings.NewReader(html), nil)
	if err != nil {
		return nil
	}
	return domain.Str(article.Title)
}

// labeledCell finds <th>label</th> and returns the text of the next <td> sibling.
func labeledCell(doc *goquery.Document, label string) *string {
	th := doc.Find("th").FilterFunction(func(_ int, sel *goquery.Selection) bool {
		return strings.TrimSpace(sel.Text()) == label
	}).First()
	if th.Length() == 0 {
		return nil
	}

	td := th.NextAllFiltered("td").First()
	if td.Length() == 0 {
		return nil
	}
	return domain.Str(td.Text())
}

// extractTranscript reads "speaker: dialogue" paragraphs in page order.
// A blank speaker (": more words") is stored as absent so preprocessing carries the
// previous speaker forward.
func extractTranscript(doc *goquery.Document) []domain.DialogueTurn {
	turns := make([]domain.DialogueTurn, 0)

	doc.Find("p").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if strings.Contains(text, feedMarker) {
			return
		}

		speaker, dialogue, ok := strings.Cut(text, ":")
		if !ok {
			return
		}

		dialogue = strings.TrimSpace(dialogue)
		turns = append(turns, domain.DialogueTurn{
			Speaker:  domain.Str(speaker),
			Dialogue: &dialogue,
		})
	})

	return turns
}

func resolveAgainst(baseURL, ref string) (string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", err
	}
	return base.ResolveReference(u).String(), nil
}
