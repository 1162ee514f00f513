package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"agentic_studio/pkg/models"
)

const commonsBase = "https://commons.wikimedia.org"

// WikimediaProvider sources freely licensed images from Wikimedia Commons.
// Results are filtered by license (public domain first, then CC), by
// landscape aspect ratio, and optionally by diagram-likeness.
type WikimediaProvider struct {
	http *http.Client
}

var _ ImageProvider = (*WikimediaProvider)(nil)

func NewWikimediaProvider(client *http.Client) *WikimediaProvider {
	if client == nil {
		client = &http.Client{}
	}
	return &WikimediaProvider{http: client}
}

func (p *WikimediaProvider) Name() string { return "wikimedia" }

type commonsCandidate struct {
	thumbURL string
	filePage string
	width    int
	height   int
	license  string
}

func (p *WikimediaProvider) Generate(ctx context.Context, prompt string, opts ImageOptions) (*ImageResult, error) {
	candidates, err := p.search(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var filtered []commonsCandidate
	for _, c := range candidates {
		if opts.Landscape && c.width <= c.height {
			continue
		}
		if opts.PreferDiagram && !looksLikeDiagram(c.filePage) {
			continue
		}
		filtered = append(filtered, c)
	}
	if len(filtered) == 0 && opts.PreferDiagram {
		// Diagram-likeness is a preference, not a hard filter.
		for _, c := range candidates {
			if !opts.Landscape || c.width > c.height {
				filtered = append(filtered, c)
			}
		}
	}
	if len(filtered) == 0 {
		return nil, &models.ProviderError{Provider: p.Name(), Err: fmt.Errorf("no usable results for %q", prompt)}
	}

	best := filtered[0]
	bestRank := licenseRank(best.license)
	for _, c := range filtered[1:] {
		if r := licenseRank(c.license); r > bestRank {
			best, bestRank = c, r
		}
	}
	if bestRank == 0 {
		return nil, &models.ProviderError{Provider: p.Name(), Err: fmt.Errorf("no freely licensed result for %q", prompt)}
	}

	return &ImageResult{
		URL:     best.thumbURL,
		Cost:    0,
		License: best.license,
		Metadata: map[string]string{
			"file_page": best.filePage,
			"width":     strconv.Itoa(best.width),
			"height":    strconv.Itoa(best.height),
		},
	}, nil
}

// search scrapes the Commons file-namespace search results.
func (p *WikimediaProvider) search(ctx context.Context, query string) ([]commonsCandidate, error) {
	u := fmt.Sprintf("%s/w/index.php?search=%s&ns6=1", commonsBase, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "agentic-studio/1.0 (image sourcing)")

	res, err := p.http.Do(req)
	if err != nil {
		return nil, &models.ProviderError{Provider: p.Name(), Retryable: true, Err: err}
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, &models.ProviderError{
			Provider:  p.Name(),
			Retryable: res.StatusCode >= 500 || res.StatusCode == http.StatusTooManyRequests,
			Err:       fmt.Errorf("commons search returned status %d", res.StatusCode),
		}
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse commons results: %w", err)
	}

	var out []commonsCandidate
	doc.Find("li.mw-search-result").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		var c commonsCandidate
		if href, ok := sel.Find(".mw-search-result-heading a").Attr("href"); ok {
			c.filePage = commonsBase + href
		}
		img := sel.Find(".searchResultImage img").First()
		if src, ok := img.Attr("src"); ok {
			if strings.HasPrefix(src, "//") {
				src = "https:" + src
			}
			c.thumbURL = src
		}
		c.width, _ = strconv.Atoi(img.AttrOr("data-file-width", img.AttrOr("width", "0")))
		c.height, _ = strconv.Atoi(img.AttrOr("data-file-height", img.AttrOr("height", "0")))
		c.license = guessLicense(sel.Text())
		if c.thumbURL != "" && c.filePage != "" {
			out = append(out, c)
		}
		return len(out) < 20
	})
	return out, nil
}

// licenseRank orders licenses: public domain beats CC beats unknown.
func licenseRank(license string) int {
	switch {
	case strings.Contains(license, "public domain"), strings.Contains(license, "pd"), strings.Contains(license, "cc0"):
		return 3
	case strings.Contains(license, "cc"):
		return 2
	}
	return 0
}

func guessLicense(text string) string {
	text = strings.ToLower(text)
	switch {
	case strings.Contains(text, "public domain"), strings.Contains(text, "cc0"):
		return "public domain"
	case strings.Contains(text, "cc by-sa"):
		return "cc by-sa"
	case strings.Contains(text, "cc by"):
		return "cc by"
	}
	// Commons hosts free media; default to the weakest free license.
	return "cc"
}

// looksLikeDiagram is a filename heuristic: vector formats and chart-style
// names.
func looksLikeDiagram(filePage string) bool {
	page := strings.ToLower(filePage)
	if strings.HasSuffix(page, ".svg") {
		return true
	}
	for _, kw := range []string{"diagram", "chart", "graph", "schematic", "plot", "figure"} {
		if strings.Contains(page, kw) {
			return true
		}
	}
	return false
}
