package collect

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/SaFE-APIOpt/SaFE-APIOpt/internal/store"
	"github.com/SaFE-APIOpt/SaFE-APIOpt/pkg/types"
)

const DefaultCrawlOutput = "post_answer.xlsx"

const (
	answerSelector = ".answer .js-post-body"
	codeSelector   = "pre code"
	answerSep      = "\n\n---\n\n"
)

// Answers holds every answer of one question page, text and code joined
// across answers with a horizontal-rule separator.
type Answers struct {
	Text  string
	Codes string
}

func (c *Client) FetchAnswers(ctx context.Context, link string) (Answers, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return Answers{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return Answers{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Answers{}, fmt.Errorf("status code %d", resp.StatusCode)
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return Answers{}, fmt.Errorf("parse page: %w", err)
	}
	return ExtractAnswers(doc), nil
}

func ExtractAnswers(doc *goquery.Document) Answers {
	var texts, codes []string
	doc.Find(answerSelector).Each(func(_ int, body *goquery.Selection) {
		texts = append(texts, strippedText(body))
		var blocks []string
		body.Find(codeSelector).Each(func(_ int, code *goquery.Selection) {
			blocks = append(blocks, strippedText(code))
		})
		codes = append(codes, strings.Join(blocks, "\n\n"))
	})
	return Answers{
		Text:  strings.Join(texts, answerSep),
		Codes: strings.Join(codes, answerSep),
	}
}

// strippedText collects every non-blank text node under sel, trimmed, one
// per line.
func strippedText(sel *goquery.Selection) string {
	var lines []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if s := strings.TrimSpace(n.Data); s != "" {
				lines = append(lines, s)
			}
			return
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return strings.Join(lines, "\n")
}

// CrawlAnswers fetches answers for every title/link row of in, waiting delay
// between requests. A failed fetch is logged and leaves that row's answer
// columns empty. A cancelled ctx stops the crawl with the rows gathered so far.
func (c *Client) CrawlAnswers(ctx context.Context, in store.Table, delay time.Duration) store.Table {
	out := store.Table{Columns: []string{types.ColTitle, types.ColLink, types.ColAnswersText, types.ColCodeBlocks}}
	total := len(in.Rows)
	for i := range in.Rows {
		if i > 0 && delay > 0 {
			select {
			case <-ctx.Done():
				c.logger.Warn("crawl cancelled", zap.Int("fetched", i), zap.Error(ctx.Err()))
				return out
			case <-time.After(delay):
			}
		}
		title := types.TextOrEmpty(in.Get(i, types.ColTitle))
		link := types.TextOrEmpty(in.Get(i, types.ColLink))
		c.logger.Info(fmt.Sprintf("Fetching answers (%d/%d)", i+1, total), zap.String("title", title))

		row := map[string]string{types.ColTitle: title, types.ColLink: link}
		if link == "" {
			c.logger.Warn("row has no link", zap.Int("row", i+1))
			out.AppendRow(row)
			continue
		}
		a, err := c.FetchAnswers(ctx, link)
		if err != nil {
			c.logger.Warn("failed to fetch answers", zap.String("link", link), zap.Error(err))
		} else {
			row[types.ColAnswersText] = a.Text
			row[types.ColCodeBlocks] = a.Codes
		}
		out.AppendRow(row)
	}
	return out
}
