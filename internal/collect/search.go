// Package collect gathers candidate posts and their answers from a
// StackExchange site. It is the upstream collaborator that feeds pair
// generation; failures are reported and skipped, never retried.
package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/SaFE-APIOpt/SaFE-APIOpt/internal/config"
	"github.com/SaFE-APIOpt/SaFE-APIOpt/internal/store"
	"github.com/SaFE-APIOpt/SaFE-APIOpt/pkg/types"
)

type Client struct {
	cfg    config.Search
	http   *http.Client
	logger *zap.Logger
}

func NewClient(cfg config.Search, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{cfg: cfg, http: httpClient, logger: logger}
}

type SearchQuery struct {
	Query    string
	Tag      string
	PageSize int
	MaxPages int
}

// Tags joins the configured default tag with the query's own tag.
func (c *Client) Tags(q SearchQuery) string {
	if c.cfg.DefaultTag == "" {
		return q.Tag
	}
	if q.Tag == "" {
		return c.cfg.DefaultTag
	}
	return c.cfg.DefaultTag + ";" + q.Tag
}

type searchPage struct {
	Items []struct {
		Title        string   `json:"title"`
		CreationDate int64    `json:"creation_date"`
		Score        int      `json:"score"`
		Tags         []string `json:"tags"`
		Link         string   `json:"link"`
	} `json:"items"`
	HasMore bool `json:"has_more"`
}

// SearchPosts pages through /search/advanced. It stops at the last page, at
// MaxPages, or at the first failed page; rows fetched before a failure are
// kept.
func (c *Client) SearchPosts(ctx context.Context, q SearchQuery) store.Table {
	t := store.Table{Columns: []string{types.ColTitle, types.ColCreationDate, types.ColScore, types.ColTags, types.ColLink}}
	for page := 1; page <= q.MaxPages; page++ {
		p, err := c.fetchPage(ctx, q, page)
		if err != nil {
			c.logger.Warn("search request failed", zap.Int("page", page), zap.Error(err))
			break
		}
		for _, it := range p.Items {
			t.AppendRow(map[string]string{
				types.ColTitle:        it.Title,
				types.ColCreationDate: time.Unix(it.CreationDate, 0).UTC().Format(time.RFC3339),
				types.ColScore:        strconv.Itoa(it.Score),
				types.ColTags:         strings.Join(it.Tags, ","),
				types.ColLink:         it.Link,
			})
		}
		c.logger.Info("fetched search page", zap.Int("page", page), zap.Int("items", len(p.Items)))
		if !p.HasMore {
			break
		}
	}
	return t
}

func (c *Client) fetchPage(ctx context.Context, q SearchQuery, page int) (searchPage, error) {
	params := url.Values{}
	params.Set("q", q.Query)
	params.Set("tagged", c.Tags(q))
	params.Set("site", c.cfg.Site)
	params.Set("pagesize", strconv.Itoa(q.PageSize))
	params.Set("page", strconv.Itoa(page))
	params.Set("order", "desc")
	params.Set("sort", "relevance")
	if c.cfg.APIKey != "" {
		params.Set("key", c.cfg.APIKey)
	}
	endpoint := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/search/advanced?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return searchPage{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return searchPage{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return searchPage{}, fmt.Errorf("status code %d", resp.StatusCode)
	}
	var p searchPage
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return searchPage{}, fmt.Errorf("decode search page: %w", err)
	}
	return p, nil
}

// OutputName derives "<tag>_<query>.xlsx" with ';' in the tag made safe.
func OutputName(tag, query string) string {
	return strings.ReplaceAll(tag, ";", "_") + "_" + query + ".xlsx"
}
