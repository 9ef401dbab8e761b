package edamam

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"mealplanner/internal/logger"
	"mealplanner/internal/recipe"
)

// ErrForeignContinuation is returned when a continuation URL does not point
// at the configured API host.
var ErrForeignContinuation = errors.New("continuation url does not belong to the recipe api")

// UpstreamError is returned for any non-OK response from the recipe API.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("recipe api returned status %d", e.StatusCode)
}

// Client is a client for the Edamam Recipe Search API v2.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	appID      string
	appKey     string
	random     bool
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRandom asks the API for a random selection on every first page, so
// repeated searches for the same text return different recipes.
func WithRandom(random bool) Option {
	return func(c *Client) { c.random = random }
}

// NewClient creates a new Edamam client.
func NewClient(baseURL, appID, appKey string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	c := &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    u,
		appID:      appID,
		appKey:     appKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Response represents the search response body.
type Response struct {
	From  int   `json:"from"`
	To    int   `json:"to"`
	Count int   `json:"count"`
	Links Links `json:"_links"`
	Hits  []Hit `json:"hits"`
}

// Links holds the pagination links of a response or a hit.
type Links struct {
	Self *Link `json:"self,omitempty"`
	Next *Link `json:"next,omitempty"`
}

// Link is one hypermedia link.
type Link struct {
	Href  string `json:"href"`
	Title string `json:"title,omitempty"`
}

// Hit is one search result.
type Hit struct {
	Recipe HitRecipe `json:"recipe"`
	Links  Links     `json:"_links"`
}

// HitRecipe is the subset of the upstream recipe object that is used.
type HitRecipe struct {
	URI         string              `json:"uri"`
	Label       string              `json:"label"`
	Image       string              `json:"image"`
	URL         string              `json:"url"`
	Yield       float64             `json:"yield"`
	DietLabels  []string            `json:"dietLabels"`
	Calories    float64             `json:"calories"`
	Ingredients []recipe.Ingredient `json:"ingredients"`
}

// Search runs a query, or follows q.Next when it is set.
func (c *Client) Search(ctx context.Context, q recipe.Query) (*recipe.Page, error) {
	target, err := c.searchURL(q)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	// Accounts with active-user tracking reject requests without this header.
	req.Header.Set("Edamam-Account-User", c.appID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var apiResp Response
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}

	return toPage(&apiResp), nil
}

func (c *Client) searchURL(q recipe.Query) (string, error) {
	if q.Next != "" {
		next, err := url.Parse(q.Next)
		if err != nil {
			return "", fmt.Errorf("invalid continuation url: %w", err)
		}
		if next.Scheme != c.baseURL.Scheme || next.Host != c.baseURL.Host {
			return "", ErrForeignContinuation
		}
		return next.String(), nil
	}

	text := strings.TrimSpace(q.Text)
	if text == "" {
		text = recipe.DefaultQuery
	}

	params := url.Values{}
	params.Set("type", "public")
	params.Set("q", text)
	params.Set("app_id", c.appID)
	params.Set("app_key", c.appKey)
	if diet := q.Diet.Param(); diet != "" {
		params.Set("diet", diet)
	}
	if q.MaxCalories > 0 {
		params.Set("calories", "lte "+strconv.Itoa(q.MaxCalories))
	}
	if c.random {
		params.Set("random", "true")
	}

	u := *c.baseURL
	u.RawQuery = params.Encode()
	return u.String(), nil
}

func toPage(apiResp *Response) *recipe.Page {
	page := &recipe.Page{
		Recipes: make([]*recipe.Recipe, 0, len(apiResp.Hits)),
		Total:   apiResp.Count,
	}
	if apiResp.Links.Next != nil {
		page.Next = apiResp.Links.Next.Href
	}

	for _, hit := range apiResp.Hits {
		r := &recipe.Recipe{
			URI:         hit.Recipe.URI,
			Label:       hit.Recipe.Label,
			Calories:    hit.Recipe.Calories,
			URL:         hit.Recipe.URL,
			ImageURL:    hit.Recipe.Image,
			Servings:    hit.Recipe.Yield,
			DietLabels:  hit.Recipe.DietLabels,
			Ingredients: hit.Recipe.Ingredients,
		}
		if r.URL == "" && hit.Links.Self != nil {
			r.URL = hit.Links.Self.Href
		}
		if err := r.Normalize(); err != nil {
			logger.Warn("skipping recipe hit", zap.String("uri", hit.Recipe.URI), zap.Error(err))
			continue
		}
		page.Recipes = append(page.Recipes, r)
	}
	return page
}
