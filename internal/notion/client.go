package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Pbash-js/Pai/internal/config"
)

const apiVersion = "2022-06-28"

// Client is a thin wrapper over the Notion REST API. Every call takes the
// requesting user's access token; the client itself holds no credentials.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(cfg config.NotionConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
	}
}

type searchResult struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Title []struct {
		PlainText string `json:"plain_text"`
	} `json:"title"`
	Properties map[string]struct {
		Type  string `json:"type"`
		Title []struct {
			PlainText string `json:"plain_text"`
		} `json:"title"`
	} `json:"properties"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

// FindPageByTitle returns the id of an accessible page whose title matches
// exactly, or empty when none does.
func (c *Client) FindPageByTitle(ctx context.Context, token, title string) (string, error) {
	body := map[string]any{
		"query":     title,
		"filter":    map[string]any{"property": "object", "value": "page"},
		"page_size": 10,
	}
	var resp searchResponse
	if err := c.do(ctx, token, http.MethodPost, "/v1/search", body, &resp); err != nil {
		return "", fmt.Errorf("searching for page %q: %w", title, err)
	}

	for _, result := range resp.Results {
		for _, prop := range result.Properties {
			if prop.Type == "title" && len(prop.Title) > 0 && prop.Title[0].PlainText == title {
				return result.ID, nil
			}
		}
	}
	return "", nil
}

// Database describes a database found by search: its id plus each column's
// property type, used to format row values.
type Database struct {
	ID      string
	Columns map[string]string
}

// FindDatabaseByTitle returns the database whose title matches exactly, or nil
// when none does.
func (c *Client) FindDatabaseByTitle(ctx context.Context, token, title string) (*Database, error) {
	body := map[string]any{
		"query":     title,
		"filter":    map[string]any{"property": "object", "value": "database"},
		"page_size": 10,
	}
	var resp searchResponse
	if err := c.do(ctx, token, http.MethodPost, "/v1/search", body, &resp); err != nil {
		return nil, fmt.Errorf("searching for database %q: %w", title, err)
	}

	for _, result := range resp.Results {
		if len(result.Title) == 0 || result.Title[0].PlainText != title {
			continue
		}
		db := &Database{ID: result.ID, Columns: make(map[string]string, len(result.Properties))}
		for name, prop := range result.Properties {
			db.Columns[name] = prop.Type
		}
		return db, nil
	}
	return nil, nil
}

type createResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CreatePage creates a note page with a paragraph body under the parent page.
func (c *Client) CreatePage(ctx context.Context, token, parentPageID, title, content string) (string, error) {
	body := map[string]any{
		"parent":     map[string]any{"page_id": parentPageID},
		"properties": map[string]any{"title": titleProp(title)},
		"children":   []map[string]any{textBlock(content)},
	}
	var resp createResponse
	if err := c.do(ctx, token, http.MethodPost, "/v1/pages", body, &resp); err != nil {
		return "", fmt.Errorf("creating page %q: %w", title, err)
	}
	return resp.URL, nil
}

// CreateDatabase creates a database under the parent page. schema maps column
// names to Notion property definitions and must not define the title column.
func (c *Client) CreateDatabase(ctx context.Context, token, parentPageID, title string, schema map[string]any) (string, string, error) {
	properties := make(map[string]any, len(schema)+1)
	for name, def := range schema {
		properties[name] = def
	}
	if _, ok := properties["Title"]; !ok {
		properties["Title"] = map[string]any{"title": map[string]any{}}
	}

	body := map[string]any{
		"parent":     map[string]any{"type": "page_id", "page_id": parentPageID},
		"title":      []map[string]any{{"type": "text", "text": map[string]any{"content": title}}},
		"properties": properties,
	}
	var resp createResponse
	if err := c.do(ctx, token, http.MethodPost, "/v1/databases", body, &resp); err != nil {
		return "", "", fmt.Errorf("creating database %q: %w", title, err)
	}
	return resp.ID, resp.URL, nil
}

// AddRow creates a page in the database with the given property values.
func (c *Client) AddRow(ctx context.Context, token, databaseID string, properties map[string]any) (string, error) {
	body := map[string]any{
		"parent":     map[string]any{"database_id": databaseID},
		"properties": properties,
	}
	var resp createResponse
	if err := c.do(ctx, token, http.MethodPost, "/v1/pages", body, &resp); err != nil {
		return "", fmt.Errorf("adding row to database %s: %w", databaseID, err)
	}
	return resp.URL, nil
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, token, method, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Notion-Version", apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling notion: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Message != "" {
			return fmt.Errorf("notion api %s: %s", apiErr.Code, apiErr.Message)
		}
		return fmt.Errorf("notion api status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
