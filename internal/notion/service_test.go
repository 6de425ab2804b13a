package notion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pbash-js/Pai/internal/config"
)

// fakeNotion serves the handful of endpoints the client touches, with a
// single known page ("Projects") and database ("Groceries").
func fakeNotion(t *testing.T) (*Service, *[]map[string]any) {
	t.Helper()
	var created []map[string]any

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("Notion-Version"))

		var req struct {
			Query  string `json:"query"`
			Filter struct {
				Value string `json:"value"`
			} `json:"filter"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		var results []map[string]any
		switch {
		case req.Filter.Value == "page" && req.Query == "Projects":
			results = append(results, map[string]any{
				"id": "page-123",
				"properties": map[string]any{
					"title": map[string]any{
						"type":  "title",
						"title": []map[string]any{{"plain_text": "Projects"}},
					},
				},
			})
		case req.Filter.Value == "database" && req.Query == "Groceries":
			results = append(results, map[string]any{
				"id":    "db-456",
				"title": []map[string]any{{"plain_text": "Groceries"}},
				"properties": map[string]any{
					"Item":     map[string]any{"type": "title"},
					"Quantity": map[string]any{"type": "number"},
				},
			})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"results": results})
	})
	record := func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		created = append(created, body)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "new-id", "url": "https://notion.so/new-id"})
	}
	mux.HandleFunc("/v1/pages", record)
	mux.HandleFunc("/v1/databases", record)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := NewClient(config.NotionConfig{BaseURL: srv.URL, Timeout: 5 * time.Second})
	return NewService(client), &created
}

func TestCreateNote(t *testing.T) {
	svc, created := fakeNotion(t)

	url, err := svc.CreateNote(context.Background(), "secret-token", "Meeting notes", "Discussed roadmap", "Projects")
	require.NoError(t, err)
	assert.Equal(t, "https://notion.so/new-id", url)

	require.Len(t, *created, 1)
	page := (*created)[0]
	assert.Equal(t, "page-123", page["parent"].(map[string]any)["page_id"])
	assert.NotEmpty(t, page["children"])
}

func TestCreateNote_ParentNotFound(t *testing.T) {
	svc, _ := fakeNotion(t)

	_, err := svc.CreateNote(context.Background(), "secret-token", "x", "y", "Nonexistent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestCreateTable(t *testing.T) {
	svc, created := fakeNotion(t)

	schema := map[string]any{
		"Status": map[string]any{"select": map[string]any{"options": []map[string]any{{"name": "To Do"}}}},
	}
	url, err := svc.CreateTable(context.Background(), "secret-token", "Tasks", "Projects", schema)
	require.NoError(t, err)
	assert.NotEmpty(t, url)

	require.Len(t, *created, 1)
	db := (*created)[0]
	props := db["properties"].(map[string]any)
	assert.Contains(t, props, "Status")
	// Title column is added automatically.
	assert.Contains(t, props, "Title")
}

func TestCreateTable_RejectsEmptyAndTitleSchema(t *testing.T) {
	svc, _ := fakeNotion(t)
	ctx := context.Background()

	_, err := svc.CreateTable(ctx, "secret-token", "Tasks", "Projects", nil)
	require.Error(t, err)

	_, err = svc.CreateTable(ctx, "secret-token", "Tasks", "Projects", map[string]any{"title": map[string]any{}})
	require.Error(t, err)
}

func TestAddTableRow_FormatsAgainstSchema(t *testing.T) {
	svc, created := fakeNotion(t)

	url, err := svc.AddTableRow(context.Background(), "secret-token", "Groceries",
		map[string]any{"Item": "Apples", "Quantity": "5"})
	require.NoError(t, err)
	assert.NotEmpty(t, url)

	require.Len(t, *created, 1)
	row := (*created)[0]
	assert.Equal(t, "db-456", row["parent"].(map[string]any)["database_id"])
	props := row["properties"].(map[string]any)
	assert.Contains(t, props["Item"], "title")
	assert.Equal(t, 5.0, props["Quantity"].(map[string]any)["number"])
}

func TestAddTableRow_TableNotFound(t *testing.T) {
	svc, _ := fakeNotion(t)

	_, err := svc.AddTableRow(context.Background(), "secret-token", "Nope", map[string]any{"Item": "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestOAuth_ExchangeCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/oauth/token", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "client-id", user)
		assert.Equal(t, "client-secret", pass)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "authorization_code", req["grant_type"])
		assert.Equal(t, "the-code", req["code"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":   "secret-token",
			"workspace_name": "My Workspace",
		})
	}))
	t.Cleanup(srv.Close)

	oauth := NewOAuth(config.NotionConfig{
		BaseURL:      srv.URL,
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Timeout:      5 * time.Second,
	})

	token, err := oauth.ExchangeCode(context.Background(), "the-code", "https://example.com/cb")
	require.NoError(t, err)
	assert.Equal(t, "secret-token", token.AccessToken)
	assert.Equal(t, "My Workspace", token.WorkspaceName)
}

func TestOAuth_ExchangeCodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{"code": "invalid_grant", "message": "code expired"})
	}))
	t.Cleanup(srv.Close)

	oauth := NewOAuth(config.NotionConfig{BaseURL: srv.URL, Timeout: 5 * time.Second})
	_, err := oauth.ExchangeCode(context.Background(), "bad", "https://example.com/cb")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "code expired")
}

func TestOAuth_AuthorizeURL(t *testing.T) {
	oauth := NewOAuth(config.NotionConfig{BaseURL: "https://api.notion.com", ClientID: "client-id"})

	u := oauth.AuthorizeURL("https://example.com/cb", "state-token")
	assert.Contains(t, u, "https://api.notion.com/v1/oauth/authorize?")
	assert.Contains(t, u, "client_id=client-id")
	assert.Contains(t, u, "state=state-token")
}
