package notion

import (
	"context"
	"fmt"
)

// Service implements the note/table operations exposed to the dispatcher.
// Parent pages and tables are addressed by title, the way users refer to them
// in conversation.
type Service struct {
	client *Client
}

func NewService(client *Client) *Service {
	return &Service{client: client}
}

// CreateNote creates a note page under the page with the given title.
func (s *Service) CreateNote(ctx context.Context, token, title, content, parentPageTitle string) (string, error) {
	parentID, err := s.client.FindPageByTitle(ctx, token, parentPageTitle)
	if err != nil {
		return "", err
	}
	if parentID == "" {
		return "", fmt.Errorf("page %q not found in your workspace", parentPageTitle)
	}
	url, err := s.client.CreatePage(ctx, token, parentID, title, content)
	if err != nil {
		return "", err
	}
	return url, nil
}

// CreateTable creates a database under the page with the given title. schema
// maps column names to Notion property definitions (title column excluded).
func (s *Service) CreateTable(ctx context.Context, token, title, parentPageTitle string, schema map[string]any) (string, error) {
	if len(schema) == 0 {
		return "", fmt.Errorf("at least one column is required for the table")
	}
	if _, ok := schema["title"]; ok {
		return "", fmt.Errorf("the title column is created automatically and must not appear in the schema")
	}

	parentID, err := s.client.FindPageByTitle(ctx, token, parentPageTitle)
	if err != nil {
		return "", err
	}
	if parentID == "" {
		return "", fmt.Errorf("page %q not found in your workspace", parentPageTitle)
	}

	_, url, err := s.client.CreateDatabase(ctx, token, parentID, title, schema)
	if err != nil {
		return "", err
	}
	return url, nil
}

// AddTableRow appends a row to the database with the given title, formatting
// each value against the database's column types.
func (s *Service) AddTableRow(ctx context.Context, token, databaseTitle string, entryData map[string]any) (string, error) {
	if len(entryData) == 0 {
		return "", fmt.Errorf("no data provided for the new row")
	}

	db, err := s.client.FindDatabaseByTitle(ctx, token, databaseTitle)
	if err != nil {
		return "", err
	}
	if db == nil {
		return "", fmt.Errorf("table %q not found in your workspace", databaseTitle)
	}

	properties, err := rowProperties(db.Columns, entryData)
	if err != nil {
		return "", err
	}
	return s.client.AddRow(ctx, token, db.ID, properties)
}
