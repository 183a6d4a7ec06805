package sink

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"
	"golang.org/x/time/rate"
)

// notionRPS is the Notion API rate limit.
const notionRPS = 3

// NotionAPI is the slice of the Notion client this sink depends on.
type NotionAPI interface {
	QueryDatabase(ctx context.Context, id notionapi.DatabaseID, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error)
	CreatePage(ctx context.Context, req *notionapi.PageCreateRequest) (*notionapi.Page, error)
	UpdatePage(ctx context.Context, id notionapi.PageID, req *notionapi.PageUpdateRequest) (*notionapi.Page, error)
}

// notionClient adapts *notionapi.Client to NotionAPI.
type notionClient struct {
	inner *notionapi.Client
}

func (c notionClient) QueryDatabase(ctx context.Context, id notionapi.DatabaseID, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	return c.inner.Database.Query(ctx, id, req)
}

func (c notionClient) CreatePage(ctx context.Context, req *notionapi.PageCreateRequest) (*notionapi.Page, error) {
	return c.inner.Page.Create(ctx, req)
}

func (c notionClient) UpdatePage(ctx context.Context, id notionapi.PageID, req *notionapi.PageUpdateRequest) (*notionapi.Page, error) {
	return c.inner.Page.Update(ctx, id, req)
}

// Notion mirrors the snapshot into a Notion database, one page per record,
// keyed by the record's source URL. All API calls are throttled to Notion's
// published limit.
type Notion struct {
	api     NotionAPI
	dbID    notionapi.DatabaseID
	limiter *rate.Limiter
}

// NewNotion creates the sink from an integration token and target database.
func NewNotion(token, databaseID string) *Notion {
	return &Notion{
		api:     notionClient{inner: notionapi.NewClient(notionapi.Token(token))},
		dbID:    notionapi.DatabaseID(databaseID),
		limiter: rate.NewLimiter(notionRPS, 1),
	}
}

// NewNotionWithAPI creates the sink over an explicit API, for tests.
func NewNotionWithAPI(api NotionAPI, databaseID string) *Notion {
	return &Notion{
		api:     api,
		dbID:    notionapi.DatabaseID(databaseID),
		limiter: rate.NewLimiter(rate.Inf, 1),
	}
}

// Name identifies the sink in status reports.
func (s *Notion) Name() string { return "notion" }

// Publish upserts every row. The first error aborts the batch; the committer
// retries the whole snapshot on the next commit, and upserts make that safe.
func (s *Notion) Publish(ctx context.Context, header []string, rows [][]string) error {
	keyIdx := columnIndex(header, "sourceUrl")
	if keyIdx < 0 {
		return fmt.Errorf("snapshot header missing sourceUrl column")
	}
	for _, row := range rows {
		if keyIdx >= len(row) || row[keyIdx] == "" {
			continue
		}
		if err := s.upsertRow(ctx, header, row, row[keyIdx]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Notion) upsertRow(ctx context.Context, header, row []string, key string) error {
	pageID, err := s.findPage(ctx, key)
	if err != nil {
		return err
	}

	props := s.properties(header, row)
	if pageID == "" {
		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("notion rate limit: %w", err)
		}
		_, err := s.api.CreatePage(ctx, &notionapi.PageCreateRequest{
			Parent:     notionapi.Parent{Type: notionapi.ParentTypeDatabaseID, DatabaseID: s.dbID},
			Properties: props,
		})
		if err != nil {
			return fmt.Errorf("notion create page for %s: %w", key, err)
		}
		return nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("notion rate limit: %w", err)
	}
	_, err = s.api.UpdatePage(ctx, notionapi.PageID(pageID), &notionapi.PageUpdateRequest{
		Properties: props,
	})
	if err != nil {
		return fmt.Errorf("notion update page for %s: %w", key, err)
	}
	return nil
}

func (s *Notion) findPage(ctx context.Context, key string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("notion rate limit: %w", err)
	}
	resp, err := s.api.QueryDatabase(ctx, s.dbID, &notionapi.DatabaseQueryRequest{
		Filter: notionapi.PropertyFilter{
			Property: "sourceUrl",
			RichText: &notionapi.TextFilterCondition{Equals: key},
		},
		PageSize: 1,
	})
	if err != nil {
		return "", fmt.Errorf("notion query for %s: %w", key, err)
	}
	if len(resp.Results) == 0 {
		return "", nil
	}
	return string(resp.Results[0].ID), nil
}

// properties maps the tabular row onto Notion properties. The record name is
// the page title; everything else is rich text.
func (s *Notion) properties(header, row []string) notionapi.Properties {
	props := notionapi.Properties{}
	for i, col := range header {
		if i >= len(row) {
			break
		}
		value := row[i]
		if col == "name" {
			props[col] = notionapi.TitleProperty{
				Type: notionapi.PropertyTypeTitle,
				Title: []notionapi.RichText{
					{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: value}},
				},
			}
			continue
		}
		props[col] = notionapi.RichTextProperty{
			Type: notionapi.PropertyTypeRichText,
			RichText: []notionapi.RichText{
				{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: value}},
			},
		}
	}
	return props
}

func columnIndex(header []string, name string) int {
	for i, col := range header {
		if col == name {
			return i
		}
	}
	return -1
}
