package mimecast

import (
	"context"
	"time"
)

// ArchiveQuery describes an archive search.
type ArchiveQuery struct {
	Query     string
	Start     time.Time
	End       time.Time
	PageSize  int
	PageToken string
}

// ArchivedMessage is one archive search hit.
type ArchivedMessage struct {
	ID       string    `json:"id"`
	Subject  string    `json:"subject"`
	From     string    `json:"from"`
	To       []string  `json:"to"`
	Received time.Time `json:"received"`
	Size     int64     `json:"size"`
}

// ArchivePage is one page of archive search results.
type ArchivePage struct {
	Messages  []ArchivedMessage
	NextToken string
}

// SearchArchive searches archived messages.
func (c *Client) SearchArchive(ctx context.Context, query ArchiveQuery) (*ArchivePage, error) {
	if query.Query == "" {
		return nil, &ValidationError{Errors: []string{"query is required"}}
	}

	entry := map[string]interface{}{"query": query.Query}
	if !query.Start.IsZero() {
		entry["start"] = query.Start.UTC().Format(time.RFC3339)
	}
	if !query.End.IsZero() {
		entry["end"] = query.End.UTC().Format(time.RFC3339)
	}

	body := map[string]interface{}{"data": []interface{}{entry}}
	if query.PageSize > 0 || query.PageToken != "" {
		pagination := map[string]interface{}{}
		if query.PageSize > 0 {
			pagination["pageSize"] = query.PageSize
		}
		if query.PageToken != "" {
			pagination["pageToken"] = query.PageToken
		}
		body["meta"] = map[string]interface{}{"pagination": pagination}
	}

	env, err := c.postEnvelope(ctx, "/api/v2/archive/search", body)
	if err != nil {
		return nil, err
	}

	page := &ArchivePage{}
	if len(env.Data) > 0 {
		if err := decodeData(env.Data, &page.Messages); err != nil {
			return nil, err
		}
	}
	if env.Meta.Pagination != nil {
		page.NextToken = env.Meta.Pagination.PageToken
	}
	return page, nil
}

// LitigationHold is one legal hold definition.
type LitigationHold struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Status      string    `json:"status"`
}

// GetHolds lists litigation holds.
func (c *Client) GetHolds(ctx context.Context) ([]LitigationHold, error) {
	var holds []LitigationHold
	if err := c.Get(ctx, "/api/v2/hold/get-holds", &holds); err != nil {
		return nil, err
	}
	return holds, nil
}

// CreateHold creates a litigation hold over the given window.
func (c *Client) CreateHold(ctx context.Context, name, description string, start, end time.Time) (*LitigationHold, error) {
	var errs []string
	if name == "" {
		errs = append(errs, "name is required")
	}
	if start.IsZero() || end.IsZero() {
		errs = append(errs, "start and end dates are required")
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	body := map[string]interface{}{
		"data": []map[string]string{{
			"name":        name,
			"description": description,
			"start":       start.UTC().Format(time.RFC3339),
			"end":         end.UTC().Format(time.RFC3339),
		}},
	}

	var holds []LitigationHold
	if err := c.Post(ctx, "/api/v2/hold/create-hold", body, &holds); err != nil {
		return nil, err
	}
	if len(holds) == 0 {
		return &LitigationHold{Name: name}, nil
	}
	return &holds[0], nil
}
