package mimecast

import (
	"context"
	"time"
)

// AccountInfo describes the Mimecast account.
type AccountInfo struct {
	AccountCode  string `json:"accountCode"`
	AccountName  string `json:"accountName"`
	Region       string `json:"region"`
	Type         string `json:"type"`
	MailPlatform string `json:"mailPlatform"`
	MaxRetention int    `json:"maxRetention"`
	SupportCode  string `json:"supportCode"`
}

// GetAccountInfo returns information about the authenticated account.
func (c *Client) GetAccountInfo(ctx context.Context) (*AccountInfo, error) {
	var accounts []AccountInfo
	if err := c.Get(ctx, "/api/v2/account/get-account", &accounts); err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return &AccountInfo{}, nil
	}
	return &accounts[0], nil
}

// HeldMessage is one message currently queued for review.
type HeldMessage struct {
	ID       string    `json:"id"`
	Subject  string    `json:"subject"`
	From     string    `json:"from"`
	To       []string  `json:"to"`
	Received time.Time `json:"received"`
	HoldType string    `json:"holdType"`
	Reason   string    `json:"reasonCode"`
	Size     int64     `json:"size"`
}

// HoldQuery filters the held-message list.
type HoldQuery struct {
	// Admin selects messages held for administrative review.
	Admin bool
	// End bounds the search; zero means no bound.
	End time.Time
	// SearchField and SearchValue restrict results to messages whose
	// field (from, to, subject) matches the value.
	SearchField string
	SearchValue string
	// PageSize and PageToken control pagination.
	PageSize  int
	PageToken string
}

// HeldMessagePage is one page of held messages plus the token for the next
// page; an empty NextToken means the listing is complete.
type HeldMessagePage struct {
	Messages  []HeldMessage
	NextToken string
}

// GetHoldMessages lists messages currently on hold.
func (c *Client) GetHoldMessages(ctx context.Context, query HoldQuery) (*HeldMessagePage, error) {
	entry := map[string]interface{}{"admin": query.Admin}
	if !query.End.IsZero() {
		entry["end"] = query.End.UTC().Format(time.RFC3339)
	}
	if query.SearchField != "" && query.SearchValue != "" {
		entry["searchBy"] = map[string]string{
			"fieldName": query.SearchField,
			"value":     query.SearchValue,
		}
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

	env, err := c.postEnvelope(ctx, "/api/gateway/get-hold-message-list", body)
	if err != nil {
		return nil, err
	}

	page := &HeldMessagePage{}
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

// Hold release actions.
const (
	HoldActionRelease = "release"
	HoldActionReject  = "reject"
)

// ReleaseHeldMessage releases or rejects a held message. Action must be
// HoldActionRelease or HoldActionReject.
func (c *Client) ReleaseHeldMessage(ctx context.Context, messageID, action, reason string) error {
	if action != HoldActionRelease && action != HoldActionReject {
		return &ValidationError{Errors: []string{"action must be either release or reject"}}
	}
	if messageID == "" {
		return &ValidationError{Errors: []string{"message ID is required"}}
	}

	body := map[string]interface{}{
		"data": []map[string]string{{
			"id":     messageID,
			"action": action,
			"reason": reason,
		}},
	}
	return c.Post(ctx, "/api/gateway/hold-release", body, nil)
}

// MessageSearch describes a message-finder query. Either MessageID or
// AdvancedQuery must be set.
type MessageSearch struct {
	MessageID     string
	Start         time.Time
	End           time.Time
	AdvancedQuery map[string]interface{}
	Source        string
	SearchReason  string
	SearchFields  []string
	PageSize      int
	PageToken     string
}

// TrackedMessage is one message-finder search result.
type TrackedMessage struct {
	ID       string    `json:"id"`
	Subject  string    `json:"subject"`
	From     string    `json:"fromEnv"`
	To       []string  `json:"to"`
	Received time.Time `json:"received"`
	Status   string    `json:"status"`
	Route    string    `json:"route"`
}

// MessagePage is one page of tracked messages.
type MessagePage struct {
	Messages  []TrackedMessage
	NextToken string
}

// SearchMessages runs a message-finder search.
func (c *Client) SearchMessages(ctx context.Context, search MessageSearch) (*MessagePage, error) {
	entry := map[string]interface{}{}
	switch {
	case search.MessageID != "":
		entry["messageId"] = search.MessageID
		if !search.Start.IsZero() {
			entry["start"] = search.Start.UTC().Format(time.RFC3339)
		}
		if !search.End.IsZero() {
			entry["end"] = search.End.UTC().Format(time.RFC3339)
		}
	case search.AdvancedQuery != nil:
		opts := map[string]interface{}{}
		for k, v := range search.AdvancedQuery {
			opts[k] = v
		}
		if !search.Start.IsZero() {
			opts["start"] = search.Start.UTC().Format(time.RFC3339)
		}
		if !search.End.IsZero() {
			opts["end"] = search.End.UTC().Format(time.RFC3339)
		}
		if search.Source != "" {
			opts["source"] = search.Source
		}
		if search.SearchReason != "" {
			opts["searchReason"] = search.SearchReason
		}
		if len(search.SearchFields) > 0 {
			opts["searchFields"] = search.SearchFields
		}
		entry["advancedTrackAndTraceOptions"] = opts
	default:
		return nil, &ValidationError{Errors: []string{"either message ID or advanced query must be provided"}}
	}

	body := map[string]interface{}{"data": []interface{}{entry}}
	if search.PageSize > 0 || search.PageToken != "" {
		pagination := map[string]interface{}{}
		if search.PageSize > 0 {
			pagination["pageSize"] = search.PageSize
		}
		if search.PageToken != "" {
			pagination["pageToken"] = search.PageToken
		}
		body["meta"] = map[string]interface{}{"pagination": pagination}
	}

	env, err := c.postEnvelope(ctx, "/api/message-finder/search", body)
	if err != nil {
		return nil, err
	}

	page := &MessagePage{}
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

// URLLog is one Targeted Threat Protection URL click event.
type URLLog struct {
	UserEmailAddress string    `json:"userEmailAddress"`
	URL              string    `json:"url"`
	Category         string    `json:"category"`
	ScanResult       string    `json:"scanResult"`
	Action           string    `json:"action"`
	Date             time.Time `json:"date"`
}

// GetTTPURLLogs returns URL protection click logs for the given window,
// optionally filtered by scan result (clean, malicious).
func (c *Client) GetTTPURLLogs(ctx context.Context, from, to time.Time, scanResult string) ([]URLLog, error) {
	entry := map[string]interface{}{
		"from": from.UTC().Format(time.RFC3339),
		"to":   to.UTC().Format(time.RFC3339),
	}
	if scanResult != "" {
		entry["scanResult"] = scanResult
	}

	body := map[string]interface{}{"data": []interface{}{entry}}

	var logs []URLLog
	if err := c.Post(ctx, "/api/v2/ttp/url/get-logs", body, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// DLPPolicy is one data-leak-prevention policy definition.
type DLPPolicy struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Action      string `json:"action"`
	Enabled     bool   `json:"enabled"`
}

// GetDLPPolicies returns the configured DLP policies.
func (c *Client) GetDLPPolicies(ctx context.Context) ([]DLPPolicy, error) {
	var policies []DLPPolicy
	if err := c.Get(ctx, "/api/v2/dlp/get-policies", &policies); err != nil {
		return nil, err
	}
	return policies, nil
}
