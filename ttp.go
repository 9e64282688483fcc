package mimecast

import "context"

// Managed URL actions and match types.
const (
	URLActionBlock  = "block"
	URLActionPermit = "permit"

	URLMatchDomain   = "domain"
	URLMatchExplicit = "explicit"
)

// ManagedURL is one URL protection entry.
type ManagedURL struct {
	ID                   string `json:"id,omitempty"`
	URL                  string `json:"url"`
	Action               string `json:"action"`
	MatchType            string `json:"matchType"`
	Comment              string `json:"comment,omitempty"`
	DisableLogClick      bool   `json:"disableLogClick"`
	DisableRewrite       bool   `json:"disableRewrite"`
	DisableUserAwareness bool   `json:"disableUserAwareness"`
}

func (u *ManagedURL) validate() error {
	var errs []string
	if u.URL == "" {
		errs = append(errs, "url is required")
	}
	if u.Action != URLActionBlock && u.Action != URLActionPermit {
		errs = append(errs, "action must be either block or permit")
	}
	if u.MatchType != URLMatchDomain && u.MatchType != URLMatchExplicit {
		errs = append(errs, "matchType must be either domain or explicit")
	}
	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// ManagedURLOption adjusts a block or permit entry before it is sent.
type ManagedURLOption func(*ManagedURL)

// WithURLComment attaches a comment to the entry.
func WithURLComment(comment string) ManagedURLOption {
	return func(u *ManagedURL) { u.Comment = comment }
}

// WithURLMatchType overrides the match type (URLMatchDomain or
// URLMatchExplicit).
func WithURLMatchType(matchType string) ManagedURLOption {
	return func(u *ManagedURL) { u.MatchType = matchType }
}

// WithoutClickLogging disables click logging on the entry.
func WithoutClickLogging() ManagedURLOption {
	return func(u *ManagedURL) { u.DisableLogClick = true }
}

// WithoutRewrite disables URL rewriting on the entry.
func WithoutRewrite() ManagedURLOption {
	return func(u *ManagedURL) { u.DisableRewrite = true }
}

// WithoutUserAwareness disables the user awareness prompt on the entry.
func WithoutUserAwareness() ManagedURLOption {
	return func(u *ManagedURL) { u.DisableUserAwareness = true }
}

// CreateManagedURLs submits URL protection entries in one call.
func (c *Client) CreateManagedURLs(ctx context.Context, urls []ManagedURL) ([]ManagedURL, error) {
	if len(urls) == 0 {
		return nil, &ValidationError{Errors: []string{"at least one URL is required"}}
	}
	for i := range urls {
		if err := urls[i].validate(); err != nil {
			return nil, err
		}
	}

	body := map[string]interface{}{"data": urls}

	var created []ManagedURL
	if err := c.Post(ctx, "/api/ttp/url/create-managed-url", body, &created); err != nil {
		return nil, err
	}
	return created, nil
}

// BlockURL adds a blocked managed URL. Blocks default to domain matching
// so the whole site is covered.
func (c *Client) BlockURL(ctx context.Context, url string, opts ...ManagedURLOption) (*ManagedURL, error) {
	return c.createSingleURL(ctx, ManagedURL{
		URL:       url,
		Action:    URLActionBlock,
		MatchType: URLMatchDomain,
	}, opts)
}

// PermitURL adds a permitted managed URL. Permits default to explicit
// matching so only the exact URL is allowed.
func (c *Client) PermitURL(ctx context.Context, url string, opts ...ManagedURLOption) (*ManagedURL, error) {
	return c.createSingleURL(ctx, ManagedURL{
		URL:       url,
		Action:    URLActionPermit,
		MatchType: URLMatchExplicit,
	}, opts)
}

func (c *Client) createSingleURL(ctx context.Context, entry ManagedURL, opts []ManagedURLOption) (*ManagedURL, error) {
	for _, opt := range opts {
		opt(&entry)
	}
	created, err := c.CreateManagedURLs(ctx, []ManagedURL{entry})
	if err != nil {
		return nil, err
	}
	if len(created) == 0 {
		return &entry, nil
	}
	return &created[0], nil
}
