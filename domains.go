package mimecast

import "context"

// CreateDomainRequest describes a domain to register. At least one
// verification method must be enabled.
type CreateDomainRequest struct {
	Domain        string   `json:"domain"`
	Segment       string   `json:"segment,omitempty"`
	Aliases       []string `json:"aliases,omitempty"`
	VerifyByTXT   bool     `json:"verifyByTxt"`
	VerifyByMX    bool     `json:"verifyByMx"`
	VerifyByDMARC bool     `json:"verifyByDmarc"`
	VerifyByDKIM  bool     `json:"verifyByDkim"`
	VerifyBySPF   bool     `json:"verifyBySpf"`
	VerifyByLink  bool     `json:"verifyByLink"`
	VerifyByEmail bool     `json:"verifyByEmail"`
}

func (r *CreateDomainRequest) validate() error {
	var errs []string
	if r.Domain == "" {
		errs = append(errs, "domain is required")
	}
	if !r.VerifyByTXT && !r.VerifyByMX && !r.VerifyByDMARC && !r.VerifyByDKIM &&
		!r.VerifyBySPF && !r.VerifyByLink && !r.VerifyByEmail {
		errs = append(errs, "at least one verification method must be selected")
	}
	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// Domain describes a registered domain and its verification state.
type Domain struct {
	Domain             string               `json:"domain"`
	VerificationStatus string               `json:"verificationStatus"`
	Methods            []DomainVerification `json:"verificationMethods,omitempty"`
}

// DomainVerification is the state of one verification method.
type DomainVerification struct {
	Type   string `json:"type"`
	Status string `json:"status"`
	Record string `json:"record,omitempty"`
	Value  string `json:"value,omitempty"`
}

// CreateDomain registers a new domain.
func (c *Client) CreateDomain(ctx context.Context, req *CreateDomainRequest) (*Domain, error) {
	if req == nil {
		return nil, &ValidationError{Errors: []string{"request is nil"}}
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	body := map[string]interface{}{"data": []*CreateDomainRequest{req}}

	var domains []Domain
	if err := c.Post(ctx, "/api/domain/create-domain", body, &domains); err != nil {
		return nil, err
	}
	if len(domains) == 0 {
		return &Domain{Domain: req.Domain}, nil
	}
	return &domains[0], nil
}

// GetPendingDomains lists domains awaiting verification, optionally
// filtered to one domain name.
func (c *Client) GetPendingDomains(ctx context.Context, domain string) ([]Domain, error) {
	entry := map[string]interface{}{}
	if domain != "" {
		entry["domain"] = domain
	}
	body := map[string]interface{}{"data": []interface{}{entry}}

	var domains []Domain
	if err := c.Post(ctx, "/api/domain/get-pending-domain", body, &domains); err != nil {
		return nil, err
	}
	return domains, nil
}
