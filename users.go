package mimecast

import "context"

// DelegateResult reports the outcome of a delegate change.
type DelegateResult struct {
	PrimaryAddress  string `json:"primaryAddress"`
	DelegateAddress string `json:"delegateAddress"`
	Status          string `json:"status"`
}

// AddDelegate grants delegateAddress access to act on behalf of
// primaryAddress.
func (c *Client) AddDelegate(ctx context.Context, primaryAddress, delegateAddress string) (*DelegateResult, error) {
	var errs []string
	if primaryAddress == "" {
		errs = append(errs, "primary address is required")
	}
	if delegateAddress == "" {
		errs = append(errs, "delegate address is required")
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	body := map[string]interface{}{
		"data": []map[string]string{{
			"primaryAddress":  primaryAddress,
			"delegateAddress": delegateAddress,
		}},
	}

	var results []DelegateResult
	if err := c.Post(ctx, "/api/user/add-delegate-user", body, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return &DelegateResult{PrimaryAddress: primaryAddress, DelegateAddress: delegateAddress}, nil
	}
	return &results[0], nil
}
