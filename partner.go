package mimecast

import (
	"context"
	"time"
)

// CustomerAccount is one partner-managed customer.
type CustomerAccount struct {
	ID          string `json:"id"`
	CompanyName string `json:"companyName"`
	Domain      string `json:"domain"`
	Plan        string `json:"plan"`
	Status      string `json:"status"`
}

// GetCustomerAccounts lists the partner's customer accounts.
func (c *Client) GetCustomerAccounts(ctx context.Context) ([]CustomerAccount, error) {
	var accounts []CustomerAccount
	if err := c.Get(ctx, "/api/v2/partner/get-customer-accounts", &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// CreateCustomerAccount provisions a new customer account.
func (c *Client) CreateCustomerAccount(ctx context.Context, companyName, domain, plan string) (*CustomerAccount, error) {
	var errs []string
	if companyName == "" {
		errs = append(errs, "company name is required")
	}
	if domain == "" {
		errs = append(errs, "domain is required")
	}
	if plan == "" {
		errs = append(errs, "plan is required")
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	body := map[string]interface{}{
		"data": []map[string]string{{
			"companyName": companyName,
			"domain":      domain,
			"plan":        plan,
		}},
	}

	var accounts []CustomerAccount
	if err := c.Post(ctx, "/api/v2/partner/create-customer-account", body, &accounts); err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return &CustomerAccount{CompanyName: companyName, Domain: domain, Plan: plan}, nil
	}
	return &accounts[0], nil
}

// CustomerUsage summarizes a customer's activity over a period.
type CustomerUsage struct {
	CustomerID     string `json:"customerId"`
	EmailsInbound  int64  `json:"emailsInbound"`
	EmailsOutbound int64  `json:"emailsOutbound"`
	StorageBytes   int64  `json:"storageBytes"`
	ActiveUsers    int    `json:"activeUsers"`
}

// GetCustomerUsage returns usage statistics for one customer over the
// given window.
func (c *Client) GetCustomerUsage(ctx context.Context, customerID string, start, end time.Time) (*CustomerUsage, error) {
	if customerID == "" {
		return nil, &ValidationError{Errors: []string{"customer ID is required"}}
	}

	body := map[string]interface{}{
		"data": []map[string]string{{
			"customerId": customerID,
			"start":      start.UTC().Format(time.RFC3339),
			"end":        end.UTC().Format(time.RFC3339),
		}},
	}

	var usage []CustomerUsage
	if err := c.Post(ctx, "/api/v2/partner/get-customer-usage", body, &usage); err != nil {
		return nil, err
	}
	if len(usage) == 0 {
		return &CustomerUsage{CustomerID: customerID}, nil
	}
	return &usage[0], nil
}
