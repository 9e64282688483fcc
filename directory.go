package mimecast

import "context"

// Directory group sources.
const (
	GroupSourceLDAP  = "ldap"
	GroupSourceCloud = "cloud"
)

// Group is one directory group or folder.
type Group struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	EmailAddress string `json:"emailAddress"`
	ParentID     string `json:"parentId"`
	Source       string `json:"source"`
	Type         string `json:"type"`
	UserCount    int    `json:"userCount"`
	FolderCount  int    `json:"folderCount"`
}

type groupFolders struct {
	Folders []Group `json:"folders"`
}

// FindGroups searches directory groups. An empty source searches both the
// LDAP and cloud directories and merges the results.
func (c *Client) FindGroups(ctx context.Context, query, source string) ([]Group, error) {
	if source != "" {
		return c.findGroupsSource(ctx, query, source)
	}

	ldap, err := c.findGroupsSource(ctx, query, GroupSourceLDAP)
	if err != nil {
		return nil, err
	}
	cloud, err := c.findGroupsSource(ctx, query, GroupSourceCloud)
	if err != nil {
		return nil, err
	}
	return append(ldap, cloud...), nil
}

func (c *Client) findGroupsSource(ctx context.Context, query, source string) ([]Group, error) {
	entry := map[string]interface{}{"source": source}
	if query != "" {
		entry["query"] = query
	}
	body := map[string]interface{}{"data": []interface{}{entry}}

	var results []groupFolders
	if err := c.Post(ctx, "/api/directory/find-groups", body, &results); err != nil {
		return nil, err
	}

	var groups []Group
	for _, r := range results {
		groups = append(groups, r.Folders...)
	}
	return groups, nil
}

// CreateGroup creates a cloud directory group, optionally under a parent.
func (c *Client) CreateGroup(ctx context.Context, description, parentID string) (*Group, error) {
	if description == "" {
		return nil, &ValidationError{Errors: []string{"description is required"}}
	}

	entry := map[string]interface{}{"description": description}
	if parentID != "" {
		entry["parentId"] = parentID
	}
	body := map[string]interface{}{"data": []interface{}{entry}}

	var groups []Group
	if err := c.Post(ctx, "/api/directory/create-group", body, &groups); err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return &Group{Description: description}, nil
	}
	return &groups[0], nil
}

// GroupMember is one member of a directory group.
type GroupMember struct {
	ID           string `json:"id"`
	EmailAddress string `json:"emailAddress"`
	Internal     bool   `json:"internal"`
	Type         string `json:"type"`
	Status       string `json:"status"`
}

// GroupMemberPage is one page of group members plus the token for the
// next page; an empty NextToken means the listing is complete.
type GroupMemberPage struct {
	Members   []GroupMember
	NextToken string
}

// GetGroupMembers lists the members of a cloud directory group.
func (c *Client) GetGroupMembers(ctx context.Context, groupID string) (*GroupMemberPage, error) {
	if groupID == "" {
		return nil, &ValidationError{Errors: []string{"group ID is required"}}
	}

	env, err := c.getEnvelope(ctx, "/directory/cloud-gateway/v1/groups/"+groupID+"/members")
	if err != nil {
		return nil, err
	}

	page := &GroupMemberPage{}
	if len(env.Data) > 0 {
		if err := decodeData(env.Data, &page.Members); err != nil {
			return nil, err
		}
	}
	if env.Meta.Pagination != nil {
		page.NextToken = env.Meta.Pagination.PageToken
	}
	return page, nil
}

// GroupMemberChange reports the outcome of a membership change.
type GroupMemberChange struct {
	ID           string `json:"id"`
	EmailAddress string `json:"emailAddress"`
	Domain       string `json:"domain"`
	Status       string `json:"status"`
}

// AddGroupMember adds a member to a group by email address or by domain;
// exactly one of the two must be set.
func (c *Client) AddGroupMember(ctx context.Context, groupID, email, domain string) (*GroupMemberChange, error) {
	var errs []string
	if groupID == "" {
		errs = append(errs, "group ID is required")
	}
	if email == "" && domain == "" {
		errs = append(errs, "either email or domain must be provided")
	}
	if email != "" && domain != "" {
		errs = append(errs, "only one of email or domain can be provided")
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	entry := map[string]interface{}{"id": groupID}
	if email != "" {
		entry["emailAddress"] = email
	} else {
		entry["domain"] = domain
	}
	body := map[string]interface{}{"data": []interface{}{entry}}

	var changes []GroupMemberChange
	if err := c.Post(ctx, "/api/directory/add-group-member", body, &changes); err != nil {
		return nil, err
	}
	if len(changes) == 0 {
		return &GroupMemberChange{ID: groupID}, nil
	}
	return &changes[0], nil
}
