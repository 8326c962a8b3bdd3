package graph

import (
	"context"
	"errors"
	"net/http"
	"net/url"
)

// ErrMissingCredentials is returned when the page id or long-lived access
// token is absent from configuration.
var ErrMissingCredentials = errors.New("facebook page id or access token is not configured")

// PageAccess is the per-publish credential context: the page access token
// and, when the page has one linked, the Instagram business account id.
// It is short-lived and must be resolved fresh for every publish.
type PageAccess struct {
	PageID              string
	PageAccessToken     string
	InstagramBusinessID string
}

// ResolvePageAccess exchanges the long-lived user token for the page
// access token and looks up the linked Instagram business account.
func ResolvePageAccess(ctx context.Context, c *Client, pageID, userToken string) (*PageAccess, error) {
	if pageID == "" || userToken == "" {
		return nil, ErrMissingCredentials
	}

	params := url.Values{}
	params.Set("fields", "access_token,instagram_business_account")
	params.Set("access_token", userToken)

	var result struct {
		AccessToken              string `json:"access_token"`
		InstagramBusinessAccount *struct {
			ID string `json:"id"`
		} `json:"instagram_business_account"`
	}
	if err := c.Get(ctx, pageID, params, &result); err != nil {
		return nil, err
	}

	if result.AccessToken == "" {
		return nil, &UpstreamError{StatusCode: http.StatusOK, Message: "no page access token returned"}
	}

	access := &PageAccess{
		PageID:          pageID,
		PageAccessToken: result.AccessToken,
	}
	if result.InstagramBusinessAccount != nil {
		access.InstagramBusinessID = result.InstagramBusinessAccount.ID
	}

	return access, nil
}
