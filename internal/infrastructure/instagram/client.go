package instagram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"instareply/internal/utils/apperrors"
)

const (
	defaultGraphBaseURL     = "https://graph.facebook.com/v19.0"
	defaultMessagingBaseURL = "https://graph.instagram.com/v21.0"

	// Tokens with this prefix come from the Instagram API directly and
	// cannot be introspected through the Facebook page graph.
	directTokenPrefix = "IGAAQ"
)

// Config wires the Graph API client.
type Config struct {
	AccessToken string
	// BusinessAccountID pairs with a direct token (step 1 of resolution).
	BusinessAccountID string
	// PageID, when set, is probed before enumerating /me/accounts.
	PageID string
	// GraphBaseURL and MessagingBaseURL override the provider hosts in tests.
	GraphBaseURL     string
	MessagingBaseURL string
}

// Context is a resolved send credential and business account pair.
type Context struct {
	PageAccessToken string
	IGUserID        string
}

// Profile is a sender's public profile.
type Profile struct {
	Name       string `json:"name"`
	Username   string `json:"username"`
	ProfilePic string `json:"profile_pic"`
}

// Client talks to the Instagram/Facebook Graph API.
type Client struct {
	graph       *resty.Client
	messaging   *resty.Client
	accessToken string
	accountID   string
	pageID      string
	log         zerolog.Logger
}

// NewClient builds a Graph API client.
func NewClient(cfg Config, log zerolog.Logger) *Client {
	graphBase := cfg.GraphBaseURL
	if graphBase == "" {
		graphBase = defaultGraphBaseURL
	}
	messagingBase := cfg.MessagingBaseURL
	if messagingBase == "" {
		messagingBase = defaultMessagingBaseURL
	}

	return &Client{
		graph: resty.New().
			SetBaseURL(graphBase).
			SetTimeout(30 * time.Second),
		messaging: resty.New().
			SetBaseURL(messagingBase).
			SetHeader("Content-Type", "application/json").
			SetTimeout(30 * time.Second),
		accessToken: cfg.AccessToken,
		accountID:   cfg.BusinessAccountID,
		pageID:      cfg.PageID,
		log:         log.With().Str("component", "instagram").Logger(),
	}
}

type graphError struct {
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

type nodeResponse struct {
	graphError
	Name                     string `json:"name"`
	AccessToken              string `json:"access_token"`
	InstagramBusinessAccount *struct {
		ID string `json:"id"`
	} `json:"instagram_business_account"`
}

type accountsResponse struct {
	graphError
	Data []nodeResponse `json:"data"`
}

// ResolveContext determines the send credential and business account for the
// configured token. Resolution is ordered by increasing cost and ambiguity:
// direct token, page token, configured page probe, page enumeration.
func (c *Client) ResolveContext(ctx context.Context) (*Context, error) {
	if c.accessToken == "" {
		return nil, apperrors.New(apperrors.ErrTypeContextResolution, "missing Instagram access token")
	}

	// Direct Instagram tokens cannot be introspected via the page graph;
	// they pair with the statically configured business account.
	if strings.HasPrefix(c.accessToken, directTokenPrefix) {
		if c.accountID == "" {
			return nil, apperrors.New(apperrors.ErrTypeContextResolution,
				"direct token detected but INSTAGRAM_USER_ID is not configured")
		}
		c.log.Debug().Msg("direct token, bypassing page discovery")
		return &Context{PageAccessToken: c.accessToken, IGUserID: c.accountID}, nil
	}

	c.logPermissions(ctx)

	// Try the token as a page token with a linked business account.
	var me nodeResponse
	resp, err := c.graph.R().
		SetContext(ctx).
		SetQueryParam("fields", "instagram_business_account").
		SetQueryParam("access_token", c.accessToken).
		SetResult(&me).
		Get("/me")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrTypeContextResolution, "identity lookup failed", err)
	}
	if !resp.IsError() && me.InstagramBusinessAccount != nil {
		return &Context{PageAccessToken: c.accessToken, IGUserID: me.InstagramBusinessAccount.ID}, nil
	}

	c.log.Debug().Msg("token is not a linked page token, attempting page discovery")

	// Probe the configured page before enumerating everything.
	if c.pageID != "" {
		if resolved := c.probePage(ctx); resolved != nil {
			return resolved, nil
		}
	}

	// Enumerate pages reachable by the token and take the first one with a
	// linked business account.
	var accounts accountsResponse
	resp, err = c.graph.R().
		SetContext(ctx).
		SetQueryParam("fields", "access_token,instagram_business_account,name").
		SetQueryParam("access_token", c.accessToken).
		SetResult(&accounts).
		Get("/me/accounts")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrTypeContextResolution, "page enumeration failed", err)
	}
	if resp.IsError() || accounts.Error != nil {
		msg := "could not resolve Instagram account"
		if accounts.Error != nil {
			msg = accounts.Error.Message
		}
		return nil, apperrors.Newf(apperrors.ErrTypeContextResolution, "failed to list pages: %s", msg)
	}

	c.log.Debug().Int("pages", len(accounts.Data)).Msg("linked pages found")
	for _, page := range accounts.Data {
		if page.InstagramBusinessAccount != nil {
			c.log.Info().Str("page", page.Name).Msg("selected page with linked business account")
			return &Context{
				PageAccessToken: page.AccessToken,
				IGUserID:        page.InstagramBusinessAccount.ID,
			}, nil
		}
	}

	return nil, apperrors.New(apperrors.ErrTypeContextResolution,
		`no Instagram business account found; ensure the token has "pages_show_list" and "instagram_basic" permissions and a page linked to an Instagram business account`)
}

// probePage checks the configured page for a linked business account. Any
// failure falls through to enumeration.
func (c *Client) probePage(ctx context.Context) *Context {
	var page nodeResponse
	resp, err := c.graph.R().
		SetContext(ctx).
		SetQueryParam("fields", "access_token,instagram_business_account,name").
		SetQueryParam("access_token", c.accessToken).
		SetResult(&page).
		Get("/" + c.pageID)
	if err != nil || resp.IsError() {
		c.log.Warn().Err(err).Str("page_id", c.pageID).Msg("configured page probe failed")
		return nil
	}
	if page.InstagramBusinessAccount == nil {
		c.log.Warn().Str("page_id", c.pageID).Msg("configured page has no linked business account")
		return nil
	}
	c.log.Info().Str("page", page.Name).Msg("using configured page")
	return &Context{
		PageAccessToken: page.AccessToken,
		IGUserID:        page.InstagramBusinessAccount.ID,
	}
}

// logPermissions logs the token's granted capabilities. Purely diagnostic.
func (c *Client) logPermissions(ctx context.Context) {
	var payload struct {
		Data []struct {
			Permission string `json:"permission"`
			Status     string `json:"status"`
		} `json:"data"`
	}
	resp, err := c.graph.R().
		SetContext(ctx).
		SetQueryParam("access_token", c.accessToken).
		SetResult(&payload).
		Get("/me/permissions")
	if err != nil || resp.IsError() {
		c.log.Debug().Err(err).Msg("permission lookup failed")
		return
	}
	perms := make([]string, len(payload.Data))
	for i, p := range payload.Data {
		perms[i] = fmt.Sprintf("%s (%s)", p.Permission, p.Status)
	}
	c.log.Debug().Strs("permissions", perms).Msg("token permissions")
}

type sendResponse struct {
	graphError
	RecipientID string `json:"recipient_id"`
	MessageID   string `json:"message_id"`
}

// SendMessage resolves context and dispatches a text message. The caller
// decides whether to retry; the client never does.
func (c *Client) SendMessage(ctx context.Context, recipientID, text string) error {
	resolved, err := c.ResolveContext(ctx)
	if err != nil {
		return err
	}

	body := map[string]any{
		"recipient": map[string]string{"id": recipientID},
		"message":   map[string]string{"text": text},
	}

	var result sendResponse
	resp, err := c.messaging.R().
		SetContext(ctx).
		SetQueryParam("access_token", resolved.PageAccessToken).
		SetBody(body).
		SetResult(&result).
		SetError(&result).
		Post(fmt.Sprintf("/%s/messages", resolved.IGUserID))
	if err != nil {
		return apperrors.Wrap(apperrors.ErrTypeDelivery, "send request failed", err)
	}
	if resp.IsError() {
		msg := "failed to send message"
		if result.Error != nil {
			msg = result.Error.Message
		}
		return apperrors.Newf(apperrors.ErrTypeDelivery, "provider rejected send (%d): %s", resp.StatusCode(), msg)
	}

	c.log.Info().Str("recipient_id", recipientID).Msg("message sent")
	return nil
}

// FetchProfile returns the sender's public profile. A nil Profile with nil
// error means the profile is not available; a non-nil error is a transient
// failure. Callers proceed without profile data in both cases.
func (c *Client) FetchProfile(ctx context.Context, userID string) (*Profile, error) {
	resolved, err := c.ResolveContext(ctx)
	if err != nil {
		return nil, err
	}

	var profile Profile
	resp, err := c.messaging.R().
		SetContext(ctx).
		SetQueryParam("fields", "name,username,profile_pic").
		SetQueryParam("access_token", resolved.PageAccessToken).
		SetResult(&profile).
		Get("/" + userID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrTypeExternal, "profile request failed", err)
	}
	if resp.IsError() {
		// Missing granular permissions or a deleted account; not transient.
		c.log.Debug().Str("user_id", userID).Int("status", resp.StatusCode()).Msg("profile not available")
		return nil, nil
	}
	return &profile, nil
}
