package remotedrive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"projectdrive/models"
)

type DriveClientOptions struct {
	BaseURL     string
	Credentials CredentialProvider
	HTTPClient  *http.Client
	UserAgent   string
	MaxRetries  int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DriveClient talks to the remote drive REST API. Retries cover transport
// failures, 429 and 5xx responses; everything else is classified and
// returned immediately.
type DriveClient struct {
	baseURL     string
	credentials CredentialProvider
	httpClient  *http.Client
	userAgent   string
	maxRetries  int
	baseDelay   time.Duration
	maxDelay    time.Duration
}

func NewDriveClient(opts DriveClientOptions) *DriveClient {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	baseDelay := opts.BaseDelay
	if baseDelay <= 0 {
		baseDelay = 200 * time.Millisecond
	}
	maxDelay := opts.MaxDelay
	if maxDelay <= 0 {
		maxDelay = 5 * time.Second
	}
	return &DriveClient{
		baseURL:     baseURL,
		credentials: opts.Credentials,
		httpClient:  httpClient,
		userAgent:   strings.TrimSpace(opts.UserAgent),
		maxRetries:  maxRetries,
		baseDelay:   baseDelay,
		maxDelay:    maxDelay,
	}
}

func (c *DriveClient) GetItem(ctx context.Context, itemID string) (*Item, error) {
	if itemID == "" {
		return nil, models.NewDomainError(models.KindMissingParameter, "item id is required")
	}
	body, err := c.do(ctx, http.MethodGet, "/v1/items/"+url.PathEscape(itemID), nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeItem(body)
}

func (c *DriveClient) GetItemByPath(ctx context.Context, path string) (*Item, error) {
	if strings.TrimSpace(path) == "" {
		return nil, models.NewDomainError(models.KindMissingParameter, "item path is required")
	}
	query := url.Values{}
	query.Set("path", path)
	body, err := c.do(ctx, http.MethodGet, "/v1/items/by-path", query, nil)
	if err != nil {
		return nil, err
	}
	return decodeItem(body)
}

func (c *DriveClient) ListChildren(ctx context.Context, folderID string) ([]*Item, error) {
	if folderID == "" {
		return nil, models.NewDomainError(models.KindMissingParameter, "folder id is required")
	}

	items := []*Item{}
	next := "/v1/items/" + url.PathEscape(folderID) + "/children"
	for next != "" {
		body, err := c.do(ctx, http.MethodGet, next, nil, nil)
		if err != nil {
			return nil, err
		}
		var page childrenPage
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, models.WrapDomainError(models.KindUnknown,
				fmt.Sprintf("failed to decode children response: %v", err), err)
		}
		items = append(items, page.Value...)
		if page.NextLink == next {
			break
		}
		next = page.NextLink
	}
	return items, nil
}

func (c *DriveClient) CreateFolder(ctx context.Context, parentID, name string) (*Item, error) {
	if parentID == "" {
		return nil, models.NewDomainError(models.KindMissingParameter, "parent folder id is required")
	}
	if name == "" {
		return nil, models.NewDomainError(models.KindMissingParameter, "folder name is required")
	}

	payload, err := json.Marshal(map[string]interface{}{
		"name":   name,
		"folder": true,
	})
	if err != nil {
		return nil, err
	}
	body, err := c.do(ctx, http.MethodPost, "/v1/items/"+url.PathEscape(parentID)+"/children", nil, payload)
	if err != nil {
		return nil, err
	}
	return decodeItem(body)
}

func (c *DriveClient) UpdateItem(ctx context.Context, itemID string, patch ItemPatch) (*Item, error) {
	if itemID == "" {
		return nil, models.NewDomainError(models.KindMissingParameter, "item id is required")
	}
	if patch.Name == "" && patch.ParentID == "" {
		return nil, models.NewDomainError(models.KindMissingParameter, "item patch is empty")
	}

	payload, err := json.Marshal(patch)
	if err != nil {
		return nil, err
	}
	body, err := c.do(ctx, http.MethodPatch, "/v1/items/"+url.PathEscape(itemID), nil, payload)
	if err != nil {
		return nil, err
	}
	return decodeItem(body)
}

func (c *DriveClient) DownloadContent(ctx context.Context, itemID string) (io.ReadCloser, error) {
	if itemID == "" {
		return nil, models.NewDomainError(models.KindMissingParameter, "item id is required")
	}
	endpoint := c.endpoint("/v1/items/"+url.PathEscape(itemID)+"/content", nil)

	authRetried := false
	for attempt := 0; ; attempt++ {
		req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil, "")
		if err != nil {
			return nil, err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if attempt < c.maxRetries {
				if waitErr := sleepContext(ctx, c.retryDelay(attempt+1, "")); waitErr != nil {
					return nil, waitErr
				}
				continue
			}
			return nil, ClassifyTransport(err)
		}

		if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
			return resp.Body, nil
		}

		respBody, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		if resp.StatusCode == http.StatusUnauthorized && !authRetried {
			c.credentials.Invalidate()
			authRetried = true
			continue
		}
		if retryableStatus(resp.StatusCode) && attempt < c.maxRetries {
			if waitErr := sleepContext(ctx, c.retryDelay(attempt+1, resp.Header.Get("Retry-After"))); waitErr != nil {
				return nil, waitErr
			}
			continue
		}
		return nil, ClassifyResponse(resp.StatusCode, respBody)
	}
}

// UploadContent replaces the content of an existing file item. The body
// reader cannot be replayed, so this call never retries.
func (c *DriveClient) UploadContent(ctx context.Context, itemID string, content io.Reader, size int64) (*Item, error) {
	if itemID == "" {
		return nil, models.NewDomainError(models.KindMissingParameter, "item id is required")
	}

	endpoint := c.endpoint("/v1/items/"+url.PathEscape(itemID)+"/content", nil)
	req, err := c.newRequest(ctx, http.MethodPut, endpoint, content, "application/octet-stream")
	if err != nil {
		return nil, err
	}
	if size >= 0 {
		req.ContentLength = size
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, ClassifyTransport(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusUnauthorized {
			c.credentials.Invalidate()
		}
		return nil, ClassifyResponse(resp.StatusCode, respBody)
	}
	return decodeItem(respBody)
}

func (c *DriveClient) Search(ctx context.Context, query string, limit int) ([]*Item, error) {
	if strings.TrimSpace(query) == "" {
		return nil, models.NewDomainError(models.KindMissingParameter, "search query is required")
	}

	params := url.Values{}
	params.Set("q", query)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	body, err := c.do(ctx, http.MethodGet, "/v1/search", params, nil)
	if err != nil {
		return nil, err
	}

	var page searchPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, models.WrapDomainError(models.KindUnknown,
			fmt.Sprintf("failed to decode search response: %v", err), err)
	}
	return page.Value, nil
}

func (c *DriveClient) Ping(ctx context.Context) error {
	_, err := c.GetItem(ctx, RootItemID)
	return err
}

// do runs one JSON request with retries. The payload is replayable, so
// transport failures, 429 and 5xx responses are retried with backoff,
// honoring Retry-After. A 401 invalidates the cached credential and
// retries once before surfacing AuthExpired.
func (c *DriveClient) do(ctx context.Context, method, urlPath string, query url.Values, payload []byte) ([]byte, error) {
	endpoint := c.endpoint(urlPath, query)

	authRetried := false
	for attempt := 0; ; attempt++ {
		var reqBody io.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}
		contentType := ""
		if payload != nil {
			contentType = "application/json"
		}
		req, err := c.newRequest(ctx, method, endpoint, reqBody, contentType)
		if err != nil {
			return nil, err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if attempt < c.maxRetries {
				if waitErr := sleepContext(ctx, c.retryDelay(attempt+1, "")); waitErr != nil {
					return nil, waitErr
				}
				continue
			}
			return nil, ClassifyTransport(err)
		}

		respBody, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return nil, readErr
		}

		if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
			return respBody, nil
		}

		if resp.StatusCode == http.StatusUnauthorized && !authRetried {
			c.credentials.Invalidate()
			authRetried = true
			continue
		}
		if retryableStatus(resp.StatusCode) && attempt < c.maxRetries {
			if waitErr := sleepContext(ctx, c.retryDelay(attempt+1, resp.Header.Get("Retry-After"))); waitErr != nil {
				return nil, waitErr
			}
			continue
		}
		return nil, ClassifyResponse(resp.StatusCode, respBody)
	}
}

func (c *DriveClient) newRequest(ctx context.Context, method, endpoint string, body io.Reader, contentType string) (*http.Request, error) {
	if c.credentials == nil {
		return nil, models.NewDomainError(models.KindAuthExpired, "credential provider is not configured")
	}
	token, err := c.credentials.CurrentToken(ctx)
	if err != nil {
		return nil, ClassifyTransport(err)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, models.NewDomainError(models.KindAuthExpired, "credential provider returned an empty token")
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return req, nil
}

func (c *DriveClient) endpoint(urlPath string, query url.Values) string {
	endpoint := urlPath
	if !strings.HasPrefix(urlPath, "http://") && !strings.HasPrefix(urlPath, "https://") {
		endpoint = c.baseURL + urlPath
	}
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	return endpoint
}

func (c *DriveClient) retryDelay(attempt int, retryAfterHeader string) time.Duration {
	if retryAfter := parseRetryAfterSeconds(retryAfterHeader); retryAfter > 0 {
		if retryAfter > c.maxDelay {
			return c.maxDelay
		}
		return retryAfter
	}
	delay := c.baseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= c.maxDelay {
			return c.maxDelay
		}
	}
	if delay > c.maxDelay {
		return c.maxDelay
	}
	return delay
}

func retryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || (status >= 500 && status <= 599)
}

func decodeItem(body []byte) (*Item, error) {
	var item Item
	if err := json.Unmarshal(body, &item); err != nil {
		return nil, models.WrapDomainError(models.KindUnknown,
			fmt.Sprintf("failed to decode item response: %v", err), err)
	}
	return &item, nil
}

func parseRetryAfterSeconds(header string) time.Duration {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0
	}
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func sleepContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
