package videodb

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// Calls outside the enveloped API go through the transfer session: they get
// the same retry policy but no access token and no envelope handling.

// uploadFile sends the file at path as the multipart field "file" to a
// presigned upload URL.
func (c *Client) uploadFile(ctx context.Context, uploadURL, path string) error {
	resp, err := c.transfer.R().
		SetContext(ctx).
		SetFile("file", path).
		Post(uploadURL)
	if err != nil {
		return fmt.Errorf("POST %s: %w", uploadURL, err)
	}

	return checkTransferResponse(resp)
}

// postJSON sends body as JSON to an absolute URL and returns the raw
// response body.
func (c *Client) postJSON(ctx context.Context, url string, body any) ([]byte, error) {
	resp, err := c.transfer.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(url)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", url, err)
	}

	if err := checkTransferResponse(resp); err != nil {
		return nil, err
	}

	return resp.Body(), nil
}

func checkTransferResponse(resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}

	body := resp.String()
	if body == "" {
		body = "(empty error body)"
	}

	return fmt.Errorf("%s %s returned %d: %s", resp.Request.Method, resp.Request.URL, resp.StatusCode(), body)
}
