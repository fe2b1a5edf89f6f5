package backend

import (
	"context"
	"io"
	"net/http"
	"strings"
)

type ChatRequest struct {
	Message   string `json:"message"`
	ProfileID string `json:"profile_id,omitempty"`
}

// StreamChat posts the message and consumes the incremental byte stream,
// calling onChunk for every chunk in arrival order. It returns the full
// accumulated reply. A non-nil error means the reply is incomplete and the
// partial text must not be shown as an assistant message.
func (c *Client) StreamChat(ctx context.Context, req ChatRequest, onChunk func(chunk string) error) (string, error) {
	resp, err := c.do(ctx, http.MethodPost, "/chat", req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		return "", &HTTPError{Status: resp.StatusCode, Message: serverMessage(raw)}
	}

	var full strings.Builder
	buf := make([]byte, 4096)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			chunk := string(buf[:n])
			full.WriteString(chunk)
			if onChunk != nil {
				if cbErr := onChunk(chunk); cbErr != nil {
					return "", cbErr
				}
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}

	return full.String(), nil
}
