package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	http "github.com/bogdanfinn/fhttp"

	apierrors "github.com/diogo/ssechat/internal/errors"
	"github.com/diogo/ssechat/internal/models"
	"github.com/diogo/ssechat/internal/sse"
)

// readChunkSize is the size of each body read fed to the decoder
const readChunkSize = 4096

// maxErrorBody limits how much of a failed response is kept for diagnostics
const maxErrorBody = 4096

// MessageFunc receives every message decoded from a stream, in order
type MessageFunc func(models.Message)

// Open posts text to the endpoint and returns the live event-stream body.
// The caller must close it. Cancelling ctx aborts the request and the body.
func (c *Client) Open(ctx context.Context, text string) (io.ReadCloser, error) {
	if c.IsClosed() {
		return nil, apierrors.ErrClientClosed
	}

	body, err := json.Marshal(models.StreamRequest{Message: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	c.logger.Debug("opening stream", "endpoint", c.endpoint, "bytes", len(body))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, apierrors.NewCancelledError(ctx.Err())
		}
		return nil, apierrors.NewNetworkErrorWithEndpoint("open stream", c.endpoint, err)
	}
	if resp == nil || resp.Body == nil {
		return nil, apierrors.NewNetworkErrorWithEndpoint("open stream", c.endpoint, apierrors.ErrNoBody)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, apierrors.NewAPIErrorWithBody(resp.StatusCode, c.endpoint, "stream request failed", string(errorBody))
	}

	return resp.Body, nil
}

// Stream runs one turn: it opens the stream and calls fn for every data
// frame until the end frame, EOF, an error or cancellation.
//
// It returns nil on the end frame. EOF without an end frame also counts as
// normal completion and is logged as a warning.
func (c *Client) Stream(ctx context.Context, text string, fn MessageFunc) error {
	body, err := c.Open(ctx, text)
	if err != nil {
		return err
	}
	defer body.Close()

	decoder := sse.NewDecoder(
		sse.WithMaxBufferSize(c.maxFrameSize),
		sse.WithMalformedHandler(func(err *apierrors.MalformedFrameError) {
			c.logger.Debug("dropping malformed frame", "reason", err.Reason, "data", err.Data)
		}),
	)

	err = c.readLoop(ctx, body, decoder, fn)

	stats := decoder.Stats()
	if discarded := decoder.Close(); discarded > 0 {
		c.logger.Debug("discarded partial frame", "bytes", discarded)
	}
	c.logger.Debug("stream closed",
		"frames", stats.Data,
		"malformed", stats.Malformed,
		"ignored", stats.Ignored,
		"error", err,
	)

	return err
}

func (c *Client) readLoop(ctx context.Context, body io.Reader, decoder *sse.Decoder, fn MessageFunc) error {
	buf := make([]byte, readChunkSize)
	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			frames, err := decoder.Decode(buf[:n])
			for _, frame := range frames {
				if frame.Type == sse.FrameEnd {
					return nil
				}
				if ctx.Err() != nil {
					return apierrors.NewCancelledError(ctx.Err())
				}
				fn(frame.Message())
			}
			if err != nil {
				return err
			}
		}

		if readErr != nil {
			if ctx.Err() != nil {
				return apierrors.NewCancelledError(ctx.Err())
			}
			if errors.Is(readErr, io.EOF) {
				c.logger.Warn("stream ended without end frame", "endpoint", c.endpoint)
				return nil
			}
			return apierrors.NewNetworkErrorWithEndpoint("read stream", c.endpoint, readErr)
		}
	}
}
