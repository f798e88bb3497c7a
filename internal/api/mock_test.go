package api

import (
	"context"
	"io"
	"sync"

	fhttp "github.com/bogdanfinn/fhttp"
)

// MockResponseBody is a ReadCloser that returns scripted chunks, one per Read
type MockResponseBody struct {
	chunks [][]byte
	pos    int
	err    error // returned after the last chunk, io.EOF when nil
	closed bool
}

// NewMockResponseBody creates a body that yields data in one read
func NewMockResponseBody(data []byte) *MockResponseBody {
	return &MockResponseBody{chunks: [][]byte{data}}
}

// NewChunkedResponseBody creates a body that yields each chunk in its own read
func NewChunkedResponseBody(chunks ...string) *MockResponseBody {
	body := &MockResponseBody{}
	for _, c := range chunks {
		body.chunks = append(body.chunks, []byte(c))
	}
	return body
}

// Read implements the io.Reader interface
func (m *MockResponseBody) Read(p []byte) (n int, err error) {
	if m.pos >= len(m.chunks) {
		if m.err != nil {
			return 0, m.err
		}
		return 0, io.EOF
	}
	n = copy(p, m.chunks[m.pos])
	if n < len(m.chunks[m.pos]) {
		m.chunks[m.pos] = m.chunks[m.pos][n:]
	} else {
		m.pos++
	}
	return n, nil
}

// Close implements the io.Closer interface
func (m *MockResponseBody) Close() error {
	m.closed = true
	return nil
}

// blockingBody yields its chunks and then blocks until ctx is cancelled,
// like a live stream whose server stopped sending.
type blockingBody struct {
	ctx     context.Context
	chunks  [][]byte
	reached chan struct{}
	once    sync.Once
}

func (b *blockingBody) Read(p []byte) (int, error) {
	if len(b.chunks) > 0 {
		n := copy(p, b.chunks[0])
		b.chunks = b.chunks[1:]
		return n, nil
	}
	b.once.Do(func() { close(b.reached) })
	<-b.ctx.Done()
	return 0, b.ctx.Err()
}

func (b *blockingBody) Close() error { return nil }

// MockHttpClient is a mock implementation of HTTPDoer
type MockHttpClient struct {
	Response *fhttp.Response
	Err      error
	// BodyFunc builds the body from the request when set.
	BodyFunc func(req *fhttp.Request) io.ReadCloser

	Requests []*fhttp.Request
}

// Do records the request and returns the scripted response
func (m *MockHttpClient) Do(req *fhttp.Request) (*fhttp.Response, error) {
	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.BodyFunc != nil {
		return &fhttp.Response{
			StatusCode: 200,
			Body:       m.BodyFunc(req),
			Header:     make(fhttp.Header),
		}, nil
	}
	return m.Response, nil
}

// NewMockHttpClient creates a new MockHttpClient with the given response
func NewMockHttpClient(body []byte, statusCode int) *MockHttpClient {
	return &MockHttpClient{
		Response: &fhttp.Response{
			StatusCode: statusCode,
			Body:       NewMockResponseBody(body),
			Header:     make(fhttp.Header),
		},
	}
}

// NewStreamingMockHttpClient answers 200 with a body split into chunks
func NewStreamingMockHttpClient(chunks ...string) *MockHttpClient {
	return &MockHttpClient{
		Response: &fhttp.Response{
			StatusCode: 200,
			Body:       NewChunkedResponseBody(chunks...),
			Header:     make(fhttp.Header),
		},
	}
}

// NewMockHttpClientWithError creates a new MockHttpClient that returns an error
func NewMockHttpClientWithError(err error) *MockHttpClient {
	return &MockHttpClient{
		Response: nil,
		Err:      err,
	}
}
