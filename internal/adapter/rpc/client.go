package rpc

import (
	"context"
	"errors"
	"fmt"
	"io"

	"google.golang.org/grpc"
)

// Client calls the inference service over an established connection
type Client struct {
	conn grpc.ClientConnInterface
}

// NewClient creates a new inference service client
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// Predict streams reqs and returns the single response
func (c *Client) Predict(ctx context.Context, reqs []*PredictRequest) (*PredictResponse, error) {
	var resp PredictResponse
	if err := c.call(ctx, 0, PredictMethod, toAny(reqs), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SentenceVector streams reqs and returns the single response
func (c *Client) SentenceVector(ctx context.Context, reqs []*SentenceVectorRequest) (*SentenceVectorResponse, error) {
	var resp SentenceVectorResponse
	if err := c.call(ctx, 1, SentenceVectorMethod, toAny(reqs), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) call(ctx context.Context, streamIndex int, method string, reqs []any, resp any) error {
	stream, err := c.conn.NewStream(ctx, &ServiceDesc.Streams[streamIndex], method, grpc.CallContentSubtype(CodecName))
	if err != nil {
		return fmt.Errorf("failed to open stream: %w", err)
	}

	for _, req := range reqs {
		// io.EOF means the server ended the stream; RecvMsg reports why
		if err := stream.SendMsg(req); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("failed to send request: %w", err)
		}
	}
	if err := stream.CloseSend(); err != nil {
		return fmt.Errorf("failed to close stream: %w", err)
	}
	return stream.RecvMsg(resp)
}

func toAny[T any](reqs []*T) []any {
	out := make([]any, len(reqs))
	for i, r := range reqs {
		out[i] = r
	}
	return out
}
