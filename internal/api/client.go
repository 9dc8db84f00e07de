package api

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client calls the view service over a gRPC connection.
type Client struct {
	conn *grpc.ClientConn
}

// Dial connects to the daemon's Unix domain socket.
func Dial(socketPath string) (*Client, error) {
	conn, err := grpc.NewClient(
		"unix://"+socketPath,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("dial daemon: %w", err)
	}
	return NewClient(conn), nil
}

// NewClient wraps an existing connection.
func NewClient(conn *grpc.ClientConn) *Client {
	return &Client{conn: conn}
}

// Close closes the gRPC connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// ListBuckets fetches one page of a chat grouped by day.
func (c *Client) ListBuckets(ctx context.Context, req ListBucketsRequest) (*ListBucketsResponse, error) {
	var resp ListBucketsResponse
	if err := c.invoke(ctx, MethodListBuckets, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Search fetches highlighted hits for a query.
func (c *Client) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	var resp SearchResponse
	if err := c.invoke(ctx, MethodSearch, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListChats fetches stored chats.
func (c *Client) ListChats(ctx context.Context, req ListChatsRequest) (*ListChatsResponse, error) {
	var resp ListChatsResponse
	if err := c.invoke(ctx, MethodListChats, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) invoke(ctx context.Context, method string, req, resp any) error {
	in, err := toStruct(req)
	if err != nil {
		return err
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, method, in, out); err != nil {
		return err
	}
	return fromStruct(out, resp)
}
