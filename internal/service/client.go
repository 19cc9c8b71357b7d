package service

import (
	"strings"

	"connectrpc.com/connect"
)

// NewClient returns a Connect client for one FinanceService procedure
// served at baseURL.
func NewClient[Req, Res any](httpClient connect.HTTPClient, baseURL, name string, opts ...connect.ClientOption) *connect.Client[Req, Res] {
	opts = append(opts, connect.WithCodec(jsonCodec{}))
	return connect.NewClient[Req, Res](httpClient, strings.TrimRight(baseURL, "/")+Procedure(name), opts...)
}
