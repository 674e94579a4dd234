package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-plugin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

const (
	PluginMapKey      = "readtrack-hook"
	serviceName       = "readtrack.hook.v1.Hook"
	jsonCodecName     = "json"
	methodGetMetadata = "/" + serviceName + "/GetMetadata"
	methodNotify      = "/" + serviceName + "/Notify"
)

var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "READTRACK_HOOK",
	MagicCookieValue: "readtrack",
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return jsonCodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type Empty struct{}

type Metadata struct {
	Name    string   `json:"name"`
	Version string   `json:"version"`
	Events  []string `json:"events"`
}

type NotifyRequest struct {
	Event      string `json:"event"`
	VaultPath  string `json:"vault_path"`
	SessionID  string `json:"session_id"`
	BookID     string `json:"book_id"`
	BookTitle  string `json:"book_title"`
	EndTime    string `json:"end_time,omitempty"`
	Reason     string `json:"reason,omitempty"`
	OccurredAt string `json:"occurred_at"`
}

type NotifyResponse struct {
	Message string `json:"message"`
}

type HookServer interface {
	GetMetadata(ctx context.Context, in *Empty) (*Metadata, error)
	Notify(ctx context.Context, in *NotifyRequest) (*NotifyResponse, error)
}

type HookClient interface {
	GetMetadata(ctx context.Context) (*Metadata, error)
	Notify(ctx context.Context, in *NotifyRequest) (*NotifyResponse, error)
}

type hookClient struct {
	conn *grpc.ClientConn
}

func NewHookClient(conn *grpc.ClientConn) HookClient {
	return &hookClient{conn: conn}
}

func (c *hookClient) GetMetadata(ctx context.Context) (*Metadata, error) {
	out := &Metadata{}
	if err := c.conn.Invoke(ctx, methodGetMetadata, &Empty{}, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *hookClient) Notify(ctx context.Context, in *NotifyRequest) (*NotifyResponse, error) {
	out := &NotifyResponse{}
	if err := c.conn.Invoke(ctx, methodNotify, in, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func unary[Req any](method string, call func(context.Context, *Req) (any, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/" + method}
			handler := func(ctx context.Context, req any) (any, error) {
				typed, ok := req.(*Req)
				if !ok {
					return nil, fmt.Errorf("invalid request type %T", req)
				}
				return call(ctx, typed)
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func RegisterHookServer(server grpc.ServiceRegistrar, impl HookServer) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*HookServer)(nil),
		Methods: []grpc.MethodDesc{
			unary("GetMetadata", func(ctx context.Context, in *Empty) (any, error) { return impl.GetMetadata(ctx, in) }),
			unary("Notify", func(ctx context.Context, in *NotifyRequest) (any, error) { return impl.Notify(ctx, in) }),
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "schemas/hook-rpc-v1.proto",
	}, impl)
}

type GRPCPlugin struct {
	plugin.NetRPCUnsupportedPlugin
	Impl HookServer
}

func (p *GRPCPlugin) GRPCServer(_ *plugin.GRPCBroker, server *grpc.Server) error {
	RegisterHookServer(server, p.Impl)
	return nil
}

func (p *GRPCPlugin) GRPCClient(_ context.Context, _ *plugin.GRPCBroker, conn *grpc.ClientConn) (any, error) {
	return NewHookClient(conn), nil
}

func PluginMap(impl HookServer) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		PluginMapKey: &GRPCPlugin{Impl: impl},
	}
}
