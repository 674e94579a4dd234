package out

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	hookrpc "readtrack/internal/modules/hook/adapter/out/rpc"
	"readtrack/internal/modules/hook/domain"
	hookout "readtrack/internal/modules/hook/port/out"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"
)

const (
	defaultStartTimeout = 3 * time.Second
	defaultCallTimeout  = 5 * time.Second
)

// GRPCHost starts a hook binary per call through go-plugin and talks to it
// over gRPC with the JSON codec.
type GRPCHost struct {
	logger hclog.Logger
}

func NewGRPCHost(logger hclog.Logger) hookout.Host {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &GRPCHost{logger: logger}
}

func (h *GRPCHost) CheckLifecycle(ctx context.Context, manifest domain.Manifest) error {
	_, err := h.GetMetadata(ctx, manifest)
	return err
}

func (h *GRPCHost) GetMetadata(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error) {
	client, closeFn, err := h.connect(manifest)
	if err != nil {
		return domain.Metadata{}, err
	}
	defer closeFn()

	callCtx, cancel := callContext(ctx, defaultCallTimeout)
	defer cancel()
	meta, err := client.GetMetadata(callCtx)
	if err != nil {
		return domain.Metadata{}, fmt.Errorf("get metadata: %w", err)
	}
	events := make([]domain.Event, 0, len(meta.Events))
	for _, e := range meta.Events {
		events = append(events, domain.Event(e))
	}
	return domain.Metadata{Name: meta.Name, Version: meta.Version, Events: events}, nil
}

func (h *GRPCHost) Notify(ctx context.Context, manifest domain.Manifest, n domain.Notification) (domain.Ack, error) {
	client, closeFn, err := h.connect(manifest)
	if err != nil {
		return domain.Ack{}, err
	}
	defer closeFn()

	callCtx, cancel := callContext(ctx, defaultCallTimeout)
	defer cancel()
	req := &hookrpc.NotifyRequest{
		Event:      string(n.Event),
		VaultPath:  n.VaultPath,
		SessionID:  n.SessionID,
		BookID:     n.BookID,
		BookTitle:  n.BookTitle,
		Reason:     n.Reason,
		OccurredAt: n.OccurredAt.Format(time.RFC3339),
	}
	if !n.EndTime.IsZero() {
		req.EndTime = n.EndTime.Format(time.RFC3339)
	}
	resp, err := client.Notify(callCtx, req)
	if err != nil {
		if callCtx.Err() == context.DeadlineExceeded {
			return domain.Ack{}, fmt.Errorf("%w: %s", domain.ErrHookTimeout, n.Event)
		}
		return domain.Ack{}, fmt.Errorf("notify %s: %w", n.Event, err)
	}
	return domain.Ack{Message: resp.Message}, nil
}

func (h *GRPCHost) connect(manifest domain.Manifest) (hookrpc.HookClient, func(), error) {
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  hookrpc.HandshakeConfig,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Plugins:          hookrpc.PluginMap(nil),
		Cmd:              exec.Command(manifest.Binary),
		Managed:          true,
		StartTimeout:     defaultStartTimeout,
		Logger:           h.logger.Named(manifest.Name),
	})
	closeFn := func() { client.Kill() }

	rpcClient, err := client.Client()
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("start hook %s: %w", manifest.Name, err)
	}
	raw, err := rpcClient.Dispense(hookrpc.PluginMapKey)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("dispense hook %s: %w", manifest.Name, err)
	}
	typed, ok := raw.(hookrpc.HookClient)
	if !ok {
		closeFn()
		return nil, nil, fmt.Errorf("hook rpc client type mismatch")
	}
	return typed, closeFn, nil
}

func callContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := parent.Deadline(); ok {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
