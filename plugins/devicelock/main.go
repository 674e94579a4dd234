// Command devicelock is the reference readtrack hook. It records lock and
// unlock requests in <vault>/.readtrack/devicelock.log instead of touching a
// real device.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	hookrpc "readtrack/internal/modules/hook/adapter/out/rpc"

	"github.com/hashicorp/go-plugin"
)

type server struct {
	mu sync.Mutex
}

type entry struct {
	Action    string `json:"action"`
	SessionID string `json:"session_id,omitempty"`
	BookTitle string `json:"book_title,omitempty"`
	Until     string `json:"until,omitempty"`
	Reason    string `json:"reason,omitempty"`
	At        string `json:"at"`
}

func (s *server) GetMetadata(_ context.Context, _ *hookrpc.Empty) (*hookrpc.Metadata, error) {
	return &hookrpc.Metadata{
		Name:    "devicelock",
		Version: "1.0.0",
		Events:  []string{"read_start", "read_end"},
	}, nil
}

func (s *server) Notify(_ context.Context, in *hookrpc.NotifyRequest) (*hookrpc.NotifyResponse, error) {
	e := entry{SessionID: in.SessionID, BookTitle: in.BookTitle, At: in.OccurredAt}
	var message string
	switch in.Event {
	case "read_start":
		e.Action = "lock"
		e.Until = in.EndTime
		message = "device locked"
		if until, err := time.Parse(time.RFC3339, in.EndTime); err == nil {
			message = fmt.Sprintf("device locked until %s", until.Local().Format("15:04"))
		}
	case "read_end":
		e.Action = "unlock"
		e.Reason = in.Reason
		message = "device unlocked"
	default:
		return nil, fmt.Errorf("unknown event: %s", in.Event)
	}
	if err := s.record(in.VaultPath, e); err != nil {
		return nil, err
	}
	return &hookrpc.NotifyResponse{Message: message}, nil
}

func (s *server) record(vaultPath string, e entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	dir := filepath.Join(vaultPath, ".readtrack")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "devicelock.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer func() { _ = f.Close() }()
	return json.NewEncoder(f).Encode(e)
}

func main() {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: hookrpc.HandshakeConfig,
		Plugins:         hookrpc.PluginMap(&server{}),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
}
