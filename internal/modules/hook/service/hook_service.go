package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"readtrack/internal/modules/hook/domain"
	"readtrack/internal/modules/hook/dto"
	hookout "readtrack/internal/modules/hook/port/out"
	"readtrack/internal/platform/clock"

	hclog "github.com/hashicorp/go-hclog"
)

type HookService struct {
	store  hookout.ManifestStore
	host   hookout.Host
	clock  clock.Clock
	logger hclog.Logger
}

func NewHookService(store hookout.ManifestStore, host hookout.Host, clk clock.Clock, logger hclog.Logger) *HookService {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &HookService{store: store, host: host, clock: clk, logger: logger}
}

func (s *HookService) List(ctx context.Context) ([]dto.HookInfo, error) {
	manifests, err := s.loadValidated(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.HookInfo, 0, len(manifests))
	for _, m := range manifests {
		events := make([]string, 0, len(m.Events))
		for _, e := range m.Events {
			events = append(events, string(e))
		}
		out = append(out, dto.HookInfo{Name: m.Name, Version: m.Version, Enabled: m.Enabled, Binary: m.Binary, Events: events})
	}
	return out, nil
}

func (s *HookService) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]dto.DoctorResult, 0, len(manifests))
	for _, m := range manifests {
		result := dto.DoctorResult{Name: m.Name}
		if err := m.Validate(); err != nil {
			result.Error = err.Error()
			results = append(results, result)
			continue
		}
		result.BinaryReachable = fileExists(m.Binary)
		if !result.BinaryReachable {
			result.Error = fmt.Sprintf("binary does not exist: %s", m.Binary)
			results = append(results, result)
			continue
		}
		if err := checksumMatches(m.Binary, m.SHA256); err != nil {
			result.Error = err.Error()
			results = append(results, result)
			continue
		}
		result.ChecksumValid = true
		if m.Enabled && s.host != nil {
			if err := s.host.CheckLifecycle(ctx, m); err != nil {
				result.Error = err.Error()
			} else {
				result.LifecycleOK = true
			}
		}
		results = append(results, result)
	}
	return results, nil
}

// Dispatch notifies every enabled hook subscribed to the event. A failing hook
// does not stop the others; all failures come back joined.
func (s *HookService) Dispatch(ctx context.Context, input dto.DispatchInput) (dto.DispatchOutput, error) {
	notification := domain.Notification{
		Event:      domain.Event(input.Event),
		VaultPath:  input.VaultPath,
		SessionID:  input.SessionID,
		BookID:     input.BookID,
		BookTitle:  input.BookTitle,
		EndTime:    input.EndTime,
		Reason:     input.Reason,
		OccurredAt: s.clock.Now(),
	}
	if err := notification.Validate(); err != nil {
		return dto.DispatchOutput{}, err
	}
	manifests, err := s.loadValidated(ctx)
	if err != nil {
		return dto.DispatchOutput{}, err
	}

	out := dto.DispatchOutput{Event: input.Event}
	var errs []error
	for _, m := range manifests {
		if !m.Enabled || !m.Subscribes(notification.Event) {
			continue
		}
		log := s.logger.With("hook", m.Name, "event", input.Event)
		if err := checksumMatches(m.Binary, m.SHA256); err != nil {
			log.Warn("hook skipped", "error", err)
			errs = append(errs, fmt.Errorf("hook %s: %w", m.Name, err))
			continue
		}
		ack, err := s.host.Notify(ctx, m, notification)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				err = fmt.Errorf("%w: %v", domain.ErrHookTimeout, err)
			}
			log.Warn("hook failed", "error", err)
			errs = append(errs, fmt.Errorf("hook %s: %w", m.Name, err))
			continue
		}
		log.Debug("hook notified", "ack", ack.Message)
		out.Notified = append(out.Notified, m.Name)
		if ack.Message != "" {
			out.Messages = append(out.Messages, ack.Message)
		}
	}
	return out, errors.Join(errs...)
}

func (s *HookService) loadValidated(ctx context.Context) ([]domain.Manifest, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	seenNames := map[string]struct{}{}
	for _, manifest := range manifests {
		if err := manifest.Validate(); err != nil {
			return nil, err
		}
		if _, ok := seenNames[manifest.Name]; ok {
			return nil, fmt.Errorf("duplicate hook name: %s", manifest.Name)
		}
		seenNames[manifest.Name] = struct{}{}
	}
	return manifests, nil
}

func checksumMatches(path string, expected string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open hook binary: %w", err)
	}
	defer func() { _ = f.Close() }()
	hash := sha256.New()
	if _, err := io.Copy(hash, f); err != nil {
		return fmt.Errorf("hash hook binary: %w", err)
	}
	if hex.EncodeToString(hash.Sum(nil)) != expected {
		return fmt.Errorf("%w: %s", domain.ErrChecksumMismatch, filepath.Base(path))
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
