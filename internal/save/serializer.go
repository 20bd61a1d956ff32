package save

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ErrNoSave is returned by LoadFromStorage when the backend holds no save.
var ErrNoSave = errors.New("no save data found in storage")

// Source produces the live state for export and accepts imported state.
type Source interface {
	SaveState() GameState
	LoadState(st GameState) error
}

// ImportResult describes an accepted import. Warning is set for legacy formats.
type ImportResult struct {
	State   GameState
	Format  Format
	Version string
	Warning string
}

type Serializer struct {
	source  Source
	backend Backend
	key     string
	now     func() time.Time
	logger  *zap.Logger
}

type Option func(*Serializer)

// WithKey overrides StorageKey.
func WithKey(key string) Option { return func(s *Serializer) { s.key = key } }

func WithNow(now func() time.Time) Option { return func(s *Serializer) { s.now = now } }

func NewSerializer(source Source, backend Backend, logger *zap.Logger, opts ...Option) *Serializer {
	s := &Serializer{
		source:  source,
		backend: backend,
		key:     StorageKey,
		now:     time.Now,
		logger:  logger.Named("SaveSerializer"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Export wraps the current state in a versioned envelope.
func (s *Serializer) Export() (string, error) {
	env := Envelope{
		Version:   CurrentVersion,
		Timestamp: s.now().UnixMilli(),
		GameState: s.source.SaveState(),
	}
	b, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("marshal save: %w", err)
	}
	return string(b), nil
}

// Import parses and validates raw. It never touches the live game; use
// Source.LoadState on the returned state. Failures are *ImportError.
func (s *Serializer) Import(raw string) (*ImportResult, error) {
	return Import(raw, s.now())
}

// Import is Serializer.Import without a serializer. now stamps LastValidation on legacy saves.
func Import(raw string, now time.Time) (*ImportResult, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, &ImportError{Kind: KindParse, Reason: "failed to parse save data", Err: err}
	}

	res := &ImportResult{Format: Detect(fields)}
	var payload []byte
	switch res.Format {
	case FormatEnvelope:
		if err := json.Unmarshal(fields["version"], &res.Version); err != nil {
			return nil, &ImportError{Kind: KindFormat, Reason: "save version must be a string", Err: err}
		}
		payload = fields["gameState"]

	case FormatLegacyEncrypted:
		var w legacyWrapper
		if err := json.Unmarshal([]byte(raw), &w); err != nil {
			return nil, &ImportError{Kind: KindFormat, Reason: "malformed legacy save wrapper", Err: err}
		}
		plain, err := DecodeLegacy(w.Data)
		if err != nil {
			return nil, &ImportError{Kind: KindDecode, Reason: "invalid encrypted save data", Err: err}
		}
		if !json.Valid(plain) {
			return nil, &ImportError{Kind: KindDecode, Reason: "invalid encrypted save data", Err: errors.New("decrypted payload is not JSON")}
		}
		res.Version = w.Version
		res.Warning = legacyEncryptedWarning
		payload = plain

	case FormatLegacyPlain:
		if err := json.Unmarshal(fields["version"], &res.Version); err != nil {
			res.Version = ""
		}
		res.Warning = legacyPlainImportNote
		payload = []byte(raw)

	default:
		return nil, &ImportError{Kind: KindFormat, Reason: "invalid save format: expected JSON with version and gameState fields"}
	}

	st, err := decodeState(payload)
	if err != nil {
		return nil, err
	}
	switch {
	case res.Format == FormatLegacyPlain:
		st.SaveIntegrity = IntegrityUnencrypted
	case st.SaveIntegrity == "":
		st.SaveIntegrity = IntegrityValid
	}
	if res.Format != FormatEnvelope {
		st.LastValidation = now.UnixMilli()
	}
	res.State = st
	return res, nil
}

// SaveToStorage exports the current state to the backend.
func (s *Serializer) SaveToStorage(ctx context.Context) error {
	out, err := s.Export()
	if err != nil {
		return err
	}
	if err := s.backend.Set(ctx, s.key, out); err != nil {
		return fmt.Errorf("save to storage: %w", err)
	}
	return nil
}

// LoadFromStorage imports the stored save and, only if that succeeds, applies it.
func (s *Serializer) LoadFromStorage(ctx context.Context) (*ImportResult, error) {
	raw, ok, err := s.backend.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("load from storage: %w", err)
	}
	if !ok || raw == "" {
		return nil, ErrNoSave
	}
	res, err := s.Import(raw)
	if err != nil {
		return nil, err
	}
	if err := s.source.LoadState(res.State); err != nil {
		return nil, fmt.Errorf("apply save: %w", err)
	}
	if res.Warning != "" {
		s.logger.Warn("Loaded save with warning", zap.String("format", string(res.Format)), zap.String("warning", res.Warning))
	}
	return res, nil
}

func (s *Serializer) ClearSave(ctx context.Context) error {
	if err := s.backend.Remove(ctx, s.key); err != nil {
		return fmt.Errorf("clear save: %w", err)
	}
	return nil
}

// AutoSave is SaveToStorage for periodic callers: failures are logged, not returned.
func (s *Serializer) AutoSave(ctx context.Context) {
	if err := s.SaveToStorage(ctx); err != nil {
		s.logger.Error("Autosave failed", zap.Error(err))
		return
	}
	s.logger.Debug("Autosaved")
}
