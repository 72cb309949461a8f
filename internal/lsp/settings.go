package lsp

import (
	"encoding/json"
	"fmt"
	"time"

	"prosecheck/internal/config"
)

func (s *Server) handleDidChangeConfiguration(msg *rpcMessage) error {
	var params didChangeConfigurationParams
	if ok, err := s.decode(msg, &params); !ok {
		return err
	}
	if err := s.applySettings(params.Settings); err != nil {
		return s.showMessage(messageWarning, fmt.Sprintf("prosecheck: %v", err))
	}
	s.recheckAll()
	return nil
}

// applySettings merges the "prosecheck" section into the current options.
// Invalid settings are rejected as a whole.
func (s *Server) applySettings(raw json.RawMessage) error {
	if len(raw) == 0 {
		return nil
	}
	var settings lspSettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	ps := settings.Prosecheck
	opts := s.checker.Options()
	if ps.Language != nil {
		if err := config.ValidateLanguage(*ps.Language); err != nil {
			return err
		}
		opts.Language = *ps.Language
	}
	if ps.MotherTongue != nil {
		if err := config.ValidateLanguage(*ps.MotherTongue); err != nil {
			return err
		}
		opts.MotherTongue = *ps.MotherTongue
	}
	if ps.DisabledRules != nil {
		opts.DisabledRules = ps.DisabledRules
	}
	if ps.EnabledRules != nil {
		opts.EnabledRules = ps.EnabledRules
	}
	if ps.DebounceMs != nil {
		if *ps.DebounceMs < 0 {
			return fmt.Errorf("debounceMs must not be negative")
		}
		if *ps.DebounceMs > 0 {
			s.debounce = time.Duration(*ps.DebounceMs) * time.Millisecond
		}
	}
	s.checker = s.checker.WithOptions(opts)
	return nil
}
