package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/inkwell-cms/inkwell/internal/apperror"
	"github.com/inkwell-cms/inkwell/internal/model"
	"github.com/inkwell-cms/inkwell/internal/repository"
)

// SettingService manages the typed key-value settings.
//
// ENCODE/DECODE SYMMETRY:
// Values are stored as text but always declared with a type, and the
// invariant is that the stored text decodes under that type. Every
// write passes through validateValue, so every read can decode without
// defensive fallbacks — a decode failure on read is reported as an
// error, never silently coerced.
type SettingService struct {
	settings repository.SettingRepository
	logger   *slog.Logger
}

func NewSettingService(settings repository.SettingRepository, logger *slog.Logger) *SettingService {
	return &SettingService{
		settings: settings,
		logger:   logger,
	}
}

func (s *SettingService) Get(ctx context.Context, key string) (*model.Setting, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, apperror.ValidationFailed("key", "setting key is required")
	}
	return s.settings.Get(ctx, key)
}

// GetTypedValue returns the decoded value of a setting: string, float64,
// bool, or the unmarshalled JSON value.
func (s *SettingService) GetTypedValue(ctx context.Context, key string) (any, error) {
	setting, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	value, err := decodeValue(setting.Value, setting.Type)
	if err != nil {
		// The write path should have made this impossible.
		return nil, fmt.Errorf("setting %q: stored value does not decode as %s: %w",
			key, setting.Type, err)
	}
	return value, nil
}

func (s *SettingService) List(ctx context.Context) ([]model.Setting, error) {
	settings, err := s.settings.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing settings: %w", err)
	}
	return settings, nil
}

// Set validates and upserts a single setting.
func (s *SettingService) Set(ctx context.Context, key, value string, typ model.SettingType, description string) (*model.Setting, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, apperror.ValidationFailed("key", "setting key is required")
	}
	if !typ.Valid() {
		return nil, apperror.ValidationFailed("type", "type must be string, number, boolean or json")
	}
	if err := validateValue(value, typ); err != nil {
		return nil, apperror.ValidationFailed("value",
			fmt.Sprintf("value does not decode as %s", typ))
	}

	setting := &model.Setting{
		Key:         key,
		Value:       value,
		Type:        typ,
		Description: strings.TrimSpace(description),
	}

	if err := s.settings.Upsert(ctx, setting); err != nil {
		return nil, fmt.Errorf("saving setting %q: %w", key, err)
	}

	s.logger.Info("setting saved", slog.String("key", key), slog.String("type", string(typ)))
	return setting, nil
}

// SetAll upserts a batch of settings. The whole batch is validated
// before any write, so a bad entry rejects the batch without a partial
// save.
func (s *SettingService) SetAll(ctx context.Context, settings []model.Setting) error {
	for _, st := range settings {
		if strings.TrimSpace(st.Key) == "" {
			return apperror.ValidationFailed("key", "setting key is required")
		}
		if !st.Type.Valid() {
			return apperror.ValidationFailed(st.Key, "type must be string, number, boolean or json")
		}
		if err := validateValue(st.Value, st.Type); err != nil {
			return apperror.ValidationFailed(st.Key,
				fmt.Sprintf("value does not decode as %s", st.Type))
		}
	}

	for i := range settings {
		settings[i].Key = strings.TrimSpace(settings[i].Key)
		if err := s.settings.Upsert(ctx, &settings[i]); err != nil {
			return fmt.Errorf("saving setting %q: %w", settings[i].Key, err)
		}
	}

	s.logger.Info("settings saved", slog.Int("count", len(settings)))
	return nil
}

// validateValue checks that text decodes under the declared type.
func validateValue(value string, typ model.SettingType) error {
	_, err := decodeValue(value, typ)
	return err
}

func decodeValue(value string, typ model.SettingType) (any, error) {
	switch typ {
	case model.SettingString:
		return value, nil
	case model.SettingNumber:
		return strconv.ParseFloat(strings.TrimSpace(value), 64)
	case model.SettingBoolean:
		return strconv.ParseBool(strings.TrimSpace(value))
	case model.SettingJSON:
		var v any
		if err := json.Unmarshal([]byte(value), &v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unknown setting type %q", typ)
	}
}
