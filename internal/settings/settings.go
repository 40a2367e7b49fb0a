// Package settings holds the admin-editable display labels and group ids.
// Readers always see one complete snapshot; reloads and saves swap the whole
// snapshot instead of mutating keys in place.
package settings

import (
	"errors"
	"io/fs"
	"strings"
	"sync/atomic"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ultigroup/attendbot/internal/status"
)

var errMissingPath = errors.New("settings: file path is required")

// Settings is an immutable view of the configurable values.
type Settings struct {
	AdminGroup    string
	ExportChannel string
	Labels        status.Vocabulary
}

// Store owns the settings file and the in-memory snapshot.
type Store struct {
	path     string
	logger   *zap.Logger
	snapshot atomic.Pointer[Settings]
}

// NewStore reads the settings file at path and returns a store primed with
// its contents. A missing file yields the defaults; it is created on the
// first Save.
func NewStore(path string, logger *zap.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errMissingPath
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	store := &Store{path: path, logger: logger}
	if err := store.Reload(); err != nil {
		return nil, err
	}
	return store, nil
}

// Current returns the active snapshot.
func (s *Store) Current() Settings {
	return *s.snapshot.Load()
}

// Reload re-reads the settings file and atomically swaps the snapshot.
func (s *Store) Reload() error {
	fileViper := viper.New()
	applyDefaults(fileViper)
	fileViper.SetConfigFile(s.path)

	if err := fileViper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		s.logger.Warn("settings file missing, using defaults", zap.String("path", s.path))
	}

	loaded := fromViper(fileViper)
	s.snapshot.Store(&loaded)
	s.logger.Info("settings loaded", zap.String("path", s.path))
	return nil
}

// Save persists the provided settings and swaps the snapshot once the write
// succeeded, so readers never observe values that were not durably stored.
func (s *Store) Save(updated Settings) error {
	fileViper := viper.New()
	fileViper.SetConfigFile(s.path)

	fileViper.Set("admin_group", updated.AdminGroup)
	fileViper.Set("export_channel", updated.ExportChannel)
	fileViper.Set("labels.coming", updated.Labels.Other.Coming)
	fileViper.Set("labels.late", updated.Labels.Other.Late)
	fileViper.Set("labels.not_coming", updated.Labels.Other.NotComing)
	fileViper.Set("labels.coming_training", updated.Labels.Training.Coming)
	fileViper.Set("labels.late_training", updated.Labels.Training.Late)
	fileViper.Set("labels.not_coming_training", updated.Labels.Training.NotComing)
	fileViper.Set("labels.unset", updated.Labels.Unset)

	if err := fileViper.WriteConfig(); err != nil {
		return err
	}

	s.snapshot.Store(&updated)
	s.logger.Info("settings saved", zap.String("path", s.path))
	return nil
}

func applyDefaults(fileViper *viper.Viper) {
	defaults := status.DefaultVocabulary()
	fileViper.SetDefault("admin_group", "")
	fileViper.SetDefault("export_channel", "")
	fileViper.SetDefault("labels.coming", defaults.Other.Coming)
	fileViper.SetDefault("labels.late", defaults.Other.Late)
	fileViper.SetDefault("labels.not_coming", defaults.Other.NotComing)
	fileViper.SetDefault("labels.coming_training", defaults.Training.Coming)
	fileViper.SetDefault("labels.late_training", defaults.Training.Late)
	fileViper.SetDefault("labels.not_coming_training", defaults.Training.NotComing)
	fileViper.SetDefault("labels.unset", defaults.Unset)
}

func fromViper(fileViper *viper.Viper) Settings {
	return Settings{
		AdminGroup:    fileViper.GetString("admin_group"),
		ExportChannel: fileViper.GetString("export_channel"),
		Labels: status.Vocabulary{
			Other: status.LabelSet{
				Coming:    fileViper.GetString("labels.coming"),
				Late:      fileViper.GetString("labels.late"),
				NotComing: fileViper.GetString("labels.not_coming"),
			},
			Training: status.LabelSet{
				Coming:    fileViper.GetString("labels.coming_training"),
				Late:      fileViper.GetString("labels.late_training"),
				NotComing: fileViper.GetString("labels.not_coming_training"),
			},
			Unset: fileViper.GetString("labels.unset"),
		},
	}
}
