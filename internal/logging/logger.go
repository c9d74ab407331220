// Package logging wires zerolog the way the dialogue manager's ambient
// stack expects: one configurable logger built at startup and passed
// explicitly into every component that needs it.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Config controls the logger New builds. Env-tagged so a
// deployment can override it with environment variables, mirroring the
// teacher's model.LogConfig.
type Config struct {
	Level      string `yaml:"level" envconfig:"LOG_LEVEL" default:"info"`
	Format     string `yaml:"format" envconfig:"LOG_FORMAT" default:"console"`
	TimeFormat string `yaml:"time_format" envconfig:"LOG_TIME_FORMAT" default:"rfc3339"`
	Output     string `yaml:"output" envconfig:"LOG_OUTPUT" default:"stdout"`
	FilePath   string `yaml:"file_path" envconfig:"LOG_FILE_PATH"`
}

// New builds a zerolog.Logger from cfg.
func New(cfg Config) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("logging: invalid level %q: %w", cfg.Level, err)
	}

	switch strings.ToLower(cfg.TimeFormat) {
	case "unix":
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	case "iso8601":
		zerolog.TimeFieldFormat = "2006-01-02T15:04:05.000Z0700"
	default:
		zerolog.TimeFieldFormat = "2006-01-02T15:04:05Z07:00"
	}

	writer, err := buildWriter(cfg)
	if err != nil {
		return zerolog.Logger{}, err
	}

	return zerolog.New(writer).Level(level).With().Timestamp().Logger(), nil
}

func buildWriter(cfg Config) (io.Writer, error) {
	var out *os.File
	switch strings.ToLower(cfg.Output) {
	case "stderr":
		out = os.Stderr
	case "file":
		if cfg.FilePath == "" {
			return nil, fmt.Errorf("logging: output=file requires file_path")
		}
		if dir := filepath.Dir(cfg.FilePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("logging: creating log directory: %w", err)
			}
		}
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("logging: opening log file: %w", err)
		}
		out = f
	default:
		out = os.Stdout
	}

	if strings.ToLower(cfg.Format) == "json" {
		return out, nil
	}
	return zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}, nil
}
