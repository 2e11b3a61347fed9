package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"
	"user-management-service/internal/config"

	rotatelogs "github.com/iproj/file-rotatelogs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup builds the process logger from cfg and installs it as the zerolog global.
func Setup(cfg *config.Config) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var out io.Writer = os.Stdout
	if cfg.LogFormat == "console" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	if cfg.LogFile != "" {
		rotator, err := newRotator(cfg.LogFile)
		if err != nil {
			return zerolog.Nop(), err
		}
		out = zerolog.MultiLevelWriter(out, rotator)
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	log.Logger = logger
	return logger, nil
}

// newRotator writes to path.YYYYMMDD, rotating daily and keeping a week of files.
// path itself is kept as a symlink to the current file.
func newRotator(path string) (*rotatelogs.RotateLogs, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return rotatelogs.New(
		abs+".%Y%m%d",
		rotatelogs.WithLinkName(abs),
		rotatelogs.WithRotationTime(24*time.Hour),
		rotatelogs.WithMaxAge(7*24*time.Hour),
	)
}
