// Package logger configures the global zerolog logger from command line options.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger holds logging options, intended to be embedded as a go-flags group.
type Logger struct {
	Level     string `short:"L" long:"log-level"  env:"LOG_LEVEL"  description:"Log level" choice:"trace" choice:"debug" choice:"info" choice:"warn" choice:"error" default:"info"`
	Format    string `short:"F" long:"log-format" env:"LOG_FORMAT" description:"Log format" choice:"console" choice:"json" default:"console"`
	NoColor   bool   `long:"log-no-color" env:"LOG_NO_COLOR" description:"Disable colored console output"`
	NoTime    bool   `long:"log-no-time"  env:"LOG_NO_TIME"  description:"Omit timestamps"`
	Timestamp string `long:"log-time-format" env:"LOG_TIME_FORMAT" description:"Console timestamp layout" default:"15:04:05"`
}

// Setup applies the options to the global logger.
func (l Logger) Setup() {
	zerolog.SetGlobalLevel(l.level())
	zerolog.TimeFieldFormat = time.RFC3339

	log.Logger = zerolog.New(l.writer(os.Stderr))
	if !l.NoTime {
		log.Logger = log.Logger.With().Timestamp().Logger()
	}
}

func (l Logger) writer(out io.Writer) io.Writer {
	if l.Format == "json" {
		return out
	}

	return zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    l.NoColor,
		TimeFormat: l.Timestamp,
	}
}

func (l Logger) level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(l.Level)
	if err != nil || l.Level == "" {
		return zerolog.InfoLevel
	}

	return lvl
}
