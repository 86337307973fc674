package cmd

import (
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

func startTimer() *timer {
	t := &timer{}
	t.Start()
	return t
}

type timer struct {
	start time.Time
}

func (t *timer) Start() {
	t.start = time.Now()
}

func (t *timer) String() string {
	delta := time.Now().Sub(t.start)
	return delta.String()
}

// createLogger builds the zerolog instance from the Log config section.
// The returned closer is non-nil when a log file is open.
func createLogger() (zerolog.Logger, io.Closer) {
	hostname, err := os.Hostname()
	if err != nil {
		log.Fatalf("cannot get hostname: %v", err)
	}

	level, err := zerolog.ParseLevel(strings.ToLower(conf.Log.Level))
	if err != nil {
		log.Fatalf("cannot parse log level '%s': %v", conf.Log.Level, err)
	}

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	var out io.Writer = os.Stderr
	var logfile *os.File
	if conf.Log.File != "" {
		logfile, err = os.OpenFile(conf.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatalf("cannot open logfile %s: %v", conf.Log.File, err)
		}
		out = logfile
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Str("host", hostname).Logger()
	if logfile != nil {
		return logger, logfile
	}
	return logger, nil
}
