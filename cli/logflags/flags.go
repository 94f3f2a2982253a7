// Package logflags configures the zap logger of the bql commands.
package logflags

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Flags struct {
	// DefaultLevel is the level used when --log.level is not given.
	DefaultLevel zapcore.Level
	Level        zapcore.Level
	Format       string
	Path         string
	MaxSize      int
	MaxBackups   int
}

func (f *Flags) SetFlags(fs *pflag.FlagSet) {
	f.Level = f.DefaultLevel
	fs.Var((*levelFlag)(&f.Level), "log.level", "logging level [debug,info,warn,error]")
	fs.StringVar(&f.Format, "log.format", "console", "logging format [console,json]")
	fs.StringVar(&f.Path, "log.path", "", "path to a rotated log file (stderr if unset)")
	fs.IntVar(&f.MaxSize, "log.maxsize", 100, "size in megabytes at which the log file is rotated")
	fs.IntVar(&f.MaxBackups, "log.maxbackups", 3, "number of rotated log files to keep")
}

// Open returns a logger writing to the configured destination.
func (f *Flags) Open() (*zap.Logger, error) {
	enc, err := f.encoder()
	if err != nil {
		return nil, err
	}
	var ws zapcore.WriteSyncer
	if f.Path == "" {
		ws = zapcore.Lock(os.Stderr)
	} else {
		ws = zapcore.AddSync(&lumberjack.Logger{
			Filename:   f.Path,
			MaxSize:    f.MaxSize,
			MaxBackups: f.MaxBackups,
		})
	}
	return zap.New(zapcore.NewCore(enc, ws, f.Level)), nil
}

func (f *Flags) encoder() (zapcore.Encoder, error) {
	conf := zap.NewProductionEncoderConfig()
	conf.EncodeTime = zapcore.ISO8601TimeEncoder
	switch f.Format {
	case "console", "":
		return zapcore.NewConsoleEncoder(conf), nil
	case "json":
		return zapcore.NewJSONEncoder(conf), nil
	}
	return nil, fmt.Errorf("unknown log format %q", f.Format)
}

type levelFlag zapcore.Level

func (l *levelFlag) Set(s string) error {
	return (*zapcore.Level)(l).UnmarshalText([]byte(s))
}

func (l *levelFlag) String() string {
	return zapcore.Level(*l).String()
}

func (*levelFlag) Type() string {
	return "level"
}
