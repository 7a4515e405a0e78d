package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/datazip-inc/olake-clubspeed/constants"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

var logger zerolog.Logger

// Console logs go to stderr; stdout carries the record protocol
func init() {
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
}

// Init sets up console and rotating file logging under CONFIG_FOLDER
func Init() {
	level, err := zerolog.ParseLevel(strings.ToLower(viper.GetString(constants.LogLevel)))
	if err != nil || viper.GetString(constants.LogLevel) == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	writers := []io.Writer{zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}}
	if folder := viper.GetString(constants.ConfigFolder); folder != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   filepath.Join(folder, "logs", "olake.log"),
			MaxSize:    100, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		})
	}

	logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger()
}

func Debug(v ...any) {
	logger.Debug().Msg(fmt.Sprint(v...))
}

func Debugf(format string, v ...any) {
	logger.Debug().Msgf(format, v...)
}

func Info(v ...any) {
	logger.Info().Msg(fmt.Sprint(v...))
}

func Infof(format string, v ...any) {
	logger.Info().Msgf(format, v...)
}

func Warn(v ...any) {
	logger.Warn().Msg(fmt.Sprint(v...))
}

func Warnf(format string, v ...any) {
	logger.Warn().Msgf(format, v...)
}

func Error(v ...any) {
	logger.Error().Msg(fmt.Sprint(v...))
}

func Errorf(format string, v ...any) {
	logger.Error().Msgf(format, v...)
}

func Fatal(v ...any) {
	logger.Fatal().Msg(fmt.Sprint(v...))
}

func Fatalf(format string, v ...any) {
	logger.Fatal().Msgf(format, v...)
}

// LogState writes the state document to STATE_PATH
func LogState(state any) {
	path := viper.GetString(constants.StatePath)
	if path == "" {
		return
	}
	if err := writeJSON(path, state); err != nil {
		Errorf("failed to write state file[%s]: %s", path, err)
		return
	}
	Debugf("state written to %s", path)
}

// LogCatalog writes the discovered streams to STREAMS_PATH
func LogCatalog(catalog any) {
	path := viper.GetString(constants.StreamsPath)
	if path == "" {
		return
	}
	if err := writeJSON(path, catalog); err != nil {
		Errorf("failed to write streams file[%s]: %s", path, err)
		return
	}
	Infof("streams written to %s", path)
}

// FileLogger writes content as <CONFIG_FOLDER>/<fileName><fileExtension>
func FileLogger(content any, fileName, fileExtension string) error {
	folder := viper.GetString(constants.ConfigFolder)
	if folder == "" {
		folder = os.TempDir()
	}
	path := filepath.Join(folder, fileName+fileExtension)
	if err := writeJSON(path, content); err != nil {
		return fmt.Errorf("failed to write %s: %s", path, err)
	}
	Infof("%s written to %s", fileName, path)
	return nil
}

func writeJSON(path string, content any) error {
	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return err
	}
	// atomic replace
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
