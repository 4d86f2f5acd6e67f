// internal/utils/logger.go
package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"label-service/internal/config"
)

const defaultLogFile = "./logs/label-service.log"

// NewLogger builds the process logger. Output is "stdout", "stderr" or a
// file path rotated by lumberjack.
func NewLogger(cfg *config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	sink, err := logSink(cfg)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewCore(logEncoder(cfg.Format), sink, level)

	return zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	), nil
}

func logEncoder(format string) zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.MessageKey = "message"
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	if format == "console" {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
		return zapcore.NewConsoleEncoder(encoderConfig)
	}

	encoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(time.RFC3339)
	return zapcore.NewJSONEncoder(encoderConfig)
}

func logSink(cfg *config.LoggingConfig) (zapcore.WriteSyncer, error) {
	switch cfg.Output {
	case "stdout":
		return zapcore.Lock(os.Stdout), nil
	case "stderr":
		return zapcore.Lock(os.Stderr), nil
	}

	path := cfg.Output
	if path == "" {
		path = defaultLogFile
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}), nil
}

// CloseLogger flushes buffered entries. Terminals and pipes reject fsync,
// those errors are dropped.
func CloseLogger(logger *zap.Logger) error {
	err := logger.Sync()
	if errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) {
		return nil
	}
	return err
}

// PrinterLogger is scoped to one configured printer
type PrinterLogger struct {
	*zap.Logger
}

// NewPrinterLogger creates a logger tagged with the printer id and transport scheme
func NewPrinterLogger(baseLogger *zap.Logger, printerID, scheme string) *PrinterLogger {
	return &PrinterLogger{
		Logger: baseLogger.With(
			zap.String("component", "printer"),
			zap.String("printer_id", printerID),
			zap.String("scheme", scheme),
		),
	}
}

// LogSend logs the outcome of writing one raster job
func (pl *PrinterLogger) LogSend(bytes int, duration time.Duration, err error) {
	if err != nil {
		pl.Error("Raster job failed",
			zap.Int("bytes", bytes),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return
	}

	pl.Debug("Raster job sent",
		zap.Int("bytes", bytes),
		zap.Duration("duration", duration),
	)
}

// LogStatus logs a status query result. available is false when the
// printer did not answer.
func (pl *PrinterLogger) LogStatus(media string, ready, available bool, err error) {
	if err != nil {
		pl.Warn("Printer status query failed", zap.Error(err))
		return
	}
	if !available {
		pl.Debug("Printer status unavailable")
		return
	}

	pl.Debug("Printer status",
		zap.String("media", media),
		zap.Bool("ready", ready),
	)
}

// JobLogger follows one print request from render to last copy
type JobLogger struct {
	logger  *zap.Logger
	started time.Time
}

// NewJobLogger creates a logger for the job about to be sent to printerID
func NewJobLogger(baseLogger *zap.Logger, jobID, printerID string) *JobLogger {
	return &JobLogger{
		logger: baseLogger.With(
			zap.String("component", "job"),
			zap.String("job_id", jobID),
			zap.String("printer_id", printerID),
		),
		started: time.Now(),
	}
}

// Started logs the accepted request
func (jl *JobLogger) Started(labelType string, copies, bytes int) {
	jl.logger.Info("Print job started",
		zap.String("label_type", labelType),
		zap.Int("copies", copies),
		zap.Int("bytes", bytes),
	)
}

// Finished logs how many copies reached the printer
func (jl *JobLogger) Finished(printed int, err error) {
	elapsed := time.Since(jl.started)

	if err != nil {
		jl.logger.Error("Print job failed",
			zap.Int("printed", printed),
			zap.Duration("duration", elapsed),
			zap.Error(err),
		)
		return
	}

	jl.logger.Info("Print job completed",
		zap.Int("printed", printed),
		zap.Duration("duration", elapsed),
	)
}

// ServiceLogger is scoped to one long-lived component
type ServiceLogger struct {
	*zap.Logger
}

// NewServiceLogger creates a logger tagged with the component name
func NewServiceLogger(baseLogger *zap.Logger, serviceName string) *ServiceLogger {
	return &ServiceLogger{
		Logger: baseLogger.With(zap.String("service", serviceName)),
	}
}

// LogServiceStart logs the version and effective configuration
func (sl *ServiceLogger) LogServiceStart(version string, cfg interface{}) {
	sl.Info("Service starting",
		zap.String("version", version),
		zap.Any("config", cfg),
	)
}

// LogServiceStop logs why the process is stopping
func (sl *ServiceLogger) LogServiceStop(reason string) {
	sl.Info("Service stopping", zap.String("reason", reason))
}

// LogAPIRequest logs a served request at a level derived from its status code
func (sl *ServiceLogger) LogAPIRequest(method, path, userAgent, clientIP string, statusCode int, duration time.Duration) {
	level := zapcore.InfoLevel
	switch {
	case statusCode >= 500:
		level = zapcore.ErrorLevel
	case statusCode >= 400:
		level = zapcore.WarnLevel
	}

	if ce := sl.Check(level, "API request"); ce != nil {
		ce.Write(
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status_code", statusCode),
			zap.Duration("duration", duration),
			zap.String("client_ip", clientIP),
			zap.String("user_agent", userAgent),
		)
	}
}
