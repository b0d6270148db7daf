package utils

import (
	"math"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogConfig - настройки логирования
type LogConfig struct {
	Level       string // debug, info, warn, error, fatal
	Format      string // json или text
	Output      string // путь к файлу; пусто = stderr
	Development bool   // режим разработки (caller, stacktrace на warn)
}

// Logger - обёртка над zap.Logger с sugar-вариантом для форматных вызовов
type Logger struct {
	*zap.Logger
	sugar *zap.SugaredLogger
}

var (
	globalMu     sync.Mutex
	globalLogger *Logger
)

// InitLogger создаёт и настраивает logger по конфигурации.
// Ошибки конфигурации не фатальны: неизвестный уровень/формат
// откатывается на info/json, недоступный файл - на stderr.
func InitLogger(cfg LogConfig) *Logger {
	level := parseLevel(cfg.Level)

	var encoderCfg zapcore.EncoderConfig
	if cfg.Development {
		encoderCfg = zap.NewDevelopmentEncoderConfig()
	} else {
		encoderCfg = zap.NewProductionEncoderConfig()
	}
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	switch strings.ToLower(cfg.Format) {
	case "text", "console":
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	default:
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	sink := zapcore.AddSync(os.Stderr)
	if cfg.Output != "" {
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err == nil {
			sink = zapcore.AddSync(f)
		}
	}

	core := zapcore.NewCore(encoder, sink, level)

	opts := []zap.Option{zap.AddCaller()}
	if cfg.Development {
		opts = append(opts, zap.Development())
	}

	zl := zap.New(core, opts...)
	return &Logger{Logger: zl, sugar: zl.Sugar()}
}

// parseLevel переводит строковый уровень в zapcore.Level.
// Неизвестный уровень трактуется как info.
func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// ============================================================
// Глобальный логгер
// ============================================================

// InitGlobalLogger инициализирует глобальный логгер и возвращает его
func InitGlobalLogger(cfg LogConfig) *Logger {
	logger := InitLogger(cfg)
	SetGlobalLogger(logger)
	return logger
}

// SetGlobalLogger устанавливает глобальный логгер
func SetGlobalLogger(logger *Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = logger
}

// GetGlobalLogger возвращает глобальный логгер, создавая дефолтный при необходимости
func GetGlobalLogger() *Logger {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger == nil {
		l := InitLogger(LogConfig{})
		globalLogger = l
	}
	return globalLogger
}

// L - короткий алиас для GetGlobalLogger
func L() *Logger {
	return GetGlobalLogger()
}

// ============================================================
// Методы Logger
// ============================================================

// With возвращает дочерний логгер с добавленными полями
func (l *Logger) With(fields ...zap.Field) *Logger {
	child := l.Logger.With(fields...)
	return &Logger{Logger: child, sugar: child.Sugar()}
}

// WithComponent добавляет имя компонента
func (l *Logger) WithComponent(name string) *Logger {
	return l.With(zap.String("component", name))
}

// WithTicker добавляет тикер
func (l *Logger) WithTicker(ticker string) *Logger {
	return l.With(zap.String("ticker", ticker))
}

// WithPair добавляет каноническую пару
func (l *Logger) WithPair(pair string) *Logger {
	return l.With(zap.String("pair", pair))
}

// WithRunID добавляет идентификатор прогона
func (l *Logger) WithRunID(id int64) *Logger {
	return l.With(zap.Int64("run_id", id))
}

// WithStage добавляет стадию конвейера
func (l *Logger) WithStage(stage string) *Logger {
	return l.With(zap.String("stage", stage))
}

// Sugar возвращает sugar-вариант логгера
func (l *Logger) Sugar() *zap.SugaredLogger {
	return l.sugar
}

// ============================================================
// Глобальные функции логирования
// ============================================================

func Debug(msg string, fields ...zap.Field) { GetGlobalLogger().Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { GetGlobalLogger().Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { GetGlobalLogger().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { GetGlobalLogger().Error(msg, fields...) }
func Fatal(msg string, fields ...zap.Field) { GetGlobalLogger().Fatal(msg, fields...) }

func Debugf(format string, args ...interface{}) { GetGlobalLogger().sugar.Debugf(format, args...) }
func Infof(format string, args ...interface{})  { GetGlobalLogger().sugar.Infof(format, args...) }
func Warnf(format string, args ...interface{})  { GetGlobalLogger().sugar.Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { GetGlobalLogger().sugar.Errorf(format, args...) }

// ============================================================
// Конструкторы доменных полей
// ============================================================

// Ticker - поле с тикером инструмента
func Ticker(t string) zap.Field { return zap.String("ticker", t) }

// Pair - поле с канонической парой "A-B"
func Pair(p string) zap.Field { return zap.String("pair", p) }

// Stage - поле со стадией конвейера
func Stage(s string) zap.Field { return zap.String("stage", s) }

// RunID - поле с идентификатором прогона
func RunID(id int64) zap.Field { return zap.Int64("run_id", id) }

// PValue - поле с p-value статистического теста
func PValue(p float64) zap.Field { return zap.Float64("p_value", p) }

// ZScore - поле с z-оценкой спреда
func ZScore(z float64) zap.Field { return zap.Float64("z_score", z) }

// HedgeRatio - поле с коэффициентом хеджирования
func HedgeRatio(beta float64) zap.Field { return zap.Float64("hedge_ratio", beta) }

// Signal - поле с видом сигнала
func Signal(kind string) zap.Field { return zap.String("signal", kind) }

// State - поле с состоянием FSM прогона
func State(s string) zap.Field { return zap.String("state", s) }

// Fraction - поле с долей капитала
func Fraction(f float64) zap.Field { return zap.Float64("fraction", f) }

// RequestID - поле с идентификатором HTTP запроса
func RequestID(id string) zap.Field { return zap.String("request_id", id) }

// Component - поле с именем компонента
func Component(name string) zap.Field { return zap.String("component", name) }

// Переэкспорт стандартных конструкторов zap

func String(key, value string) zap.Field        { return zap.String(key, value) }
func Int(key string, value int) zap.Field       { return zap.Int(key, value) }
func Int64(key string, value int64) zap.Field   { return zap.Int64(key, value) }
func Float64(key string, v float64) zap.Field   { return zap.Float64(key, v) }
func Bool(key string, value bool) zap.Field     { return zap.Bool(key, value) }
func Err(err error) zap.Field                   { return zap.Error(err) }
func Duration(key string, d time.Duration) zap.Field { return zap.Duration(key, d) }
func Any(key string, value interface{}) zap.Field { return zap.Any(key, value) }

// fieldsToInterface разворачивает zap-поля в плоский список ключ/значение
// для передачи в sugar-логгер
func fieldsToInterface(fields []zap.Field) []interface{} {
	out := make([]interface{}, 0, len(fields)*2)
	for _, f := range fields {
		var v interface{}
		switch f.Type {
		case zapcore.StringType:
			v = f.String
		case zapcore.Int64Type, zapcore.Int32Type:
			v = f.Integer
		case zapcore.Float64Type:
			v = math.Float64frombits(uint64(f.Integer))
		case zapcore.BoolType:
			v = f.Integer == 1
		default:
			v = f.Interface
		}
		out = append(out, f.Key, v)
	}
	return out
}
