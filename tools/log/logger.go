package log

import (
	"io"

	"github.com/sirupsen/logrus"
)

var (
	DebugLevel = logrus.DebugLevel
	InfoLevel  = logrus.InfoLevel
	WarnLevel  = logrus.WarnLevel
	ErrorLevel = logrus.ErrorLevel
	FatalLevel = logrus.FatalLevel
)

type (
	TextFormatter = logrus.TextFormatter
	Level         = logrus.Level
	Fields        = logrus.Fields
	Entry         = logrus.Entry
)

// Setup 统一的日志格式：文本输出，带完整时间戳
func Setup(level Level) {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logrus.SetLevel(level)
}

// ParseLevel 解析 debug、info、warn、error 等级别名称
func ParseLevel(level string) (Level, error) {
	return logrus.ParseLevel(level)
}

func SetOutput(out io.Writer) {
	logrus.SetOutput(out)
}

func SetLevel(level Level) {
	logrus.SetLevel(level)
}

// CheckErr 错误不为空时按指定级别记录
func CheckErr(level Level, err error) {
	if err != nil {
		logrus.StandardLogger().Log(level, err)
	}
}

// WithSymbol 带股票代码的日志
func WithSymbol(symbol string) *Entry {
	return logrus.WithField("symbol", symbol)
}

func WithField(key string, value interface{}) *Entry {
	return logrus.WithField(key, value)
}

func WithFields(fields Fields) *Entry {
	return logrus.WithFields(fields)
}

func WithError(err error) *Entry {
	return logrus.WithError(err)
}

func Info(messages ...interface{}) {
	logrus.Info(messages...)
}

func Infof(format string, messages ...interface{}) {
	logrus.Infof(format, messages...)
}

func Warn(messages ...interface{}) {
	logrus.Warn(messages...)
}

func Warnf(format string, messages ...interface{}) {
	logrus.Warnf(format, messages...)
}

func Error(messages ...interface{}) {
	logrus.Error(messages...)
}

func Errorf(format string, messages ...interface{}) {
	logrus.Errorf(format, messages...)
}

func Fatal(messages ...interface{}) {
	logrus.Fatal(messages...)
}

func Debugf(format string, messages ...interface{}) {
	logrus.Debugf(format, messages...)
}
