package logger

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
)

type LogStatus int

const (
	VERBOSE LogStatus = iota
	DEBUG
	INFO
	SUCCESS
	NEW
	REMOVE
	STOP
	WARNING
	ERROR
	FATAL
)

func (e LogStatus) String() string {
	return []string{
		"V",
		"D",
		"I",
		"✓",
		"+",
		"-",
		"X",
		"!",
		"!!",
		"PANIC",
	}[e]
}

func (e LogStatus) Color() *color.Color {
	return []*color.Color{
		color.New(color.FgWhite, color.Italic),                //Verbose
		color.New(color.FgWhite, color.Italic),                //Debug
		color.New(color.FgWhite),                              //Info
		color.New(color.FgHiGreen),                            //Success
		color.New(color.FgGreen, color.Italic),                //New
		color.New(color.FgYellow, color.Italic),               //Remove
		color.New(color.FgHiYellow),                           //Stop
		color.New(color.FgYellow, color.Underline),            //Warning
		color.New(color.FgHiRed, color.Bold),                  //Error
		color.New(color.FgHiRed, color.Bold, color.Underline), //PANIC
	}[e]
}

// ParseLevel maps a config level name to a LogStatus. Unknown
// names fall back to INFO.
func ParseLevel(level string) LogStatus {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "verbose", "trace":
		return VERBOSE
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARNING
	case "error":
		return ERROR
	default:
		return INFO
	}
}

type Logger interface {
	Emit(LogStatus, string, ...interface{})
}

type loggerImpl struct {
	name string
}

func (l *loggerImpl) Emit(status LogStatus, message string, interpolations ...interface{}) {
	Log.Emit(status, l.name, message, interpolations...)
}

type LoggerManager interface {
	GetLogger(string) Logger
	Emit(LogStatus, string, string, ...interface{})
	SetMinLoggingLevel(LogStatus)
	SetOutput(io.Writer)
}

var Log LoggerManager = &loggerMgr{
	minStatus: INFO,
	out:       color.Output,
}

type loggerMgr struct {
	sync.Mutex
	offset    int
	minStatus LogStatus
	out       io.Writer
}

func (l *loggerMgr) GetLogger(name string) Logger {
	return &loggerImpl{name: name}
}

func (l *loggerMgr) Emit(status LogStatus, name string, message string, interpolations ...interface{}) {
	l.Lock()
	defer l.Unlock()

	if status < l.minStatus {
		return
	}

	l.setNameOffset(len(name))
	padding := strings.Repeat(" ", l.offset-len(name))
	msg := fmt.Sprintf("[%s] %s(%s) %s", name, padding, status, fmt.Sprintf(message, interpolations...))

	status.Color().Fprint(l.out, msg)
}

func (l *loggerMgr) SetMinLoggingLevel(status LogStatus) {
	l.Lock()
	defer l.Unlock()
	l.minStatus = status
}

func (l *loggerMgr) SetOutput(w io.Writer) {
	l.Lock()
	defer l.Unlock()
	l.out = w
}

func (l *loggerMgr) setNameOffset(offset int) {
	if offset > l.offset {
		l.offset = offset
	}
}

func Get(name string) Logger {
	return Log.GetLogger(name)
}

func SetMinLoggingLevel(status LogStatus) {
	Log.SetMinLoggingLevel(status)
}

func SetOutput(w io.Writer) {
	Log.SetOutput(w)
}
