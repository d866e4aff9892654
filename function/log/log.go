package log

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr

	debugLogger = &logrus.Logger{
		Out:       os.Stderr,
		Formatter: &logrus.TextFormatter{DisableTimestamp: true},
		Hooks:     make(logrus.LevelHooks),
		Level:     logrus.InfoLevel,
	}

	exit = os.Exit
)

// SetOutput redirects informational and error output. Nil keeps the current writer.
func SetOutput(out, errOut io.Writer) {
	if out != nil {
		stdout = out
	}
	if errOut != nil {
		stderr = errOut
		debugLogger.SetOutput(errOut)
	}
}

func SetDebugMode(enabled bool) {
	if enabled {
		debugLogger.SetLevel(logrus.DebugLevel)
		return
	}
	debugLogger.SetLevel(logrus.InfoLevel)
}

func IsDebug() bool {
	return debugLogger.IsLevelEnabled(logrus.DebugLevel)
}

func Fatal(args ...interface{}) {
	var message string

	switch len(args) {
	case 0:
		message = "fatal error occurred"
	case 1:
		switch v := args[0].(type) {
		case error:
			message = v.Error()
		case string:
			message = v
		default:
			message = fmt.Sprintf("%v", v)
		}
	default:
		if format, ok := args[0].(string); ok {
			message = fmt.Sprintf(format, args[1:]...)
		} else {
			message = fmt.Sprint(args...)
		}
	}

	lines := strings.Split(strings.TrimSpace(message), "\n")
	for _, line := range lines {
		fmt.Fprintln(stderr, color.RedString("[x] ")+line)
	}
	exit(1)
}

func ErrorH2(format string, elem ...any) {
	fmt.Fprintln(stderr, color.RedString("  [x] ")+fmt.Sprintf(format, elem...))
}

func Warn(format string, elem ...any) {
	fmt.Fprintln(stderr, color.MagentaString("[!] ")+fmt.Sprintf(format, elem...))
}

func WarnH2(format string, elem ...any) {
	fmt.Fprintln(stderr, color.MagentaString("  [!] ")+fmt.Sprintf(format, elem...))
}

func Info(format string, elem ...any) {
	fmt.Fprintln(stdout, color.BlueString("[x] ")+fmt.Sprintf(format, elem...))
}

// Debug is silent unless debug mode is on.
func Debug(format string, elem ...any) {
	debugLogger.Debugf(format, elem...)
}

func DebugH3(format string, elem ...any) {
	debugLogger.Debugf("    "+format, elem...)
}
