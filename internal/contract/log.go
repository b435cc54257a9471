package contract

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

var warnColor = color.New(color.FgYellow)

// LogWarn logs a warning with its underlying error to stderr.
func LogWarn(msg string, err error) {
	fmt.Fprintf(os.Stderr, "⚠️  %s: %v\n", warnColor.Sprint(msg), err)
}

// LogWarnMsg logs a plain warning to stderr.
func LogWarnMsg(msg string) {
	fmt.Fprintf(os.Stderr, "⚠️  %s\n", warnColor.Sprint(msg))
}

// LogError logs an error to stderr without exiting.
func LogError(msg string, err error) {
	fmt.Fprintf(os.Stderr, "❌ %s: %v\n", msg, err)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "❌ %s: %v\n", msg, err)
	os.Exit(1)
}
