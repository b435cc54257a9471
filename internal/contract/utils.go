package contract

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
)

// Performance tier label constants.
const (
	EliteValue  = "Elite"  // Elite value
	HighValue   = "High"   // High value
	MediumValue = "Medium" // Medium value
	LowValue    = "Low"    // Low value
)

// Color variables for console output.
var (
	EliteColor  = color.New(color.FgGreen, color.Bold) // eliteColor represents the top performance band.
	HighColor   = color.New(color.FgCyan, color.Bold)  // highColor represents strong, healthy delivery.
	MediumColor = color.New(color.FgYellow)            // mediumColor represents standard caution, not bold.
	LowColor    = color.New(color.FgRed)               // lowColor represents a delivery bottleneck signal.
)

// GetPlainLabel returns a plain text performance tier for a deployment
// rate expressed in deploys per day. This is the core logic used for
// CSV, JSON, and table printing.
func GetPlainLabel(deploysPerDay float64) string {
	switch {
	case deploysPerDay >= 1:
		return EliteValue
	case deploysPerDay >= 1.0/7:
		return HighValue
	case deploysPerDay >= 1.0/30:
		return MediumValue
	default:
		return LowValue
	}
}

// GetColorLabel returns a colored performance tier for console output (table).
// It uses GetPlainLabel to determine the string, and then applies the appropriate color.
func GetColorLabel(deploysPerDay float64) string {
	text := GetPlainLabel(deploysPerDay)

	switch text {
	case EliteValue:
		return EliteColor.Sprint(text)
	case HighValue:
		return HighColor.Sprint(text)
	case MediumValue:
		return MediumColor.Sprint(text)
	default: // "Low"
		return LowColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on
// the provided file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// Truncate shortens a value for narrow table cells, keeping the tail
// visible since identifiers tend to differ at the end.
func Truncate(value string, maxWidth int) string {
	runes := []rune(value)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return value
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

// FormatSeconds renders a whole-second duration in the most readable
// unit for display. Internal math stays in seconds; this is the final
// presentation step only.
func FormatSeconds(seconds int64, precision int) string {
	d := time.Duration(seconds) * time.Second
	switch {
	case d >= 24*time.Hour:
		return fmt.Sprintf("%.*fd", precision, d.Hours()/24)
	case d >= time.Hour:
		return fmt.Sprintf("%.*fh", precision, d.Hours())
	case d >= time.Minute:
		return fmt.Sprintf("%.*fm", precision, d.Minutes())
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
