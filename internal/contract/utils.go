package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/fortify-index/mfi/schema"
	"go.uber.org/zap"
)

// Color variables for console output.
var (
	FullyColor        = color.New(color.FgGreen, color.Bold) // FullyColor marks complete fortification.
	AdequatelyColor   = color.New(color.FgGreen)
	PartlyColor       = color.New(color.FgYellow)
	InadequatelyColor = color.New(color.FgMagenta)
	NotColor          = color.New(color.FgRed, color.Bold) // NotColor represents standard danger.
	NoDataColor       = color.New(color.FgHiBlack)
)

// GetPlainLabel returns the plain text label of a band. This is the core
// logic used for CSV, JSON, and table printing.
func GetPlainLabel(band schema.Band) string {
	if band == "" {
		return string(schema.NoDataBand)
	}
	return string(band)
}

// GetColorLabel returns a colored band label for console output (table).
func GetColorLabel(band schema.Band) string {
	text := GetPlainLabel(band)

	switch schema.Band(text) {
	case schema.FullyFortified:
		return FullyColor.Sprint(text)
	case schema.AdequatelyFortified:
		return AdequatelyColor.Sprint(text)
	case schema.PartlyFortified:
		return PartlyColor.Sprint(text)
	case schema.InadequatelyFortified:
		return InadequatelyColor.Sprint(text)
	case schema.NotFortified:
		return NotColor.Sprint(text)
	default:
		return NoDataColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path means os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	zap.L().Fatal(msg, zap.Error(err))
}

// LogWarn logs a warning message.
func LogWarn(msg string, err error) {
	zap.L().Warn(msg, zap.Error(err))
}

// GetCacheDBFilePath returns the path to the SQLite DB file for the response cache.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".mfi_cache.db"
	}
	return filepath.Join(homeDir, ".mfi_cache.db")
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for run history.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".mfi_history.db"
	}
	return filepath.Join(homeDir, ".mfi_history.db")
}

// TruncateText truncates text to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so there's space for the "..." and at least one character of content.
func TruncateText(text string, maxWidth int) string {
	runes := []rune(text)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return text
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
