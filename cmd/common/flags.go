package common

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/ducminhle1904/crypto-signal-scanner/internal/exchange/bybit"
)

// DateLayout is the date format of every date flag
const DateLayout = "2006-01-02"

var symbolPattern = regexp.MustCompile(`^[A-Z0-9]{2,32}$`)

// SplitList splits a comma-separated flag value, dropping blanks
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// CommonFlags contains flags that are shared across multiple commands
type CommonFlags struct {
	// Environment and configuration
	ConfigFile *string
	EnvFile    *string
	Source     *string
	DataRoot   *string

	// Logging
	LogLevel *string

	// Help and version
	Version *bool
	Help    *bool
}

// RegisterCommonFlags registers common flags on fs
func RegisterCommonFlags(fs *flag.FlagSet) *CommonFlags {
	return &CommonFlags{
		ConfigFile: fs.String("config", "", "YAML configuration file (defaults apply when empty)"),
		EnvFile:    fs.String("env", ".env", "Environment file path"),
		Source:     fs.String("source", "", "Market data source: bybit or csv (overrides config)"),
		DataRoot:   fs.String("data-root", "", "Data root directory for the csv source (overrides config)"),

		LogLevel: fs.String("log-level", "", "Log level: debug, info, warn, error (overrides config)"),

		Version: fs.Bool("version", false, "Show version information"),
		Help:    fs.Bool("help", false, "Show help information"),
	}
}

// FlagValidator provides flag validation utilities
type FlagValidator struct {
	errors []string
}

// NewFlagValidator creates a new flag validator
func NewFlagValidator() *FlagValidator {
	return &FlagValidator{
		errors: make([]string, 0),
	}
}

// ValidateInt validates an int flag value
func (v *FlagValidator) ValidateInt(name string, value int, min, max int) *FlagValidator {
	if value < min || value > max {
		v.errors = append(v.errors, fmt.Sprintf("%s must be between %d and %d, got: %d", name, min, max, value))
	}
	return v
}

// ValidateSymbols checks that every symbol looks like a Bybit pair such as BTCUSDT
func (v *FlagValidator) ValidateSymbols(name string, symbols []string, required bool) *FlagValidator {
	if len(symbols) == 0 && required {
		v.errors = append(v.errors, fmt.Sprintf("%s: at least one symbol is required", name))
	}
	for _, sym := range symbols {
		if !symbolPattern.MatchString(sym) {
			v.errors = append(v.errors, fmt.Sprintf("%s: %q is not a symbol like BTCUSDT", name, sym))
		}
	}
	return v
}

// ValidateIntervals checks each interval against the kline intervals Bybit serves
func (v *FlagValidator) ValidateIntervals(name string, intervals ...string) *FlagValidator {
	for _, iv := range intervals {
		if iv == "" {
			continue
		}
		if _, err := bybit.ParseInterval(iv); err != nil {
			v.errors = append(v.errors, fmt.Sprintf("%s: %v", name, err))
		}
	}
	return v
}

// ParseDate parses an optional YYYY-MM-DD flag as a UTC midnight. Empty and
// invalid values return fallback; invalid ones are recorded as errors.
func (v *FlagValidator) ParseDate(name, value string, fallback time.Time) time.Time {
	if value == "" {
		return fallback
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		v.errors = append(v.errors, fmt.Sprintf("%s date must be YYYY-MM-DD, got %q", name, value))
		return fallback
	}
	return t
}

// ValidateDateRange requires start to be before end
func (v *FlagValidator) ValidateDateRange(start, end time.Time) *FlagValidator {
	if !start.Before(end) {
		v.errors = append(v.errors, fmt.Sprintf("start date %s must be before end date %s", start.Format(DateLayout), end.Format(DateLayout)))
	}
	return v
}

// ValidateChoice validates that a string is one of the allowed choices.
// An empty value is accepted when optional is true.
func (v *FlagValidator) ValidateChoice(name, value string, choices []string, optional bool) *FlagValidator {
	if value == "" && optional {
		return v
	}
	for _, choice := range choices {
		if value == choice {
			return v
		}
	}
	v.errors = append(v.errors, fmt.Sprintf("%s must be one of [%s], got: %q", name, strings.Join(choices, ", "), value))
	return v
}

// ValidateExtension validates that an optional output path ends in one of exts
func (v *FlagValidator) ValidateExtension(name, path string, exts ...string) *FlagValidator {
	if path == "" {
		return v
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return v
		}
	}
	v.errors = append(v.errors, fmt.Sprintf("%s must end in one of [%s], got: %s", name, strings.Join(exts, ", "), path))
	return v
}

// AddError adds a custom validation error
func (v *FlagValidator) AddError(message string) *FlagValidator {
	v.errors = append(v.errors, message)
	return v
}

// HasErrors returns true if there are validation errors
func (v *FlagValidator) HasErrors() bool {
	return len(v.errors) > 0
}

// GetError returns a formatted error message with all validation errors
func (v *FlagValidator) GetError() error {
	if len(v.errors) == 0 {
		return nil
	}

	if len(v.errors) == 1 {
		return fmt.Errorf("validation error: %s", v.errors[0])
	}

	return fmt.Errorf("validation errors:\n  - %s", strings.Join(v.errors, "\n  - "))
}

// UsageFormatter provides utilities for formatting flag usage
type UsageFormatter struct {
	AppName        string
	AppDescription string
	Examples       []UsageExample
}

// UsageExample represents a usage example
type UsageExample struct {
	Command     string
	Description string
}

// NewUsageFormatter creates a new usage formatter
func NewUsageFormatter(appName, description string) *UsageFormatter {
	return &UsageFormatter{
		AppName:        appName,
		AppDescription: description,
		Examples:       make([]UsageExample, 0),
	}
}

// AddExample adds a usage example
func (u *UsageFormatter) AddExample(command, description string) *UsageFormatter {
	u.Examples = append(u.Examples, UsageExample{
		Command:     command,
		Description: description,
	})
	return u
}

// PrintUsage prints formatted usage information for fs
func (u *UsageFormatter) PrintUsage(fs *flag.FlagSet) {
	out := fs.Output()
	fmt.Fprintf(out, "%s - %s\n\n", u.AppName, u.AppDescription)

	fmt.Fprintf(out, "USAGE:\n")
	fmt.Fprintf(out, "  %s [OPTIONS]\n\n", filepath.Base(os.Args[0]))

	if len(u.Examples) > 0 {
		fmt.Fprintf(out, "EXAMPLES:\n")
		for _, example := range u.Examples {
			fmt.Fprintf(out, "  # %s\n", example.Description)
			fmt.Fprintf(out, "  %s\n\n", example.Command)
		}
	}

	fmt.Fprintf(out, "OPTIONS:\n")
	fs.PrintDefaults()
}

// CheckHelpAndVersion handles -help and -version, reporting whether the command should exit
func CheckHelpAndVersion(fs *flag.FlagSet, appName string, commonFlags *CommonFlags, formatter *UsageFormatter) bool {
	if *commonFlags.Version {
		PrintVersion(fs.Output(), appName)
		return true
	}

	if *commonFlags.Help {
		formatter.PrintUsage(fs)
		return true
	}

	return false
}
