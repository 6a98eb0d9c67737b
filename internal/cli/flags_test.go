package cli

import (
	"reflect"
	"testing"
	"time"
)

func TestNewFlags(t *testing.T) {
	flags := NewFlags()

	// Test default values
	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"OutputDir", flags.OutputDir, "./photos"},
		{"HalfWidth", flags.HalfWidth, 1.0},
		{"HalfHeight", flags.HalfHeight, 1.0},
		{"Endpoint", flags.Endpoint, "https://api.flickr.com/services/rest"},
		{"Timeout", flags.Timeout, 30 * time.Second},
		{"Rate", flags.Rate, 1.0},
		{"Burst", flags.Burst, 3},
		{"LogLevel", flags.LogLevel, "warn"},
		{"LogFormat", flags.LogFormat, "text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !reflect.DeepEqual(tt.got, tt.expected) {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}

	// Test boolean defaults (should be false)
	boolTests := []struct {
		name  string
		value bool
	}{
		{"Overwrite", flags.Overwrite},
		{"NoSave", flags.NoSave},
		{"Archive", flags.Archive},
	}

	for _, tt := range boolTests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != false {
				t.Errorf("%s = %v, want false", tt.name, tt.value)
			}
		})
	}

	// Test string defaults (should be empty)
	stringTests := []struct {
		name  string
		value string
	}{
		{"CfgFile", flags.CfgFile},
		{"BatchFile", flags.BatchFile},
		{"Latitude", flags.Latitude},
		{"Longitude", flags.Longitude},
		{"APIKey", flags.APIKey},
	}

	for _, tt := range stringTests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Errorf("%s = %v, want empty string", tt.name, tt.value)
			}
		})
	}
}

func TestLoggingOptions(t *testing.T) {
	flags := NewFlags()
	flags.LogLevel = "debug"
	flags.LogFormat = "json"

	opts := flags.LoggingOptions()
	if opts.Level != "debug" || opts.Format != "json" {
		t.Errorf("LoggingOptions() = %+v", opts)
	}
	if opts.Output == nil {
		t.Error("LoggingOptions() should default the output")
	}
}
