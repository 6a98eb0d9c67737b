package cli

import (
	"time"

	"github.com/spf13/viper"

	"codeberg.org/snonux/flickfinder/internal/logging"
	"codeberg.org/snonux/flickfinder/internal/query"
)

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile   string
	OutputDir string
	BatchFile string
	Overwrite bool
	NoSave    bool
	Archive   bool

	// Search flags
	Latitude   string
	Longitude  string
	HalfWidth  float64
	HalfHeight float64

	// Flickr flags
	APIKey   string
	Endpoint string
	Timeout  time.Duration
	Rate     float64
	Burst    int

	// Logging flags
	LogLevel  string
	LogFormat string
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		OutputDir:  "./photos",
		HalfWidth:  query.DefaultHalfWidth,
		HalfHeight: query.DefaultHalfHeight,
		Endpoint:   query.DefaultEndpoint.String(),
		Timeout:    30 * time.Second,
		Rate:       1,
		Burst:      3,
		LogLevel:   "warn",
		LogFormat:  logging.FormatText,
	}
}

// LoadFromViper copies the bound configuration into f. Viper already
// resolves flag, environment, config file and default in that order.
func (f *Flags) LoadFromViper() {
	f.OutputDir = viper.GetString(KeyOutputDirectory)
	f.Overwrite = viper.GetBool(KeyOutputOverwrite)
	f.HalfWidth = viper.GetFloat64(KeySearchHalfWidth)
	f.HalfHeight = viper.GetFloat64(KeySearchHalfHeight)
	f.Endpoint = viper.GetString(KeyFlickrEndpoint)
	f.Timeout = viper.GetDuration(KeyFlickrTimeout)
	f.Rate = viper.GetFloat64(KeyFlickrRate)
	f.Burst = viper.GetInt(KeyFlickrBurst)
	f.LogLevel = viper.GetString(KeyLogLevel)
	f.LogFormat = viper.GetString(KeyLogFormat)
}

// LoggingOptions returns the logger settings selected by the flags
func (f *Flags) LoggingOptions() logging.Options {
	opts := logging.DefaultOptions()
	opts.Level = f.LogLevel
	opts.Format = f.LogFormat
	return opts
}
