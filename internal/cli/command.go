package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/flickfinder/internal"
	"codeberg.org/snonux/flickfinder/internal/query"
)

// Configuration keys
const (
	KeyFlickrAPIKey     = "flickr.api_key"
	KeyFlickrEndpoint   = "flickr.endpoint"
	KeyFlickrTimeout    = "flickr.timeout"
	KeyFlickrRate       = "flickr.rate"
	KeyFlickrBurst      = "flickr.burst"
	KeySearchHalfWidth  = "search.half_width"
	KeySearchHalfHeight = "search.half_height"
	KeyOutputDirectory  = "output.directory"
	KeyOutputOverwrite  = "output.overwrite"
	KeyLogLevel         = "log.level"
	KeyLogFormat        = "log.format"
)

// APIKeyEnv is checked before any configured key
const APIKeyEnv = "FLICKR_API_KEY"

// ErrAmbiguousCriteria is returned when both a phrase and coordinates are given
var ErrAmbiguousCriteria = errors.New("give either a search phrase or --lat/--lon, not both")

// ErrNoCriteria is returned when neither a phrase, coordinates nor a batch file is given
var ErrNoCriteria = errors.New("give a search phrase, --lat and --lon, or --batch")

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "flickfinder [phrase]",
		Short: "Random Flickr photo finder",
		Long: `flickfinder searches Flickr by text phrase or around a location and
downloads one photo picked at random from the first pages of results.

Examples:
  flickfinder penguins                    # Random photo matching "penguins"
  flickfinder --lat 51.5 --lon -0.12      # Random photo taken around London
  flickfinder --batch queries.txt         # One photo per line of the file
  flickfinder --archive                   # Move saved photos to archive/`,
		Args:          cobra.ArbitraryArgs,
		Version:       internal.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set up flags
	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.flickfinder.yaml)")
	cmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level: error, warn, info, debug")
	cmd.PersistentFlags().StringVar(&flags.LogFormat, "log-format", flags.LogFormat, "Log format: text or json")

	// Local flags
	cmd.Flags().StringVarP(&flags.OutputDir, "output", "o", flags.OutputDir, "Output directory")
	cmd.Flags().StringVar(&flags.BatchFile, "batch", "", "Run one search per line of file")
	cmd.Flags().BoolVar(&flags.Overwrite, "overwrite", false, "Replace existing files in the output directory")
	cmd.Flags().BoolVar(&flags.NoSave, "no-save", false, "Only report the found photo, do not save it")
	cmd.Flags().BoolVar(&flags.Archive, "archive", false, "Move the output directory to archive/ and exit")

	// Search flags
	cmd.Flags().StringVar(&flags.Latitude, "lat", "", "Latitude of the search centre, [-90, 90]")
	cmd.Flags().StringVar(&flags.Longitude, "lon", "", "Longitude of the search centre, [-180, 180]")
	cmd.Flags().Float64Var(&flags.HalfWidth, "half-width", flags.HalfWidth, "Half width of the search box in degrees of longitude")
	cmd.Flags().Float64Var(&flags.HalfHeight, "half-height", flags.HalfHeight, "Half height of the search box in degrees of latitude")

	// Flickr flags
	cmd.Flags().StringVar(&flags.APIKey, "api-key", "", "Flickr API key (default: $FLICKR_API_KEY or flickr.api_key)")
	cmd.Flags().StringVar(&flags.Endpoint, "endpoint", flags.Endpoint, "Flickr REST endpoint")
	cmd.Flags().DurationVar(&flags.Timeout, "timeout", flags.Timeout, "HTTP timeout per request")
	cmd.Flags().Float64Var(&flags.Rate, "rate", flags.Rate, "Maximum Flickr requests per second (0 = unlimited)")
	cmd.Flags().IntVar(&flags.Burst, "burst", flags.Burst, "Requests allowed in a burst")

	_ = cmd.Flags().MarkHidden("endpoint")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag(KeyFlickrAPIKey, cmd.Flags().Lookup("api-key"))
	viper.BindPFlag(KeyFlickrEndpoint, cmd.Flags().Lookup("endpoint"))
	viper.BindPFlag(KeyFlickrTimeout, cmd.Flags().Lookup("timeout"))
	viper.BindPFlag(KeyFlickrRate, cmd.Flags().Lookup("rate"))
	viper.BindPFlag(KeyFlickrBurst, cmd.Flags().Lookup("burst"))
	viper.BindPFlag(KeySearchHalfWidth, cmd.Flags().Lookup("half-width"))
	viper.BindPFlag(KeySearchHalfHeight, cmd.Flags().Lookup("half-height"))
	viper.BindPFlag(KeyOutputDirectory, cmd.Flags().Lookup("output"))
	viper.BindPFlag(KeyOutputOverwrite, cmd.Flags().Lookup("overwrite"))
	viper.BindPFlag(KeyLogLevel, cmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag(KeyLogFormat, cmd.PersistentFlags().Lookup("log-format"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".flickfinder" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".flickfinder")
	}

	// Environment variables, e.g. FLICKFINDER_FLICKR_TIMEOUT=10s
	viper.SetEnvPrefix("FLICKFINDER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// GetAPIKey retrieves the Flickr API key from environment or config
func GetAPIKey() string {
	// First check environment variable
	if key := os.Getenv(APIKeyEnv); key != "" {
		return key
	}

	// Then check config file
	return viper.GetString(KeyFlickrAPIKey)
}

// CriteriaFromArgs turns the positional phrase or the --lat/--lon flags
// into search criteria. Words of the phrase are joined with spaces. The
// values are not validated here; the query builder does that.
func CriteriaFromArgs(args []string, flags *Flags) (query.Criteria, error) {
	hasPhrase := len(args) > 0
	hasCoordinates := flags.Latitude != "" || flags.Longitude != ""

	switch {
	case hasPhrase && hasCoordinates:
		return query.Criteria{}, ErrAmbiguousCriteria
	case hasPhrase:
		return query.Phrase(strings.Join(args, " ")), nil
	case hasCoordinates:
		return query.LatLon(flags.Latitude, flags.Longitude), nil
	default:
		return query.Criteria{}, ErrNoCriteria
	}
}
