// Package cli implements the mimecast command-line tool.
package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	mimecast "github.com/gh-tking/mimecast-sdk"
	"github.com/gh-tking/mimecast-sdk/secrets"
)

var (
	envFile string
	region  string
	baseURL string
	verbose bool
	timeout time.Duration

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mimecast",
	Short: "Mimecast API 2.0 command-line tool",
	Long: `Command-line access to the Mimecast API 2.0.

Credentials are read from MIMECAST_CLIENT_ID and MIMECAST_CLIENT_SECRET,
optionally loaded from a dotenv file with --env-file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogger()
	},
}

// Execute runs the root command.
func Execute() {
	defer func() {
		if logger != nil {
			_ = logger.Sync()
		}
	}()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file with credentials (optional)")
	rootCmd.PersistentFlags().StringVar(&region, "region", "", "regional API grid (eu, de, us, usb, ca, za, au, je)")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "API base URL, overrides --region")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "per-request HTTP timeout")

	viper.SetEnvPrefix("MIMECAST")
	viper.AutomaticEnv()
	_ = viper.BindPFlag("region", rootCmd.PersistentFlags().Lookup("region"))
	_ = viper.BindPFlag("base_url", rootCmd.PersistentFlags().Lookup("base-url"))
}

func initLogger() error {
	var err error
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		logger, err = cfg.Build()
	}
	return err
}

// newClient builds an API client from the environment and global flags.
func newClient(cmd *cobra.Command) (*mimecast.Client, error) {
	var store secrets.Store
	var err error
	if envFile != "" {
		store, err = secrets.NewEnvStoreFromFile(envFile)
		if err != nil {
			return nil, err
		}
	} else {
		store = secrets.NewEnvStore()
	}

	opts := []mimecast.Option{
		mimecast.WithLogger(logger),
		mimecast.WithTimeout(timeout),
	}

	switch {
	case viper.GetString("base_url") != "":
		opts = append(opts, mimecast.WithBaseURL(viper.GetString("base_url")))
	case viper.GetString("region") != "":
		r := mimecast.Region(strings.ToLower(viper.GetString("region")))
		if !r.Valid() {
			return nil, fmt.Errorf("unknown region %q, known regions: %v", region, mimecast.Regions())
		}
		opts = append(opts, mimecast.WithRegion(r))
	}

	return mimecast.NewFromStore(cmd.Context(), store, opts...)
}
