package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"github.com/Bitlatte/folio/internal/config"
	"github.com/Bitlatte/folio/internal/logging"
)

var (
	cfgFile    string
	appConfig  config.Config
	siteParams map[string]interface{}
	logger     = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "folio - a portfolio and blog site generator",
	Long: `folio turns a directory of Markdown content into a static portfolio
site: hierarchical listings, tags, feeds, a sitemap and a searchable index.
It can also serve the site locally with live rebuilds and run searches from
the command line.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().String("mode", "", "production or development (development keeps drafts)")
	rootCmd.PersistentFlags().String("log-level", "", "debug, info, warn or error")
}

func initializeConfig(cmd *cobra.Command) error {
	v := viper.New()
	setDefaults(v, config.Default())

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("FOLIO")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.BindPFlag("mode", cmd.Flags().Lookup("mode")); err != nil {
		return err
	}
	if err := v.BindPFlag("logLevel", cmd.Flags().Lookup("log-level")); err != nil {
		return err
	}

	configFound := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && cfgFile == "":
			configFound = false
		case errors.As(err, &notFound) || os.IsNotExist(err):
			return fmt.Errorf("config file %s not found: %w", cfgFile, err)
		default:
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	appConfig = config.Config{}
	if err := v.Unmarshal(&appConfig); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := appConfig.Validate(); err != nil {
		return err
	}

	l, err := logging.BuildLogger(appConfig.LogLevel, appConfig.IsDev())
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	logger = l

	siteParams = map[string]interface{}{}
	if configFound {
		logger.Debug("using config file", zap.String("file", v.ConfigFileUsed()))
		if siteParams, err = loadSiteParams(v.ConfigFileUsed()); err != nil {
			return err
		}
	} else {
		logger.Info("no config file found, using defaults and environment")
	}
	return nil
}

// setDefaults registers every key of def so env overrides and Unmarshal see them.
func setDefaults(v *viper.Viper, def config.Config) {
	v.SetDefault("siteTitle", def.SiteTitle)
	v.SetDefault("baseURL", def.BaseURL)
	v.SetDefault("outputDir", def.OutputDir)
	v.SetDefault("contentDir", def.ContentDir)
	v.SetDefault("layoutsDir", def.LayoutsDir)
	v.SetDefault("staticDir", def.StaticDir)
	v.SetDefault("mode", def.Mode)
	v.SetDefault("logLevel", def.LogLevel)
	v.SetDefault("indexPath", def.IndexPath)
	v.SetDefault("searchPaths", def.SearchPaths)
	v.SetDefault("sections", def.Sections)
	v.SetDefault("feedPaths", def.FeedPaths)
	v.SetDefault("feedLimit", def.FeedLimit)
	v.SetDefault("newWithinDays", def.NewWithinDays)
	v.SetDefault("workers", def.Workers)
}

// loadSiteParams reads the whole config file as free-form params for layouts.
func loadSiteParams(filename string) (map[string]interface{}, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", filename, err)
	}
	params := map[string]interface{}{}
	if err := yaml.Unmarshal(raw, &params); err != nil {
		return nil, fmt.Errorf("error unmarshalling config file %s: %w", filename, err)
	}
	return params, nil
}
