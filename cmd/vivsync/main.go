package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vivify-tools/vivsync/internal/version"
	"github.com/vivify-tools/vivsync/internal/vivsync/config"
)

var (
	home, _        = os.UserHomeDir()
	configFileName = "config"
)

// cfg is built once in the root PersistentPreRunE and read by all
// subcommands.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:     "vivsync",
	Short:   "Vivify live-preview sync client",
	Long:    "vivsync keeps a Vivify preview server updated with file content and cursor position, and opens preview windows via the viv binary.",
	Version: version.Detailed(),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(cmd); err != nil {
			return err
		}

		c := &config.Config{
			Port:           viper.GetInt("port"),
			Binary:         viper.GetString("viv_binary"),
			InstantRefresh: viper.GetBool("instant_refresh"),
			AutoScroll:     viper.GetBool("auto_scroll"),
			Filetypes:      viper.GetStringSlice("filetypes"),
			Debug:          viper.GetBool("debug"),
			Path:           viper.ConfigFileUsed(),
		}
		if err := c.Validate(); err != nil {
			return err
		}
		cfg = c

		setupLogging(cfg.Debug)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().SortFlags = false
	rootCmd.PersistentFlags().StringP("config", "c", config.DefaultConfigPath, "vivsync config file")
	rootCmd.PersistentFlags().IntP("port", "p", 0, "Vivify server port (0 = config file, env, default)")
	rootCmd.PersistentFlags().String("viv-binary", "", "custom path to the viv binary")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
}

func main() {
	// optional .env, mainly for VIVIFY_PORT in dev setups
	_ = godotenv.Load()

	setupLogging(false)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})
	slog.SetDefault(slog.New(handler))
}

func loadConfig(cmd *cobra.Command) error {
	if cmd.Flags().Changed("config") {
		configFilePath, _ := cmd.Flags().GetString("config")
		viper.SetConfigFile(configFilePath)
	} else {
		viper.AddConfigPath(filepath.Join(home, ".vivsync"))
		viper.AddConfigPath(filepath.Join(home, ".config/vivsync"))
		viper.SetConfigName(configFileName)
		viper.SetConfigType("json")
	}

	if err := viper.ReadInConfig(); err != nil {
		enoent := errors.Is(err, os.ErrNotExist)
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !enoent && !notFound {
			return fmt.Errorf("config read '%s': %w", viper.ConfigFileUsed(), err)
		}
	}

	viper.BindPFlag("port", cmd.Flags().Lookup("port"))
	viper.BindPFlag("viv_binary", cmd.Flags().Lookup("viv-binary"))
	viper.BindPFlag("debug", cmd.Flags().Lookup("debug"))

	viper.SetEnvPrefix("VIVSYNC")
	viper.AutomaticEnv()

	return nil
}
