package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Vasu1712/hushgroup-backend/internal/appconfig"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	logLevel   string
	configPath string
	appCfg     *appconfig.Config
)

var rootCmd = &cobra.Command{
	Use:   "hushgroup",
	Short: "Anonymous group messaging backend",
	Long:  `hushgroup serves groups joined by invite code whose members can message each other without revealing who sent what.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "",
		"sets the log level (overrides config)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"path to a YAML config file")
}

// commonSetUp loads the config and sets up logging.
func commonSetUp() {
	var err error
	appCfg, err = appconfig.LoadConfig(configPath)
	if err != nil {
		setLogging("warn")
		log.Fatal().Err(err).Msg("failed to load config")
	}

	level := appCfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	setLogging(level)
}

func setLogging(level string) {
	zerolog.TimestampFunc = func() time.Time {
		return time.Now().UTC()
	}

	switch strings.ToLower(level) {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "fatal":
		zerolog.SetGlobalLevel(zerolog.FatalLevel)
	case "panic":
		zerolog.SetGlobalLevel(zerolog.PanicLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}
}
