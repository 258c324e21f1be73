package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/kiosk404/oracle/pkg/logger"
)

const configFlagName = "config"

var cfgFile string

func init() {
	pflag.StringVarP(&cfgFile, configFlagName, "c", cfgFile, "Read configuration from specified `FILE`, "+
		"support JSON, TOML, YAML, HCL, or Java properties formats.")
}

func addConfigFlag(basename string, fs *pflag.FlagSet) {
	fs.AddFlag(pflag.Lookup(configFlagName))

	viper.AutomaticEnv()
	viper.SetEnvPrefix(strings.ReplaceAll(strings.ToUpper(basename), "-", "_"))
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	loadDotEnv()

	cobraOnInitialize(func() {
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		} else {
			viper.AddConfigPath(".")
			viper.AddConfigPath("conf")
			if home, err := os.UserHomeDir(); err == nil {
				viper.AddConfigPath(filepath.Join(home, "."+basename))
			}
			viper.SetConfigName(basename)
		}

		if err := viper.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if cfgFile != "" || !asNotFound(err, &notFound) {
				_, _ = fmt.Fprintf(os.Stderr, "Error: failed to read configuration file(%s): %v\n", cfgFile, err)
				os.Exit(1)
			}
			return
		}

		viper.OnConfigChange(func(e fsnotify.Event) {
			logger.Warn("[App] config file %s changed (%s), restart to apply", e.Name, e.Op)
		})
		viper.WatchConfig()
	})
}

// loadDotEnv loads KEY=VALUE pairs from ./.env without overriding the real environment.
func loadDotEnv() {
	if _, err := os.Stat(".env"); err != nil {
		return
	}
	if err := godotenv.Load(".env"); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Warning: failed to load .env: %v\n", err)
	}
}

func asNotFound(err error, target *viper.ConfigFileNotFoundError) bool {
	e, ok := err.(viper.ConfigFileNotFoundError)
	if ok {
		*target = e
	}
	return ok
}
