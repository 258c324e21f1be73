package cliflag

import (
	"strings"

	"github.com/spf13/pflag"

	"github.com/kiosk404/oracle/pkg/logger"
)

// WordSepNormalizeFunc changes all flags that contain "_" separators.
func WordSepNormalizeFunc(f *pflag.FlagSet, name string) pflag.NormalizedName {
	if strings.Contains(name, "_") {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	}
	return pflag.NormalizedName(name)
}

// WarnWordSepNormalizeFunc changes and warns for flags that contain "_" separators.
func WarnWordSepNormalizeFunc(f *pflag.FlagSet, name string) pflag.NormalizedName {
	if strings.Contains(name, "_") {
		nname := strings.ReplaceAll(name, "_", "-")
		logger.Warn("%s is DEPRECATED and will be removed in a future version. Use %s instead.", name, nname)
		return pflag.NormalizedName(nname)
	}
	return pflag.NormalizedName(name)
}
