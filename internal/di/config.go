package di

import (
	"strings"

	"github.com/defval/di"
	"github.com/spf13/viper"
)

var configDiOptions = di.Options(
	di.Provide(newConfig),
)

// InitConfig makes each config key overridable through the env variable
// with the same name, where dots are replaced with underscores (e.g. MOJANG_SESSION_URL).
// Values from the config file, when it's passed, have lower priority than env variables
func InitConfig(configFile string) error {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if configFile == "" {
		return nil
	}

	viper.SetConfigFile(configFile)

	return viper.ReadInConfig()
}

func newConfig() *viper.Viper {
	return viper.GetViper()
}
