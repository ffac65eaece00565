package poliastro

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

var (
	cfgLoaded = false
	config    = _pconfig{}
)

// _pconfig is a "hidden" struct, just use `pConfig`
type _pconfig struct {
	VSOP87    bool
	VSOP87Dir string
	outputDir string
}

// pConfig returns the poliastro configuration. The configuration file is
// a conf.toml in the directory pointed to by POLIASTRO_CONFIG. When the
// environment variable is not set, everything runs with the defaults:
// no VSOP87 ephemerides and output in the working directory.
func pConfig() _pconfig {
	if cfgLoaded {
		return config
	}
	confPath := os.Getenv("POLIASTRO_CONFIG")
	if confPath == "" {
		cfgLoaded = true
		config = _pconfig{outputDir: "."}
		return config
	}
	viper.SetConfigName("conf")
	viper.AddConfigPath(confPath)
	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Errorf("%s/conf.toml not found", confPath))
	}

	vsop87Enabled := viper.GetBool("VSOP87.enabled")
	vsop87Dir := viper.GetString("VSOP87.directory")
	outputDir := viper.GetString("general.output_path")
	if outputDir == "" {
		outputDir = "."
	}
	if vsop87Enabled && vsop87Dir == "" {
		panic("VSOP87 is enabled but VSOP87.directory is empty")
	}
	cfgLoaded = true
	config = _pconfig{VSOP87: vsop87Enabled, VSOP87Dir: vsop87Dir, outputDir: outputDir}
	return config
}
