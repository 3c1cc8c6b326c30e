package config

import (
	"bytes"
	_ "embed"
	"text/template"

	cmtconfig "github.com/cometbft/cometbft/config"
	"github.com/cometbft/cometbft/libs/os"
)

var appTemplate *template.Template

func init() {
	var err error
	if appTemplate, err = template.New("appConfigTemplate").Parse(defaultAppTemplate); err != nil {
		panic(err)
	}
}

// WriteConfigFile writes the CometBFT configuration followed by the [app]
// section to configFilePath.
func WriteConfigFile(configFilePath string, config *Config) {
	cmtconfig.WriteConfigFile(configFilePath, config.Config)

	var buffer bytes.Buffer
	buffer.Write(os.MustReadFile(configFilePath))
	if err := appTemplate.Execute(&buffer, config); err != nil {
		panic(err)
	}
	os.MustWriteFile(configFilePath, buffer.Bytes(), 0o644)
}

// Note: any changes to the comments/variables/mapstructure
// must be reflected in DAOAppConfig in config/config.go.
//
//go:embed config.toml.tpl
var defaultAppTemplate string
