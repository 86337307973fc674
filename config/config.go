package config

import (
	"strings"

	"emperror.dev/errors"
	"github.com/BurntSushi/toml"
	"golang.org/x/exp/slices"
)

type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

type ValidateConfig struct {
	// SchemaFile overrides the embedded bundle schema.
	SchemaFile string `toml:"schemafile"`
	// DomainFile overrides the embedded code_domain table.
	DomainFile string `toml:"domainfile"`
	// NoLogArtifact suppresses writing the report into the bundle folder.
	NoLogArtifact bool `toml:"nologartifact"`
	Markdown      bool `toml:"markdown"`
}

type Gochk3dConfig struct {
	Log      LogConfig       `toml:"Log"`
	Validate *ValidateConfig `toml:"Validate"`
}

var logLevels = []string{"DEBUG", "INFO", "WARN", "ERROR", "FATAL", "PANIC"}

func LoadGochk3dConfig(data string) (*Gochk3dConfig, error) {
	var conf = &Gochk3dConfig{
		Log: LogConfig{
			Level: "ERROR",
		},
		Validate: &ValidateConfig{},
	}

	if _, err := toml.Decode(data, conf); err != nil {
		return nil, errors.Wrap(err, "Error on loading config")
	}
	conf.Log.Level = strings.ToUpper(conf.Log.Level)
	if !slices.Contains(logLevels, conf.Log.Level) {
		return nil, errors.Errorf("unknown log level '%s' please use %v", conf.Log.Level, logLevels)
	}
	return conf, nil
}
