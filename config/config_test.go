package config

import (
	"testing"
)

func TestLoadDefaultConfig(t *testing.T) {
	conf, err := LoadGochk3dConfig(string(DefaultConfig))
	if err != nil {
		t.Fatalf("cannot load embedded config: %v", err)
	}
	if conf.Log.Level != "ERROR" {
		t.Errorf("default log level %s", conf.Log.Level)
	}
	if conf.Validate == nil || conf.Validate.Markdown || conf.Validate.NoLogArtifact {
		t.Errorf("unexpected validate defaults: %+v", conf.Validate)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	conf, err := LoadGochk3dConfig(`
[Log]
level = "debug"
file = "/tmp/gochk3d.log"

[Validate]
schemafile = "custom.yaml"
markdown = true
`)
	if err != nil {
		t.Fatalf("cannot load config: %v", err)
	}
	if conf.Log.Level != "DEBUG" {
		t.Errorf("log level not folded: %s", conf.Log.Level)
	}
	if conf.Validate.SchemaFile != "custom.yaml" || !conf.Validate.Markdown {
		t.Errorf("unexpected validate section: %+v", conf.Validate)
	}
}

func TestLoadConfigBadLevel(t *testing.T) {
	if _, err := LoadGochk3dConfig("[Log]\nlevel = \"LOUD\"\n"); err == nil {
		t.Error("unknown log level must not load")
	}
}

func TestLoadConfigBadToml(t *testing.T) {
	if _, err := LoadGochk3dConfig("[Log\nlevel"); err == nil {
		t.Error("broken TOML must not load")
	}
}
