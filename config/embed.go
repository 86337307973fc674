package config

import (
	_ "embed"
)

//go:embed gochk3d.toml
var DefaultConfig []byte
