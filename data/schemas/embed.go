package schemas

import (
	_ "embed"
)

//go:embed bundle.yaml
var BundleYAML []byte
