package domains

import (
	_ "embed"
)

//go:embed code_domain.csv
var CodeDomainCSV []byte
