package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/geomodel-archive/gochk3d/data/domains"
	"github.com/geomodel-archive/gochk3d/data/schemas"
	"github.com/geomodel-archive/gochk3d/pkg/geomodel"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:     "validate [path to bundle folder]",
	Aliases: []string{"check"},
	Short:   "validates a 3D model bundle folder",
	Example: "gochk3d validate ./model_2024",
	Args:    cobra.ExactArgs(1),
	Run:     validate,
}

func initValidate() {
	validateCmd.Flags().String("schema", "", "bundle schema file (default is embedded)")
	validateCmd.Flags().String("domains", "", "code_domain table (default is embedded)")
	validateCmd.Flags().Bool("markdown", false, "render the report as markdown")
	validateCmd.Flags().Bool("no-log", false, "do not write the report into the bundle folder")
}

func doValidateConf(cmd *cobra.Command) {
	if str := getFlagString(cmd, "schema"); str != "" {
		conf.Validate.SchemaFile = str
	}
	if str := getFlagString(cmd, "domains"); str != "" {
		conf.Validate.DomainFile = str
	}
	if getFlagBool(cmd, "markdown") {
		conf.Validate.Markdown = true
	}
	if getFlagBool(cmd, "no-log") {
		conf.Validate.NoLogArtifact = true
	}
}

func validate(cmd *cobra.Command, args []string) {
	folder := filepath.Clean(args[0])

	logger, lf := createLogger()
	if lf != nil {
		defer lf.Close()
	}
	t := startTimer()
	defer func() { logger.Info().Msgf("Duration: %s", t.String()) }()

	doValidateConf(cmd)

	logger.Info().Msgf("validating '%s'", folder)

	fi, err := os.Stat(folder)
	if err != nil {
		logger.Error().Stack().Err(err).Msgf("cannot access '%s'", folder)
		os.Exit(1)
	}
	if !fi.IsDir() {
		logger.Error().Msgf("'%s' is not a directory", folder)
		os.Exit(1)
	}

	schemaData := schemas.BundleYAML
	if conf.Validate.SchemaFile != "" {
		schemaData, err = os.ReadFile(conf.Validate.SchemaFile)
		if err != nil {
			logger.Error().Stack().Err(err).Msgf("cannot read schema file '%s'", conf.Validate.SchemaFile)
			os.Exit(1)
		}
	}
	schema, err := geomodel.LoadBundleSchema(schemaData)
	if err != nil {
		logger.Error().Stack().Err(err).Msg("cannot load bundle schema")
		os.Exit(1)
	}

	domainData := domains.CodeDomainCSV
	if conf.Validate.DomainFile != "" {
		domainData, err = os.ReadFile(conf.Validate.DomainFile)
		if err != nil {
			logger.Error().Stack().Err(err).Msgf("cannot read domain table '%s'", conf.Validate.DomainFile)
			os.Exit(1)
		}
	}
	schema.Domains, err = geomodel.LoadDomainTable(domainData)
	if err != nil {
		logger.Error().Stack().Err(err).Msg("cannot load domain table")
		os.Exit(1)
	}

	report, err := geomodel.ValidateBundle(context.TODO(), os.DirFS(folder), folder, schema, logger)
	if err != nil {
		logger.Error().Stack().Err(err).Msgf("cannot validate '%s'", folder)
		os.Exit(1)
	}

	if conf.Validate.Markdown {
		fmt.Print(report.RenderMarkdown())
	} else {
		rendered, err := report.Render()
		if err != nil {
			logger.Error().Stack().Err(err).Msg("cannot render report")
			os.Exit(1)
		}
		fmt.Print(rendered)
	}

	if !conf.Validate.NoLogArtifact {
		name, err := report.WriteLog()
		if err != nil {
			logger.Error().Stack().Err(err).Msg("cannot write report artifact")
			os.Exit(1)
		}
		logger.Info().Msgf("report written to '%s'", name)
	}

	if report.Verdict() == geomodel.VerdictFail {
		os.Exit(1)
	}
}
