package cmd

import (
	"fmt"
	"os"

	"emperror.dev/emperror"
	"emperror.dev/errors"
	"github.com/geomodel-archive/gochk3d/config"
	"github.com/geomodel-archive/gochk3d/version"
	"github.com/spf13/cobra"
)

// all possible flags of all modules go here
var persistentFlagConfigFile string

var persistentFlagLogfile string
var persistentFlagLoglevel string

var conf *config.Gochk3dConfig

var rootCmd = &cobra.Command{
	Use:   "gochk3d",
	Short: "gochk3d validates 3D geological model bundles",
	Long: fmt.Sprintf(`A validator for 3D geological model deliveries:
GOCAD meshes, attribute tables and the bundle descriptor.
Version %s`, version.Version),
	Run: func(cmd *cobra.Command, args []string) {
		emperror.Panic(cmd.Help())
	},
}

func getFlagString(cmd *cobra.Command, flag string) string {
	str, err := cmd.Flags().GetString(flag)
	if err != nil {
		_ = cmd.Help()
		cobra.CheckErr(errors.Errorf("canot get flag %s: %v", flag, err))
	}
	return str
}

func getFlagBool(cmd *cobra.Command, flag string) bool {
	b, err := cmd.Flags().GetBool(flag)
	if err != nil {
		_ = cmd.Help()
		cobra.CheckErr(errors.Errorf("canot get flag %s: %v", flag, err))
	}
	return b
}

func initConfig() {

	// load config file
	if persistentFlagConfigFile != "" {
		data, err := os.ReadFile(persistentFlagConfigFile)
		if err != nil {
			_ = rootCmd.Help()
			fmt.Fprintf(os.Stderr, "error reading config file %s: %v\n", persistentFlagConfigFile, err)
			os.Exit(1)
		}
		conf, err = config.LoadGochk3dConfig(string(data))
		if err != nil {
			_ = rootCmd.Help()
			fmt.Fprintf(os.Stderr, "error loading config file %s: %v\n", persistentFlagConfigFile, err)
			os.Exit(1)
		}
	} else {
		var err error
		conf, err = config.LoadGochk3dConfig(string(config.DefaultConfig))
		if err != nil {
			_ = rootCmd.Help()
			fmt.Fprintf(os.Stderr, "error loading default config: %v\n", err)
			os.Exit(1)
		}
	}

	// overwrite config file with command line data
	if persistentFlagLogfile != "" {
		conf.Log.File = persistentFlagLogfile
	}
	if persistentFlagLoglevel != "" {
		conf.Log.Level = persistentFlagLoglevel
	}
}

func init() {

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&persistentFlagConfigFile, "config", "", "config file (default is embedded)")

	rootCmd.PersistentFlags().StringVar(&persistentFlagLogfile, "log-file", "", "log output file (default is console)")

	rootCmd.PersistentFlags().StringVar(&persistentFlagLoglevel, "log-level", "", "log level (PANIC|FATAL|ERROR|WARN|INFO|DEBUG)")

	initValidate()

	rootCmd.AddCommand(validateCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
