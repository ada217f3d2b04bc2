package commands

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/kates/vector/decl"
	"github.com/kates/vector/runtime"
	"github.com/spf13/cobra"
)

// Global flags
var (
	envFiles      []string
	strictnessArg string
	assumedVars   []string
	logLevelArg   string
	noColor       bool
)

// programVars holds the interpolation variables resolved before each command runs.
var programVars map[string]string

var rootCmd = &cobra.Command{
	Use:   "remap",
	Short: "remap compiles and runs event transformation programs",
	Long: `remap loads programs that transform structured events, reports what
each program can produce, and applies programs to streams of JSON events.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if logLevelArg != "" {
			level, err := runtime.ParseLogLevel(logLevelArg)
			if err != nil {
				return err
			}
			runtime.SetLogLevel(level)
		}
		if noColor {
			color.NoColor = true
		}
		vars, err := loaderVars(envFiles)
		if err != nil {
			return err
		}
		programVars = vars
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "Env files supplying ${VAR} values to programs (process env wins)")
	rootCmd.PersistentFlags().StringVar(&strictnessArg, "strictness", "permissive", "How to treat variables that may be read before assignment: permissive or strict")
	rootCmd.PersistentFlags().StringSliceVar(&assumedVars, "assume", nil, "Variables the host seeds before each run")
	rootCmd.PersistentFlags().StringVar(&logLevelArg, "log-level", "", "Log level: debug, info, warn, error, off (default: REMAP_LOG_LEVEL or info)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
}

// AddCommand allows adding subcommands from other files.
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}

func strictness() (decl.Strictness, error) {
	return decl.ParseStrictness(strictnessArg)
}
