package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kates/vector/core"
	"github.com/kates/vector/runtime"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	runInput   string
	runWorkers int
	runOnError string
	runSeeds   []string
	runQuiet   bool
	runFormat  string
)

var runCmd = &cobra.Command{
	Use:   "run <program.yaml>",
	Short: "Applies a program to a stream of events",
	Long: `The run command reads events from --input (or stdin), applies the
program to each one, and writes the resulting events to stdout in input order.

--format picks the framing of both streams: json (newline delimited objects,
the default) or proto (length delimited google.protobuf.Struct messages).

--on-error picks what happens to an event whose run fails: abort (default),
drop, or tag. Policies can be set per error kind, e.g. "tag,variable=drop".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		policy, err := runtime.ParseErrorPolicy(runOnError)
		if err != nil {
			return err
		}
		format, err := runtime.ParseFormat(runFormat)
		if err != nil {
			return err
		}
		seed, err := parseSeeds(runSeeds)
		if err != nil {
			return err
		}
		seedNames := make([]string, 0, len(seed))
		for name := range seed {
			seedNames = append(seedNames, name)
		}

		result, err := loadProgram(cmd, args[0], seedNames...)
		if result != nil {
			printDiagnostics(cmd.ErrOrStderr(), result)
		}
		if err != nil {
			return err
		}

		in, err := openInput(cmd, runInput)
		if err != nil {
			return err
		}
		defer in.Close()
		events, err := runtime.ReadEvents(in, format)
		if err != nil {
			return err
		}

		tr := &runtime.Transform{Program: result.Program, Policy: policy, Seed: seed}
		out, stats, err := tr.ProcessAll(cmd.Context(), events, runWorkers)
		if err != nil {
			return err
		}
		if err := runtime.WriteEvents(cmd.OutOrStdout(), format, out); err != nil {
			return err
		}
		if !runQuiet {
			p := message.NewPrinter(language.English)
			dimColor.Fprint(cmd.ErrOrStderr(), p.Sprintf("%d events processed, %d dropped, %d tagged\n",
				stats.Processed, stats.Dropped, stats.Tagged))
		}
		return nil
	},
}

// parseSeeds reads name=<json value> pairs.
func parseSeeds(pairs []string) (map[string]core.Value, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	seed := make(map[string]core.Value, len(pairs))
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --var %q, expected name=<json>", pair)
		}
		var v core.Value
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("invalid --var %q: %w", pair, err)
		}
		seed[name] = v
	}
	return seed, nil
}

func init() {
	runCmd.Flags().StringVarP(&runInput, "input", "i", "", "File of events (default: stdin)")
	runCmd.Flags().StringVarP(&runFormat, "format", "f", "json", "Event stream format: json or proto")
	runCmd.Flags().IntVarP(&runWorkers, "workers", "w", 4, "Events processed concurrently (0 = unbounded)")
	runCmd.Flags().StringVar(&runOnError, "on-error", "abort", "Error policy: abort, drop or tag, optionally per kind (tag,variable=drop)")
	runCmd.Flags().StringArrayVar(&runSeeds, "var", nil, "Seed a variable for every event: name=<json value>")
	runCmd.Flags().BoolVarP(&runQuiet, "quiet", "q", false, "Do not print the summary")
	AddCommand(runCmd)
}
