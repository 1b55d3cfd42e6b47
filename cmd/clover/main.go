// Command clover compiles Clover source files to JavaScript.
//
// Usage:
//
//	clover build main.clv -o main.js
//	clover version
//
// Flags can also be set through the environment with the CLOVER_ prefix,
// e.g. CLOVER_OUTPUT=main.js.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/cloverlang/clover"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("clover")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "clover",
		Short:         "Clover is a Lisp-to-JavaScript compiler",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newBuildCmd(v), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the compiler version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(clover.Version())
		},
	}
}

func newBuildCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build <file.clv>...",
		Short: "Compile Clover source files to JavaScript",
		Long: "Compile one or more Clover source files, in order, into a single\n" +
			"JavaScript program. Files share one namespace store, so a namespace\n" +
			"declared in an earlier file is visible to later ones.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(v, args)
		},
	}
	cmd.Flags().StringP("output", "o", "", "output file (defaults to stdout)")
	cmd.Flags().Int("max-expand-depth", 0, "macro expansion depth budget")
	cmd.Flags().Bool("verbose", false, "enable debug logging")
	for _, name := range []string{"output", "max-expand-depth", "verbose"} {
		if err := v.BindPFlag(name, cmd.Flags().Lookup(name)); err != nil {
			panic(err)
		}
	}
	return cmd
}

func runBuild(v *viper.Viper, files []string) error {
	logger, err := newLogger(v.GetBool("verbose"))
	if err != nil {
		return errors.Wrap(err, "initializing logger")
	}
	defer logger.Sync() //nolint:errcheck

	c := clover.New(clover.WithMaxExpansionDepth(v.GetInt("max-expand-depth")))

	var fragments []string
	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			return errors.Wrapf(err, "reading %s", file)
		}
		logger.Debug("compiling", zap.String("file", file), zap.Int("bytes", len(src)))
		js, err := c.CompileString(string(src))
		if err != nil {
			return errors.Wrapf(err, "compiling %s", file)
		}
		fragments = append(fragments, js)
	}
	program := strings.Join(fragments, "\n") + "\n"

	out := v.GetString("output")
	if out == "" {
		fmt.Print(program)
		return nil
	}
	if err := os.WriteFile(out, []byte(program), 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", out)
	}
	logger.Info("wrote output", zap.String("file", out), zap.Int("bytes", len(program)))
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = true
	return cfg.Build()
}
