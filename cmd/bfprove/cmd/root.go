package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/tobix/bfprove/internal/executor"
	"github.com/tobix/bfprove/internal/runtime"
	"github.com/tobix/bfprove/internal/shell"
)

var (
	executorFlag string
	modeFlag     string
	evalFlag     string
)

var rootCmd = &cobra.Command{
	Use:   "bfprove",
	Short: "Interactive brute-force prover for 32-bit integer propositions",
	Long: `bfprove is a line-oriented REPL for defining functions over 32-bit
signed integers and brute-force checking propositions about them,
backed by either a native JIT compiler or a tree-walking interpreter.

With no flags, it behaves exactly as the interactive shell: read a
line, evaluate it, print the result, repeat until EOF or "quit".`,
	RunE: runRoot,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&executorFlag, "executor", "compiled", "initial executor: compiled|interpreted")
	rootCmd.PersistentFlags().StringVar(&modeFlag, "mode", "fast", "initial mode: proof|fast|benchmark")
	rootCmd.PersistentFlags().StringVarP(&evalFlag, "eval", "e", "", "evaluate one line non-interactively and exit")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func runRoot(cmd *cobra.Command, args []string) error {
	exec, err := newExecutor(executorFlag)
	if err != nil {
		return err
	}
	mode, err := newMode(modeFlag)
	if err != nil {
		return err
	}

	rt := runtime.New(exec, mode, os.Stdout, os.Stdout)

	if evalFlag != "" {
		rt.HandleLine(evalFlag)
		return nil
	}
	shell.Run(rt, os.Stdin, os.Stdout)
	return nil
}

func newExecutor(name string) (executor.Executor, error) {
	switch name {
	case "compiled":
		e, ok := executor.New()
		if !ok {
			os.Stdout.WriteString("JIT> executable memory unavailable; falling back to the interpreted executor\n")
		}
		return e, nil
	case "interpreted":
		return executor.NewInterpreted(), nil
	default:
		return nil, errUnknownFlag("executor", name)
	}
}

func newMode(name string) (runtime.Mode, error) {
	switch name {
	case "proof":
		return runtime.Proof, nil
	case "fast":
		return runtime.Fast, nil
	case "benchmark":
		return runtime.Benchmark, nil
	default:
		return 0, errUnknownFlag("mode", name)
	}
}

type flagError struct {
	flag, value string
}

func (e *flagError) Error() string {
	return "unknown --" + e.flag + " value: " + e.value
}

func errUnknownFlag(flag, value string) error { return &flagError{flag: flag, value: value} }
