package main

import (
	"fmt"
	"os"
	"runtime/pprof"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/thePoland001/CDCL-SAT-Solver/internal/dimacs"
	"github.com/thePoland001/CDCL-SAT-Solver/internal/sat"
)

var (
	flagGzip    bool
	flagVerbose bool
	flagDecay   float64
	flagCPUProf bool
	flagMemProf bool
)

var rootCmd = &cobra.Command{
	Use:          "cdcl [flags] instance",
	Short:        "Solve a DIMACS CNF instance with a CDCL SAT solver",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(args[0])
	},
}

func init() {
	rootCmd.Flags().BoolVar(&flagGzip, "gzip", false, "instance file is gzipped")
	rootCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "trace search events")
	rootCmd.Flags().Float64Var(&flagDecay, "decay", sat.DefaultOptions.VariableDecay, "variable activity decay factor")
	rootCmd.Flags().BoolVar(&flagCPUProf, "cpuprof", false, "save pprof CPU profile in cpuprof")
	rootCmd.Flags().BoolVar(&flagMemProf, "memprof", false, "save pprof memory profile in memprof")
}

func newSolver() *sat.Solver {
	ops := sat.Options{VariableDecay: flagDecay}
	if flagVerbose {
		ops.Tracer = logrus.New()
	}
	return sat.NewSolver(ops)
}

func run(instanceFile string) error {
	if flagCPUProf {
		f, err := os.Create("cpuprof")
		if err != nil {
			return err
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	s := newSolver()
	if err := dimacs.LoadDIMACS(instanceFile, flagGzip, s); err != nil {
		return errors.Wrap(err, "could not load instance")
	}

	fmt.Printf("c variables:    %d\n", s.NumVariables())
	fmt.Printf("c clauses:      %d\n", s.NumClauses())

	t := time.Now()
	found, model := s.Solve()
	elapsed := time.Since(t)

	fmt.Printf("c time (sec):   %f\n", elapsed.Seconds())
	fmt.Printf("c conflicts:    %d (%.2f /sec)\n", s.TotalConflicts, float64(s.TotalConflicts)/elapsed.Seconds())
	fmt.Printf("c decisions:    %d\n", s.TotalDecisions)
	fmt.Printf("c propagations: %d\n", s.TotalPropagations)
	fmt.Printf("c learnt:       %d (avg size %.1f)\n", s.NumLearnts(), s.AvgLearntSize())

	if found {
		fmt.Println("s SATISFIABLE")
		fmt.Println(modelLine(model))
	} else {
		fmt.Println("s UNSATISFIABLE")
	}

	if flagMemProf {
		f, err := os.Create("memprof")
		if err != nil {
			return err
		}
		pprof.WriteHeapProfile(f)
		f.Close()
	}

	return nil
}

// modelLine renders the model as a DIMACS "v" line with literals in
// increasing variable order.
func modelLine(model map[int]bool) string {
	vars := make([]int, 0, len(model))
	for v := range model {
		vars = append(vars, v)
	}
	sort.Ints(vars)

	sb := strings.Builder{}
	sb.WriteString("v")
	for _, v := range vars {
		if model[v] {
			fmt.Fprintf(&sb, " %d", v)
		} else {
			fmt.Fprintf(&sb, " %d", -v)
		}
	}
	sb.WriteString(" 0")
	return sb.String()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Fatal(err)
	}
}
