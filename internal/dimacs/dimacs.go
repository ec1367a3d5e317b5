package dimacs

import (
	"compress/gzip"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/rhartert/dimacs"
)

// ClauseWriter is the part of the solver the loader feeds. DIMACS literals
// are already in the solver's external form (signed non-zero ints), so
// clauses are passed through verbatim.
type ClauseWriter interface {
	AddClause(lits []int) error
}

func reader(filename string, gzipped bool) (io.ReadCloser, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	rc := io.ReadCloser(file)
	if gzipped {
		rc, err = gzip.NewReader(rc)
		if err != nil {
			return nil, err
		}
	}
	return rc, nil
}

// LoadDIMACS parses the DIMACS CNF file and loads its formula into the
// given solver.
func LoadDIMACS(filename string, gzipped bool, cw ClauseWriter) error {
	r, err := reader(filename, gzipped)
	if err != nil {
		return errors.Wrapf(err, "error reading file %q", filename)
	}
	defer r.Close()

	if err := dimacs.ReadBuilder(r, &builder{cw}); err != nil {
		return errors.Wrapf(err, "error parsing %q", filename)
	}
	return nil
}

// builder adapts a ClauseWriter to dimacs.Builder.
type builder struct {
	cw ClauseWriter
}

func (b *builder) Problem(problem string, nVars int, nClauses int) error {
	if problem != "cnf" {
		return errors.Errorf("instances of type %q are not supported", problem)
	}
	// Variables are registered implicitly as clauses are added, so the
	// header counts are not needed here.
	return nil
}

func (b *builder) Clause(tmpClause []int) error {
	// AddClause does not retain tmpClause, so the shared buffer can be
	// passed as is.
	return b.cw.AddClause(tmpClause)
}

func (b *builder) Comment(_ string) error {
	return nil // ignore comments
}

// ReadModels returns the list of models (if any) contained in the given
// file. The file must contain one model per line, written as DIMACS
// literals terminated by 0, where the literal at position i gives the value
// of variable i+1.
func ReadModels(filename string) ([][]bool, error) {
	r, err := reader(filename, false)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading file %q", filename)
	}
	defer r.Close()

	b := &modelBuilder{}
	if err := dimacs.ReadBuilder(r, b); err != nil {
		return nil, err
	}
	return b.models, nil
}

// modelBuilder accumulates model lines via dimacs.Builder.
type modelBuilder struct {
	models [][]bool
}

func (b *modelBuilder) Problem(problem string, nVars int, nClauses int) error {
	return errors.New("model files should not have problem lines")
}

func (b *modelBuilder) Comment(_ string) error {
	return nil // ignore comments
}

func (b *modelBuilder) Clause(tmpClause []int) error {
	model := make([]bool, len(tmpClause))
	for i, l := range tmpClause {
		model[i] = l > 0
	}
	b.models = append(b.models, model)
	return nil
}
