// Package optimizer rewrites a parsed program into a cheaper equivalent
// before it runs.
//
// Each optimization is a Pass over the statement tree. The Optimizer runs
// its passes in order and repeats the sequence while any pass still finds
// something to change, up to a fixed number of rounds: folding a
// condition to a constant is what lets dead branch elimination remove it.
package optimizer

import (
	"fmt"
	"log"

	"github.com/hassan/tinyscript/internal/parser/ast"
)

// DefaultMaxIterations bounds the rounds of a new Optimizer.
const DefaultMaxIterations = 10

// Pass is one optimization over a program tree.
type Pass interface {
	// Name returns a human-readable name for this pass.
	Name() string

	// Run rewrites root in place, recording what it did in stats. Expression
	// trees are replaced, never modified.
	Run(root *ast.Scope, stats *OptimizationStats) error
}

// Optimizer coordinates the execution of optimization passes.
type Optimizer struct {
	passes []Pass

	// maxIterations bounds the number of rounds over all passes.
	maxIterations int

	verbose bool
	logger  *log.Logger

	stats *OptimizationStats
}

// NewOptimizer creates an optimizer running constant folding followed by
// dead branch elimination.
func NewOptimizer() *Optimizer {
	return &Optimizer{
		passes: []Pass{
			&ConstantFoldingPass{},
			&DeadBranchPass{},
		},
		maxIterations: DefaultMaxIterations,
		logger:        log.Default(),
		stats:         NewOptimizationStats(),
	}
}

// SetVerbose enables or disables logging of each pass.
func (o *Optimizer) SetVerbose(verbose bool) {
	o.verbose = verbose
}

// SetLogger sets the destination of verbose output.
func (o *Optimizer) SetLogger(logger *log.Logger) {
	o.logger = logger
}

// SetMaxIterations sets the maximum number of optimization rounds.
func (o *Optimizer) SetMaxIterations(max int) {
	o.maxIterations = max
}

// Stats returns the statistics accumulated by Optimize.
func (o *Optimizer) Stats() *OptimizationStats {
	return o.stats
}

// Optimize runs the passes over root until a round changes nothing.
func (o *Optimizer) Optimize(root *ast.Scope) error {
	if root == nil {
		return nil
	}
	for round := 0; round < o.maxIterations; round++ {
		before := o.stats.changes()
		for _, pass := range o.passes {
			if o.verbose {
				o.logger.Printf("optimizer: round %d: running %s", round+1, pass.Name())
			}
			o.stats.PassExecutions[pass.Name()]++
			if err := pass.Run(root, o.stats); err != nil {
				return fmt.Errorf("pass %s failed: %w", pass.Name(), err)
			}
		}
		if o.stats.changes() == before {
			break
		}
	}
	if o.verbose {
		o.logger.Printf("optimizer: %s", o.stats)
	}
	return nil
}

// Optimize runs the default passes over root for at most rounds rounds.
func Optimize(root *ast.Scope, rounds int) (*OptimizationStats, error) {
	o := NewOptimizer()
	o.SetMaxIterations(rounds)
	err := o.Optimize(root)
	return o.Stats(), err
}

// OptimizationStats tracks what the passes changed.
type OptimizationStats struct {
	// ConstantsFolded is the number of operator nodes replaced by literals.
	ConstantsFolded int

	// BranchesResolved is the number of if/while statements whose
	// condition was constant.
	BranchesResolved int

	// StatementsRemoved is the number of statements dropped.
	StatementsRemoved int

	// PassExecutions tracks how many times each pass ran.
	PassExecutions map[string]int
}

// NewOptimizationStats creates a new stats tracker.
func NewOptimizationStats() *OptimizationStats {
	return &OptimizationStats{
		PassExecutions: make(map[string]int),
	}
}

func (s *OptimizationStats) changes() int {
	return s.ConstantsFolded + s.BranchesResolved + s.StatementsRemoved
}

func (s *OptimizationStats) String() string {
	return fmt.Sprintf("%d constants folded, %d branches resolved, %d statements removed",
		s.ConstantsFolded, s.BranchesResolved, s.StatementsRemoved)
}
