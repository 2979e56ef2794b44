package emit

import (
	"sort"

	"github.com/richarddahl/sqlemit"
)

// Resolve computes a stable topological order for a batch of statements:
// every statement appears after all statements named in its dependencies,
// and statements with no relative ordering constraint keep their input
// order, so generated scripts stay deterministic and diffable across runs.
//
// Dependencies may reference names declared via WithApplied without those
// statements being present in the batch; such references are satisfied
// immediately.
//
// Resolve fails with a CycleError naming the full cycle chain, or a
// MissingDependencyError naming the unresolved reference. Duplicate
// statement names are a SpecificationError. All failures are detected
// before any statement could be executed.
func Resolve(statements []*sqlemit.Statement, opts ...Option) ([]*sqlemit.Statement, error) {
	o := newOptions(opts)
	return resolve(statements, o.applied)
}

func resolve(statements []*sqlemit.Statement, applied map[string]struct{}) ([]*sqlemit.Statement, error) {
	index := make(map[string]int, len(statements))
	for i, s := range statements {
		if _, dup := index[s.Name()]; dup {
			return nil, sqlemit.NewSpecificationError("", s.Name(), "duplicate statement name in batch")
		}
		index[s.Name()] = i
	}

	// In-batch dependency edges and in-degrees. Dependencies satisfied by
	// prior batches contribute no edge.
	indegree := make([]int, len(statements))
	dependents := make([][]int, len(statements))
	for i, s := range statements {
		for _, dep := range s.Dependencies() {
			j, inBatch := index[dep]
			if !inBatch {
				if _, ok := applied[dep]; ok {
					continue
				}
				return nil, sqlemit.NewMissingDependencyError(s.Name(), dep)
			}
			indegree[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	// Kahn's algorithm with an input-order-preserving ready queue: the
	// ready list is kept sorted by input position so ties break toward
	// declaration order.
	ready := make([]int, 0, len(statements))
	for i := range statements {
		if indegree[i] == 0 {
			ready = append(ready, i)
		}
	}
	ordered := make([]*sqlemit.Statement, 0, len(statements))
	for len(ready) > 0 {
		i := ready[0]
		ready = ready[1:]
		ordered = append(ordered, statements[i])
		for _, k := range dependents[i] {
			indegree[k]--
			if indegree[k] == 0 {
				at := sort.SearchInts(ready, k)
				ready = append(ready, 0)
				copy(ready[at+1:], ready[at:])
				ready[at] = k
			}
		}
	}
	if len(ordered) < len(statements) {
		return nil, cycleError(statements, index, indegree)
	}
	return ordered, nil
}

// cycleError reconstructs one full cycle among the statements Kahn's
// algorithm could not schedule.
func cycleError(statements []*sqlemit.Statement, index map[string]int, indegree []int) error {
	remaining := make(map[int]struct{})
	for i := range statements {
		if indegree[i] > 0 {
			remaining[i] = struct{}{}
		}
	}
	// Walk in-batch dependency edges within the remaining set; every node
	// here has at least one, so the walk must revisit a node.
	var start int
	for i := range statements {
		if _, ok := remaining[i]; ok {
			start = i
			break
		}
	}
	seen := make(map[int]int) // node -> position in path
	var path []int
	for cur := start; ; {
		if at, ok := seen[cur]; ok {
			chain := make([]string, 0, len(path)-at+1)
			for _, i := range path[at:] {
				chain = append(chain, statements[i].Name())
			}
			chain = append(chain, statements[cur].Name())
			return sqlemit.NewCycleError(chain...)
		}
		seen[cur] = len(path)
		path = append(path, cur)
		for _, dep := range statements[cur].Dependencies() {
			if j, ok := index[dep]; ok {
				if _, rem := remaining[j]; rem {
					cur = j
					break
				}
			}
		}
	}
}
