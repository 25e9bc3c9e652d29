package core

import "fmt"

// MaxSolveTargets bounds the number of targets the solver can track.
const MaxSolveTargets = 24

// Step is one command in a solution.
type Step struct {
	Switch bool
	Dir    Dir
}

// String returns "switch" or the direction name.
func (s Step) String() string {
	if s.Switch {
		return "switch"
	}
	return s.Dir.String()
}

// Solution is a shortest command sequence clearing a level.
// Moves counts only the movement steps.
type Solution struct {
	Moves    int
	Steps    []Step
	Explored int
}

type solveKey struct {
	p1, p2 Pos
	active Character
	mask   uint32
}

type solveNode struct {
	key    solveKey
	state  State
	cost   int
	parent int
	step   Step
}

// Solve searches for a sequence of moves and switches that clears the
// level from its initial state, minimising the number of moves. Switches
// are free. The search gives up after maxStates distinct states.
func Solve(l *Level, maxStates int) (Solution, error) {
	if err := l.CheckStructure(); err != nil {
		return Solution{}, err
	}
	if len(l.Targets) == 0 {
		return Solution{}, ValidationError{Code: CodeNotSolvable, Message: "level has no targets"}
	}
	if len(l.Targets) > MaxSolveTargets {
		return Solution{}, fmt.Errorf("solve: %d targets exceeds limit of %d", len(l.Targets), MaxSolveTargets)
	}

	start := NewState(l)
	if start.Complete() {
		return Solution{}, nil
	}

	nodes := []solveNode{{key: keyOf(start), state: start, parent: -1}}
	best := map[solveKey]int{nodes[0].key: 0}
	// 0-1 BFS: switches go to the front, moves to the back.
	deque := []int{0}

	for len(deque) > 0 {
		idx := deque[0]
		deque = deque[1:]
		n := nodes[idx]
		if n.cost > best[n.key] {
			continue
		}
		if n.state.Complete() {
			return buildSolution(nodes, idx, len(best)), nil
		}

		push := func(o Outcome, step Step, cost int, front bool) {
			if !o.Accepted {
				return
			}
			k := keyOf(o.State)
			if c, ok := best[k]; ok && c <= cost {
				return
			}
			best[k] = cost
			nodes = append(nodes, solveNode{key: k, state: o.State, cost: cost, parent: idx, step: step})
			if front {
				deque = append([]int{len(nodes) - 1}, deque...)
			} else {
				deque = append(deque, len(nodes)-1)
			}
		}

		push(Switch(n.state), Step{Switch: true}, n.cost, true)
		for _, d := range Dirs {
			push(MoveDir(l, n.state, d), Step{Dir: d}, n.cost+1, false)
		}

		if len(best) > maxStates {
			return Solution{}, fmt.Errorf("solve: gave up after %d states", len(best))
		}
	}

	return Solution{}, ValidationError{
		Code:    CodeNotSolvable,
		Message: fmt.Sprintf("no sequence collects all %d targets (%d states explored)", len(l.Targets), len(best)),
	}
}

func keyOf(s State) solveKey {
	k := solveKey{p1: s.P1, p2: s.P2, active: s.Active}
	for i, c := range s.Collected {
		if c {
			k.mask |= 1 << uint(i)
		}
	}
	return k
}

func buildSolution(nodes []solveNode, idx, explored int) Solution {
	var steps []Step
	for i := idx; nodes[i].parent >= 0; i = nodes[i].parent {
		steps = append(steps, nodes[i].step)
	}
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
	return Solution{Moves: nodes[idx].cost, Steps: steps, Explored: explored}
}
