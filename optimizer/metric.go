package optimizer

import "github.com/sokostar/sokostar/verify"

// Metric selects the lexicographic cost ordering the optimizer searches
// under (spec.md §4.7/§6).
type Metric int

const (
	MovesPushes Metric = iota
	PushesMoves
	BoxLinesPushes
	BoxLinesMoves
	BoxChangesPushes
	BoxChangesMoves
	AllMetricsMovesPushes
	AllMetricsBoxLinesPushes
)

// cost is the Dijkstra edge-accumulator: every field here sums additively
// across a path, so shortest-path relaxation under any Metric reduces to
// ordinary componentwise comparison.
type cost struct {
	moves, pushes             int
	boxLines, boxChanges      int
	pushingSessions           int
}

func less(m Metric, a, b cost) bool {
	switch m {
	case MovesPushes:
		return lessPair(a.moves, a.pushes, b.moves, b.pushes)
	case PushesMoves:
		return lessPair(a.pushes, a.moves, b.pushes, b.moves)
	case BoxLinesPushes:
		return lessPair(a.boxLines, a.pushes, b.boxLines, b.pushes)
	case BoxLinesMoves:
		return lessPair(a.boxLines, a.moves, b.boxLines, b.moves)
	case BoxChangesPushes:
		return lessPair(a.boxChanges, a.pushes, b.boxChanges, b.pushes)
	case BoxChangesMoves:
		return lessPair(a.boxChanges, a.moves, b.boxChanges, b.moves)
	case AllMetricsMovesPushes:
		return lessAll(a, b, true)
	case AllMetricsBoxLinesPushes:
		return lessAll(a, b, false)
	default:
		return lessPair(a.moves, a.pushes, b.moves, b.pushes)
	}
}

func lessPair(a1, a2, b1, b2 int) bool {
	if a1 != b1 {
		return a1 < b1
	}
	return a2 < b2
}

// lessAll implements the ALL_METRICS_* orderings: box lines, then box
// changes, then pushing sessions, then the named primary/secondary pair
// last, since those composite metrics exist to break ties among
// otherwise-equal solutions rather than to dominate the comparison.
func lessAll(a, b cost, movesFirst bool) bool {
	if a.boxLines != b.boxLines {
		return a.boxLines < b.boxLines
	}
	if a.boxChanges != b.boxChanges {
		return a.boxChanges < b.boxChanges
	}
	if a.pushingSessions != b.pushingSessions {
		return a.pushingSessions < b.pushingSessions
	}
	if movesFirst {
		return lessPair(a.moves, a.pushes, b.moves, b.pushes)
	}
	return lessPair(a.pushes, a.moves, b.pushes, b.moves)
}

func fromVerify(r verify.Result) cost {
	return cost{
		moves:           r.Moves,
		pushes:          r.Pushes,
		boxLines:        r.BoxLines,
		boxChanges:      r.BoxChanges,
		pushingSessions: r.PushingSessions,
	}
}

func add(a, b cost) cost {
	return cost{
		moves:           a.moves + b.moves,
		pushes:          a.pushes + b.pushes,
		boxLines:        a.boxLines + b.boxLines,
		boxChanges:      a.boxChanges + b.boxChanges,
		pushingSessions: a.pushingSessions + b.pushingSessions,
	}
}

// IsBetter reports whether a is strictly better than b under metric m
// (spec.md §4.7, tested directly by S6). Exported so callers comparing two
// independently produced solutions do not need to reimplement the
// ordering.
func IsBetter(m Metric, a, b verify.Result) bool {
	return less(m, fromVerify(a), fromVerify(b))
}
