// Package search implements C7: the push-optimal solver, a best-first
// (A*) or iterative-deepening (IDA*) search over push transitions, using
// C6's admissible lower bound as the heuristic, C4/C5 deadlock detection
// for pruning, and the tunnel/I-corral/goal-room restrictions of spec.md
// §4.5 to cut branching.
package search

import (
	"container/heap"
	"context"
	"math"
	"time"

	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"

	"github.com/sokostar/sokostar/board"
	"github.com/sokostar/sokostar/boxconf"
	"github.com/sokostar/sokostar/deadlock"
	"github.com/sokostar/sokostar/lowerbound"
	"github.com/sokostar/sokostar/zobrist"
)

// Mode selects the search algorithm.
type Mode int

const (
	AStar Mode = iota
	IDAStar
)

// Options configures a Solve call (spec.md §6 Solver API).
type Options struct {
	Mode Mode

	// Timeout bounds wall-clock search time; zero means no explicit
	// timeout beyond ctx's own deadline.
	Timeout time.Duration

	// MaxMemMiB aborts the search with ErrResourceExhausted once the
	// machine's free memory drops below this many MiB. Zero disables the
	// check.
	MaxMemMiB int

	EnableGoalRoom bool
	EnableTunnel   bool
	EnableICorral  bool

	// MaxDeadlockK bounds C5 DeadlockIdentification's k; zero uses
	// defaultMaxDeadlockK (3).
	MaxDeadlockK int

	// IDAStepLimit bounds how many contour-deepening iterations idaStar
	// performs before giving up with ErrResourceExhausted; zero means a
	// generous built-in default (protects against runaway contour growth
	// on pathological boards rather than any expected normal case).
	IDAStepLimit int
}

const defaultMaxDeadlockK = 3
const defaultIDAStepLimit = 10_000

// Solution is the result of a successful Solve call.
type Solution struct {
	LURD   string
	Pushes int
	Moves  int
	Nodes  int // nodes visited (popped from the frontier)
}

// solverState bundles the board-derived, solve-independent precomputation
// shared by every node expansion.
type solverState struct {
	b         *board.Board
	lb        *lowerbound.Table
	zob       *zobrist.Table
	buckets   *deadlock.Buckets
	room      *Room
	opts      Options
	nextSeq   int
	visited   int
	expanded  int
	memCeilB  uint64
}

// Solve runs C7 over b and returns the push-optimal LURD solution, or
// ErrUnsolvable/ErrResourceExhausted/ErrTimeout/ErrCancelled.
func Solve(ctx context.Context, b *board.Board, opts Options) (*Solution, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	maxK := opts.MaxDeadlockK
	if maxK <= 0 {
		maxK = defaultMaxDeadlockK
	}
	buckets, err := deadlock.Identify(ctx, b, maxK, deadlock.DefaultTimeout, deadlock.DefaultCapacity, 1)
	if err != nil {
		log.Warn().Err(err).Msg("deadlock identification did not finish; continuing with partial buckets")
	}

	st := &solverState{
		b:       b,
		lb:      lowerbound.Precompute(b),
		zob:     zobrist.New(b),
		buckets: buckets,
		opts:    opts,
	}
	if opts.MaxMemMiB > 0 {
		st.memCeilB = uint64(opts.MaxMemMiB) * 1024 * 1024
	}
	if opts.EnableGoalRoom {
		if room, ok := detectGoalRoom(b); ok {
			st.room = room
		}
	}

	root := st.rootNode()
	if math.IsInf(root.h, 1) {
		return nil, ErrUnsolvable
	}

	if opts.Mode == IDAStar {
		return st.idaStar(ctx, root)
	}
	return st.aStar(ctx, root)
}

func (st *solverState) rootNode() *node {
	idx := make([]int, 0, len(st.b.InitialBoxesRaw))
	for _, raw := range st.b.InitialBoxesRaw {
		i, _ := st.b.BoxIndex(raw)
		idx = append(idx, i)
	}
	conf := boxconf.FromIndices(st.b.NumBoxCells(), idx)
	reach := st.b.ComputeReach(conf, st.b.InitialPlayerRaw)
	h := st.lb.PushesLowerBound(st.b, conf)
	return &node{
		conf:       conf,
		playerRaw:  st.b.InitialPlayerRaw,
		reachCanon: reach.Canonical,
		g:          0,
		h:          h,
		f:          h,
		hash:       st.zob.Hash(conf, reach.Canonical),
	}
}

func (st *solverState) isSolved(conf boxconf.Configuration) bool {
	for _, gi := range st.b.GoalBoxIdx {
		if !conf.ContainsBoxIdx(gi) {
			return false
		}
	}
	return true
}

func (st *solverState) resourceErr(ctx context.Context) error {
	if ctx.Err() != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return ErrTimeout
		}
		return ErrCancelled
	}
	if st.memCeilB > 0 && memory.FreeMemory() < st.memCeilB {
		return ErrResourceExhausted
	}
	return nil
}

// aStar runs best-first search to completion, bounded only by ctx and the
// memory ceiling.
func (st *solverState) aStar(ctx context.Context, root *node) (*Solution, error) {
	frontier := newFrontier()
	heap.Push(frontier, root)
	st.nextSeq++

	transposition := map[uint64]int{root.hash: root.g}

	for frontier.Len() > 0 {
		if err := st.resourceErr(ctx); err != nil {
			return nil, err
		}
		n := heap.Pop(frontier).(*node)
		st.visited++

		if st.isSolved(n.conf) {
			return st.finish(n)
		}

		reach := st.b.ComputeReach(n.conf, n.playerRaw)

		if st.opts.EnableGoalRoom && st.room != nil {
			if solved, ok := tryGoalRoomFastForward(st.b, st.room, n, reach); ok {
				key := st.zob.Hash(solved.conf, solved.reachCanon)
				solved.hash = key
				if best, exists := transposition[key]; !exists || solved.g < best {
					transposition[key] = solved.g
					if st.isSolved(solved.conf) {
						return st.finish(solved)
					}
					solved.seq = st.nextSeq
					st.nextSeq++
					solved.h = st.lb.PushesLowerBound(st.b, solved.conf)
					solved.f = float64(solved.g) + solved.h
					if !math.IsInf(solved.f, 1) {
						heap.Push(frontier, solved)
					}
				}
			}
		}

		for _, child := range st.expand(n, reach) {
			key := child.hash
			if best, exists := transposition[key]; exists && best <= child.g {
				continue
			}
			transposition[key] = child.g
			if math.IsInf(child.f, 1) {
				continue
			}
			child.seq = st.nextSeq
			st.nextSeq++
			heap.Push(frontier, child)
			st.expanded++
		}
	}
	return nil, ErrUnsolvable
}

// idaStar runs iterative-deepening A*, using f-value contours exactly as
// spec.md §2 describes, grounded on bertbaron-pathfinding's idaStar shape
// (depth-first re-exploration per contour) generalized to push nodes.
func (st *solverState) idaStar(ctx context.Context, root *node) (*Solution, error) {
	limit := root.h
	steps := st.opts.IDAStepLimit
	if steps <= 0 {
		steps = defaultIDAStepLimit
	}

	for step := 0; step < steps; step++ {
		if err := st.resourceErr(ctx); err != nil {
			return nil, err
		}
		found, nextLimit, err := st.idaRound(ctx, root, limit)
		if err != nil {
			return nil, err
		}
		if found != nil {
			return st.finish(found)
		}
		if math.IsInf(nextLimit, 1) {
			return nil, ErrUnsolvable
		}
		limit = nextLimit
	}
	return nil, ErrResourceExhausted
}

func (st *solverState) idaRound(ctx context.Context, root *node, limit float64) (*node, float64, error) {
	contour := math.Inf(1)
	visiting := map[uint64]int{}

	var dfs func(n *node) (*node, error)
	dfs = func(n *node) (*node, error) {
		if err := st.resourceErr(ctx); err != nil {
			return nil, err
		}
		st.visited++
		if st.isSolved(n.conf) {
			return n, nil
		}
		key := n.hash
		if best, ok := visiting[key]; ok && best <= n.g {
			return nil, nil
		}
		visiting[key] = n.g

		reach := st.b.ComputeReach(n.conf, n.playerRaw)
		for _, child := range st.expand(n, reach) {
			if child.f > limit {
				if child.f < contour {
					contour = child.f
				}
				continue
			}
			st.expanded++
			found, err := dfs(child)
			if err != nil || found != nil {
				return found, err
			}
		}
		return nil, nil
	}

	found, err := dfs(root)
	return found, contour, err
}

// expand generates every legal push from n, applying simple/freeze/C5
// deadlock pruning, the admissible lower bound, and (when enabled) tunnel
// continuation restriction and I-corral relevance filtering.
func (st *solverState) expand(n *node, reach board.Reach) []*node {
	var candidates []int
	if st.opts.EnableICorral {
		candidates = relevantBoxes(st.b, n.conf, reach)
	} else {
		candidates = n.conf.Slice()
	}

	if st.opts.EnableTunnel && n.tunnelValid {
		restricted := candidates[:0]
		for _, idx := range candidates {
			if idx == n.tunnelBox {
				restricted = append(restricted, idx)
			}
		}
		if len(restricted) > 0 {
			candidates = restricted
		}
	}

	var out []*node
	for _, boxIdx := range candidates {
		boxRaw := st.b.RawOfBoxIndex(boxIdx)
		var dirs []board.Direction
		if st.opts.EnableTunnel && n.tunnelValid && boxIdx == n.tunnelBox {
			dirs = []board.Direction{n.tunnelDir}
		} else {
			dirs = board.Directions()[:]
		}
		for _, d := range dirs {
			standRaw := st.b.Neighbor(boxRaw, board.Opposite(d))
			if !reach.ContainsRaw(st.b, standRaw) {
				continue
			}
			dstRaw := st.b.Neighbor(boxRaw, d)
			if st.b.IsWall(dstRaw) {
				continue
			}
			dstIdx, ok := st.b.BoxIndex(dstRaw)
			if !ok || n.conf.ContainsBoxIdx(dstIdx) {
				continue
			}
			newConf := n.conf.Move(boxIdx, dstIdx)
			if st.buckets.IsDeadlock(newConf, dstIdx) {
				continue
			}

			newReach := st.b.ComputeReach(newConf, boxRaw)
			h := st.lb.PushesLowerBound(st.b, newConf)
			if math.IsInf(h, 1) {
				continue
			}

			child := &node{
				conf:       newConf,
				playerRaw:  boxRaw,
				reachCanon: newReach.Canonical,
				parent:     n,
				srcRaw:     boxRaw,
				dstRaw:     dstRaw,
				standRaw:   standRaw,
				dir:        d,
				g:          n.g + 1,
				h:          h,
				f:          float64(n.g+1) + h,
				// a push moves one box from boxIdx's cell to dstIdx's cell
				// and nothing else, so the child's key is the parent's key
				// with exactly that cell pair and the reach change folded
				// in, not a full rescan of newConf.
				hash: st.zob.Update(n.hash, boxIdx, dstIdx, n.reachCanon, newReach.Canonical),
			}
			if st.opts.EnableTunnel {
				goalsElsewhere := st.otherGoalsReachable(newConf, dstIdx)
				if isTunnelContinuation(st.b, newConf, dstRaw, d, reach, goalsElsewhere) {
					child.tunnelValid = true
					child.tunnelBox = dstIdx
					child.tunnelDir = d
				}
			}
			out = append(out, child)
		}
	}
	return out
}

// otherGoalsReachable reports whether any goal other than justMoved is
// still unoccupied in conf, used to keep a goal-sitting box from being
// treated as tunnelling while other goals remain to be filled (the
// tunnel/goal-room interaction open question). It checks occupancy only;
// whether a box can actually reach such a goal is not examined.
func (st *solverState) otherGoalsReachable(conf boxconf.Configuration, justMoved int) bool {
	for _, gi := range st.b.GoalBoxIdx {
		if gi != justMoved && !conf.ContainsBoxIdx(gi) {
			return true
		}
	}
	return false
}

func (st *solverState) finish(n *node) (*Solution, error) {
	lurd, err := reconstructLURD(st.b, n)
	if err != nil {
		return nil, err
	}
	moves, pushes := 0, 0
	for _, c := range lurd {
		if c >= 'A' && c <= 'Z' {
			pushes++
		}
		moves++
	}
	log.Debug().Int("pushes", pushes).Int("moves", moves).Int("visited", st.visited).Int("expanded", st.expanded).Msg("solve complete")
	return &Solution{LURD: lurd, Pushes: pushes, Moves: moves, Nodes: st.visited}, nil
}
