package hexmap

import "container/heap"

// ZocPenalty is added to a candidate stop's score when computing the best
// path under a move budget (§4.A.3).
const ZocPenalty = 1000

// PathContext bundles everything the pathing algorithms need to know about
// the world without ever branching on "are we in fog-of-war mode". The
// fog-of-war-restricted variant is produced by handing in different
// EnterCost/Occupied/ZoC closures (unexplored tiles impassable, invisible
// enemies treated as absent) — the algorithms below are identical either
// way, per the "never via conditional globals" design note.
type PathContext struct {
	Map *Map
	// EnterCost returns the cost of entering the tile at index, or
	// impassable=true if it cannot be entered at all.
	EnterCost func(index int) (cost int, impassable bool)
	// Occupied reports whether another unit already sits on the tile.
	// Occupied tiles are impassable except as the final destination.
	Occupied func(index int) bool
	// ZoC reports whether the tile is exerted on by an enemy unit with
	// attack>0 or defense>0 (§4.A ZoC).
	ZoC func(index int) bool
}

type pqItem struct {
	hex  Hex
	cost int
}

type priorityQueue []pqItem

func (pq priorityQueue) Len() int            { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool  { return pq[i].cost < pq[j].cost }
func (pq priorityQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x interface{}) { *pq = append(*pq, x.(pqItem)) }
func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

// dijkstra runs a cost-limited Dijkstra from start, stopping expansion past
// budget (budget<0 means unlimited). occupancyBlocks controls whether
// Occupied tiles are treated as impassable (true for shortest-path and
// movement-range; the backward pass of best-path-with-ZoC ignores occupancy
// since it only scores reachability from the goal).
func dijkstra(ctx *PathContext, start Hex, budget int, occupancyBlocks bool, goal *Hex) (dist map[int]int, prev map[int]int) {
	dist = map[int]int{}
	prev = map[int]int{}
	startIdx := ctx.Map.Index(start)
	dist[startIdx] = 0

	pq := &priorityQueue{{hex: start, cost: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(pqItem)
		curIdx := ctx.Map.Index(cur.hex)
		if cur.cost > dist[curIdx] {
			continue
		}
		// A tile inside enemy ZoC is reachable but expands no successors
		// (§4.A.2): the goal is an exception so a ZoC tile can still be a
		// final destination.
		isGoal := goal != nil && cur.hex == *goal
		if ctx.ZoC(curIdx) && curIdx != startIdx && !isGoal {
			continue
		}
		for _, n := range ctx.Map.Neighbors(cur.hex) {
			nIdx := ctx.Map.Index(n)
			cost, impassable := ctx.EnterCost(nIdx)
			if impassable {
				continue
			}
			if occupancyBlocks && ctx.Occupied(nIdx) && !(goal != nil && n == *goal) {
				continue
			}
			next := cur.cost + cost
			if budget >= 0 && next > budget {
				continue
			}
			if d, ok := dist[nIdx]; !ok || next < d {
				dist[nIdx] = next
				prev[nIdx] = curIdx
				heap.Push(pq, pqItem{hex: n, cost: next})
			}
		}
	}
	return dist, prev
}

func reconstruct(ctx *PathContext, prev map[int]int, startIdx, goalIdx int) []Hex {
	if goalIdx != startIdx {
		if _, ok := prev[goalIdx]; !ok {
			return nil
		}
	}
	var rev []int
	cur := goalIdx
	for cur != startIdx {
		rev = append(rev, cur)
		cur = prev[cur]
	}
	rev = append(rev, startIdx)
	path := make([]Hex, len(rev))
	for i, idx := range rev {
		path[len(rev)-1-i] = ctx.Map.HexAt(idx)
	}
	return path
}

// ShortestPath finds the occupancy-aware cheapest path from start to goal
// with no move budget and no ZoC consideration (§4.A.1).
func ShortestPath(ctx *PathContext, start, goal Hex) ([]Hex, bool) {
	noZoc := &PathContext{Map: ctx.Map, EnterCost: ctx.EnterCost, Occupied: ctx.Occupied, ZoC: func(int) bool { return false }}
	dist, prev := dijkstra(noZoc, start, -1, true, &goal)
	startIdx := ctx.Map.Index(start)
	goalIdx := ctx.Map.Index(goal)
	if _, ok := dist[goalIdx]; !ok && goalIdx != startIdx {
		return nil, false
	}
	return reconstruct(ctx, prev, startIdx, goalIdx), true
}

// MovementRange returns every tile index reachable within budget, mapped to
// its cheapest cost, honoring ZoC (§4.A.2): a ZoC tile is reachable but
// expands no further successors.
func MovementRange(ctx *PathContext, start Hex, budget int) map[int]int {
	dist, _ := dijkstra(ctx, start, budget, true, nil)
	return dist
}

// StopReason enumerates why a simulated this-turn path segment stopped
// short of the full path (§4.A PathPreview).
type StopReason int

const (
	StopNone StopReason = iota
	StopMovesExhausted
	StopBlocked
	StopEnteredEnemyZoc
)

// BestPathResult is the spliced result of the two-pass best-path algorithm.
type BestPathResult struct {
	Path      []Hex
	UnusedMoves int
}

// BestPathToDestination implements §4.A.3: forward Dijkstra under budget
// with predecessors, backward Dijkstra from goal ignoring budget, score
// each forward-reachable candidate by remaining_cost_from_candidate +
// ZocPenalty if that candidate sits in enemy ZoC, tie-break by fewest
// unused moves then lowest tile index, then splice the budget-bounded
// prefix with the free-traversal suffix.
func BestPathToDestination(ctx *PathContext, start, goal Hex, budget int) (BestPathResult, bool) {
	startIdx := ctx.Map.Index(start)
	goalIdx := ctx.Map.Index(goal)

	forwardDist, forwardPrev := dijkstra(ctx, start, budget, true, nil)
	if len(forwardDist) == 0 {
		return BestPathResult{}, false
	}

	backwardCtx := &PathContext{Map: ctx.Map, EnterCost: ctx.EnterCost, Occupied: func(int) bool { return false }, ZoC: func(int) bool { return false }}
	backwardDist, _ := dijkstra(backwardCtx, goal, -1, false, nil)

	bestIdx := -1
	bestScore := -1
	bestUnused := -1
	for idx, costUsed := range forwardDist {
		remaining, ok := backwardDist[idx]
		if !ok {
			continue
		}
		score := remaining
		if ctx.ZoC(idx) {
			score += ZocPenalty
		}
		unused := budget - costUsed
		better := bestIdx == -1 ||
			score < bestScore ||
			(score == bestScore && unused < bestUnused) ||
			(score == bestScore && unused == bestUnused && idx < bestIdx)
		if better {
			bestIdx = idx
			bestScore = score
			bestUnused = unused
		}
	}
	if bestIdx == -1 {
		return BestPathResult{}, false
	}

	prefix := reconstruct(ctx, forwardPrev, startIdx, bestIdx)
	var suffix []Hex
	if bestIdx != goalIdx {
		_, backPrev := dijkstra(backwardCtx, goal, -1, false, nil)
		suffix = reconstruct(backwardCtx, backPrev, ctx.Map.Index(goal), bestIdx)
		// suffix currently runs goal->bestIdx; reverse it to bestIdx->goal.
		for i, j := 0, len(suffix)-1; i < j; i, j = i+1, j-1 {
			suffix[i], suffix[j] = suffix[j], suffix[i]
		}
	}

	full := prefix
	if len(suffix) > 1 {
		full = append(full, suffix[1:]...)
	}
	return BestPathResult{Path: full, UnusedMoves: bestUnused}, true
}

// PathPreview splits a full path into the portion simulated step-by-step
// under the current move budget (§4.A PathPreview).
type PathPreview struct {
	ThisTurnPath []Hex
	Stop         StopReason
	Attempted    Hex
}

// SimulateThisTurn walks path, spending EnterCost per step against budget,
// stopping on the first of: moves exhausted, a blocked (occupied/impassable)
// next tile, or entering an enemy ZoC tile (which also zeroes remaining
// moves for the rest of the step sequence).
func SimulateThisTurn(ctx *PathContext, path []Hex, budget int) PathPreview {
	if len(path) == 0 {
		return PathPreview{Stop: StopNone}
	}
	out := []Hex{path[0]}
	remaining := budget
	inZoc := false
	for i := 1; i < len(path); i++ {
		if inZoc || remaining <= 0 {
			return PathPreview{ThisTurnPath: out, Stop: StopMovesExhausted}
		}
		next := path[i]
		idx := ctx.Map.Index(next)
		cost, impassable := ctx.EnterCost(idx)
		if impassable || (ctx.Occupied(idx) && i != len(path)-1) {
			return PathPreview{ThisTurnPath: out, Stop: StopBlocked, Attempted: next}
		}
		if ctx.Occupied(idx) && i == len(path)-1 {
			return PathPreview{ThisTurnPath: out, Stop: StopBlocked, Attempted: next}
		}
		if cost > remaining {
			return PathPreview{ThisTurnPath: out, Stop: StopMovesExhausted}
		}
		remaining -= cost
		out = append(out, next)
		if ctx.ZoC(idx) {
			remaining = 0
			inZoc = true
		}
	}
	return PathPreview{ThisTurnPath: out, Stop: StopNone}
}
