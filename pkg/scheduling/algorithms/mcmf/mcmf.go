// Package mcmf implements successive-shortest-path min-cost max-flow
// solvers over a flowgraph.Graph. This is the in-process reference
// solver: the default dispatch path shells out to an external DIMACS
// solver, but everything here speaks the same graph so it can stand in
// for one directly, in tests or inside the cmd/flowsolver-ref binary,
// which the dispatcher can launch as its external solver.
package mcmf

import (
	"math"

	"github.com/firmament-project/quincy-scheduler/pkg/scheduling/flowgraph"
)

// SuccessiveShortestPathWithDEP finds a min-cost max-flow from src to dst
// using D'Esopo-Pape to find each augmenting path. Safe to call on a
// graph with negative-cost arcs and no established node potentials.
func SuccessiveShortestPathWithDEP(graph *flowgraph.Graph, src, dst flowgraph.NodeID) (uint64, int64) {
	var maxFlow uint64
	var minCost int64

	distance, parent := DEsopoPape(graph, src, dst)
	for distance[dst] != math.MaxInt64 {
		minFlow, _ := retrieveMinflowAndPathCost(graph, parent, dst)

		maxFlow += minFlow
		minCost += distance[dst] * int64(minFlow)
		augmentPath(graph, parent, dst, minFlow)

		distance, parent = DEsopoPape(graph, src, dst)
	}

	return maxFlow, minCost
}

// SuccessiveShortestPathWithDijkstra finds a min-cost max-flow from src to
// dst using Dijkstra over reduced costs (Johnson's technique: node
// potentials keep every reduced cost non-negative after the first
// round) to find each augmenting path. Faster than the D'Esopo-Pape
// variant on graphs with many nodes, at the cost of needing the
// potentials it maintains across iterations.
func SuccessiveShortestPathWithDijkstra(graph *flowgraph.Graph, src, dst flowgraph.NodeID) (uint64, int64) {
	var maxFlow uint64
	var minCost int64
	var visitCount uint32 = 1

	distance, parent := Dijkstra(graph, src, dst, visitCount)
	for distance[dst] != math.MaxInt64 {
		minFlow, pathCost := retrieveMinflowAndPathCost(graph, parent, dst)

		maxFlow += minFlow
		minCost += pathCost * int64(minFlow)
		augmentPath(graph, parent, dst, minFlow)

		for id, node := range graph.NodeMap {
			if node.Visited == visitCount {
				node.Potential -= distance[id]
			} else {
				node.Potential -= distance[dst]
			}
		}
		visitCount++
		distance, parent = Dijkstra(graph, src, dst, visitCount)
	}

	return maxFlow, minCost
}

// augmentPath pushes minFlow units of flow back along the path recorded
// in parent, decrementing each forward arc's residual capacity and
// growing (or creating) the matching reverse arc.
func augmentPath(graph *flowgraph.Graph, parent map[flowgraph.NodeID]flowgraph.NodeID, dst flowgraph.NodeID, minFlow uint64) {
	child := dst
	for father := parent[child]; father != 0; father = parent[child] {
		arc := graph.GetArcByIDs(father, child)
		arc.CapUpperBound -= minFlow
		reverseArc := graph.GetArcByIDs(child, father)
		if reverseArc == nil {
			reverseArc = graph.AddArc(graph.Node(child), graph.Node(father))
			reverseArc.CapUpperBound = minFlow
			reverseArc.Cost = -arc.Cost
		} else {
			reverseArc.CapUpperBound += minFlow
		}
		child = father
	}
}

func retrieveMinflowAndPathCost(graph *flowgraph.Graph, parent map[flowgraph.NodeID]flowgraph.NodeID, dst flowgraph.NodeID) (uint64, int64) {
	child := dst
	minFlow := uint64(math.MaxUint64)
	var pathCost int64
	for father := parent[child]; father != 0; father = parent[child] {
		arc := graph.GetArcByIDs(father, child)
		if arc != nil && arc.CapUpperBound < minFlow {
			minFlow = arc.CapUpperBound
		}
		pathCost += arc.Cost
		child = father
	}
	return minFlow, pathCost
}
