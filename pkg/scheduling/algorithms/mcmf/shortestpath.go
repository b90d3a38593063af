package mcmf

import (
	"container/heap"
	"math"

	"github.com/firmament-project/quincy-scheduler/pkg/scheduling/algorithms/datastructure"
	"github.com/firmament-project/quincy-scheduler/pkg/scheduling/flowgraph"
)

// This file contains the shortest-path algorithms the successive shortest
// path solvers in mcmf.go run once per augmenting path. DEsopoPape
// tolerates negative-cost arcs (needed on the first iteration, before any
// node potentials have been established); Dijkstra relies on reduced
// costs staying non-negative, which successive shortest path maintains
// after the first round.

// DEsopoPape runs the D'Esopo-Pape label-correcting algorithm from src,
// returning per-node distance and predecessor maps. It tolerates
// negative-cost arcs but not negative-cost cycles, which the successive
// shortest path algorithms never introduce.
func DEsopoPape(graph *flowgraph.Graph, src, dst flowgraph.NodeID) (map[flowgraph.NodeID]int64, map[flowgraph.NodeID]flowgraph.NodeID) {
	distance := make(map[flowgraph.NodeID]int64, len(graph.NodeMap))
	parent := make(map[flowgraph.NodeID]flowgraph.NodeID, len(graph.NodeMap))
	state := make(map[flowgraph.NodeID]int, len(graph.NodeMap)) // 0: processed at least once, 1: in queue, 2: never queued
	for id := range graph.NodeMap {
		distance[id] = math.MaxInt64
		state[id] = 2
	}
	distance[src] = 0

	deque := datastructure.NewDeque(len(graph.NodeMap))
	deque.PushEnd(src)
	state[src] = 1

	for !deque.IsEmpty() {
		current := deque.PopFront().(flowgraph.NodeID)
		state[current] = 0
		for nextID, arc := range graph.Node(current).OutgoingArcMap {
			if arc.CapUpperBound == 0 {
				continue
			}
			if candidate := distance[current] + arc.Cost; candidate < distance[nextID] {
				distance[nextID] = candidate
				parent[nextID] = current
				switch state[nextID] {
				case 2:
					state[nextID] = 1
					deque.PushEnd(nextID)
				case 0:
					state[nextID] = 1
					deque.PushFront(nextID)
				}
			}
		}
	}

	return distance, parent
}

// Dijkstra runs Dijkstra's algorithm from src over reduced costs (each
// arc's cost offset by the potentials of its endpoints), returning
// per-node distance and predecessor maps. Every node popped from the heap
// (settled) gets its Visited field stamped with visitCount so the caller
// can tell which nodes were settled this round without resetting the
// field between calls. Requires every reachable arc's reduced cost to be non-negative.
func Dijkstra(graph *flowgraph.Graph, src, dst flowgraph.NodeID, visitCount uint32) (map[flowgraph.NodeID]int64, map[flowgraph.NodeID]flowgraph.NodeID) {
	distance := make(map[flowgraph.NodeID]int64)
	parent := make(map[flowgraph.NodeID]flowgraph.NodeID)
	for id := range graph.NodeMap {
		distance[id] = math.MaxInt64
	}
	distance[src] = 0

	pq := &datastructure.BinaryMinHeap{}
	heap.Init(pq)
	heap.Push(pq, &datastructure.Distance{NodeId: uint64(src), Distance: 0})

	for pq.Len() > 0 {
		entry := heap.Pop(pq).(*datastructure.Distance)
		currentID := flowgraph.NodeID(entry.NodeId)
		currentNode := graph.Node(currentID)
		if currentNode.Visited >= visitCount {
			continue // stale heap entry; a shorter path to currentID already won
		}
		currentNode.Visited = visitCount

		if currentID == dst {
			return distance, parent
		}

		for nextID, arc := range currentNode.OutgoingArcMap {
			nextNode := graph.Node(nextID)
			if nextNode.Visited >= visitCount || arc.CapUpperBound == 0 {
				continue
			}
			reducedCost := arc.Cost - currentNode.Potential + nextNode.Potential
			updatedCost := entry.Distance + reducedCost
			if updatedCost < distance[nextID] {
				distance[nextID] = updatedCost
				parent[nextID] = currentID
				heap.Push(pq, &datastructure.Distance{NodeId: uint64(nextID), Distance: updatedCost})
			}
		}
	}

	return distance, parent
}
