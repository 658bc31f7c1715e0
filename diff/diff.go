// Package diff implements the program matcher (§4.5): given a previous
// and a next program instance, produce a deterministic sequence of diff
// operations mapping previous statement ids to next statement ids.
package diff

import (
	"sort"

	"github.com/dashql-run/dashql-core/ast"
	"github.com/dashql-run/dashql-core/program"
)

// OpCode enumerates a diff operation's kind (§4.5).
type OpCode int

const (
	OpDelete OpCode = iota
	OpInsert
	OpKeep
	OpMove
	OpUpdate
)

// Op pairs a code with the source/target statement ids it concerns; -1
// means "absent" (DELETE has no target, INSERT has no source).
type Op struct {
	Code   OpCode
	Source int
	Target int
}

const similarityThreshold = 0.75

// Similarity classifies the three-tier estimate (§4.5.1).
type similarity int

const (
	simNotEqual similarity = iota
	simEqual
	simSimilar
)

// estimate runs the fast-path estimator: NOT_EQUAL on a root node-type
// mismatch, EQUAL on matching root type/children-count/length/text, else
// SIMILAR (requires the full comparator).
func estimate(src, tgt *program.Program, srcStmt, tgtStmt int) similarity {
	sn := src.Tree.Nodes[src.Statements[srcStmt].RootNode]
	tn := tgt.Tree.Nodes[tgt.Statements[tgtStmt].RootNode]
	if sn.NodeType != tn.NodeType {
		return simNotEqual
	}
	sLoc, tLoc := sn.Location, tn.Location
	if sn.ChildrenCount == tn.ChildrenCount && sLoc.Length == tLoc.Length &&
		src.Tree.LocationText(sLoc) == tgt.Tree.LocationText(tLoc) {
		return simEqual
	}
	return simSimilar
}

// deepEqual walks both statement subtrees in lockstep (§4.5.1).
func deepEqual(src, tgt *program.Program, srcID, tgtID int) bool {
	sn := src.Tree.Nodes[srcID]
	tn := tgt.Tree.Nodes[tgtID]
	if sn.NodeType != tn.NodeType {
		return false
	}
	switch {
	case sn.NodeType == ast.NodeTypeBool, sn.NodeType == ast.NodeTypeUI32, sn.NodeType == ast.NodeTypeUI32Bitmap, sn.NodeType.IsEnum():
		return sn.Value == tn.Value
	case sn.NodeType == ast.NodeTypeStringRef:
		return src.Tree.StringRefText(sn) == tgt.Tree.StringRefText(tn)
	case sn.NodeType == ast.NodeTypeArray:
		if sn.ChildrenCount != tn.ChildrenCount {
			return false
		}
		sBegin, sEnd := src.Tree.ChildIndices(srcID)
		tBegin, _ := tgt.Tree.ChildIndices(tgtID)
		for i := 0; i < sEnd-sBegin; i++ {
			if !deepEqual(src, tgt, sBegin+i, tBegin+i) {
				return false
			}
		}
		return true
	case sn.NodeType.IsObject():
		sBegin, sEnd := src.Tree.ChildIndices(srcID)
		tBegin, tEnd := tgt.Tree.ChildIndices(tgtID)
		sKids, tKids := src.Tree.Nodes[sBegin:sEnd], tgt.Tree.Nodes[tBegin:tEnd]
		if len(sKids) != len(tKids) {
			return false
		}
		si, ti := 0, 0
		for si < len(sKids) && ti < len(tKids) {
			if sKids[si].AttributeKey != tKids[ti].AttributeKey {
				return false
			}
			if !deepEqual(src, tgt, sBegin+si, tBegin+ti) {
				return false
			}
			si++
			ti++
		}
		return si == len(sKids) && ti == len(tKids)
	default:
		return true
	}
}

// subtreeSize returns the number of nodes in the subtree rooted at id,
// memoized in memo.
func subtreeSize(tree *ast.Tree, id int, memo map[int]int) int {
	if v, ok := memo[id]; ok {
		return v
	}
	begin, end := tree.ChildIndices(id)
	size := 1
	for i := begin; i < end; i++ {
		size += subtreeSize(tree, i, memo)
	}
	memo[id] = size
	return size
}

// similarityScore computes matching_nodes / max(source_size, target_size)
// for a SIMILAR pair (§4.5.1).
func similarityScore(src, tgt *program.Program, srcID, tgtID int, srcMemo, tgtMemo map[int]int) float64 {
	matched := countMatching(src, tgt, srcID, tgtID)
	sSize := subtreeSize(src.Tree, srcID, srcMemo)
	tSize := subtreeSize(tgt.Tree, tgtID, tgtMemo)
	maxSize := sSize
	if tSize > maxSize {
		maxSize = tSize
	}
	if maxSize == 0 {
		return 0
	}
	return float64(matched) / float64(maxSize)
}

func countMatching(src, tgt *program.Program, srcID, tgtID int) int {
	sn := src.Tree.Nodes[srcID]
	tn := tgt.Tree.Nodes[tgtID]
	if sn.NodeType != tn.NodeType {
		return 0
	}
	switch {
	case sn.NodeType == ast.NodeTypeBool, sn.NodeType == ast.NodeTypeUI32, sn.NodeType == ast.NodeTypeUI32Bitmap, sn.NodeType.IsEnum():
		if sn.Value != tn.Value {
			return 0
		}
		return 1
	case sn.NodeType == ast.NodeTypeStringRef:
		if src.Tree.StringRefText(sn) != tgt.Tree.StringRefText(tn) {
			return 0
		}
		return 1
	}
	count := 1
	switch {
	case sn.NodeType == ast.NodeTypeArray:
		sBegin, sEnd := src.Tree.ChildIndices(srcID)
		tBegin, tEnd := tgt.Tree.ChildIndices(tgtID)
		n := sEnd - sBegin
		if m := tEnd - tBegin; m < n {
			n = m
		}
		for i := 0; i < n; i++ {
			count += countMatching(src, tgt, sBegin+i, tBegin+i)
		}
	case sn.NodeType.IsObject():
		sBegin, sEnd := src.Tree.ChildIndices(srcID)
		tBegin, tEnd := tgt.Tree.ChildIndices(tgtID)
		sKids, tKids := src.Tree.Nodes[sBegin:sEnd], tgt.Tree.Nodes[tBegin:tEnd]
		si, ti := 0, 0
		for si < len(sKids) && ti < len(tKids) {
			if sKids[si].AttributeKey == tKids[ti].AttributeKey {
				count += countMatching(src, tgt, sBegin+si, tBegin+ti)
				si++
				ti++
			} else if sKids[si].AttributeKey < tKids[ti].AttributeKey {
				si++
			} else {
				ti++
			}
		}
	}
	return count
}

type pair struct{ src, tgt int }

// equalPairs finds every (i,j) the deep comparator calls equal (§4.5.2).
func equalPairs(src, tgt *program.Program) []pair {
	var pairs []pair
	for i, ss := range src.Statements {
		for j, ts := range tgt.Statements {
			switch estimate(src, tgt, i, j) {
			case simEqual:
				pairs = append(pairs, pair{i, j})
			case simSimilar:
				if deepEqual(src, tgt, ss.RootNode, ts.RootNode) {
					pairs = append(pairs, pair{i, j})
				}
			}
		}
	}
	return pairs
}

// uniquePairs keeps only pairs whose source and target each appear in
// exactly one equal pair, sorted by source id (§4.5.2).
func uniquePairs(pairs []pair) []pair {
	srcCount := map[int]int{}
	tgtCount := map[int]int{}
	for _, p := range pairs {
		srcCount[p.src]++
		tgtCount[p.tgt]++
	}
	var out []pair
	for _, p := range pairs {
		if srcCount[p.src] == 1 && tgtCount[p.tgt] == 1 {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].src < out[j].src })
	return out
}

// lcsEntry is one patience-pile card.
type lcsEntry struct {
	pair     pair
	priorLen int
}

// longestCommonSubsequence runs the patience-style LCS over unique pairs
// by target id (§4.5.3).
func longestCommonSubsequence(pairs []pair) []pair {
	if len(pairs) == 0 {
		return nil
	}
	var piles [][]lcsEntry
	for _, p := range pairs {
		placed := false
		for i := range piles {
			top := piles[i][len(piles[i])-1]
			if top.pair.tgt >= p.tgt {
				prior := 0
				if i > 0 {
					prior = len(piles[i-1])
				}
				piles[i] = append(piles[i], lcsEntry{pair: p, priorLen: prior})
				placed = true
				break
			}
		}
		if !placed {
			prior := 0
			if len(piles) > 0 {
				prior = len(piles[len(piles)-1])
			}
			piles = append(piles, []lcsEntry{{pair: p, priorLen: prior}})
		}
	}

	lastPile := piles[len(piles)-1]
	result := make([]pair, len(piles))
	entry := lastPile[len(lastPile)-1]
	for i := len(piles) - 1; i >= 0; i-- {
		result[i] = entry.pair
		if i > 0 {
			entry = piles[i-1][entry.priorLen-1]
		}
	}
	return result
}

// Compute produces the diff op sequence between src (previous, nil if
// none) and tgt (next) (§4.5.4).
func Compute(src, tgt *program.Program) []Op {
	if src == nil {
		ops := make([]Op, len(tgt.Statements))
		for i := range tgt.Statements {
			ops[i] = Op{Code: OpInsert, Source: -1, Target: i}
		}
		return ops
	}

	pairs := equalPairs(src, tgt)
	unique := uniquePairs(pairs)
	lcs := longestCommonSubsequence(unique)

	bySource := make(map[int][]int, len(pairs))
	for _, p := range pairs {
		bySource[p.src] = append(bySource[p.src], p.tgt)
	}
	for s := range bySource {
		sort.Ints(bySource[s])
	}

	srcEmitted := make([]bool, len(src.Statements))
	tgtEmitted := make([]bool, len(tgt.Statements))
	srcMemo, tgtMemo := map[int]int{}, map[int]int{}

	var ops []Op
	prevSrc, prevTgt := 0, 0
	boundaries := append(append([]pair{}, lcs...), pair{src: len(src.Statements), tgt: len(tgt.Statements)})

	for _, b := range boundaries {
		for s := prevSrc; s < b.src; s++ {
			if srcEmitted[s] {
				continue
			}
			if moveTgt, ok := findCrossBoundaryMove(bySource, s, tgtEmitted, prevTgt, b.tgt); ok {
				ops = append(ops, Op{Code: OpMove, Source: s, Target: moveTgt})
				srcEmitted[s] = true
				tgtEmitted[moveTgt] = true
				continue
			}

			bestSim := -1.0
			bestTgt := -1
			keptTgt := -1
			for t := prevTgt; t < b.tgt; t++ {
				if tgtEmitted[t] {
					continue
				}
				switch estimate(src, tgt, s, t) {
				case simNotEqual:
					continue
				case simEqual:
					keptTgt = t
				case simSimilar:
					sc := similarityScore(src, tgt, src.Statements[s].RootNode, tgt.Statements[t].RootNode, srcMemo, tgtMemo)
					if sc > bestSim {
						bestSim = sc
						bestTgt = t
					}
				}
				if keptTgt >= 0 {
					break
				}
			}
			switch {
			case keptTgt >= 0:
				ops = append(ops, Op{Code: OpKeep, Source: s, Target: keptTgt})
				srcEmitted[s] = true
				tgtEmitted[keptTgt] = true
			case bestTgt >= 0 && bestSim >= similarityThreshold:
				ops = append(ops, Op{Code: OpUpdate, Source: s, Target: bestTgt})
				srcEmitted[s] = true
				tgtEmitted[bestTgt] = true
			default:
				ops = append(ops, Op{Code: OpDelete, Source: s, Target: -1})
				srcEmitted[s] = true
			}
		}
		for t := prevTgt; t < b.tgt; t++ {
			if !tgtEmitted[t] {
				ops = append(ops, Op{Code: OpInsert, Source: -1, Target: t})
				tgtEmitted[t] = true
			}
		}
		if b.src < len(src.Statements) && b.tgt < len(tgt.Statements) {
			ops = append(ops, Op{Code: OpKeep, Source: b.src, Target: b.tgt})
			srcEmitted[b.src] = true
			tgtEmitted[b.tgt] = true
		}
		prevSrc, prevTgt = b.src+1, b.tgt+1
	}
	return ops
}

// findCrossBoundaryMove looks for an equal pair whose source is s and
// whose target lies outside [lo, hi) — i.e. the move crosses a section
// boundary (§4.5.4 step 1). Targets are visited in ascending order so the
// result is deterministic.
func findCrossBoundaryMove(bySource map[int][]int, s int, tgtEmitted []bool, lo, hi int) (int, bool) {
	for _, t := range bySource[s] {
		if t >= lo && t < hi {
			continue
		}
		if tgtEmitted[t] {
			continue
		}
		return t, true
	}
	return 0, false
}
