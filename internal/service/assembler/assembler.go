package assembler

import (
	"github.com/sandevgo/profiletwin/internal/core"
	"github.com/sandevgo/profiletwin/internal/service/retrieval"
)

// Assembler turns ranked retrieval results into prompt-ready context blocks.
type Assembler struct {
	sizer      Sizer
	tieEpsilon float64
}

func NewAssembler(sizer Sizer, tieEpsilon float64) *Assembler {
	if sizer == nil {
		sizer = RuneSizer{}
	}
	return &Assembler{sizer: sizer, tieEpsilon: tieEpsilon}
}

// Assemble merges the results of every sub-query and fills budget greedily with whole
// fragments. A fragment that does not fit is skipped and smaller ones below it may still
// be taken. Body text is never cut.
func (a *Assembler) Assemble(resultsBySubQuery [][]core.RetrievalResult, budget int) []core.ContextBlock {
	merged := a.Merge(resultsBySubQuery)

	var blocks []core.ContextBlock
	used := 0
	for _, r := range merged {
		if r.Snippet == "" {
			continue
		}
		size := a.sizer.Size(r.Title) + a.sizer.Size(r.Snippet)
		if used+size > budget {
			continue
		}
		used += size
		blocks = append(blocks, core.ContextBlock{
			FragmentID: r.FragmentID,
			Title:      r.Title,
			Text:       r.Snippet,
			Score:      r.Score,
			Size:       size,
		})
	}
	return blocks
}

// Merge flattens the results of every sub-query, keeps the best entry per fragment and
// ranks them.
func (a *Assembler) Merge(resultsBySubQuery [][]core.RetrievalResult) []core.RetrievalResult {
	best := make(map[string]core.RetrievalResult)
	var order []string
	for _, results := range resultsBySubQuery {
		for _, r := range results {
			prev, ok := best[r.FragmentID]
			if !ok {
				order = append(order, r.FragmentID)
			}
			if !ok || r.Score > prev.Score {
				best[r.FragmentID] = r
			}
		}
	}

	merged := make([]core.RetrievalResult, 0, len(order))
	for _, id := range order {
		merged = append(merged, best[id])
	}
	retrieval.SortResults(merged, a.tieEpsilon)
	return merged
}

// TotalSize sums the measured size of blocks.
func TotalSize(blocks []core.ContextBlock) int {
	total := 0
	for _, b := range blocks {
		total += b.Size
	}
	return total
}
