package sorter

import (
	"slices"

	"github.com/remeh/sizedwaitgroup"
)

// minRunLength is the smallest run handed to a worker.
const minRunLength = 1024

type run struct {
	lo, hi int
}

// splitRuns cuts [0, n) into count contiguous runs of near-equal length.
func splitRuns(n, count int) []run {
	runs := make([]run, count)
	for i := range runs {
		runs[i] = run{lo: i * n / count, hi: (i + 1) * n / count}
	}
	return runs
}

// sortParallel stable-sorts seq by sorting contiguous runs concurrently and merging them pairwise.
func sortParallel(seq []keyedPixel, workers int) {
	runs := splitRuns(len(seq), workers)

	wg := sizedwaitgroup.New(workers)
	for _, r := range runs {
		wg.Add()
		go func(r run) {
			defer wg.Done()
			slices.SortStableFunc(seq[r.lo:r.hi], compareKeyed)
		}(r)
	}
	wg.Wait()

	src, dst := seq, make([]keyedPixel, len(seq))
	for len(runs) > 1 {
		merged := make([]run, 0, (len(runs)+1)/2)
		for i := 0; i < len(runs); i += 2 {
			if i+1 == len(runs) {
				last := runs[i]
				copy(dst[last.lo:last.hi], src[last.lo:last.hi])
				merged = append(merged, last)
				continue
			}
			left, right := runs[i], runs[i+1]
			wg.Add()
			go func() {
				defer wg.Done()
				mergeRuns(dst[left.lo:right.hi], src[left.lo:left.hi], src[right.lo:right.hi])
			}()
			merged = append(merged, run{lo: left.lo, hi: right.hi})
		}
		wg.Wait()
		src, dst = dst, src
		runs = merged
	}
	if &src[0] != &seq[0] {
		copy(seq, src)
	}
}

// mergeRuns merges two sorted runs into dst, taking from left on equal keys.
func mergeRuns(dst, left, right []keyedPixel) {
	i, j, k := 0, 0, 0
	for i < len(left) && j < len(right) {
		if right[j].key < left[i].key {
			dst[k] = right[j]
			j++
		} else {
			dst[k] = left[i]
			i++
		}
		k++
	}
	k += copy(dst[k:], left[i:])
	copy(dst[k:], right[j:])
}
