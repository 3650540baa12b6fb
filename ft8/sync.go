package ft8

import (
	"sort"
	"sync"
)

// Costas sync detection: scans the waterfall for the 7x7 (FT8) or 4x4 (FT4) sync
// tone pattern at every plausible time/frequency offset and keeps the strongest
// candidates.

// Candidate is a potential signal's position in the waterfall.
type Candidate struct {
	Score      int16
	TimeOffset int16
	FreqOffset int16
	TimeSub    uint8
	FreqSub    uint8
}

// FindCandidates returns up to maxCandidates candidates scoring at least
// minScore, strongest first. The search partitions the freq_offset axis into
// contiguous ranges, one per worker, each producing its own ranked candidate
// list before the lists are merged; workers <= 1 runs the search on a single
// goroutine.
func FindCandidates(wf *Waterfall, maxCandidates int, minScore int, workers int) []Candidate {
	numTones := 8
	if wf.Protocol == ProtocolFT4 {
		numTones = 4
	}

	freqLimit := wf.NumBins - numTones + 1
	if freqLimit <= 0 {
		return nil
	}

	if workers < 1 {
		workers = 1
	}
	if workers > freqLimit {
		workers = freqLimit
	}

	chunk := (freqLimit + workers - 1) / workers
	partials := make([][]Candidate, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > freqLimit {
			hi = freqLimit
		}
		if lo >= hi {
			continue
		}

		wg.Add(1)
		go func(w, lo, hi int) {
			defer wg.Done()
			partials[w] = searchFreqRange(wf, lo, hi, maxCandidates, minScore)
		}(w, lo, hi)
	}
	wg.Wait()

	merged := make([]Candidate, 0, maxCandidates)
	for _, p := range partials {
		for _, cand := range p {
			merged = insertCandidate(merged, cand, maxCandidates)
		}
	}
	return merged
}

// searchFreqRange scores every time/frequency offset with freqOffset in
// [freqLo, freqHi), returning that range's own ranked, capped candidate list.
func searchFreqRange(wf *Waterfall, freqLo, freqHi, maxCandidates, minScore int) []Candidate {
	candidates := make([]Candidate, 0, maxCandidates)

	for timeSub := 0; timeSub < wf.TimeOSR; timeSub++ {
		for freqSub := 0; freqSub < wf.FreqOSR; freqSub++ {
			// Allow partial sync patterns straddling the slot boundary.
			for timeOffset := -10; timeOffset < 20; timeOffset++ {
				for freqOffset := freqLo; freqOffset < freqHi; freqOffset++ {
					var score int
					if wf.Protocol == ProtocolFT8 {
						score = calculateFT8SyncScore(wf, timeOffset, freqOffset, timeSub, freqSub)
					} else {
						score = calculateFT4SyncScore(wf, timeOffset, freqOffset, timeSub, freqSub)
					}

					if score < minScore {
						continue
					}

					cand := Candidate{
						Score:      int16(score),
						TimeOffset: int16(timeOffset),
						FreqOffset: int16(freqOffset),
						TimeSub:    uint8(timeSub),
						FreqSub:    uint8(freqSub),
					}
					candidates = insertCandidate(candidates, cand, maxCandidates)
				}
			}
		}
	}

	return candidates
}

func calculateFT8SyncScore(wf *Waterfall, timeOffset, freqOffset, timeSub, freqSub int) int {
	score := 0
	numAverage := 0

	for m := 0; m < FT8NumSync; m++ {
		for k := 0; k < FT8LengthSync; k++ {
			block := (FT8SyncOffset * m) + k
			blockAbs := timeOffset + block
			if blockAbs < 0 {
				continue
			}
			if blockAbs >= wf.NumBlocks {
				break
			}

			sm := int(Costas7x7[k])
			expectedMag := int(getWaterfallMag(wf, blockAbs, freqOffset+sm, timeSub, freqSub))

			if sm > 0 {
				lowerMag := int(getWaterfallMag(wf, blockAbs, freqOffset+sm-1, timeSub, freqSub))
				score += expectedMag - lowerMag
				numAverage++
			}
			if sm < 7 {
				higherMag := int(getWaterfallMag(wf, blockAbs, freqOffset+sm+1, timeSub, freqSub))
				score += expectedMag - higherMag
				numAverage++
			}
			if k > 0 && blockAbs > 0 {
				prevMag := int(getWaterfallMag(wf, blockAbs-1, freqOffset+sm, timeSub, freqSub))
				score += expectedMag - prevMag
				numAverage++
			}
			if k+1 < FT8LengthSync && blockAbs+1 < wf.NumBlocks {
				nextMag := int(getWaterfallMag(wf, blockAbs+1, freqOffset+sm, timeSub, freqSub))
				score += expectedMag - nextMag
				numAverage++
			}
		}
	}

	if numAverage > 0 {
		return score / numAverage
	}
	return score
}

func calculateFT4SyncScore(wf *Waterfall, timeOffset, freqOffset, timeSub, freqSub int) int {
	score := 0
	numAverage := 0

	for m := 0; m < FT4NumSync; m++ {
		for k := 0; k < FT4LengthSync; k++ {
			block := 1 + (FT4SyncOffset * m) + k
			blockAbs := timeOffset + block
			if blockAbs < 0 {
				continue
			}
			if blockAbs >= wf.NumBlocks {
				break
			}

			sm := int(Costas4x4[m][k])
			expectedMag := int(getWaterfallMag(wf, blockAbs, freqOffset+sm, timeSub, freqSub))

			if sm > 0 {
				lowerMag := int(getWaterfallMag(wf, blockAbs, freqOffset+sm-1, timeSub, freqSub))
				score += expectedMag - lowerMag
				numAverage++
			}
			if sm < 3 {
				higherMag := int(getWaterfallMag(wf, blockAbs, freqOffset+sm+1, timeSub, freqSub))
				score += expectedMag - higherMag
				numAverage++
			}
			if k > 0 && blockAbs > 0 {
				prevMag := int(getWaterfallMag(wf, blockAbs-1, freqOffset+sm, timeSub, freqSub))
				score += expectedMag - prevMag
				numAverage++
			}
			if k+1 < FT4LengthSync && blockAbs+1 < wf.NumBlocks {
				nextMag := int(getWaterfallMag(wf, blockAbs+1, freqOffset+sm, timeSub, freqSub))
				score += expectedMag - nextMag
				numAverage++
			}
		}
	}

	if numAverage > 0 {
		return score / numAverage
	}
	return score
}

func getWaterfallMag(wf *Waterfall, block, bin, timeSub, freqSub int) uint8 {
	if block < 0 || block >= wf.NumBlocks {
		return 0
	}
	if bin < 0 || bin >= wf.NumBins {
		return 0
	}

	idx := block*wf.BlockStride + timeSub*wf.FreqOSR*wf.NumBins + freqSub*wf.NumBins + bin
	if idx < 0 || idx >= len(wf.Mag) {
		return 0
	}
	return wf.Mag[idx]
}

// insertCandidate keeps candidates sorted strongest-first, capped at maxCandidates.
func insertCandidate(candidates []Candidate, newCand Candidate, maxCandidates int) []Candidate {
	if len(candidates) < maxCandidates {
		candidates = append(candidates, newCand)
		sort.Slice(candidates, func(i, j int) bool {
			return candidates[i].Score > candidates[j].Score
		})
		return candidates
	}

	if newCand.Score > candidates[len(candidates)-1].Score {
		candidates[len(candidates)-1] = newCand
		sort.Slice(candidates, func(i, j int) bool {
			return candidates[i].Score > candidates[j].Score
		})
	}
	return candidates
}

// GetCandidateFrequency returns cand's audio frequency in Hz.
func GetCandidateFrequency(wf *Waterfall, cand *Candidate, symbolPeriod float64) float64 {
	return (float64(wf.MinBin) + float64(cand.FreqOffset) + float64(cand.FreqSub)/float64(wf.FreqOSR)) / symbolPeriod
}

// GetCandidateTime returns cand's time offset in seconds from the start of the slot.
func GetCandidateTime(wf *Waterfall, cand *Candidate, symbolPeriod float64) float64 {
	return (float64(cand.TimeOffset) + float64(cand.TimeSub)/float64(wf.TimeOSR)) * symbolPeriod
}
