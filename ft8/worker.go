package ft8

import (
	"sync"
	"time"
)

// DecodeResult is one deduplicated, CRC-verified message produced by a decode
// pass over a slot's waterfall.
type DecodeResult struct {
	Time      time.Time
	SNR       float32
	DeltaTime float32
	DeltaFreq float32
	Message   string
	Callsign  string
	Locator   string
	Protocol  string
	Score     int16

	DistanceKm  float64
	BearingDeg  float64
	HasDistance bool
}

// SlotStats counts per-slot decode outcomes for observability.
type SlotStats struct {
	Candidates   int
	LDPCFailures int
	CRCFailures  int
	Decoded      int
}

// DecodeSlot runs the full pipeline (sync search, per-candidate LDPC/CRC
// decode, deduplication, SNR and geodesy enrichment) over a waterfall built
// from one slot's audio, using cfg.Workers goroutines to decode candidates
// concurrently. rxLocator, if non-empty, enables distance/bearing enrichment
// relative to the receiver's own grid square.
func DecodeSlot(wf *Waterfall, cfg FT8Config, hashTable *CallsignHashTable, rxLocator string, metrics *Metrics) ([]DecodeResult, SlotStats) {
	start := time.Now()

	candidates := FindCandidates(wf, cfg.MaxCandidates, cfg.MinScore, cfg.Workers)
	stats := SlotStats{Candidates: len(candidates)}

	if metrics != nil {
		metrics.CandidatesPerSlot.Observe(float64(len(candidates)))
	}

	var rxLat, rxLon float64
	haveRx := false
	if rxLocator != "" {
		if lat, lon, err := MaidenheadToLatLon(rxLocator); err == nil {
			rxLat, rxLon = lat, lon
			haveRx = true
		}
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	work := make(chan Candidate, len(candidates))
	for _, c := range candidates {
		work <- c
	}
	close(work)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		seen    = make(map[uint16]bool, len(candidates))
		results = make([]DecodeResult, 0, len(candidates))
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for cand := range work {
				cand := cand
				msg, status, ok := DecodeCandidate(wf, &cand, cfg.Protocol, cfg.LDPCIterations)

				mu.Lock()
				if !ok {
					if status.LDPCErrors > 0 {
						stats.LDPCFailures++
						if metrics != nil {
							metrics.LDPCFailures.Inc()
						}
					} else {
						stats.CRCFailures++
						if metrics != nil {
							metrics.CRCFailures.Inc()
						}
					}
					mu.Unlock()
					continue
				}
				if seen[msg.Hash] {
					mu.Unlock()
					continue
				}
				seen[msg.Hash] = true
				stats.Decoded++
				mu.Unlock()

				snr := CalculateSNRFromBits(wf, &cand, status.Codeword, cfg.Protocol)
				text := UnpackMessageWithHash(msg.Payload, hashTable)
				call, locator := extractCallsignLocator(text)

				result := DecodeResult{
					Time:      time.Now().UTC(),
					SNR:       snr,
					DeltaTime: status.Time,
					DeltaFreq: status.Frequency,
					Message:   text,
					Callsign:  call,
					Locator:   locator,
					Protocol:  cfg.Protocol.String(),
					Score:     cand.Score,
				}

				if haveRx && locator != "" {
					if lat, lon, err := MaidenheadToLatLon(locator); err == nil {
						km, bearing := CalculateDistanceAndBearing(rxLat, rxLon, lat, lon)
						result.DistanceKm = km
						result.BearingDeg = bearing
						result.HasDistance = true
					}
				}

				if metrics != nil {
					metrics.MessagesDecoded.WithLabelValues(cfg.Protocol.String()).Inc()
				}

				mu.Lock()
				results = append(results, result)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if metrics != nil {
		metrics.DecodeDuration.Observe(time.Since(start).Seconds())
		if hashTable != nil {
			metrics.HashTableEntries.Set(float64(hashTable.Size()))
		}
	}

	return results, stats
}
