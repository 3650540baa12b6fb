package ft8

import "math"

// SNR estimation from decoded tones and sync score, following WSJT-X's
// ft8b.f90/ft8d.f90 methods.

// CalculateSNRFromBits reconstructs the transmitted tones from a successfully
// decoded codeword and estimates SNR from their waterfall magnitudes.
func CalculateSNRFromBits(wf *Waterfall, cand *Candidate, codeword []uint8, protocol Protocol) float32 {
	itone := GetTonesFromBits(codeword, protocol)
	return CalculateSNR(wf, cand, itone, protocol)
}

// CalculateSNR measures power only at the decoded tone positions (no separate
// noise measurement) and converts the ratio of its sum of squares to its sum,
// taken against a fixed 3.0e6 reference power, to dB less 27, floored at -24.
func CalculateSNR(wf *Waterfall, cand *Candidate, itone []int, protocol Protocol) float32 {
	var xsig, xbase float64
	numSymbols := len(itone)

	validSamples := 0
	for i := 0; i < numSymbols; i++ {
		block := int(cand.TimeOffset) + i
		if block < 0 || block >= wf.NumBlocks {
			continue
		}

		tone := itone[i]
		mag := getWaterfallMag(wf, block, int(cand.FreqOffset)+tone, int(cand.TimeSub), int(cand.FreqSub))

		magDB := (float64(mag) - 240.0) / 2.0
		power := math.Pow(10.0, magDB/10.0)
		xsig += power * power
		xbase += power

		validSamples++
	}

	finalSNR := -24.0
	if xbase > 0 && validSamples > 0 {
		arg := xsig/xbase/3.0e6 - 1.0
		if arg > 0.1 {
			finalSNR = 10.0*math.Log10(arg) - 27.0
		}
	}
	if finalSNR < -24.0 {
		finalSNR = -24.0
	}
	return float32(finalSNR)
}

// CalculateSNRFromSync gives a quick pre-decode SNR estimate from a candidate's
// Costas sync score.
func CalculateSNRFromSync(syncScore int) float32 {
	if syncScore <= 0 {
		return -24.0
	}
	snr := 10.0*math.Log10(float64(syncScore)) - 25.5
	if snr > 99.0 {
		snr = 99.0
	}
	if snr < -24.0 {
		snr = -24.0
	}
	return float32(snr)
}

// GetTonesFromBits reconstructs the transmitted tone sequence from a decoded
// 174-bit codeword, the inverse of the Gray/Costas splicing EncodeTones performs.
func GetTonesFromBits(codeword []uint8, protocol Protocol) []int {
	if protocol == ProtocolFT4 {
		return getTonesFromBitsFT4(codeword)
	}
	return getTonesFromBitsFT8(codeword)
}

func getTonesFromBitsFT8(codeword []uint8) []int {
	itone := make([]int, FT8NN)
	for i := 0; i < FT8LengthSync; i++ {
		itone[i] = int(Costas7x7[i])
		itone[36+i] = int(Costas7x7[i])
		itone[FT8NN-7+i] = int(Costas7x7[i])
	}

	k := 7
	for j := 0; j < FT8ND; j++ {
		i := 3 * j
		if j == 29 {
			k += 7
		}
		indx := int(codeword[i])*4 + int(codeword[i+1])*2 + int(codeword[i+2])
		itone[k] = int(GrayMap8[indx])
		k++
	}
	return itone
}

func getTonesFromBitsFT4(codeword []uint8) []int {
	itone := make([]int, FT4NN)
	itone[0] = 0
	itone[FT4NN-1] = 0

	for i := 0; i < 4; i++ {
		itone[1+i] = int(Costas4x4[0][i])
		itone[34+i] = int(Costas4x4[1][i])
		itone[67+i] = int(Costas4x4[2][i])
		itone[100+i] = int(Costas4x4[3][i])
	}

	k := 5
	for j := 0; j < FT4ND; j++ {
		i := 2 * j
		if j == 29 {
			k += 4
		} else if j == 58 {
			k += 4
		}
		indx := int(codeword[i])*2 + int(codeword[i+1])
		itone[k] = int(GrayMap4[indx])
		k++
	}
	return itone
}
