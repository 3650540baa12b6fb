// Command ft8 decodes FT8/FT4 transmissions from 12 kHz mono WAV files and
// encodes FT8 transmissions to them, exercising the ft8 package from the
// command line.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/karlisgoba/ft8core/ft8"
)

const sampleRate = 12000

func main() {
	log.SetFlags(0)
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "decode":
		err = runDecode(os.Args[2:])
	case "encode":
		err = runEncode(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		log.Fatalf("ft8: %v", err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  ft8 decode <wavfile>")
	fmt.Fprintln(os.Stderr, "  ft8 encode <freq_hz> <attn_db> <message> <out.wav>")
}

func runDecode(args []string) error {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	configPath := fs.String("config", "", "YAML config file (overrides the flags below)")
	protoName := fs.String("protocol", "FT8", "protocol: FT8 or FT4")
	minScore := fs.Int("min-score", 0, "minimum sync score")
	maxCandidates := fs.Int("max-candidates", 140, "maximum sync candidates")
	rxLocator := fs.String("locator", "", "receiver grid locator, for distance/bearing")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("%w: missing wav file", ft8.ErrConfig)
	}

	samples, err := readMonoWav(fs.Arg(0))
	if err != nil {
		return err
	}

	var cfg ft8.FT8Config
	if *configPath != "" {
		loaded, err := ft8.LoadConfig(*configPath)
		if err != nil {
			return err
		}
		cfg = *loaded
	} else {
		cfg = ft8.DefaultFT8Config()
		cfg.ProtocolName = *protoName
		cfg.MinScore = *minScore
		cfg.MaxCandidates = *maxCandidates
		cfg.Normalize()
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	monitor := ft8.NewMonitor(sampleRate, 200.0, 3000.0, 2, 2, cfg.Protocol)
	for off := 0; off+monitor.BlockSize <= len(samples); off += monitor.BlockSize {
		monitor.Process(samples[off : off+monitor.BlockSize])
	}

	hashTable := ft8.NewCallsignHashTable()
	results, stats := ft8.DecodeSlot(monitor.Waterfall, cfg, hashTable, *rxLocator, nil)

	for _, r := range results {
		fmt.Printf("%6.1f %5.2f %5d %s\n", r.SNR, r.DeltaTime, int(r.DeltaFreq), r.Message)
	}
	log.Printf("candidates=%d decoded=%d ldpc_failures=%d crc_failures=%d",
		stats.Candidates, stats.Decoded, stats.LDPCFailures, stats.CRCFailures)
	return nil
}

func runEncode(args []string) error {
	if len(args) != 4 {
		return fmt.Errorf("%w: encode wants freq_hz attn_db message out.wav", ft8.ErrConfig)
	}

	freq, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("ft8: invalid freq_hz: %w", err)
	}
	attnDB, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("ft8: invalid attn_db: %w", err)
	}
	message := args[2]
	outPath := args[3]

	payload, err := ft8.Pack77(message)
	if err != nil {
		return fmt.Errorf("ft8: packing message: %w", err)
	}

	tones := ft8.EncodeTones(payload, ft8.ProtocolFT8)
	signal := ft8.SynthesizeTones(tones, ft8.ProtocolFT8, freq, sampleRate)

	gain := dbToLinear(-attnDB)
	samples := make([]int, len(signal))
	for i, s := range signal {
		v := int(float64(s) * gain * 32767.0)
		if v > 32767 {
			v = 32767
		}
		if v < -32768 {
			v = -32768
		}
		samples[i] = v
	}

	return writeMonoWav(outPath, samples)
}

func dbToLinear(db float64) float64 {
	return math.Pow(10.0, db/20.0)
}

func readMonoWav(path string) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("ft8: reading wav: %w", err)
	}
	if buf.Format.NumChannels != 1 {
		return nil, fmt.Errorf("%w: wav file must be mono", ft8.ErrConfig)
	}
	if buf.Format.SampleRate != sampleRate {
		return nil, fmt.Errorf("%w: wav file must be %d Hz", ft8.ErrConfig, sampleRate)
	}

	samples := make([]float32, len(buf.Data))
	peak := float32(1 << uint(buf.SourceBitDepth-1))
	for i, v := range buf.Data {
		samples[i] = float32(v) / peak
	}
	return samples, nil
}

func writeMonoWav(path string, samples []int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("ft8: writing wav: %w", err)
	}
	return enc.Close()
}
