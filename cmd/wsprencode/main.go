package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/wsprhub/wsprd/pkg/wspr"
)

func main() {
	var (
		callsign    = flag.String("callsign", "", "Station callsign (3-6 characters)")
		grid        = flag.String("grid", "", "4-character Maidenhead grid locator")
		power       = flag.Int("power", 23, "Transmit power in dBm (0-60, last digit 0, 3 or 7)")
		baseFreq    = flag.Float64("base", 1500.0, "Audio base frequency in Hz for the frequency plan")
		showSymbols = flag.Bool("symbols", false, "Show the full symbol sequence")
		output      = flag.String("output", "", "Output file for symbols (one per line)")
	)
	flag.Parse()

	if *callsign == "" || *grid == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -callsign K1ABC -grid FN42 [options]\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	callCode, err := wspr.EncodeCallsign(*callsign)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Callsign error: %v\n", err)
		os.Exit(1)
	}
	gridCode, err := wspr.EncodeGrid(*grid)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Grid error: %v\n", err)
		os.Exit(1)
	}
	powerCode, err := wspr.EncodePower(*power)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Power error: %v\n", err)
		os.Exit(1)
	}

	symbols, err := wspr.Encode(*callsign, *grid, *power)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Encoding failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Encoding WSPR Message\n")
	fmt.Printf("=====================\n")
	fmt.Printf("Callsign: %q (code %d, 28 bits)\n", *callsign, callCode)
	fmt.Printf("Grid:     %q (code %d, 15 bits)\n", *grid, gridCode)
	fmt.Printf("Power:    %d dBm (code %d, 7 bits)\n", *power, powerCode)
	fmt.Printf("\n")
	fmt.Printf("✓ Encoded to %d symbols\n", len(symbols))

	if *showSymbols {
		fmt.Printf("\nSymbol Sequence:\n")
		fmt.Printf("================\n")
		for i := 0; i < len(symbols); i += 18 {
			end := i + 18
			if end > len(symbols) {
				end = len(symbols)
			}
			var row []string
			for _, s := range symbols[i:end] {
				row = append(row, fmt.Sprintf("%d", s))
			}
			fmt.Printf("%3d: %s\n", i, strings.Join(row, " "))
		}
	}

	if *output != "" {
		file, err := os.Create(*output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create output file: %v\n", err)
			os.Exit(1)
		}
		defer file.Close()

		for _, s := range symbols {
			fmt.Fprintf(file, "%d\n", s)
		}
		fmt.Printf("✓ Wrote symbols to %s\n", *output)
	}

	fmt.Printf("\nTransmission Plan:\n")
	fmt.Printf("==================\n")
	fmt.Printf("Symbols:       %d (4-FSK tone indices 0-3)\n", wspr.SymbolCount)
	fmt.Printf("Tone spacing:  %.4f Hz\n", wspr.ToneSpacing)
	fmt.Printf("Symbol period: %.4f s\n", wspr.SymbolDuration.Seconds())
	fmt.Printf("Duration:      %.2f s\n", wspr.TransmissionDuration.Seconds())
	fmt.Printf("\nTone frequencies (base %.1f Hz):\n", *baseFreq)
	for tone := byte(0); tone < 4; tone++ {
		fmt.Printf("  Tone %d: %.4f Hz\n", tone, wspr.ToneFrequency(*baseFreq, tone))
	}
}
