//go:build windows

// gst_scan searches a process's committed readable memory for a byte
// pattern with wildcards, or for narrow/wide text.
package main

import (
	"flag"
	"fmt"
	"os"

	"gamestringer/process"
	"gamestringer/process_blob"
	"gamestringer/process_windows"
	"gamestringer/scan"
)

func main() {
	pidFlag := flag.Int("pid", 0, "Process ID to attach to")
	sigFlag := flag.String("sig", "", `Signature to scan for, e.g. "48 8B ?? 24 F0"`)
	textFlag := flag.String("text", "", "Text to scan for instead of a signature")
	wideFlag := flag.Bool("wide", false, "Treat --text as UTF-16")
	maxFlag := flag.Int("max", 50, "Maximum matches to report")
	flag.Parse()

	if *pidFlag == 0 {
		fmt.Println("Error: --pid is required")
		flag.Usage()
		os.Exit(1)
	}
	if *sigFlag == "" && *textFlag == "" {
		fmt.Println("Error: --sig or --text is required")
		flag.Usage()
		os.Exit(1)
	}

	proc, err := process_windows.NewWithPID(process.ProcessID(*pidFlag))
	if err != nil {
		fmt.Printf("Error attaching to process %d: %v\n", *pidFlag, err)
		os.Exit(1)
	}
	defer proc.Close()

	scanner := scan.New(scan.WithMaxResults(*maxFlag))

	if *sigFlag != "" {
		aob, err := process.ParseSignature(*sigFlag)
		if err != nil {
			fmt.Printf("Error parsing signature: %v\n", err)
			os.Exit(1)
		}
		matches, err := scanner.ScanProcess(proc, aob)
		if err != nil {
			fmt.Printf("Error scanning: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Matches found: %d\n", len(matches))
		for _, m := range matches {
			fmt.Printf("  %s  (region %s, %d bytes)\n", m.Address.ToString(), m.RegionBase.ToString(), m.RegionSize)
		}
		return
	}

	enc := process.EncodingNarrow
	if *wideFlag {
		enc = process.EncodingWide
	}

	var found int
	it := proc.Regions()
	for {
		region, ok := it.Next()
		if !ok {
			break
		}
		blob, err := process_blob.Capture(proc, region)
		if err != nil {
			continue
		}
		addrs, err := scanner.FindText(blob, *textFlag, enc)
		if err != nil {
			fmt.Printf("Error scanning: %v\n", err)
			os.Exit(1)
		}
		for _, addr := range addrs {
			fmt.Printf("  %s  (%s)\n", addr.ToString(), enc.String())
			found++
		}
		if *maxFlag > 0 && found >= *maxFlag {
			break
		}
	}
	fmt.Printf("Matches found: %d\n", found)
}
