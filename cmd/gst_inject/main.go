//go:build windows

// gst_inject rewrites translation pairs in place inside a running game:
// every occurrence of each original string, wide or narrow, is replaced by
// its translation padded to the original size.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"gamestringer/patch"
	"gamestringer/process"
	"gamestringer/process_windows"
)

func main() {
	pidFlag := flag.Int("pid", 0, "Process ID to attach to")
	nameFlag := flag.String("name", "", "Process name to attach to (alternative to --pid)")
	pairsFlag := flag.String("pairs", "", "JSON file of {original, translated} pairs")
	flag.Parse()

	if *pairsFlag == "" {
		fmt.Println("Error: --pairs is required")
		flag.Usage()
		os.Exit(1)
	}

	pid, err := resolvePID(*pidFlag, *nameFlag)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	data, err := os.ReadFile(*pairsFlag)
	if err != nil {
		fmt.Printf("Error reading pairs: %v\n", err)
		os.Exit(1)
	}
	var pairs []process.TranslationPair
	if err := json.Unmarshal(data, &pairs); err != nil {
		fmt.Printf("Error parsing pairs: %v\n", err)
		os.Exit(1)
	}

	if !process_windows.HasAdminPrivileges() {
		fmt.Println("Warning: not elevated; protected processes will refuse to open")
	}

	proc, err := process_windows.NewWithPID(process.ProcessID(pid))
	if err != nil {
		fmt.Printf("Error attaching to process %d: %v\n", pid, err)
		os.Exit(1)
	}
	defer proc.Close()

	result, err := patch.New(proc).InjectTranslations(pairs)
	if err != nil {
		fmt.Printf("Error injecting: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Injected %d of %d pairs\n", result.InjectedCount, len(pairs))
	for _, item := range result.Injected {
		fmt.Printf("  0x%X  %-8s %q -> %q\n", item.Address, item.Encoding, item.Original, item.Translated)
	}
}
