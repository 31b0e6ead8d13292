//go:build windows

// gst_read dumps a range of a process's memory as hex, optionally
// highlighting a pattern, and can list the target's modules.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gamestringer/hexdump"
	"gamestringer/process"
	"gamestringer/process_windows"
)

func main() {
	pidFlag := flag.Int("pid", 0, "Process ID to attach to")
	addrFlag := flag.String("addr", "", "Address to read, hex (e.g. 0x7FF6A0001000)")
	sizeFlag := flag.Int("size", 256, "Bytes to read")
	highlightFlag := flag.String("highlight", "", "ASCII pattern to highlight")
	modulesFlag := flag.Bool("modules", false, "List target modules instead of reading")
	flag.Parse()

	if *pidFlag == 0 {
		fmt.Println("Error: --pid is required")
		flag.Usage()
		os.Exit(1)
	}

	proc, err := process_windows.NewWithPID(process.ProcessID(*pidFlag))
	if err != nil {
		fmt.Printf("Error attaching to process %d: %v\n", *pidFlag, err)
		os.Exit(1)
	}
	defer proc.Close()

	if *modulesFlag {
		modules, err := proc.Modules()
		if err != nil {
			fmt.Printf("Error listing modules: %v\n", err)
			os.Exit(1)
		}
		is64, _ := proc.Is64Bit()
		fmt.Printf("Modules: %d (64-bit: %t)\n", len(modules), is64)
		for _, m := range modules {
			fmt.Printf("  %s  %-10d %s\n", m.Base.ToString(), m.Size, m.Name)
		}
		return
	}

	if *addrFlag == "" {
		fmt.Println("Error: --addr is required")
		flag.Usage()
		os.Exit(1)
	}
	addr, err := strconv.ParseUint(strings.TrimPrefix(*addrFlag, "0x"), 16, 64)
	if err != nil {
		fmt.Printf("Error parsing address: %v\n", err)
		os.Exit(1)
	}

	data, err := proc.ReadMemory(process.ProcessMemoryAddress(addr), process.ProcessMemorySize(*sizeFlag))
	if err != nil {
		fmt.Printf("Error reading: %v\n", err)
		os.Exit(1)
	}

	opts := hexdump.DefaultOptions()
	opts.BaseAddress = addr
	opts.Color = true
	if *highlightFlag != "" {
		opts.Highlight = []byte(*highlightFlag)
	}
	hexdump.Dump(os.Stdout, data, opts)
}
