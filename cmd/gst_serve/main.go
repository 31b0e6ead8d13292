//go:build windows

// gst_serve runs the orchestrator side of the translation channels: it
// owns the named pipes, answers TRANSLATE_REQUESTs from a dictionary
// file, and collects stats and logs pushed up by injected modules.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"

	"gamestringer/ipc"
	"gamestringer/process"
)

func main() {
	dictFlag := flag.String("dict", "", "JSON file of {original, translated} pairs")
	unrealFlag := flag.Bool("unreal", true, "serve the Unreal channel (binary framing)")
	unityFlag := flag.Bool("unity", false, "serve the Unity channel (legacy JSON framing)")
	flag.Parse()

	if *dictFlag == "" {
		fmt.Println("Error: --dict is required")
		flag.Usage()
		os.Exit(1)
	}

	dict, err := loadDictionary(*dictFlag)
	if err != nil {
		fmt.Printf("Error loading dictionary: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Dictionary loaded: %d pairs\n", len(dict))

	translate := func(text string) (string, error) {
		if translated, ok := dict[text]; ok {
			return translated, nil
		}
		// Unknown strings go back unchanged; the module treats that as
		// "no translation" and keeps the original.
		return text, nil
	}

	var servers []*ipc.Server
	var wg sync.WaitGroup

	serve := func(pipeName string, codec ipc.Codec) {
		server := ipc.NewServer(translate)
		server.UseCodec(codec)
		server.OnLog = func(line string) {
			fmt.Printf("[module] %s\n", line)
		}
		server.OnStats = func(requests, hits, errs uint64) {
			fmt.Printf("[module] requests=%d hits=%d errors=%d\n", requests, hits, errs)
		}
		server.OnCacheSync = func(pairs map[string]string) {
			fmt.Printf("[module] cache sync: %d pairs\n", len(pairs))
		}
		servers = append(servers, server)

		listener, err := ipc.Listen(pipeName)
		if err != nil {
			fmt.Printf("Error listening on %s: %v\n", pipeName, err)
			os.Exit(1)
		}
		fmt.Printf("Serving %s\n", pipeName)

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := server.Serve(listener); err != nil {
				fmt.Printf("Serve %s: %v\n", pipeName, err)
			}
		}()
	}

	if *unrealFlag {
		serve(ipc.PipeNameUnreal, ipc.BinaryCodec{})
	}
	if *unityFlag {
		serve(ipc.PipeNameUnity, ipc.JSONCodec{})
	}
	if len(servers) == 0 {
		fmt.Println("Error: nothing to serve")
		os.Exit(1)
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	<-interrupt

	fmt.Println("Shutting down")
	for _, server := range servers {
		server.Close()
	}
	wg.Wait()
}

func loadDictionary(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var pairs []process.TranslationPair
	if err := json.Unmarshal(data, &pairs); err != nil {
		return nil, err
	}

	dict := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		if strings.TrimSpace(pair.Original) == "" {
			continue
		}
		dict[pair.Original] = pair.Translated
	}
	return dict, nil
}
