// translator is the auxiliary module injected into the game process. It
// attaches engine hooks, talks to the orchestrator over the named channel,
// and keeps the translation cache. Built as a c-shared library for
// injection; running the binary directly drives the same lifecycle for
// debugging.
package main

import (
	"flag"
	"os"
	"os/signal"
	"sync"

	"gamestringer/ipc"
	"gamestringer/translate"
	"gamestringer/translator"
)

var (
	moduleOnce sync.Once
	module     *translator.Module
)

// getModule builds the singleton module on first use
func getModule() *translator.Module {
	moduleOnce.Do(func() {
		cfg := translate.DefaultConfig()
		if path := os.Getenv("GST_CACHE_PATH"); path != "" {
			cfg.CachePath = path
		}
		if lang := os.Getenv("GST_TARGET_LANG"); lang != "" {
			cfg.TargetLanguage = lang
		}

		pipeName := ipc.PipeNameUnreal
		if os.Getenv("GST_CHANNEL") == "unity" {
			pipeName = ipc.PipeNameUnity
		}

		module = translator.New(cfg, pipeName)
	})
	return module
}

// runTranslator starts the module against the process's own directory
func runTranslator() {
	gameDir, err := os.Getwd()
	if err != nil {
		gameDir = "."
	}
	getModule().Run(gameDir)
}

func main() {
	cachePath := flag.String("cache", "", "Persistent cache file (.dat); empty disables persistence")
	lang := flag.String("lang", "", "Target language tag")
	flag.Parse()

	if *cachePath != "" {
		os.Setenv("GST_CACHE_PATH", *cachePath)
	}
	if *lang != "" {
		os.Setenv("GST_TARGET_LANG", *lang)
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	go runTranslator()
	<-interrupt

	getModule().Shutdown()
}
