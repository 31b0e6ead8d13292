// strtarget is a synthetic target process with a known string layout.
// It pins narrow and wide strings in memory and redisplays them so a
// scanner/patcher run against it can be verified by eye: patched text
// shows up on the next refresh.
package main

import (
	"fmt"
	"time"
	"unicode/utf16"
)

// The buffers are package-level so they stay at stable addresses for the
// lifetime of the process.
var (
	narrowStrings = [][]byte{
		append([]byte("Start Game"), 0),
		append([]byte("Options"), 0),
		append([]byte("Exit to Desktop"), 0),
		append([]byte("OK"), 0),
	}

	wideStrings = [][]uint16{
		wide("Start Game"),
		wide("Continue"),
		wide("Load Game"),
		wide("Player"),
	}
)

func wide(s string) []uint16 {
	units := utf16.Encode([]rune(s))
	return append(units, 0)
}

func narrowString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

func wideString(u []uint16) string {
	for i, c := range u {
		if c == 0 {
			return string(utf16.Decode(u[:i]))
		}
	}
	return string(utf16.Decode(u))
}

const refresh = 500 * time.Millisecond

func main() {
	fmt.Println("gamestringer string target (Ctrl+C to exit)")

	ticker := time.NewTicker(refresh)
	defer ticker.Stop()

	for range ticker.C {
		render()
	}
}

func render() {
	fmt.Print("\033[H\033[2J") // clear screen for refreshed view
	fmt.Println("gamestringer string target - patch me and watch the text change")
	fmt.Println()
	fmt.Println("narrow (ASCII):")
	for i, b := range narrowStrings {
		fmt.Printf("  [%d] %p  %q\n", i, &b[0], narrowString(b))
	}
	fmt.Println("wide (UTF-16):")
	for i, u := range wideStrings {
		fmt.Printf("  [%d] %p  %q\n", i, &u[0], wideString(u))
	}
}
