package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "scan":
		err = cmdScan(os.Args[2:])
	case "recover":
		err = cmdRecover(os.Args[2:])
	case "blocks":
		err = cmdBlocks(os.Args[2:])
	case "check":
		err = cmdCheck(os.Args[2:])
	case "listing":
		err = cmdListing(os.Args[2:])
	case "strings":
		err = cmdStrings(os.Args[2:])
	case "help", "-h", "--help":
		usage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `untape — tape pulse stream to program listing recovery

Usage:
  untape scan    --tap <path>                 Classify pulses and print stream stats
  untape recover --tap <path> --out <dir>     Full recovery: image, listing, findings
  untape blocks  --tap <path>                 Inventory checksummed transfer blocks
  untape check   --prg <path>                 Validate a program image, emit findings
  untape listing --prg <path>                 Render a program image as text
  untape strings --tap <path>                 Best-effort string dump from a damaged tape

Flags:
  --tap <path>        Input tape dump (TAP v1)
  --prg <path>        Input program image (load address + tokenized lines)
  --out <dir>         Output directory
  --profile <id>      Machine profile: vic20-pal (default) or c64-pal
  --profile-cue <f>   Load profile from a CUE file instead
  --calibrate         Derive pulse thresholds from the stream itself
  --strict            Fail on first structural error
  --max-steps <n>     Global loop cap
  --audit <file>      Append JSON audit log
  --debug             Debug-level logging
`)
}
