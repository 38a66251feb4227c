package main

import (
	"fmt"
	"os"

	"airbnb-dashboard/cmd"
)

func main() {
	if len(os.Args) < 2 {
		cmd.Serve(nil)
		return
	}

	switch os.Args[1] {
	case "serve":
		cmd.Serve(os.Args[2:])
	case "summary":
		cmd.Summary(os.Args[2:])
	case "export":
		cmd.Export(os.Args[2:])
	case "import":
		cmd.Import(os.Args[2:])
	case "snapshot":
		cmd.Snapshot(os.Args[2:])
	case "-h", "--help", "help":
		usage()
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: airbnb-dashboard <command>\n\nCommands:\n"+
		"  serve      Serve the cross-filter dashboard (default)\n"+
		"  summary    Print a terminal report over the cleaned listings\n"+
		"  export     Write the cleaned listings to CSV\n"+
		"  import     Load the cleaned listings into PostgreSQL or SQLite\n"+
		"  snapshot   Screenshot a running dashboard with headless Chrome\n")
}
