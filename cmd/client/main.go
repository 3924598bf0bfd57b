package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/wishkeep/wishkeep/internal/client/api"
	"github.com/wishkeep/wishkeep/internal/client/localstore"
	"github.com/wishkeep/wishkeep/internal/client/view"
)

var (
	version   string
	buildDate string
)

// main parses command-line flags and runs the terminal UI against either a
// remote server or a local database file.
func main() {
	var (
		mode    string
		baseURL string
		dbPath  string
		showVer bool
	)

	flag.StringVar(&mode, "mode", "remote", "storage mode: remote | local")
	flag.StringVar(&baseURL, "url", "http://localhost:8080", "server base URL for remote mode")
	flag.StringVar(&dbPath, "db", "wishkeep.db", "database file for local mode")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Parse()

	if showVer {
		fmt.Printf("Wishkeep Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	switch mode {
	case "remote":
		client := api.New(nil, baseURL)
		v := view.New(client, os.Stdin, os.Stdout)
		client.StartWatch(ctx, v.Notify)
		v.Run(ctx)
	case "local":
		local, err := localstore.Open(dbPath)
		if err != nil {
			log.Fatal(err)
		}
		defer local.Close()
		view.New(local, os.Stdin, os.Stdout).Run(ctx)
	default:
		log.Fatalf("unknown mode %q, use remote or local", mode)
	}
}
