// p4lens-server loads a compiled-program artifact bundle and serves the
// read-only query API over HTTP.
package main

import (
	"flag"
	"os"

	"github.com/p4lens/p4lens/pkg/api"
	"github.com/p4lens/p4lens/pkg/engine"
	"github.com/p4lens/p4lens/pkg/logging"
	"github.com/p4lens/p4lens/pkg/metrics"
)

func main() {
	bundle := flag.String("bundle", "bundle.yaml", "Path to the artifact bundle manifest")
	port := flag.Int("port", 8080, "Server port")
	flag.Parse()

	log := logging.NewDefaultLogger()

	eng, err := engine.Load(*bundle, log, metrics.NewRegistry())
	if err != nil {
		log.Error("bundle load failed", logging.Path(*bundle), logging.Error(err))
		os.Exit(1)
	}

	server := api.NewServer(eng, *port, log)
	if err := server.Start(); err != nil {
		log.Error("server failed", logging.Error(err))
		os.Exit(1)
	}
}
