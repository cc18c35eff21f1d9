// Command-line interface to the region assignment workflow engine.
// Provides commands for volume ingest, progress queries, and running
// background reconciliation jobs against a workflow store.

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/RENCI/ninjato/ninjato"
	"github.com/RENCI/ninjato/raster"
	"github.com/RENCI/ninjato/server"
	"github.com/RENCI/ninjato/storage"
)

var (
	// Display usage if true.
	showHelp = flag.Bool("help", false, "")

	// Run in verbose mode if true.
	runVerbose = flag.Bool("verbose", false, "")

	// Path to the TOML configuration file.
	configFile = flag.String("config", "config.toml", "")
)

const helpMessage = `
ninjato manages region annotation assignments over segmented 3d volumes

Usage: ninjato [options] <command>

      -config     =string   Path to TOML configuration file (default "config.toml").
      -verbose    (flag)    Run in verbose mode.
  -h, -help       (flag)    Show help message

Commands:

	about
	help
	ingest    <subvolume id> <raster file>
	info      <subvolume id>
	reconcile <subvolume id> <approved assignment id>
`

var usage = func() {
	fmt.Printf(helpMessage)
}

func main() {
	flag.BoolVar(showHelp, "h", false, "Show help message")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() >= 1 && strings.ToLower(flag.Args()[0]) == "help" {
		*showHelp = true
	}
	if *showHelp || flag.NArg() == 0 {
		flag.Usage()
		os.Exit(0)
	}
	if *runVerbose {
		ninjato.SetLogMode(ninjato.DebugMode)
	}

	if err := DoCommand(flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

// DoCommand dispatches the command line to its handler.
func DoCommand(args []string) error {
	switch args[0] {
	case "about":
		fmt.Println("ninjato region assignment workflow engine")
		fmt.Println("Storage: badger/v3 records, file or badger blobs, kafka job queue")
		return nil
	case "ingest":
		return withRuntime(func(rt *server.Runtime) error { return doIngest(rt, args[1:]) })
	case "info":
		return withRuntime(func(rt *server.Runtime) error { return doInfo(rt, args[1:]) })
	case "reconcile":
		return withRuntime(func(rt *server.Runtime) error { return doReconcile(rt, args[1:]) })
	default:
		return fmt.Errorf("unknown command: %q", args[0])
	}
}

// withRuntime loads the config, opens the stores, and guarantees shutdown
// even on interrupt.
func withRuntime(fn func(rt *server.Runtime) error) error {
	if err := server.LoadConfig(*configFile); err != nil {
		return err
	}
	rt, err := server.OpenRuntime()
	if err != nil {
		return err
	}
	defer rt.Shutdown()

	stopSig := make(chan os.Signal, 1)
	signal.Notify(stopSig, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-stopSig
		log.Printf("Stop signal captured: %q.  Shutting down...\n", sig)
		rt.Shutdown()
		os.Exit(0)
	}()

	return fn(rt)
}

// doIngest registers a raster file as a new subvolume.
func doIngest(rt *server.Runtime, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("ingest command must be followed by a subvolume id and a raster file")
	}
	subvolumeID, path := args[0], args[1]
	blob, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	vol, err := raster.RawCodec{}.Decode(blob)
	if err != nil {
		return fmt.Errorf("could not decode raster %q: %v", path, err)
	}
	sv, err := rt.Service.IngestSubvolume(subvolumeID, vol)
	if err != nil {
		return err
	}
	fmt.Printf("Ingested subvolume %q: %d regions, extent %s\n",
		sv.ID, len(sv.Regions), sv.Extent)
	return nil
}

// doInfo prints the derived progress summary for a subvolume.
func doInfo(rt *server.Runtime, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("info command must be followed by a subvolume id")
	}
	summary, err := rt.Service.SubvolumeInfo(args[0])
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// doReconcile runs the assignment mask update job in-process, the same job
// a queue worker would run on receipt of the kafka message.
func doReconcile(rt *server.Runtime, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("reconcile command must be followed by a subvolume id and an approved assignment id")
	}
	return rt.Service.RunJob(storage.JobMessage{
		Job:          storage.JobUpdateAssignmentMasks,
		SubvolumeID:  args[0],
		AssignmentID: args[1],
	})
}
