package server

import (
	"fmt"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/RENCI/ninjato/ninjato"
	"github.com/RENCI/ninjato/raster"
	"github.com/RENCI/ninjato/storage"
	"github.com/RENCI/ninjato/storage/badger"
	"github.com/RENCI/ninjato/storage/filestore"
	"github.com/RENCI/ninjato/workflow"
)

// the parsed TOML configuration data
var tc tomlConfig

// the TOML config file location
var tcLocation string

type tomlConfig struct {
	Logging  ninjato.LogConfig
	Store    storeConfig
	Blobs    blobConfig
	Kafka    storage.KafkaConfig
	Workflow workflowConfig
}

type storeConfig struct {
	// Path is the directory holding the subvolume record database.
	Path string
}

type blobConfig struct {
	// Dir is the directory holding raster blobs.  When empty, blobs are
	// kept alongside records in the store database.
	Dir string
}

type workflowConfig struct {
	BufferFactor float64 `toml:"buffer_factor"`
	MaxRetries   int     `toml:"max_retries"`
}

// Some settings in the TOML can be given as relative paths.
// This function converts them in-place to absolute paths,
// assuming the given paths were relative to the TOML file's own directory.
func (c *tomlConfig) convertPathsToAbsolute(configPath string) error {
	var err error

	configDir := filepath.Dir(configPath)

	// [logging].logfile
	if c.Logging.Logfile != "" {
		c.Logging.Logfile, err = ninjato.ConvertToAbsolute(c.Logging.Logfile, configDir)
		if err != nil {
			return fmt.Errorf("error converting logfile setting to absolute path")
		}
	}

	// [store].path
	if c.Store.Path != "" {
		c.Store.Path, err = ninjato.ConvertToAbsolute(c.Store.Path, configDir)
		if err != nil {
			return fmt.Errorf("error converting store path to absolute path")
		}
	}

	// [blobs].dir
	if c.Blobs.Dir != "" {
		c.Blobs.Dir, err = ninjato.ConvertToAbsolute(c.Blobs.Dir, configDir)
		if err != nil {
			return fmt.Errorf("error converting blobs dir to absolute path")
		}
	}
	return nil
}

// LoadConfig loads server configuration from a TOML file.
func LoadConfig(filename string) error {
	if filename == "" {
		return fmt.Errorf("no server TOML configuration file provided")
	}
	if _, err := toml.DecodeFile(filename, &tc); err != nil {
		return fmt.Errorf("could not decode TOML config: %v", err)
	}
	tcLocation = filename

	if err := tc.convertPathsToAbsolute(filename); err != nil {
		return fmt.Errorf("could not convert relative paths to absolute paths in TOML config: %v", err)
	}
	tc.Logging.SetLogger()
	return nil
}

func ConfigLocation() string {
	return tcLocation
}

// KafkaAvailable reports whether a job queue was configured.
func KafkaAvailable() bool {
	return len(tc.Kafka.Servers) > 0
}

// Runtime bundles the stores and workflow engine opened from the loaded
// configuration.  Shutdown must be called to flush and close them.
type Runtime struct {
	Service *workflow.Service

	store *badger.Store
	queue *storage.KafkaQueue
}

// OpenRuntime opens the configured stores and queue and wires the workflow
// engine over them.  LoadConfig must have succeeded first.
func OpenRuntime() (*Runtime, error) {
	if tc.Store.Path == "" {
		return nil, fmt.Errorf("no store path specified in TOML config")
	}
	store, err := badger.NewStore(tc.Store.Path)
	if err != nil {
		return nil, err
	}

	var blobs storage.BlobStore = store
	if tc.Blobs.Dir != "" {
		if blobs, err = filestore.NewStore(tc.Blobs.Dir); err != nil {
			store.Close()
			return nil, err
		}
	}

	rt := &Runtime{store: store}
	var queue storage.JobQueue
	if KafkaAvailable() {
		kq, err := storage.NewKafkaQueue(tc.Kafka)
		if err != nil {
			store.Close()
			return nil, err
		}
		rt.queue = kq
		queue = kq
	}

	rt.Service = workflow.NewService(workflow.ServiceConfig{
		Records:      store,
		Blobs:        blobs,
		Codec:        raster.RawCodec{},
		Queue:        queue,
		BufferFactor: tc.Workflow.BufferFactor,
		MaxRetries:   tc.Workflow.MaxRetries,
	})
	return rt, nil
}

// Shutdown flushes the job queue and closes the record store.
func (rt *Runtime) Shutdown() {
	if rt.queue != nil {
		rt.queue.Shutdown()
	}
	rt.store.Close()
	ninjato.Infof("Shutdown complete.\n")
}
