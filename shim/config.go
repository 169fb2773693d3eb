package shim

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/containerd/errdefs"
	specs "github.com/opencontainers/runtime-spec/specs-go"
)

const configFilename = "config.json"

// Environment variables of the container process understood by the shim.
const (
	inputEnv = "BF_INPUT"
	debugEnv = "BF_DEBUG"
)

// Config is the part of an OCI bundle the shim needs to run a brainfuck
// entrypoint.
type Config struct {
	Root       string
	Entrypoint string
	Path       []string
	// Input is pre-seeded into the interpreter before stdin is read.
	Input string
	Debug bool
}

// ReadConfig reads the OCI runtime config from the bundle directory.
func ReadConfig(bundle string) (*Config, error) {
	data, err := os.ReadFile(filepath.Join(bundle, configFilename))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config file %s: %w", configFilename, errdefs.ErrNotFound)
		}
		return nil, err
	}
	var spec specs.Spec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", configFilename, err)
	}

	if spec.Root == nil || spec.Root.Path == "" {
		return nil, fmt.Errorf("root path not found in config file %s: %w", configFilename, errdefs.ErrInvalidArgument)
	}
	root := spec.Root.Path
	if !filepath.IsAbs(root) {
		root = filepath.Join(bundle, root)
	}

	if spec.Process == nil || len(spec.Process.Args) != 1 {
		n := 0
		if spec.Process != nil {
			n = len(spec.Process.Args)
		}
		return nil, fmt.Errorf("incorrect number of args in the CMD. Expected 1, got %d: %w", n, errdefs.ErrInvalidArgument)
	}
	entrypoint := spec.Process.Args[0]
	if ext := filepath.Ext(entrypoint); ext != ".bf" && ext != ".brainfuck" {
		return nil, fmt.Errorf("entry point (%s) is not a .bf file: %w", entrypoint, errdefs.ErrInvalidArgument)
	}

	config := &Config{
		Root:       root,
		Entrypoint: entrypoint,
		Path:       []string{},
	}
	if _, err := os.Stat(config.FullPath()); err != nil {
		return nil, fmt.Errorf("script %s: %w", entrypoint, err)
	}

	for _, env := range spec.Process.Env {
		key, value, _ := strings.Cut(env, "=")
		switch key {
		case "PATH":
			config.Path = strings.Split(value, ":")
		case inputEnv:
			config.Input = value
		case debugEnv:
			config.Debug = value != "" && value != "0" && value != "false"
		}
	}
	return config, nil
}

func (c *Config) FullPath() string {
	return filepath.Join(c.Root, c.Entrypoint)
}

// Args are the arguments that make the shim binary run the entrypoint as a
// brainfuck interpreter.
func (c *Config) Args() []string {
	args := []string{"brainfuck", "-file", c.FullPath()}
	if c.Input != "" {
		args = append(args, "-input", c.Input)
	}
	if c.Debug {
		args = append(args, "-debug")
	}
	return args
}
