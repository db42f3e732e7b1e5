// Package main provides the vocab CLI entry point.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/vocab"
	"github.com/hupe1980/vocab/persistence"
	"github.com/hupe1980/vocab/resource"
)

var (
	version   = "0.1.0"
	commit    = "dev"
	buildTime = "unknown" // Set via ldflags: -X main.buildTime=$(date +%Y%m%d-%H%M%S)
)

// chunkKeys bounds the keys handed to a single Accumulate call so that
// cancellation is observed between chunks of a large key file.
const chunkKeys = 1 << 20

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type app struct {
	cfg    *Config
	logger *vocab.Logger
	out    io.Writer
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "vocab",
		Short: "Build and query visual-word vocabularies",
		Long: `vocab counts fixed-width byte keys (visual words) in an incremental hash
index, maps them to stable word ids and shares the result through blob stores.

Key files are raw byte streams: key-width bytes per key, no separators.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = newLogger(cfg.LogLevel)
			return nil
		},
	}
	rootCmd.SetOut(out)
	rootCmd.PersistentFlags().StringVar(&configPath, "config", getEnvStr("VOCAB_CONFIG", ""), "YAML config file")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(a.out, "vocab v%s (%s) built %s\n", version, commit, buildTime)
		},
	})

	rootCmd.AddCommand(a.buildCmd(), a.findCmd(), a.statsCmd(), a.publishCmd(), a.fetchCmd())
	return rootCmd
}

func newLogger(level string) *vocab.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelInfo
	}
	return vocab.NewTextLogger(l)
}

func (a *app) options() ([]vocab.Option, error) {
	c, err := persistence.ParseCompression(a.cfg.Compression)
	if err != nil {
		return nil, err
	}
	memLimit, err := parseMemorySize(a.cfg.Resources.MemoryLimit)
	if err != nil {
		return nil, err
	}
	ioLimit, err := parseMemorySize(a.cfg.Resources.IOLimit)
	if err != nil {
		return nil, err
	}
	workers := a.cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	rc := resource.NewController(resource.Config{
		MemoryLimitBytes:     memLimit,
		MaxBackgroundWorkers: int64(workers),
		IOLimitBytesPerSec:   ioLimit,
	})
	return []vocab.Option{
		vocab.WithLogger(a.logger),
		vocab.WithCompression(c),
		vocab.WithInitialCapacity(a.cfg.InitialCapacity),
		vocab.WithResourceController(rc),
	}, nil
}

func (a *app) buildCmd() *cobra.Command {
	var out, resume string

	cmd := &cobra.Command{
		Use:   "build KEYFILE...",
		Short: "Accumulate key files into a vocabulary snapshot",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			applyIntFlag(cmd, "key-width", &a.cfg.KeyWidth)
			applyIntFlag(cmd, "probe-width", &a.cfg.ProbeWidth)
			applyIntFlag(cmd, "initial-capacity", &a.cfg.InitialCapacity)
			applyStringFlag(cmd, "compression", &a.cfg.Compression)
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			opts, err := a.options()
			if err != nil {
				return err
			}

			var b *vocab.Builder
			if resume != "" {
				prev, err := vocab.LoadVocabulary(resume, opts...)
				if err != nil {
					return err
				}
				b, err = vocab.ResumeBuilder(prev.Arrays(), prev.ProbeWidth(), opts...)
				_ = prev.Close()
				if err != nil {
					return err
				}
			} else {
				b, err = vocab.NewBuilder(a.cfg.KeyWidth, a.cfg.ProbeWidth, opts...)
				if err != nil {
					return err
				}
			}
			defer b.Close()

			for _, path := range args {
				if err := accumulateFile(ctx, b, path); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
			}

			v, err := b.Freeze()
			if err != nil {
				return err
			}
			if err := v.Save(out); err != nil {
				return err
			}
			return a.printStats(v.Stats())
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "vocab.vwi", "Output snapshot file")
	cmd.Flags().StringVar(&resume, "resume", "", "Continue from an existing snapshot")
	cmd.Flags().Int("key-width", 0, "Bytes per key (overrides config)")
	cmd.Flags().Int("probe-width", 0, "Primary region size (overrides config)")
	cmd.Flags().Int("initial-capacity", 0, "Preallocated slots (overrides config)")
	cmd.Flags().String("compression", "", "Snapshot compression: none, lz4, zstd (overrides config)")
	return cmd
}

func accumulateFile(ctx context.Context, b *vocab.Builder, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	step := chunkKeys * b.KeyWidth()
	for off := 0; off < len(data); off += step {
		if err := b.Accumulate(ctx, data[off:min(off+step, len(data))]); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) findCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "find SNAPSHOT KEYFILE",
		Short: "Print the word id of every key (0 = not found), one per line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			applyIntFlag(cmd, "workers", &a.cfg.Workers)

			opts, err := a.options()
			if err != nil {
				return err
			}
			v, err := vocab.LoadVocabulary(args[0], opts...)
			if err != nil {
				return err
			}
			defer v.Close()

			keys, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			ids, err := v.FindParallel(ctx, keys, a.cfg.Workers)
			if err != nil {
				return err
			}

			w := bufio.NewWriter(a.out)
			buf := make([]byte, 0, 16)
			for _, id := range ids {
				buf = strconv.AppendUint(buf[:0], uint64(id), 10)
				buf = append(buf, '\n')
				if _, err := w.Write(buf); err != nil {
					return err
				}
			}
			return w.Flush()
		},
	}
	cmd.Flags().Int("workers", 0, "Lookup goroutines (0 = all CPUs)")
	return cmd
}

func (a *app) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats SNAPSHOT",
		Short: "Print occupancy statistics of a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := vocab.LoadVocabulary(args[0])
			if err != nil {
				return err
			}
			defer v.Close()
			return a.printStats(v.Stats())
		},
	}
}

type statsReport struct {
	KeyWidth       int    `yaml:"key_width"`
	ProbeWidth     int    `yaml:"probe_width"`
	Slots          int    `yaml:"slots"`
	Words          int    `yaml:"words"`
	Occurrences    uint64 `yaml:"occurrences"`
	ChainSlots     int    `yaml:"chain_slots"`
	MaxChainLength int    `yaml:"max_chain_length"`
}

func (a *app) printStats(s vocab.Stats) error {
	enc := yaml.NewEncoder(a.out)
	defer enc.Close()
	return enc.Encode(statsReport{
		KeyWidth:       s.KeyWidth,
		ProbeWidth:     s.ProbeWidth,
		Slots:          s.Capacity,
		Words:          s.Words,
		Occurrences:    s.Occurrences,
		ChainSlots:     s.ChainSlots,
		MaxChainLength: s.MaxChainLength,
	})
}

func (a *app) publishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish SNAPSHOT",
		Short: "Publish a snapshot to the configured blob store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts, err := a.options()
			if err != nil {
				return err
			}
			v, err := vocab.LoadVocabulary(args[0], opts...)
			if err != nil {
				return err
			}
			defer v.Close()

			store, closeStore, err := openStore(ctx, a.cfg.Store)
			if err != nil {
				return err
			}
			defer closeStore()

			manifest, err := vocab.Publish(ctx, store, v)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, manifest)
			return nil
		},
	}
}

func (a *app) fetchCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch the current vocabulary from the configured blob store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			opts, err := a.options()
			if err != nil {
				return err
			}

			store, closeStore, err := openStore(ctx, a.cfg.Store)
			if err != nil {
				return err
			}
			defer closeStore()

			v, err := vocab.Fetch(ctx, store, opts...)
			if err != nil {
				return err
			}
			defer v.Close()

			if err := v.Save(out); err != nil {
				return err
			}
			return a.printStats(v.Stats())
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "vocab.vwi", "Output snapshot file")
	return cmd
}

func applyIntFlag(cmd *cobra.Command, name string, dst *int) {
	if cmd.Flags().Changed(name) {
		*dst, _ = cmd.Flags().GetInt(name)
	}
}

func applyStringFlag(cmd *cobra.Command, name string, dst *string) {
	if cmd.Flags().Changed(name) {
		*dst, _ = cmd.Flags().GetString(name)
	}
}
