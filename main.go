package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/virtue186/sequencer/node"
	"github.com/virtue186/sequencer/store"
)

const (
	defaultPort   = 1234
	defaultDBPath = "store"
)

var rootCmd = &cobra.Command{
	Use:   "sequencer",
	Short: "Starknet sequencer node",
	Long: `sequencer opens the node's storage and serves the Starknet
JSON-RPC read API on top of it.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().Int("port", defaultPort, "port of the JSON-RPC server")
	rootCmd.Flags().String("db-path", defaultDBPath, "name of the store, opened as db_<name> plus the engine suffix")
	rootCmd.Flags().String("engine", store.EngineLevelDB.String(), "storage engine: pebble, leveldb or memory")
	rootCmd.Flags().String("log-level", "info", "log level: debug, info, warn or error")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	port, _ := cmd.Flags().GetInt("port")
	dbPath, _ := cmd.Flags().GetString("db-path")
	engineName, _ := cmd.Flags().GetString("engine")
	logLevel, _ := cmd.Flags().GetString("log-level")

	engine, err := store.ParseEngineType(engineName)
	if err != nil {
		return err
	}
	logger, err := newLogger(logLevel)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	n, err := node.NewNode(node.NodeOpts{
		Logger:     logger,
		DBPath:     fmt.Sprintf("db_%s", dbPath),
		Engine:     engine,
		ListenAddr: fmt.Sprintf(":%d", port),
		Registry:   prometheus.NewRegistry(),
	})
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"engine": engine,
		"port":   port,
	}).Info("sequencer started")

	if err := n.Run(ctx); err != nil {
		return err
	}
	logrus.Info("sequencer stopped")
	return nil
}

// newLogger 创建注入各模块的 go-kit 日志，进程级输出仍走 logrus
func newLogger(lvl string) (log.Logger, error) {
	var opt level.Option
	switch lvl {
	case "debug":
		opt = level.AllowDebug()
	case "info":
		opt = level.AllowInfo()
	case "warn":
		opt = level.AllowWarn()
	case "error":
		opt = level.AllowError()
	default:
		return nil, fmt.Errorf("unknown log level %q", lvl)
	}
	if parsed, err := logrus.ParseLevel(lvl); err == nil {
		logrus.SetLevel(parsed)
	}

	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = level.NewFilter(logger, opt)
	logger = log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)
	return logger, nil
}
