package node

import (
	"context"
	"fmt"

	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/virtue186/sequencer/api"
	"github.com/virtue186/sequencer/metrics"
	"github.com/virtue186/sequencer/store"
)

// Node 组装存储与 RPC 服务
type Node struct {
	logger    log.Logger
	store     *store.Store
	apiServer *api.APIServer
}

type NodeOpts struct {
	Logger     log.Logger       // 可选
	DBPath     string           // 必需，内存引擎除外
	Engine     store.EngineType // 必需
	ListenAddr string           // 必需
	// 可选，为空时不注册指标也不暴露 /metrics
	Registry *prometheus.Registry
}

func NewNode(opts NodeOpts) (*Node, error) {
	if opts.Logger == nil {
		opts.Logger = log.NewNopLogger()
	}

	// 1. 指标
	var storeMetrics *metrics.StoreMetrics
	var gatherer prometheus.Gatherer
	if opts.Registry != nil {
		opts.Registry.MustRegister(collectors.NewGoCollector())
		storeMetrics = metrics.NewStoreMetrics(opts.Registry)
		gatherer = opts.Registry
	}

	// 2. 打开存储
	st, err := store.New(opts.DBPath, opts.Engine, store.Opts{
		Logger:  log.With(opts.Logger, "module", "store"),
		Metrics: storeMetrics,
	})
	if err != nil {
		return nil, err
	}

	// 3. RPC 服务只通过 Store 读取数据
	apiServer, err := api.NewAPIServer(api.ServerOpts{
		ListenAddr: opts.ListenAddr,
		Store:      st,
		Logger:     log.With(opts.Logger, "module", "api"),
		Gatherer:   gatherer,
	})
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("could not create api server: %w", err)
	}

	return &Node{
		logger:    opts.Logger,
		store:     st,
		apiServer: apiServer,
	}, nil
}

// Store returns the node's storage facade.
func (n *Node) Store() *store.Store {
	return n.store
}

// Run blocks until ctx is cancelled or the RPC server fails. The store is
// closed before Run returns.
func (n *Node) Run(ctx context.Context) error {
	n.logger.Log("msg", "starting node...", "engine", n.store.EngineType())

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return n.apiServer.Run(ctx)
	})

	err := g.Wait()
	if cerr := n.store.Close(); cerr != nil && err == nil {
		err = cerr
	}
	n.logger.Log("msg", "node stopped")
	return err
}
