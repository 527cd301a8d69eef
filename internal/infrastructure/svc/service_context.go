package svc

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	appcontainer "dcareport/internal/application/container"
	"dcareport/internal/application/port"
	"dcareport/internal/application/usecase/dca"
	"dcareport/internal/infrastructure/config"
	"dcareport/internal/infrastructure/container"
	"dcareport/internal/infrastructure/exchange"
	"dcareport/internal/infrastructure/exchange/binance"
	"dcareport/internal/interfaces/console"
)

// Options 运行期开关（来自命令行）
type Options struct {
	DryRun bool
	Color  bool
}

type ServiceContext struct {
	Ctx    context.Context
	Config *config.Config

	// 基础设施层
	infra   *container.Container
	binance *binance.SpotManager

	// 应用层
	app *appcontainer.Container

	// 输出端口
	Sink port.Sink

	symbols []string
	opts    Options
}

// New 创建并初始化 ServiceContext
// 所有依赖初始化都在这里完成
func New(ctx context.Context, cfg *config.Config, opts Options) (*ServiceContext, error) {
	symbols := exchange.BuildSymbols(cfg.Portfolio.Cryptos, cfg.Portfolio.Quotes)
	if len(symbols) == 0 {
		return nil, ErrNoSymbols
	}

	infra, err := container.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("storage initialization failed: %w", err)
	}
	if infra.History() == nil {
		_ = infra.Close()
		return nil, ErrNoHistoryStore
	}

	bin := cfg.Exchange.Binance
	spot := binance.NewSpotManager(bin.APIKey, bin.APISecret, binance.Options{
		BaseURL:        bin.BaseURL,
		RecvWindow:     bin.RecvWindow,
		Timeout:        cfg.Timeout(),
		RequestsPerSec: bin.RequestsPerSec,
		PageSize:       bin.PageSize,
	})

	sc := &ServiceContext{
		Ctx:     ctx,
		Config:  cfg,
		infra:   infra,
		binance: spot,
		app:     appcontainer.New(infra.History(), spot.Orders),
		Sink:    console.NewSink(),
		symbols: symbols,
		opts:    opts,
	}

	log.Info().
		Strs("symbols", symbols).
		Str("base_url", bin.BaseURL).
		Msg("✓ All components initialized")
	return sc, nil
}

// Symbols 返回需要拉取的交易对（币种 × 计价币）
func (sc *ServiceContext) Symbols() []string {
	return sc.symbols
}

// BuildDCAServiceDeps 构建 DCA Service 所需的所有依赖
func (sc *ServiceContext) BuildDCAServiceDeps() dca.ServiceDeps {
	return dca.ServiceDeps{
		Symbols:   sc.symbols,
		Assets:    sc.Config.Portfolio.Cryptos,
		StartTime: sc.Config.StartTime(),
		Fetcher:   sc.app.HistoryFetcher(),
		History:   sc.app.History(),
		Publisher: sc.infra.Publisher(),
		Sink:      sc.Sink,
		Formatter: dca.NewFormatter(sc.opts.Color),
		DryRun:    sc.opts.DryRun,
	}
}

// Close 关闭 ServiceContext 中的所有资源
// 先关闭应用层，再按后进先出顺序关闭存储连接
func (sc *ServiceContext) Close() error {
	if err := sc.app.Close(); err != nil {
		log.Error().Err(err).Msg("error closing history")
	}
	return sc.infra.Close()
}
