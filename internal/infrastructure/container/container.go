package container

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"dcareport/internal/application/port"
	"dcareport/internal/infrastructure/config"
	compositerepo "dcareport/internal/infrastructure/storage/composite"
	csvrepo "dcareport/internal/infrastructure/storage/csvfile"
	postgresrepo "dcareport/internal/infrastructure/storage/postgres"
	redisrepo "dcareport/internal/infrastructure/storage/redis"
	sqliterepo "dcareport/internal/infrastructure/storage/sqlite"
)

// Container 包含所有存储依赖
type Container struct {
	cfg          *config.Config
	redisClient  *redis.Client
	csvRepo      *csvrepo.Repo
	sqliteRepo   *sqliterepo.Repo
	postgresRepo *postgresrepo.Repo
	redisRepo    *redisrepo.Repo
	history      port.HistoryRepository
	closeOnce    sync.Once
	closerChain  []func() error
}

// New 创建新的容器实例
func New(cfg *config.Config) (*Container, error) {
	c := &Container{
		cfg:         cfg,
		closerChain: make([]func() error, 0),
	}

	if err := c.initStorage(); err != nil {
		// 清理已初始化的资源
		_ = c.Close()
		return nil, err
	}

	return c, nil
}

// initStorage 初始化存储层（CSV、SQLite、Postgres、Redis）
func (c *Container) initStorage() error {
	repo, err := csvrepo.New(c.cfg.History.File)
	if err != nil {
		return fmt.Errorf("csv init failed: %w", err)
	}
	c.csvRepo = repo

	// SQLite
	if c.cfg.Storage.SQLite.Enabled {
		if err := c.initSQLite(); err != nil {
			return fmt.Errorf("sqlite init failed: %w", err)
		}
	}

	// Postgres
	if c.cfg.Storage.Postgres.Enabled {
		if err := c.initPostgres(); err != nil {
			return fmt.Errorf("postgres init failed: %w", err)
		}
	}

	// Redis
	if c.cfg.Storage.Redis.Enabled {
		if err := c.initRedis(); err != nil {
			return fmt.Errorf("redis init failed: %w", err)
		}
	}

	return c.initHistory()
}

// initHistory picks the primary history store by history.backend; every other
// enabled store becomes a mirror.
func (c *Container) initHistory() error {
	stores := map[string]port.HistoryRepository{
		config.BackendCSV: c.csvRepo,
	}
	if c.sqliteRepo != nil {
		stores[config.BackendSQLite] = c.sqliteRepo
	}
	if c.postgresRepo != nil {
		stores[config.BackendPostgres] = c.postgresRepo
	}

	backend := c.cfg.History.Backend
	if backend == "" {
		backend = config.BackendCSV
	}
	primary, ok := stores[backend]
	if !ok {
		return fmt.Errorf("history backend %q not initialized", backend)
	}

	var mirrors []port.HistoryRepository
	for _, name := range []string{config.BackendCSV, config.BackendSQLite, config.BackendPostgres} {
		if s, ok := stores[name]; ok && name != backend && (name != config.BackendCSV || c.cfg.History.Mirror) {
			mirrors = append(mirrors, s)
		}
	}

	repo, err := compositerepo.New(primary, mirrors...)
	if err != nil {
		return err
	}
	c.history = repo

	log.Info().
		Str("backend", backend).
		Int("mirrors", len(mirrors)).
		Msg("history store ready")
	return nil
}

// initRedis 初始化 Redis 连接
func (c *Container) initRedis() error {
	rdb := redis.NewClient(&redis.Options{
		Addr:     c.cfg.Storage.Redis.Addr,
		Password: c.cfg.Storage.Redis.Password,
		DB:       c.cfg.Storage.Redis.DB,
	})

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return fmt.Errorf("redis ping failed: %w", err)
	}

	c.redisClient = rdb
	ttl := time.Duration(c.cfg.Storage.Redis.TTLSeconds) * time.Second

	c.redisRepo = redisrepo.New(
		rdb,
		c.cfg.Storage.Redis.Prefix,
		ttl,
		c.cfg.Storage.Redis.ReportStream,
		c.cfg.Storage.Redis.ReportChannel,
	)

	// 注册关闭回调
	c.closerChain = append(c.closerChain, func() error {
		log.Debug().Msg("closing redis connection")
		return rdb.Close()
	})

	log.Info().
		Str("addr", c.cfg.Storage.Redis.Addr).
		Int("db", c.cfg.Storage.Redis.DB).
		Msg("redis initialized")

	return nil
}

// initSQLite 初始化 SQLite 数据库
func (c *Container) initSQLite() error {
	repo, err := sqliterepo.New(c.cfg.Storage.SQLite.Path)
	if err != nil {
		return err
	}

	c.sqliteRepo = repo

	// 注册关闭回调
	c.closerChain = append(c.closerChain, func() error {
		log.Debug().Msg("closing sqlite connection")
		return repo.Close()
	})

	log.Info().
		Str("path", c.cfg.Storage.SQLite.Path).
		Msg("sqlite initialized")

	return nil
}

// initPostgres 初始化 Postgres 连接
func (c *Container) initPostgres() error {
	repo, err := postgresrepo.New(c.cfg.Storage.Postgres.DSN)
	if err != nil {
		return err
	}

	c.postgresRepo = repo

	c.closerChain = append(c.closerChain, func() error {
		log.Debug().Msg("closing postgres connection")
		return repo.Close()
	})

	log.Info().Msg("postgres initialized")
	return nil
}

// Config 获取配置
func (c *Container) Config() *config.Config {
	return c.cfg
}

// History 获取成交历史仓储（主存储 + 镜像）
func (c *Container) History() port.HistoryRepository {
	return c.history
}

// Publisher 获取报告发布器；未启用 Redis 时返回 nil
func (c *Container) Publisher() port.ReportPublisher {
	if c.redisRepo == nil {
		return nil
	}
	return c.redisRepo
}

// CSVRepo 获取 CSV 仓储
func (c *Container) CSVRepo() *csvrepo.Repo {
	return c.csvRepo
}

// SQLiteRepo 获取 SQLite 仓储
func (c *Container) SQLiteRepo() *sqliterepo.Repo {
	return c.sqliteRepo
}

// Close 关闭所有资源（按后进先出顺序）
func (c *Container) Close() error {
	var err error
	c.closeOnce.Do(func() {
		for i := len(c.closerChain) - 1; i >= 0; i-- {
			if e := c.closerChain[i](); e != nil {
				log.Error().Err(e).Msg("error closing resource")
				if err == nil {
					err = e
				}
			}
		}
		log.Debug().Msg("container closed")
	})
	return err
}
