package container

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"dcareport/internal/application/port"
	"dcareport/internal/infrastructure/config"
	infracontainer "dcareport/internal/infrastructure/container"
)

type stubOrders struct{}

func (stubOrders) AllOrders(ctx context.Context, symbol string, startTime int64) ([]port.Order, error) {
	return []port.Order{
		{OrderID: 1, Symbol: symbol, Status: "FILLED", Side: "BUY", Price: "100", ExecutedQty: "1", CummulativeQuoteQty: "100", Time: startTime},
		{OrderID: 2, Symbol: symbol, Status: "CANCELED", Side: "BUY", Price: "100", ExecutedQty: "0", CummulativeQuoteQty: "0", Time: startTime},
	}, nil
}

func TestContainerWithSQLite(t *testing.T) {
	dbPath := "test_container.db"
	defer os.Remove(dbPath)

	cfg := &config.Config{}
	cfg.History.Backend = config.BackendSQLite
	cfg.History.File = filepath.Join(t.TempDir(), "orderHistory.csv")
	cfg.Storage.SQLite.Enabled = true
	cfg.Storage.SQLite.Path = dbPath

	c, err := infracontainer.New(cfg)
	if err != nil {
		t.Fatalf("failed to create container: %v", err)
	}
	defer c.Close()

	if c.SQLiteRepo() == nil {
		t.Errorf("expected SQLiteRepo, got nil")
	}
	if c.History() == nil {
		t.Errorf("expected history repository, got nil")
	}
	if c.Publisher() != nil {
		t.Errorf("expected no publisher without redis")
	}
}

func TestContainerServiceWorkflow(t *testing.T) {
	dbPath := "test_workflow.db"
	defer os.Remove(dbPath)
	csvPath := filepath.Join(t.TempDir(), "orderHistory.csv")

	cfg := &config.Config{}
	cfg.History.Backend = config.BackendCSV
	cfg.History.File = csvPath
	cfg.Storage.SQLite.Enabled = true
	cfg.Storage.SQLite.Path = dbPath

	infra, err := infracontainer.New(cfg)
	if err != nil {
		t.Fatalf("failed to create container: %v", err)
	}
	defer infra.Close()

	ctx := context.Background()
	app := New(infra.History(), stubOrders{})

	fills, err := app.HistoryFetcher().FetchAll(ctx, []string{"BTCUSDT", "ETHUSDT"}, 1000)
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if err := app.History().AppendFills(ctx, fills); err != nil {
		t.Fatalf("AppendFills failed: %v", err)
	}

	rows, err := app.History().LoadHistory(ctx)
	if err != nil {
		t.Fatalf("LoadHistory failed: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("expected 2 rows in csv, got %d", len(rows))
	}

	// sqlite is a mirror when the csv file is primary
	n, err := infra.SQLiteRepo().CountFills(ctx)
	if err != nil {
		t.Fatalf("CountFills failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 mirrored rows, got %d", n)
	}
}
