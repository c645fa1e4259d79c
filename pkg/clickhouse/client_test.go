package clickhouse

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDSN(t *testing.T) {
	dsn := BuildDSN(ClientConfig{
		Host:        "ch",
		Port:        9000,
		Database:    "market",
		User:        "u",
		Password:    "p",
		DialTimeout: 5 * time.Second,
		MaxExecTime: 30 * time.Second,
	})
	assert.Equal(t, "clickhouse://u:p@ch:9000/market?dial_timeout=5s&max_execution_time=30", dsn)

	dsn = BuildDSN(ClientConfig{Host: "ch", Port: 8123, Database: "market", UseHTTP: true})
	assert.Equal(t, "http://:@ch:8123/market", dsn)
}

func TestNewClientRequiresHost(t *testing.T) {
	_, err := NewClient()
	assert.Error(t, err)
}

func TestInitSchemaRunsStatementsInOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE DATABASE").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE").WillReturnResult(sqlmock.NewResult(0, 0))

	c := NewFromDB(db)
	require.NoError(t, c.InitSchema(context.Background(), []string{
		"CREATE DATABASE IF NOT EXISTS market",
		"CREATE TABLE IF NOT EXISTS market.candles_1d (x Int32) ENGINE = Memory",
	}))
	assert.NoError(t, mock.ExpectationsWereMet())
}
