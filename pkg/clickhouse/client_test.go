package clickhouse

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDSN(t *testing.T) {
	got := buildDSN(ClientConfig{
		Host:        "ch",
		Port:        9000,
		Database:    "options",
		User:        "default",
		Password:    "p@ss",
		DialTimeout: 5 * time.Second,
		MaxExecTime: 90 * time.Second,
	})
	assert.Equal(t, "clickhouse://default:p%40ss@ch:9000/options?dial_timeout=5s&max_execution_time=90", got)
}

func TestBuildDSNHTTP(t *testing.T) {
	got := buildDSN(ClientConfig{Host: "ch", Port: 8123, Database: "options", User: "u", UseHTTP: true})
	assert.Equal(t, "http://u:@ch:8123/options", got)
}

func TestNewClientRequiresHost(t *testing.T) {
	_, err := NewClient(WithAddr("", 0))
	assert.Error(t, err)
}

func TestInitSchemaStopsAtFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	c := NewFromDB(db, "options")

	mock.ExpectExec("CREATE DATABASE").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("syntax"))

	err = c.InitSchema(context.Background(), []string{
		"CREATE DATABASE IF NOT EXISTS options",
		"  ",
		"CREATE TABLE broken",
		"CREATE TABLE never_run",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "statement 2")
	assert.Equal(t, "options", c.Database())
	require.NoError(t, mock.ExpectationsWereMet())
}
