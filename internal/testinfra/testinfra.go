package testinfra

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var Pool *pgxpool.Pool
var AwsCfg aws.Config

func init() {
	Pool = SetupDB()
	AwsCfg = SetupAWS()
}

func SetupDB() *pgxpool.Pool {

	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:17.2-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_PASSWORD": "password",
			"POSTGRES_USER":     "postgres",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections"),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	if err != nil {
		log.Panicf("start postgres: %v", err)
	}

	pgHostPort, err := pgC.Endpoint(ctx, "")
	if err != nil {
		log.Panicf("postgres endpoint: %v", err)
	}
	pgDSN := fmt.Sprintf("postgres://postgres:password@%s/testdb?sslmode=disable", pgHostPort)

	pool, err := pgxpool.New(ctx, pgDSN)
	if err != nil {
		log.Panicf("pgxpool connect: %v", err)
	}

	ok := false
	for i := 0; i < 20; i++ {
		slog.Info("ping db", "try", i)
		ctxPing, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
		err = pool.Ping(ctxPing)
		cancel()
		if err == nil {
			ok = true
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if !ok {
		log.Panic("db did not respond after 20 attempts")
	}

	_, err = pool.Exec(ctx, `
		CREATE SCHEMA IF NOT EXISTS onboarding;
		CREATE TABLE IF NOT EXISTS onboarding.submissions (
		  id UUID PRIMARY KEY,
		  status VARCHAR(40) NOT NULL,
		  request_type VARCHAR(40) NOT NULL,
		  request_body JSONB,
		  national_id VARCHAR(20) NOT NULL DEFAULT '',
		  messages TEXT NOT NULL DEFAULT '',
		  data_type VARCHAR(60) NOT NULL DEFAULT '',
		  data JSONB,
		  created_by UUID NOT NULL,
		  created_at TIMESTAMPTZ NOT NULL,
		  updated_at TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS onboarding.outbox (
		  id BIGSERIAL PRIMARY KEY,
		  event VARCHAR(60) NOT NULL,
		  status SMALLINT NOT NULL DEFAULT 0,
		  retries INT NOT NULL DEFAULT 0,
		  payload JSONB,
		  created_at TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS onboarding.counters (
		  "type" VARCHAR(40) PRIMARY KEY,
		  value BIGINT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS onboarding.mails (
		  id BIGSERIAL PRIMARY KEY,
		  "type" VARCHAR(40) NOT NULL,
		  recipients TEXT NOT NULL,
		  subject TEXT NOT NULL,
		  content TEXT NOT NULL,
		  sent_at TIMESTAMPTZ NOT NULL
		);
		INSERT INTO onboarding.counters("type", value) VALUES ('account_number', 10000)
		ON CONFLICT ("type") DO NOTHING;
	`)
	if err != nil {
		log.Panicf("create tables: %v", err)
	}

	return pool
}

func SetupAWS() aws.Config {
	slog.Info("SETUP AWS CONFIG")
	awsCfg, err := awsConfig.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Panic("can't load aws config", err)
	}

	return awsCfg
}
