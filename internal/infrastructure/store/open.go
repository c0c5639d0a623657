package store

import (
	"context"
	"fmt"
	"log"
)

const (
	DriverFile     = "file"
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverDynamo   = "dynamodb"
)

// Options selects and configures a KVStore backend
type Options struct {
	Driver      string
	Namespace   string
	DataDir     string
	DatabaseURL string
	RedisURL    string
	DynamoTable string
	AWSRegion   string
}

// Open connects the backend named by opts.Driver.
func Open(ctx context.Context, opts Options) (KVStore, error) {
	switch opts.Driver {
	case "", DriverFile:
		s, err := NewFileStore(opts.DataDir, opts.Namespace)
		if err != nil {
			return nil, err
		}
		log.Printf("[Storage] Using file storage at %s", s.Dir())
		return s, nil

	case DriverMemory:
		log.Println("[Storage] Using in-memory storage (state is lost on exit)")
		return NewMemoryStore(), nil

	case DriverPostgres:
		db, err := ConnectPostgres(opts.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		s := NewPostgresStore(db, opts.Namespace)
		if err := s.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
		log.Println("[Storage] Using PostgreSQL storage")
		return s, nil

	case DriverRedis:
		client, err := ConnectRedis(ctx, opts.RedisURL)
		if err != nil {
			return nil, err
		}
		log.Println("[Storage] Using Redis storage")
		return NewRedisStore(client, opts.Namespace), nil

	case DriverDynamo:
		if opts.DynamoTable == "" {
			return nil, fmt.Errorf("dynamodb storage requires a table name")
		}
		client, err := NewDynamoClient(ctx, opts.AWSRegion)
		if err != nil {
			return nil, err
		}
		log.Printf("[Storage] Using DynamoDB storage (table: %s)", opts.DynamoTable)
		return NewDynamoStore(client, opts.DynamoTable, opts.Namespace), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
}
