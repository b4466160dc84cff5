package mongo

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"

	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/v2/mongo/otelmongo"
	"go.uber.org/zap"
)

// Mongo is the public interface for repository access.
type Mongo interface {
	Collection(name string) Collection
}

// Admin is used by infrastructure components (transactions, index setup).
type Admin interface {
	Mongo
	Database() *mongodriver.Database
	StartSession(ctx context.Context) (Session, error)
}

type store struct {
	client *mongodriver.Client
	db     *mongodriver.Database
	conf   Config
	log    *zap.Logger
}

// dial builds the client. mongodriver.Connect does not reach the server;
// ping does.
func dial(conf Config, appName string, log *zap.Logger) (*store, error) {
	if err := validateConfig(conf); err != nil {
		return nil, err
	}

	opts := options.Client().
		ApplyURI(buildURI(conf)).
		SetAppName(appName).
		SetMaxPoolSize(conf.MaxPoolSize).
		SetMinPoolSize(conf.MinPoolSize).
		SetMaxConnIdleTime(conf.MaxConnIdleTime).
		SetConnectTimeout(conf.ConnectTimeout).
		SetServerSelectionTimeout(conf.ServerSelectTimeout).
		SetMonitor(otelmongo.NewMonitor())

	client, err := mongodriver.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("mongo client: %w", err)
	}
	return &store{client: client, db: client.Database(conf.Database), conf: conf, log: log}, nil
}

// NewFromClient wraps an already connected client. Integration tests use it
// with a testcontainers replica set.
func NewFromClient(client *mongodriver.Client, database string, conf Config, log *zap.Logger) Admin {
	applyDefaults(&conf)
	conf.Database = database
	return &store{client: client, db: client.Database(database), conf: conf, log: log}
}

func (s *store) ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.conf.ConnectTimeout)
	defer cancel()
	if err := s.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("mongo ping %s: %w", s.conf.Database, err)
	}
	s.log.Info("mongo reachable",
		zap.String("database", s.conf.Database),
		zap.Uint64("maxPool", s.conf.MaxPoolSize),
		zap.Duration("queryTimeout", s.conf.QueryTimeout),
	)
	return nil
}

func (s *store) close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.conf.ConnectTimeout)
	defer cancel()
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("mongo disconnect: %w", err)
	}
	return nil
}

func (s *store) StartSession(context.Context) (Session, error) {
	sess, err := s.client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("mongo session: %w", err)
	}
	return sess, nil
}

// buildURI assembles a mongodb:// URI from the discrete fields unless a full
// connection string is configured.
func buildURI(conf Config) string {
	if conf.ConnectionString != "" {
		return conf.ConnectionString
	}

	u := url.URL{
		Scheme: "mongodb",
		Host:   net.JoinHostPort(conf.Host, strconv.Itoa(conf.Port)),
		Path:   "/" + conf.Database,
	}
	if conf.Username != "" {
		u.User = url.UserPassword(conf.Username, conf.Password)
	}
	q := url.Values{}
	if conf.ReplicaSet != "" {
		q.Set("replicaSet", conf.ReplicaSet)
	}
	if conf.DirectConnection {
		q.Set("directConnection", "true")
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Collection returns a handle whose calls are bounded by the query timeout.
func (s *store) Collection(name string) Collection {
	return newTimeoutCollection(s.db.Collection(name), s.conf.QueryTimeout)
}

func (s *store) Database() *mongodriver.Database { return s.db }
