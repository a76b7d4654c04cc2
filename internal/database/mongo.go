// Package database opens the store connections selected by configuration.
package database

import (
	"context"
	"fmt"
	"net"
	"time"

	"storeapi/internal/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ipv4Dialer forces TCP connections to the store over IPv4.
type ipv4Dialer struct {
	net.Dialer
}

func (d *ipv4Dialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	if network == "tcp" {
		network = "tcp4"
	}
	return d.Dialer.DialContext(ctx, network, address)
}

// MongoClientOptions translates cfg into driver options.
func MongoClientOptions(cfg config.Mongo) (*options.ClientOptions, error) {
	mode, err := readpref.ModeFromString(cfg.ReadPreference)
	if err != nil {
		return nil, fmt.Errorf("mongo: read preference %q: %w", cfg.ReadPreference, err)
	}
	rp, err := readpref.New(mode)
	if err != nil {
		return nil, fmt.Errorf("mongo: read preference %q: %w", cfg.ReadPreference, err)
	}

	return options.Client().ApplyURI(cfg.URI).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetServerSelectionTimeout(cfg.ServerSelectionTimeout).
		SetSocketTimeout(cfg.SocketTimeout).
		SetReadPreference(rp).
		SetDialer(&ipv4Dialer{Dialer: net.Dialer{Timeout: 30 * time.Second}}), nil
}

// ConnectMongo connects to the document store and verifies the connection
// with a ping. The caller owns the client and must Disconnect it.
func ConnectMongo(ctx context.Context, cfg config.Mongo) (*mongo.Client, error) {
	opts, err := MongoClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ServerSelectionTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.PrimaryPreferred()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}
	return client, nil
}
