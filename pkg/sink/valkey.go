package sink

import (
	"context"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"ressample/pkg/models"
)

const defaultValkeyTimeout = 5 * time.Second

// Valkey appends every snapshot to a Valkey stream with XADD.
type Valkey struct {
	client  valkey.Client
	stream  string
	timeout time.Duration
}

// OpenValkey connects to addr and verifies the connection with PING.
func OpenValkey(addr, password, stream string) (*Valkey, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
		Password:    password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create valkey client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultValkeyTimeout)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping valkey: %w", err)
	}

	return NewValkey(client, stream), nil
}

// NewValkey wraps an existing client.
func NewValkey(client valkey.Client, stream string) *Valkey {
	return &Valkey{client: client, stream: stream, timeout: defaultValkeyTimeout}
}

// Write adds one stream entry whose fields are the snapshot columns.
func (v *Valkey) Write(snap models.Snapshot) error {
	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()

	entry := v.client.B().Xadd().Key(v.stream).Id("*").FieldValue()
	for _, pair := range streamFields(snap) {
		entry = entry.FieldValue(pair[0], pair[1])
	}

	if err := v.client.Do(ctx, entry.Build()).Error(); err != nil {
		return fmt.Errorf("xadd %s: %w", v.stream, err)
	}
	return nil
}

// Flush is a no-op; XADD is acknowledged before Write returns.
func (v *Valkey) Flush() error {
	return nil
}

// Close shuts the client down.
func (v *Valkey) Close() error {
	v.client.Close()
	return nil
}

// streamFields pairs every column name with its encoded value.
func streamFields(snap models.Snapshot) [][2]string {
	header := models.Header()
	record := snap.Record()

	fields := make([][2]string, len(header))
	for i := range header {
		fields[i] = [2]string{header[i], record[i]}
	}
	return fields
}
