package options

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// StoreOptions selects the conversation store and its retention policy.
type StoreOptions struct {
	Type       string `json:"type"        mapstructure:"type"`
	BoltDBPath string `json:"boltdb-path" mapstructure:"boltdb-path"`
	SQLitePath string `json:"sqlite-path" mapstructure:"sqlite-path"`

	IdleTTL          time.Duration `json:"idle-ttl"          mapstructure:"idle-ttl"`
	MaxConversations int           `json:"max-conversations" mapstructure:"max-conversations"`
	SweepInterval    time.Duration `json:"sweep-interval"    mapstructure:"sweep-interval"`
}

func NewStoreOptions() *StoreOptions {
	return &StoreOptions{
		Type:       "boltdb",
		BoltDBPath: "data/oracle.db",
		SQLitePath: "data/oracle.sqlite",
	}
}

func (o *StoreOptions) Validate() []error {
	var errs []error
	switch o.Type {
	case "inmemory", "boltdb", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("--store.type must be one of inmemory, boltdb or sqlite, got %q", o.Type))
	}
	if o.Type == "boltdb" && o.BoltDBPath == "" {
		errs = append(errs, fmt.Errorf("--store.boltdb-path is required for the boltdb store"))
	}
	if o.Type == "sqlite" && o.SQLitePath == "" {
		errs = append(errs, fmt.Errorf("--store.sqlite-path is required for the sqlite store"))
	}
	if o.IdleTTL < 0 || o.SweepInterval < 0 || o.MaxConversations < 0 {
		errs = append(errs, fmt.Errorf("--store retention settings must not be negative"))
	}
	if o.SweepInterval == 0 && (o.IdleTTL > 0 || o.MaxConversations > 0) {
		errs = append(errs, fmt.Errorf("--store.sweep-interval is required when a retention limit is set"))
	}
	return errs
}

func (o *StoreOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Type, "store.type", o.Type, "Conversation store: inmemory, boltdb or sqlite.")
	fs.StringVar(&o.BoltDBPath, "store.boltdb-path", o.BoltDBPath, "BoltDB file path.")
	fs.StringVar(&o.SQLitePath, "store.sqlite-path", o.SQLitePath, "SQLite database path.")
	fs.DurationVar(&o.IdleTTL, "store.idle-ttl", o.IdleTTL, "Delete threads idle for longer than this. 0 keeps them forever.")
	fs.IntVar(&o.MaxConversations, "store.max-conversations", o.MaxConversations, ""+
		"Keep at most this many threads, dropping the least recently updated. 0 means unlimited.")
	fs.DurationVar(&o.SweepInterval, "store.sweep-interval", o.SweepInterval, "How often retention limits are applied. 0 disables sweeping.")
}
