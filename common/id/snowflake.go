package id

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
)

// Init sets up the process-wide snowflake node. Each running binary needs its own
// node ID (0-1023) so IDs minted concurrently by the server and the worker never collide.
// Only the first call has effect.
func Init(nodeID int64) error {
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})
	if err != nil {
		return fmt.Errorf("initializing snowflake node %d: %w", nodeID, err)
	}
	return nil
}

// New returns a time-ordered int64 ID for threads, messages, attachments, cases and audits.
// Init must have been called.
func New() int64 {
	return node.Generate().Int64()
}

// Generator mints IDs. Components take one so tests can supply a deterministic sequence.
type Generator func() int64

// Default is the snowflake-backed generator.
var Default Generator = New
