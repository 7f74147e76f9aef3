package store

// Nop is the store for environments without durable storage.
// Get always reports a miss and Set discards the value.
type Nop struct{}

var _ Store = Nop{}

func (Nop) Get(string, any) (bool, error) { return false, nil }
func (Nop) Set(string, any) error         { return nil }
func (Nop) Durable() bool                 { return false }
func (Nop) Close() error                  { return nil }
