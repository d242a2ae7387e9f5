package kernel

import "github.com/smoynes/sv32os/internal/log"

// Local aliases so LogValue implementations elsewhere in this package
// can build slog values without every file importing internal/log
// itself.
type Value = log.Value

var (
	Any        = log.Any
	GroupValue = log.GroupValue
)
