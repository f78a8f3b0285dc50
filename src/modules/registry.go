package modules

import (
	"context"
	"fmt"

	"github.com/orchestra-mcp/gateway/src/types"
	"github.com/rs/zerolog"
)

// Deps are the collaborators modules may use.
type Deps struct {
	BotName string
	Poster  Poster
	Lister  Lister
	Logger  zerolog.Logger
}

// Available lists the module names Build understands.
var Available = []string{"Echo", "Help"}

// Build instantiates the named modules in the given order. Unknown names
// are an error.
func Build(ctx context.Context, names []string, deps Deps) ([]types.Module, error) {
	out := make([]types.Module, 0, len(names))
	for _, name := range names {
		switch name {
		case "Echo":
			out = append(out, NewEcho(ctx, deps.Poster, deps.Logger))
		case "Help":
			out = append(out, NewHelp(ctx, deps.BotName, deps.Poster, deps.Lister, deps.Logger))
		default:
			return nil, fmt.Errorf("unknown module %q (available: %v)", name, Available)
		}
	}
	return out, nil
}
