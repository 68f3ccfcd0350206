package simnode

import (
	"errors"

	"github.com/b-harvest/node-harness/internal/fixtures"
	"github.com/b-harvest/node-harness/internal/lifecycle"
)

// ConfigInitializer builds the process config from start options.
type ConfigInitializer struct{}

var _ lifecycle.ConfigInitializer = ConfigInitializer{}

// Init requires a server and a network; the genesis block is optional.
func (ConfigInitializer) Init(opts fixtures.NodeOptions) (*lifecycle.ProcessConfig, error) {
	var errs []error
	if opts.Server == nil {
		errs = append(errs, errors.New("server options are required"))
	} else if opts.Server.Port < 1 || opts.Server.Port > 65535 {
		errs = append(errs, errors.New("server port must be between 1 and 65535"))
	}
	if opts.Network == nil {
		errs = append(errs, errors.New("network options are required"))
	} else if opts.Network.Nethash == "" {
		errs = append(errs, errors.New("network nethash is required"))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return &lifecycle.ProcessConfig{
		Server:       opts.Server,
		GenesisBlock: opts.GenesisBlock,
		Network:      opts.Network,
		Delegates:    opts.Delegates,
	}, nil
}
