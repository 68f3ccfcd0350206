package fixtures

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/b-harvest/node-harness/internal/helpers"
)

//go:embed testnet/*.json
var embedded embed.FS

// DefaultNetwork is the fixture set used when nothing else is configured.
const DefaultNetwork = "testnet"

// Embedded returns the names of the fixture sets compiled into the binary.
func Embedded() []string {
	entries, err := embedded.ReadDir(".")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names
}

// LoadEmbedded loads a fixture set compiled into the binary.
func LoadEmbedded(network string) (*Set, error) {
	if network == "" {
		network = DefaultNetwork
	}
	if _, err := fs.Stat(embedded, network); err != nil {
		return nil, fmt.Errorf("no embedded fixtures for network %q (available: %s)",
			network, strings.Join(Embedded(), ", "))
	}

	read := func(name string, v any) error {
		p := path.Join(network, name)
		data, err := embedded.ReadFile(p)
		if err != nil {
			return &helpers.JSONLoadError{Path: p, Reason: helpers.ReasonNotFound}
		}
		if err := json.Unmarshal(data, v); err != nil {
			return &helpers.JSONLoadError{Path: p, Reason: helpers.ReasonParse, Wrapped: err}
		}
		return nil
	}

	set := &Set{
		Network:           &Network{},
		Server:            &Server{},
		GenesisBlock:      &GenesisBlock{},
		GenesisPassphrase: &Passphrase{},
		Forger:            &ForgerDelegates{},
	}
	for name, v := range map[string]any{
		NetworkFile:              set.Network,
		ServerFile:               set.Server,
		GenesisBlockFile:         set.GenesisBlock,
		DelegatesPassphrasesFile: &set.Delegates,
		GenesisPassphraseFile:    set.GenesisPassphrase,
		DelegateFile:             set.Forger,
	} {
		if err := read(name, v); err != nil {
			return nil, err
		}
	}

	return set, set.Validate()
}

// Load loads a fixture set from a directory on disk. The forger delegate file
// and the genesis passphrase are optional; the other files are required.
func Load(dir string) (*Set, error) {
	var err error
	set := &Set{}

	if set.Network, err = helpers.LoadJSON[Network](filepath.Join(dir, NetworkFile)); err != nil {
		return nil, err
	}
	if set.Server, err = helpers.LoadJSON[Server](filepath.Join(dir, ServerFile)); err != nil {
		return nil, err
	}
	if set.GenesisBlock, err = helpers.LoadJSON[GenesisBlock](filepath.Join(dir, GenesisBlockFile)); err != nil {
		return nil, err
	}

	delegates, err := helpers.LoadJSON[[]Passphrase](filepath.Join(dir, DelegatesPassphrasesFile))
	if err != nil {
		return nil, err
	}
	set.Delegates = *delegates

	if set.GenesisPassphrase, err = loadOptional[Passphrase](filepath.Join(dir, GenesisPassphraseFile)); err != nil {
		return nil, err
	}
	if set.Forger, err = loadOptional[ForgerDelegates](filepath.Join(dir, DelegateFile)); err != nil {
		return nil, err
	}

	return set, set.Validate()
}

// Resolve loads fixtures from dir when it is set, otherwise the embedded set
// for network.
func Resolve(dir, network string) (*Set, error) {
	if dir != "" {
		return Load(dir)
	}
	return LoadEmbedded(network)
}

// Export writes the set to dir in the layout Load reads, so an embedded set
// can be copied out and edited.
func Export(set *Set, dir string) error {
	if err := set.Validate(); err != nil {
		return err
	}
	files := map[string]any{
		NetworkFile:              set.Network,
		ServerFile:               set.Server,
		GenesisBlockFile:         set.GenesisBlock,
		DelegatesPassphrasesFile: set.Delegates,
	}
	if set.GenesisPassphrase != nil {
		files[GenesisPassphraseFile] = set.GenesisPassphrase
	}
	if set.Forger != nil {
		files[DelegateFile] = set.Forger
	}
	for name, v := range files {
		if err := helpers.SaveJSON(filepath.Join(dir, name), v, 0o600); err != nil {
			return err
		}
	}
	return nil
}

func loadOptional[T any](p string) (*T, error) {
	if !helpers.FileExists(p) {
		return new(T), nil
	}
	return helpers.LoadJSON[T](p)
}

// Validate checks the fields the harness relies on.
func (s *Set) Validate() error {
	var errs []error
	if s.Network == nil || s.Network.Nethash == "" {
		errs = append(errs, errors.New("network.nethash is required"))
	}
	if s.Network != nil && s.Network.Name == "" {
		errs = append(errs, errors.New("network.name is required"))
	}
	if s.Server == nil || s.Server.Port < 1 || s.Server.Port > 65535 {
		errs = append(errs, errors.New("server.port must be between 1 and 65535"))
	}
	if s.Server != nil && s.Server.Version == "" {
		errs = append(errs, errors.New("server.version is required"))
	}
	if s.GenesisBlock == nil || s.GenesisBlock.ID == "" {
		errs = append(errs, errors.New("genesisBlock.id is required"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid fixtures: %w", errors.Join(errs...))
	}
	return nil
}
