// Package fixtures loads the static node configuration a test run starts from:
// network definition, server definition, genesis block and delegate secrets.
package fixtures

import (
	"encoding/json"
	"fmt"
)

// File names inside a fixture directory.
const (
	NetworkFile              = "network.json"
	ServerFile               = "server.json"
	GenesisBlockFile         = "genesisBlock.json"
	DelegatesPassphrasesFile = "delegatesPassphrases.json"
	GenesisPassphraseFile    = "genesisPassphrase.json"
	DelegateFile             = "delegate.json"
)

// Network identifies one blockchain network instance.
type Network struct {
	Name          string `json:"name"`
	Nethash       string `json:"nethash"`
	PubKeyHash    byte   `json:"pubKeyHash"`
	WIF           byte   `json:"wif"`
	MessagePrefix string `json:"messagePrefix"`
}

// StorageOptions selects the storage backend a node process opens.
type StorageOptions struct {
	Backend string `json:"backend"`
	Name    string `json:"name"`
	Dir     string `json:"dir"`
}

// PeerAddress is a seed peer entry.
type PeerAddress struct {
	IP   string `json:"ip"`
	Port int    `json:"port"`
}

// PeerList holds the seed peers of a server definition.
type PeerList struct {
	MinimumNetworkReach int           `json:"minimumNetworkReach"`
	List                []PeerAddress `json:"list"`
}

// Server describes how a node process listens and logs.
type Server struct {
	Address      string         `json:"address"`
	Port         int            `json:"port"`
	Version      string         `json:"version"`
	FileLogLevel string         `json:"fileLogLevel"`
	DB           StorageOptions `json:"db"`
	Peers        PeerList       `json:"peers"`
}

// BaseURL returns the HTTP base URL of the server on localhost.
func (s *Server) BaseURL() string {
	return BaseURL(s.Port)
}

// BaseURL returns the localhost HTTP base URL for a port.
func BaseURL(port int) string {
	return fmt.Sprintf("http://localhost:%d", port)
}

// GenesisBlock is the first block of the chain. Transactions are kept raw;
// the harness never interprets them.
type GenesisBlock struct {
	ID                   string          `json:"id"`
	Version              int             `json:"version"`
	Height               int64           `json:"height"`
	Timestamp            int64           `json:"timestamp"`
	PreviousBlock        *string         `json:"previousBlock"`
	NumberOfTransactions int             `json:"numberOfTransactions"`
	TotalAmount          int64           `json:"totalAmount"`
	TotalFee             int64           `json:"totalFee"`
	Reward               int64           `json:"reward"`
	PayloadLength        int             `json:"payloadLength"`
	PayloadHash          string          `json:"payloadHash"`
	GeneratorPublicKey   string          `json:"generatorPublicKey"`
	BlockSignature       string          `json:"blockSignature"`
	Transactions         json.RawMessage `json:"transactions"`
}

// Passphrase is a delegate or genesis account secret.
type Passphrase struct {
	Passphrase string `json:"passphrase"`
	Address    string `json:"address,omitempty"`
	PublicKey  string `json:"publicKey,omitempty"`
}

// ForgerDelegates lists the secrets a forger process forges with.
type ForgerDelegates struct {
	Secrets []string `json:"secrets"`
}

// NodeOptions is what a node process is started from.
// Delegates is only used by forger processes.
type NodeOptions struct {
	Server       *Server
	GenesisBlock *GenesisBlock
	Network      *Network
	Delegates    *ForgerDelegates
}

// Set is a complete fixture directory.
type Set struct {
	Network           *Network
	Server            *Server
	GenesisBlock      *GenesisBlock
	Delegates         []Passphrase
	GenesisPassphrase *Passphrase
	Forger            *ForgerDelegates
}

// RelayOptions returns the options used to start a relay from this set.
func (s *Set) RelayOptions() NodeOptions {
	return NodeOptions{
		Server:       s.Server,
		GenesisBlock: s.GenesisBlock,
		Network:      s.Network,
	}
}

// ForgerOptions returns the options used to start a forger from this set.
func (s *Set) ForgerOptions() NodeOptions {
	opts := s.RelayOptions()
	opts.Delegates = s.Forger
	return opts
}
