package config

// FileConfig represents the raw node-harness.toml file contents.
// All fields are pointers to distinguish "not set" from "set to zero/false".
type FileConfig struct {
	Harness  FileHarnessConfig `toml:"harness"`
	Polling  FilePollingConfig `toml:"polling"`
	Peers    FilePeersConfig   `toml:"peers"`
	Forger   FileForgerConfig  `toml:"forger"`
	Timeouts FileTimeoutConfig `toml:"timeouts"`
}

// FileHarnessConfig is the TOML representation of HarnessConfig.
type FileHarnessConfig struct {
	Network     *string `toml:"network"`
	FixturesDir *string `toml:"fixtures_dir"`
	BaseURL     *string `toml:"base_url"`
	LogLevel    *string `toml:"log_level"`
	SoftFail    *bool   `toml:"soft_fail"`
}

// FilePollingConfig is the TOML representation of PollingConfig.
// Uses strings for duration values since TOML cannot decode directly to time.Duration.
type FilePollingConfig struct {
	Interval   *string `toml:"interval"`
	Acceptance *string `toml:"acceptance"`
}

// FilePeersConfig is the TOML representation of PeersConfig.
type FilePeersConfig struct {
	OperatingSystems []string `toml:"operating_systems"`
	Ports            []int    `toml:"ports"`
	Host             *string  `toml:"host"`
}

// FileForgerConfig is the TOML representation of ForgerConfig.
type FileForgerConfig struct {
	SeedPeer *string `toml:"seed_peer"`
}

// FileTimeoutConfig is the TOML representation of TimeoutConfig.
type FileTimeoutConfig struct {
	Request  *string `toml:"request"`
	Shutdown *string `toml:"shutdown"`
}

// IsEmpty returns true if no configuration values are set.
func (f *FileConfig) IsEmpty() bool {
	return f.Harness.Network == nil &&
		f.Harness.FixturesDir == nil &&
		f.Harness.BaseURL == nil &&
		f.Harness.LogLevel == nil &&
		f.Harness.SoftFail == nil &&
		f.Polling.Interval == nil &&
		f.Polling.Acceptance == nil &&
		f.Peers.OperatingSystems == nil &&
		f.Peers.Ports == nil &&
		f.Peers.Host == nil &&
		f.Forger.SeedPeer == nil &&
		f.Timeouts.Request == nil &&
		f.Timeouts.Shutdown == nil
}
