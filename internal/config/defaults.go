package config

// Default returns the default configuration. The minimum file size is
// zero so empty files still participate in duplicate detection; two
// zero-byte files are duplicates of each other.
func Default() *Config {
	return &Config{
		MinFileSize:     "0B",
		MaxFileSize:     "",
		ExcludePatterns: []string{},
		Workers:         0,
		DryRun:          false,
		Verbose:         false,
		Output:          "summary",
	}
}
