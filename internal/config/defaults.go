package config

// DefaultMaxValueLength keeps any single string property under the
// host format's field-size ceiling.
const DefaultMaxValueLength = 199999

// DefaultConfig returns configuration with sensible defaults.
// These defaults are used when no config file exists or when
// config file is missing specific fields.
func DefaultConfig() *Config {
	return &Config{
		Build: BuildConfig{
			ContainerClass: "Folder",
			Outputs:        []string{"game.rbxmx"},
			Ignore: []string{
				".git",
				ConfigDirName,
			},
			MaxValueLength: DefaultMaxValueLength,
		},
		Entry: EntryConfig{
			Server: "main",
			Client: "client",
		},
		Check: CheckConfig{
			Syntax: boolPtr(true),
		},
	}
}

func boolPtr(b bool) *bool {
	return &b
}

// Merge merges loaded config with defaults.
// Values from loaded config take precedence over defaults.
// Returns a new Config with merged values.
func Merge(loaded, defaults *Config) *Config {
	result := &Config{}

	result.Build = mergeBuildConfig(loaded.Build, defaults.Build)
	result.Entry = mergeEntryConfig(loaded.Entry, defaults.Entry)
	result.Check = mergeCheckConfig(loaded.Check, defaults.Check)

	return result
}

func mergeBuildConfig(loaded, defaults BuildConfig) BuildConfig {
	result := BuildConfig{}

	if loaded.ContainerClass != "" {
		result.ContainerClass = loaded.ContainerClass
	} else {
		result.ContainerClass = defaults.ContainerClass
	}

	// RootName: empty is meaningful (use the source dir name), so the
	// loaded value is taken as-is.
	result.RootName = loaded.RootName

	if len(loaded.Outputs) > 0 {
		result.Outputs = loaded.Outputs
	} else {
		result.Outputs = defaults.Outputs
	}

	if len(loaded.Ignore) > 0 {
		result.Ignore = loaded.Ignore
	} else {
		result.Ignore = defaults.Ignore
	}

	if loaded.MaxValueLength != 0 {
		result.MaxValueLength = loaded.MaxValueLength
	} else {
		result.MaxValueLength = defaults.MaxValueLength
	}

	return result
}

func mergeEntryConfig(loaded, defaults EntryConfig) EntryConfig {
	result := EntryConfig{}

	if loaded.Server != "" {
		result.Server = loaded.Server
	} else {
		result.Server = defaults.Server
	}

	if loaded.Client != "" {
		result.Client = loaded.Client
	} else {
		result.Client = defaults.Client
	}

	return result
}

func mergeCheckConfig(loaded, defaults CheckConfig) CheckConfig {
	result := CheckConfig{}

	if loaded.Syntax != nil {
		result.Syntax = loaded.Syntax
	} else {
		result.Syntax = defaults.Syntax
	}

	return result
}
