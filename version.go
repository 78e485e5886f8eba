package progresso

// Version is the current version of progresso
const Version = "0.3.0"

// VersionInfo contains detailed version information
type VersionInfo struct {
	// Version is the semantic version
	Version string
	// Backends lists the control backends compiled in
	Backends []string
	// Formats lists the supported document encodings
	Formats []string
}

// GetVersion returns the current version information
func GetVersion() VersionInfo {
	return VersionInfo{
		Version: Version,
		Backends: []string{
			BackendSc.String(),
			BackendSystemd.String(),
			BackendRunit.String(),
			BackendDaemontools.String(),
			BackendMemory.String(),
		},
		Formats: []string{FormatXML.String(), FormatYAML.String()},
	}
}
