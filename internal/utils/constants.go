package utils

// Application-wide names shared by the configuration loader and the CLI.
const (
	// ApplicationName is the command name.
	ApplicationName = "mdtree"
	// ConfigFileName is the name of the project-local configuration file.
	ConfigFileName = ".mdtree.yaml"
	// EnvironmentPrefix prefixes environment variable overrides, e.g. MDTREE_DOCUMENT_PATH.
	EnvironmentPrefix = "MDTREE"
	// GlobalConfigDirectoryName is the per-user configuration directory below the home directory.
	GlobalConfigDirectoryName = ".mdtree"
	// GlobalConfigFileName is the name of the per-user configuration file.
	GlobalConfigFileName = "config.yaml"
	// IgnoreFileName lists additional exclusion patterns inside the source tree.
	IgnoreFileName = ".mdtreeignore"
	// GitDirectoryName is the name of the Git repository directory.
	GitDirectoryName = ".git"

	// LoggerInitializationFailedMessageFormat reports a logger construction failure.
	LoggerInitializationFailedMessageFormat = "failed to initialize logger: %w"
	// ApplicationExecutionFailedMessage prefixes a fatal command failure.
	ApplicationExecutionFailedMessage = "mdtree failed"
)
