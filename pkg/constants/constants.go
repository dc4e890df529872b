// Package constants provides shared constants used throughout the tally
// codebase: default dataset file names, configuration keys, file
// permissions and the stage names reported by a pipeline run.
package constants

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Dataset names, used in logs, reports and errors
const (
	DatasetRegions     = "regions"
	DatasetDepartments = "departments"
	DatasetReferendum  = "referendum"
)

// Stage names of a pipeline run
const (
	StageAreas       = "areas"
	StageAssociation = "association"
	StageAggregate   = "aggregate"
)

// Default file names looked up inside the data directory. The loader
// picks the decoder from the extension.
const (
	DefaultRegionsFile     = "regions.csv"
	DefaultDepartmentsFile = "departments.csv"
	DefaultReferendumFile  = "referendum.csv"
)

// Path and configuration constants
const (
	// DefaultDataDir is where datasets are read from when nothing is configured
	DefaultDataDir = "data"

	// ConfigFileName is the base name of the config file (without extension)
	ConfigFileName = ".tally"

	// EnvPrefix is the prefix of every environment variable read by viper
	EnvPrefix = "TALLY"
)

// RatioPrecision is the number of decimals printed for ratios.
const RatioPrecision = 4
