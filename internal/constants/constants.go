package constants

// Environment variables consulted when the matching flag is absent.
const (
	EnvOutDir          = "AXIOM_OUT_DIR"
	EnvIntervalSeconds = "AXIOM_INTERVAL_SECONDS"
	EnvDisplay         = "AXIOM_DISPLAY"
	EnvRegion          = "AXIOM_REGION"
	EnvPidfile         = "AXIOM_PIDFILE"
	EnvFilenamePrefix  = "AXIOM_FILENAME_PREFIX"
	EnvCheckpointCSV   = "AXIOM_CHECKPOINT_CSV"
)

// Defaults applied when neither flag nor environment provides a value.
// File names are resolved relative to the output directory.
const (
	DefaultPidfileName    = "axiom.pid"
	DefaultCheckpointName = "axiom_checkpoints.csv"
	DefaultFilenamePrefix = "axiom_"
	DefaultInterval       = "5"
	DefaultDisplay        = 1
)

// DotenvCandidates are probed in the working directory before any
// environment variable is read. First hit wins.
var DotenvCandidates = []string{".env", "axiom.env"}
