package config

// DefaultServiceModule is the fixed service-module identifier passed to the
// spawned background process.
const DefaultServiceModule = "lattice.geometry"

const (
	defaultServerAddress   = "127.0.0.1"
	defaultServerPort      = 1753
	defaultStartupAttempts = 100
	defaultStartupDelayMS  = 100
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultLogDir          = "~/.local/share/lattice/logs"
	defaultHistoryPath     = "~/.local/share/lattice/history.db"
	defaultPointRadius     = 0.05
	defaultLineWidth       = 0.02
	defaultLabelHeight     = 0.1
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Server: Server{
			Address:         defaultServerAddress,
			Port:            defaultServerPort,
			Module:          DefaultServiceModule,
			StartupAttempts: defaultStartupAttempts,
			StartupDelayMS:  defaultStartupDelayMS,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
			Dir:    defaultLogDir,
		},
		History: History{
			Enabled: true,
			Path:    defaultHistoryPath,
		},
		Artist: Artist{
			NodeColor:   [3]float64{1, 1, 1},
			EdgeColor:   [3]float64{0, 0, 0},
			PointRadius: defaultPointRadius,
			LineWidth:   defaultLineWidth,
			LabelHeight: defaultLabelHeight,
		},
	}
}
