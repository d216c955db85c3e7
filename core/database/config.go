package database

// Config holds configuration for the sync history database connection.
type Config struct {
	// Enabled turns on the sync history.
	Enabled bool `mapstructure:"enabled" default:"true"`
	// Host is the database host.
	Host string `mapstructure:"host" default:"localhost"`
	// Port is the database port.
	Port int `mapstructure:"port" default:"3306"`
	// User is the database user.
	User string `mapstructure:"user" default:"root"`
	// Password is the database password.
	Password string `mapstructure:"password" default:""`
	// Name is the database name, or the file path when Driver is sqlite.
	Name string `mapstructure:"name" default:"record-sync.db"`
	// Driver is the database driver (mysql, sqlite).
	Driver string `mapstructure:"driver" default:"sqlite"`
	// AutoMigrate creates or alters the history tables on startup. When false
	// the existing schema is only verified.
	AutoMigrate bool `mapstructure:"auto_migrate" default:"true"`
	// TimeoutSeconds is the connect and I/O timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)
