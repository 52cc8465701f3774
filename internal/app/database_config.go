package app

import "github.com/andrelmts/taskhive/internal/database"

// DatabaseServiceConfig converts DatabaseConfig to the database package representation.
func (c DatabaseConfig) DatabaseServiceConfig() database.Config {
	return database.Config{
		Driver:   c.Driver,
		Path:     c.Path,
		DSN:      c.DSN,
		Host:     c.Host,
		Port:     c.Port,
		Name:     c.Name,
		User:     c.Username,
		Password: c.Password,
	}
}
