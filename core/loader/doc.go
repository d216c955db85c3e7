// Package loader provides the plugin-like feature loading system.
//
// Each feature implements the Feature interface, which names the feature,
// reports whether it is enabled and registers its routes.
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// The Manager keeps features in registration order and LoadAll loads every
// enabled one, so modules like 'records' can be developed and tested in isolation.
package loader
