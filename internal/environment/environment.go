// Package environment bundles the process-wide resources every
// component needs — a record-store directory handle, a logger, and the
// loaded configuration — into one explicitly-constructed value.
//
// §5 describes "one process-wide record-store environment handle...
// initialized at startup... pointing at a user-supplied directory"; §9
// insists this and the catalog caches are owned values passed in
// explicitly, never package-level globals. Environment is that owned
// value.
package environment

import (
	"github.com/sirupsen/logrus"

	"github.com/tpkdev/lemurdb/internal/config"
	"github.com/tpkdev/lemurdb/internal/logging"
	"github.com/tpkdev/lemurdb/internal/recordstore"
)

// Environment is the handle every constructor in this module threads
// through explicitly: where relation files live, how to log, and the
// loaded settings.
type Environment struct {
	Library *recordstore.Library
	Log     *logrus.Logger
	Config  config.Config
}

// Open builds an Environment from cfg: a record-store library rooted at
// cfg.DataDir and a logger at cfg.LogLevel.
func Open(cfg config.Config) *Environment {
	return &Environment{
		Library: recordstore.NewLibrary(cfg.DataDir),
		Log:     logging.New(cfg.LogLevel),
		Config:  cfg,
	}
}
