package database

import (
	"sync"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type Database struct {
	Lock   sync.Mutex
	Cli    *gorm.DB
	Logger zerolog.Logger
}

// Models lists the tables managed by this package, for AutoMigrate.
func Models() []any {
	return []any{&Run{}, &RunDecision{}}
}
