// Command manage runs administrative tasks against the application database:
// schema migration and creation or promotion of staff accounts.
package main

import (
	"fmt"
	"os"

	"gorm.io/gorm"

	"assistant/pkg/config"
	"assistant/pkg/database"
	"assistant/pkg/logger"
)

func main() {
	open := func() (*gorm.DB, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		return database.Open(cfg.DBDriver, cfg.DBDSN, logger.New(cfg))
	}
	if err := newRootCmd(open).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
