// Command admin manages administrators and demo data for the blog database.
package main

import (
	"fmt"
	"os"

	"blogsite/internal/config"
	"blogsite/internal/database"

	"gorm.io/gorm"
)

func main() {
	open := func() (*gorm.DB, error) {
		cfg, err := config.LoadConfig()
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		return database.Connect(cfg)
	}

	if err := newRootCmd(open).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
