package main

import (
	"flag"
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/localnerve/brokerdb/internal/database"
	"github.com/localnerve/brokerdb/internal/utils"
	"gorm.io/gorm"
)

type schemaObject struct {
	Type string
	Name string
	SQL  string
}

func main() {
	withConstraints := flag.Bool("constraints", true, "apply the constraint script after auto-migrate")
	flag.Parse()

	utils.InitLogger("inspect_schema")

	db, err := gorm.Open(sqlite.Open(":memory:?_pragma=foreign_keys(1)"), database.GormConfig("silent"))
	if err != nil {
		utils.Logger.Fatalf("Failed to open sqlite: %v", err)
	}

	if *withConstraints {
		err = database.Migrate(db, "sqlite")
	} else {
		err = database.AutoMigrate(db)
	}
	if err != nil {
		utils.Logger.Fatalf("Failed to migrate: %v", err)
	}

	var objects []schemaObject
	err = db.Raw("SELECT type, name, sql FROM sqlite_master WHERE sql IS NOT NULL AND name NOT LIKE 'sqlite_%' ORDER BY type DESC, name").
		Scan(&objects).Error
	if err != nil {
		utils.Logger.Fatalf("Failed to read schema: %v", err)
	}

	for _, obj := range objects {
		fmt.Printf("\n=== %s: %s ===\n%s\n", obj.Type, obj.Name, obj.SQL)
	}
}
