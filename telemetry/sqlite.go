// telemetry/sqlite.go
// Copyright(c) 2025-2026 OpenRA contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package telemetry

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SQLiteBackend writes runs to a SQLite file through gorm. State rows
// arrive one batch per tick, so the connection is tuned for insert
// throughput rather than durability; a crashed run loses its tail.
type SQLiteBackend struct {
	db  *gorm.DB
	run *Run
}

func NewSQLite(path string) (*SQLiteBackend, error) {
	if path == "" {
		path = "file::memory:?cache=shared"
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		CreateBatchSize:        2000,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode = MEMORY;",
		"PRAGMA synchronous = OFF;",
		"PRAGMA temp_store = MEMORY;",
	} {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("setting PRAGMA: %w", err)
		}
	}

	if err := db.AutoMigrate(&Run{}, &ActorState{}, &RunEvent{}); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}
	return &SQLiteBackend{db: db}, nil
}

func (b *SQLiteBackend) BeginRun(run *Run) error {
	if err := b.db.Create(run).Error; err != nil {
		return fmt.Errorf("creating run: %w", err)
	}
	b.run = run
	return nil
}

func (b *SQLiteBackend) RecordState(states []ActorState) error {
	if len(states) == 0 {
		return nil
	}
	for i := range states {
		states[i].RunID = b.run.ID
	}
	return b.db.Create(&states).Error
}

func (b *SQLiteBackend) RecordEvent(ev *RunEvent) error {
	ev.RunID = b.run.ID
	return b.db.Create(ev).Error
}

func (b *SQLiteBackend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
