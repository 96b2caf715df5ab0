package test

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/appian-deploy/appian-deploy/internal/db"
	"github.com/appian-deploy/appian-deploy/internal/db/repos"
)

// NewFileBasedTestDB creates a migrated SQLite history database in a temporary directory.
// It returns the database connection and the path to the temporary directory.
func NewFileBasedTestDB() (*gorm.DB, string, error) {
	tmpDir, err := os.MkdirTemp("", "appian_deploy_test")
	if err != nil {
		return nil, "", fmt.Errorf("failed to create temporary directory: %w", err)
	}
	gdb, err := db.New(db.Options{
		DSN:      filepath.Join(tmpDir, "history.db"),
		LogLevel: logger.Silent,
	})
	if err != nil {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			fmt.Printf("Warning: failed to remove temporary directory after database error: %v\n", rmErr)
		}
		return nil, "", fmt.Errorf("failed to open database: %w", err)
	}
	return gdb, tmpDir, nil
}

// CleanupTestDB closes the database connection and removes the temporary directory.
func CleanupTestDB(gdb *gorm.DB, tmpDir string) {
	sqlDB, err := gdb.DB()
	if err == nil && sqlDB != nil {
		if closeErr := sqlDB.Close(); closeErr != nil {
			fmt.Printf("Error closing database connection: %v\n", closeErr)
		}
	}
	if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
		fmt.Printf("Error removing temporary directory: %v\n", rmErr)
	}
}

// SetupTestDB configures the test suite with a fresh operation history database
func SetupTestDB(suite *Suite) {
	dbConn, tmpDir, err := NewFileBasedTestDB()
	suite.Require().NoError(err, "Failed to create file-based database")
	suite.DB = dbConn
	suite.OperationRepo = repos.NewOperationRepository(suite.DB)

	oldCleanup := suite.cleanup
	suite.cleanup = func() {
		if oldCleanup != nil {
			oldCleanup()
		}
		CleanupTestDB(suite.DB, tmpDir)
	}
}
