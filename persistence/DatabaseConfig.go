package persistence

import (
	"database/sql"
	"errors"
	"os"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jinzhu/gorm/dialects/mysql"
)

type DatabaseConfig struct {
	DriverType string
	DriverArgs string
}

// ParseDatabaseConfigFromEnv DATABASE_DRIVER, DATABASE_ARGS
// mysql example: root:root@(127.0.0.1:3306)/payflow?charset=utf8mb4&parseTime=True&loc=Local
func ParseDatabaseConfigFromEnv() (*DatabaseConfig, error) {
	driver := os.Getenv("DATABASE_DRIVER")
	if driver == "" {
		driver = "mysql"
	}
	args := os.ExpandEnv(os.Getenv("DATABASE_ARGS"))
	if args == "" {
		return nil, errors.New("environment variable DATABASE_ARGS is not set")
	}
	return &DatabaseConfig{DriverType: driver, DriverArgs: args}, nil
}

// PrepareMysqlDatabase create the database of driverArgs when absent
func PrepareMysqlDatabase(driverArgs string) error {
	databaseName, err := extractDatabaseName(driverArgs)
	if err != nil {
		return err
	}
	serverArgs := strings.Replace(driverArgs, "/"+databaseName, "/", 1)

	conn, err := sql.Open("mysql", serverArgs)
	if err != nil {
		return err
	}
	defer conn.Close()

	_, err = conn.Exec("CREATE DATABASE IF NOT EXISTS `" + databaseName + "` CHARACTER SET utf8mb4")
	return err
}

func extractDatabaseName(driverArgs string) (string, error) {
	s := driverArgs
	if idx := strings.Index(s, "?"); idx >= 0 {
		s = s[0:idx]
	}
	idx := strings.LastIndex(s, "/")
	if idx < 0 || idx == len(s)-1 {
		return "", errors.New("no database name found in driver args")
	}
	return s[idx+1:], nil
}
