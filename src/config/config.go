package config

import (
	"fmt"
	"os"
	"strconv"
)

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

const TIME_PARSE_FORMAT = "2006-01-02 15:04:05 -07:00"
const DATE_PARSE_FORMAT = "2006-01-02"
const SLOT_LABEL_FORMAT = "15:04"

// Default operating window used for availability slots when a venue has no
// operating-hours row for the day.
const (
	DEFAULT_OPEN_HOUR  = 8
	DEFAULT_CLOSE_HOUR = 22
)

func GetAPIEnv() string {
	return os.Getenv("API_ENV")
}

func OperatingWindow() (int, int) {
	openHour := DEFAULT_OPEN_HOUR
	closeHour := DEFAULT_CLOSE_HOUR
	if v := os.Getenv("VENUE_OPEN_HOUR"); v != "" {
		if atoi, err := strconv.Atoi(v); err == nil {
			openHour = atoi
		}
	}
	if v := os.Getenv("VENUE_CLOSE_HOUR"); v != "" {
		if atoi, err := strconv.Atoi(v); err == nil {
			closeHour = atoi
		}
	}
	return openHour, closeHour
}
