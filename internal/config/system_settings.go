package config

import (
	"os"
	"strconv"
)

const DATABASE_TYPE = "PLM_DATABASE_TYPE"
const DATABASE_URL = "PLM_DATABASE_URL"
const DATABASE_SQLLITE_FILE_NAME = "PLM_DATABASE_SQLLITE_FILE_NAME"
const APP_SECRET = "PLM_APP_SECRET" //ticket encryption key source, deliberately has no default
const TICKET_COOKIE_NAME = "PLM_TICKET_COOKIE_NAME"
const TICKET_EXPIRE_MINUTES = "PLM_TICKET_EXPIRE_MINUTES"
const MAX_LOGIN_RETRIES = "PLM_MAX_LOGIN_RETRIES"                   //failed logins before the identity is locked
const LOGIN_RETRY_WINDOW_MINUTES = "PLM_LOGIN_RETRY_WINDOW_MINUTES" //sliding window the failures are counted in

const DATABASE_TYPE_POSTGRES = "POSTGRES"
const DATABASE_TYPE_MYSQL = "MYSQL"
const DATABASE_TYPE_SQLLITE = "SQLLITE"

func GetSystemSettingInteger(settingKey string) int {
	val := GetSystemSettingString(settingKey)
	if val != "" {
		intValue, _ := strconv.Atoi(val)
		return intValue
	}

	return 0
}

func GetSystemSettingString(settingKey string) string {
	val := os.Getenv(settingKey)
	if val != "" {
		return val
	}
	if settingKey == TICKET_COOKIE_NAME {
		return "ticket"
	}
	if settingKey == TICKET_EXPIRE_MINUTES {
		return "60" // default to 1 hour
	}
	if settingKey == MAX_LOGIN_RETRIES {
		return "5"
	}
	if settingKey == LOGIN_RETRY_WINDOW_MINUTES {
		return "15" // default to 15 minutes
	}
	if settingKey == DATABASE_SQLLITE_FILE_NAME {
		return "./legacy.db"
	}
	return ""
}
