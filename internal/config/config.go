package config // package config loads application configuration from environment variables

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/model"
)

// DefaultCampus is the campus whose sections the scheduler offers when
// SCHEDULE_CAMPUS is unset.
const DefaultCampus = "North Campus (Main Campus)"

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string
	DBPass         string // may be empty
	DBHost         string
	DBPort         string
	DBName         string
	DBMigrate      bool // create missing tables at startup
	JWTSecret      string
	AccessTTLMin   int
	RefreshTTLDays int
	BcryptCost     int
	Schedule       ScheduleConfig
}

// ScheduleConfig tunes the schedule generator.
type ScheduleConfig struct {
	Campus          string
	DefaultSemester string
	Equivalencies   [][]model.CourseCode
	MaxSections     int
}

// Load reads configuration values from environment variables and returns a
// Config.  Missing required variables stop the program with a fatal log.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		DBMigrate:      envBool("DB_MIGRATE", false),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     mustInt("BCRYPT_COST"),
		Schedule:       LoadScheduleConfig(),
	}
}

// LoadScheduleConfig reads the optional SCHEDULE_* variables.
func LoadScheduleConfig() ScheduleConfig {
	eq, err := ParseEquivalencies(envStr("SCHEDULE_EQUIVALENCIES", "CORE 1900=ENGL 1900"))
	if err != nil {
		log.Fatalf("invalid SCHEDULE_EQUIVALENCIES: %v", err)
	}
	cfg := ScheduleConfig{
		Campus:          envStr("SCHEDULE_CAMPUS", DefaultCampus),
		DefaultSemester: os.Getenv("SCHEDULE_DEFAULT_SEMESTER"),
		Equivalencies:   eq,
		MaxSections:     envInt("SCHEDULE_MAX_SECTIONS", 6),
	}
	if strings.EqualFold(cfg.Campus, "any") {
		cfg.Campus = ""
	}
	return cfg
}

// ParseEquivalencies reads groups of interchangeable courses written as
// "CORE 1900=ENGL 1900;CSCI 1010=CSCI 1020".  Groups are separated by ";"
// and members by "=".
func ParseEquivalencies(s string) ([][]model.CourseCode, error) {
	var groups [][]model.CourseCode
	for _, part := range strings.Split(s, ";") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		var group []model.CourseCode
		for _, member := range strings.Split(part, "=") {
			code, ok := model.ParseCourseCode(member)
			if !ok {
				return nil, fmt.Errorf("bad course code %q", strings.TrimSpace(member))
			}
			group = append(group, code)
		}
		if len(group) > 1 {
			groups = append(groups, group)
		}
	}
	return groups, nil
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
