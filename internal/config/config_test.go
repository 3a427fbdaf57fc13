package config

import (
	"testing"
	"time"

	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/model"
)

func TestParseEquivalencies(t *testing.T) {
	groups, err := ParseEquivalencies("CORE 1900=ENGL 1900; CSCI 1010 = CSCI 1020 ;")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("want 2 groups, got %d", len(groups))
	}
	want := model.CourseCode{MajorCode: "ENGL", CourseNumber: "1900"}
	if groups[0][1] != want {
		t.Fatalf("want %v, got %v", want, groups[0][1])
	}
	if groups[1][0].String() != "CSCI 1010" {
		t.Fatalf("unexpected member %v", groups[1][0])
	}
}

func TestParseEquivalenciesRejectsBadCode(t *testing.T) {
	if _, err := ParseEquivalencies("CORE1900=ENGL 1900"); err == nil {
		t.Fatalf("expected error for code without a space")
	}
}

func TestParseEquivalenciesSkipsSingletons(t *testing.T) {
	groups, err := ParseEquivalencies("CORE 1900")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(groups) != 0 {
		t.Fatalf("single member groups should be dropped, got %v", groups)
	}
}

func TestLoadScheduleConfigDefaults(t *testing.T) {
	t.Setenv("SCHEDULE_CAMPUS", "")
	t.Setenv("SCHEDULE_EQUIVALENCIES", "")
	t.Setenv("SCHEDULE_MAX_SECTIONS", "")
	cfg := LoadScheduleConfig()
	if cfg.Campus != DefaultCampus {
		t.Fatalf("campus = %q", cfg.Campus)
	}
	if cfg.MaxSections != 6 {
		t.Fatalf("max sections = %d", cfg.MaxSections)
	}
	if len(cfg.Equivalencies) != 1 || cfg.Equivalencies[0][0].String() != "CORE 1900" {
		t.Fatalf("equivalencies = %v", cfg.Equivalencies)
	}
}

func TestLoadScheduleConfigAnyCampus(t *testing.T) {
	t.Setenv("SCHEDULE_CAMPUS", "any")
	t.Setenv("SCHEDULE_MAX_SECTIONS", "4")
	cfg := LoadScheduleConfig()
	if cfg.Campus != "" {
		t.Fatalf("campus filter should be off, got %q", cfg.Campus)
	}
	if cfg.MaxSections != 4 {
		t.Fatalf("max sections = %d", cfg.MaxSections)
	}
}

func TestLoadRateLimitConfigClamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "-1s")
	t.Setenv("RATE_LIMIT_TTL", "1ms")
	cfg := LoadRateLimitConfig()
	if cfg.Capacity != 1 {
		t.Fatalf("capacity = %d", cfg.Capacity)
	}
	if cfg.RefillInterval != time.Second {
		t.Fatalf("refill interval = %v", cfg.RefillInterval)
	}
	if cfg.TTL != time.Second {
		t.Fatalf("ttl = %v", cfg.TTL)
	}
}

func TestEnvBool(t *testing.T) {
	t.Setenv("X_FLAG", "YES")
	if !envBool("X_FLAG", false) {
		t.Fatalf("YES should be true")
	}
	t.Setenv("X_FLAG", "maybe")
	if envBool("X_FLAG", false) {
		t.Fatalf("unknown value should fall back to default")
	}
}
