package config

import (
	"testing"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "uptrace-dsn=https://token@api.uptrace.dev/123")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev/123" {
		t.Fatalf("unexpected UptraceDSN: %q", cfg.UptraceDSN)
	}
}

func TestLoad_SimulationDefaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DefaultTrials != 1000 {
		t.Fatalf("unexpected default trials: %d", cfg.DefaultTrials)
	}
	if cfg.StoppageMinutes != 5 {
		t.Fatalf("unexpected default stoppage minutes: %d", cfg.StoppageMinutes)
	}
	if cfg.SubCap != 5 {
		t.Fatalf("unexpected default sub cap: %d", cfg.SubCap)
	}
	if cfg.SaveSplit != 0 {
		t.Fatalf("unexpected default save split: %f", cfg.SaveSplit)
	}
	if cfg.FoulHomeFactor != 0.95 || cfg.FoulAwayFactor != 1.05 {
		t.Fatalf("unexpected venue factors: %f %f", cfg.FoulHomeFactor, cfg.FoulAwayFactor)
	}
	if cfg.FoulStatusFactors["trailing"] != 1.11 {
		t.Fatalf("unexpected trailing foul factor: %f", cfg.FoulStatusFactors["trailing"])
	}
	if cfg.SubOutMultipliers["leading"] != 1.1 || cfg.SubInMultipliers["leading"] != 0.9 {
		t.Fatalf("unexpected sub multipliers: %+v %+v", cfg.SubOutMultipliers, cfg.SubInMultipliers)
	}
}

func TestLoad_SimulationValidation(t *testing.T) {
	t.Run("trials must be positive", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("SIM_TRIALS", "0")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for SIM_TRIALS=0")
		}
	})

	t.Run("stoppage minutes bounded", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("SIM_STOPPAGE_MINUTES", "20")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for SIM_STOPPAGE_MINUTES=20")
		}
	})

	t.Run("save split bounded", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("SIM_SAVE_SPLIT", "1.5")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for SIM_SAVE_SPLIT=1.5")
		}
	})
}

func TestLoad_StatusFactorParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	t.Run("custom values", func(t *testing.T) {
		t.Setenv("SIM_FOUL_STATUS_FACTORS", "leading:0.8, level:1.05 ,trailing:1.2")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.FoulStatusFactors["leading"] != 0.8 {
			t.Fatalf("unexpected leading factor: %f", cfg.FoulStatusFactors["leading"])
		}
		if cfg.FoulStatusFactors["level"] != 1.05 {
			t.Fatalf("unexpected level factor: %f", cfg.FoulStatusFactors["level"])
		}
	})

	t.Run("unknown status", func(t *testing.T) {
		t.Setenv("SIM_FOUL_STATUS_FACTORS", "winning:0.8")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for unknown status key")
		}
	})

	t.Run("non-positive factor", func(t *testing.T) {
		t.Setenv("SIM_FOUL_STATUS_FACTORS", "leading:0")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for zero factor")
		}
	})
}

func TestLoad_PprofDefaultsAddrWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PPROF_ENABLED", "true")
	t.Setenv("PPROF_ADDR", "  ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PprofAddr != ":6060" {
		t.Fatalf("expected default pprof addr :6060, got %q", cfg.PprofAddr)
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("APP_SERVICE_NAME", "matchsim-api-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "matchsim-api-test" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_DBDisablePreparedBinaryResultParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("default true", func(t *testing.T) {
		t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.DBDisablePreparedBinary {
			t.Fatalf("expected DBDisablePreparedBinary=true by default")
		}
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "not-bool")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid DB_DISABLE_PREPARED_BINARY_RESULT")
		}
	})
}
