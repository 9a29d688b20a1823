package archivist

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/archivist/internal/repositories/repomanager"
)

// Check is one line of a diagnostics run.
type Check struct {
	Name   string `json:"name"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail"`
}

// Healthy reports whether every check passed.
func Healthy(checks []Check) bool {
	for _, c := range checks {
		if !c.OK {
			return false
		}
	}
	return true
}

// Diagnose inspects configuration, storage and the retention job. It never
// fails; problems are reported as failed checks.
func (s *Service) Diagnose(ctx context.Context) []Check {
	checks := make([]Check, 0, 5)

	if missing := s.config.MissingAdapterSettings(); len(missing) > 0 {
		checks = append(checks, Check{"Configuration", false, "Missing: " + strings.Join(missing, ", ")})
	} else {
		checks = append(checks, Check{"Configuration", true, "All required settings are present."})
	}

	if err := s.Ping(ctx); err != nil {
		checks = append(checks, Check{"Database Connection", false, fmt.Sprintf("Database not reachable: %v", err)})
	} else {
		checks = append(checks, Check{"Database Connection", true, fmt.Sprintf("Connected using %s.", s.repomanager.Dialect())})
	}

	if missing := repomanager.MissingTables(ctx, s.db); len(missing) > 0 {
		checks = append(checks, Check{"Database Tables", false, "Missing tables: " + strings.Join(missing, ", ")})
	} else {
		checks = append(checks, Check{"Database Tables", true, "Required tables exist."})
	}

	if s.sweeper.Enabled() {
		checks = append(checks, Check{"Data Retention", true,
			fmt.Sprintf("Enabled: highlights older than %d days are deleted every %s.", s.sweeper.Days(), s.config.RetentionInterval)})
	} else {
		checks = append(checks, Check{"Data Retention", true, "Disabled: highlights are kept until cleared."})
	}

	if s.config.S3.Enabled() {
		checks = append(checks, Check{"Backup Storage", true, fmt.Sprintf("Local directory %s and bucket %s.", s.config.BackupDir, s.config.S3.Bucket)})
	} else {
		checks = append(checks, Check{"Backup Storage", true, fmt.Sprintf("Local directory %s.", s.config.BackupDir)})
	}

	return checks
}
