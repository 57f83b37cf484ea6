package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"time"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	repoURL   string
	buildTime string
	buildID   string
	startTime time.Time
	logger    *slog.Logger

	mu     sync.RWMutex
	checks map[string]ReadinessProbe
}

// ReadinessProbe reports whether one dependency can serve requests.
type ReadinessProbe func(ctx context.Context) error

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

// NewHealthService creates a new health service with build information
func NewHealthService(version, repoURL, buildTime, buildID string, logger *slog.Logger) *HealthService {
	// Ensure we have a logger
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.String("repo_url", repoURL),
		slog.String("build_time", buildTime),
		slog.String("build_id", buildID))

	return &HealthService{
		version:   version,
		repoURL:   repoURL,
		buildTime: buildTime,
		buildID:   buildID,
		startTime: time.Now(),
		logger:    logger,
		checks:    make(map[string]ReadinessProbe),
	}
}

// NewHealthServiceWithLogger creates a health service without build information
func NewHealthServiceWithLogger(version, repoURL string, logger *slog.Logger) *HealthService {
	return NewHealthService(version, repoURL, "", "", logger)
}

// Register adds a named readiness probe.
func (hs *HealthService) Register(name string, probe ReadinessProbe) {
	hs.mu.Lock()
	defer hs.mu.Unlock()
	hs.checks[name] = probe
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "HealthCheck: performing health check",
		slog.String("version", hs.version),
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck runs every registered probe. The service is ready when all
// probes pass.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  make(map[string]interface{}),
	}

	hs.mu.RLock()
	names := make([]string, 0, len(hs.checks))
	for name := range hs.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	probes := make([]ReadinessProbe, len(names))
	for i, name := range names {
		probes[i] = hs.checks[name]
	}
	hs.mu.RUnlock()

	for i, name := range names {
		sh := ServiceHealth{Status: "ready", Uptime: time.Since(hs.startTime).String()}
		if err := probes[i](ctx); err != nil {
			sh = ServiceHealth{Status: "not_ready", Message: fmt.Sprintf("%s: %v", name, err)}
			status.Status = "not_ready"
			hs.logger.WarnContext(ctx, "readiness probe failed",
				slog.String("service", name),
				slog.String("error", err.Error()))
		}
		status.Services[name] = sh
	}

	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"version":      hs.version,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"repo_url":     hs.repoURL,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}

	// Include build info if available
	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	if hs.buildID != "" {
		result["build_id"] = hs.buildID
	}

	return result
}
