package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-html2pdf/internal/config"
	"github.com/alnah/go-html2pdf/internal/fileutil"
	"github.com/alnah/go-html2pdf/internal/hints"
)

const versionProbeTimeout = 10 * time.Second

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string      `json:"status"` // "ready", "warnings", "errors"
	Browser  browserInfo `json:"browser"`
	Env      envInfo     `json:"environment"`
	System   systemInfo  `json:"system"`
	Warnings []string    `json:"warnings,omitempty"`
	Errors   []string    `json:"errors,omitempty"`
}

// browserInfo holds executable resolution results.
type browserInfo struct {
	Found     bool   `json:"found"`
	Path      string `json:"path,omitempty"`
	Strategy  string `json:"strategy,omitempty"`
	Version   string `json:"version,omitempty"`
	Engine    string `json:"engine"`
	Isolation bool   `json:"isolation"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Environment   string `json:"environment"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	BrowserBin    string `json:"browser_bin,omitempty"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable  bool `json:"temp_writable"`
	CacheWritable bool `json:"cache_writable"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(ctx context.Context, args []string, env *Environment) int {
	f, fs, err := parseDoctorFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintln(env.Stderr, err)
		return ExitUsage
	}
	cfg, err := loadConfig(env, fs, &f.common, &f.browser)
	if err != nil {
		fmt.Fprintln(env.Stderr, err)
		return exitCodeFor(err)
	}

	result := runDoctor(ctx, cfg, env)

	if f.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(ctx context.Context, cfg *config.Config, env *Environment) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:          runtime.GOOS,
			Arch:        runtime.GOARCH,
			Environment: cfg.Environment,
			BrowserBin:  cfg.Browser.Bin,
		},
		Browser: browserInfo{
			Engine:    cfg.Browser.Engine,
			Isolation: cfg.Isolation(),
		},
	}

	checkEnvironment(result, cfg, env.Getenv)
	checkSystem(result, cfg)
	checkBrowser(ctx, result, cfg, env)

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkBrowser resolves the executable the way the server would.
func checkBrowser(ctx context.Context, result *doctorResult, cfg *config.Config, env *Environment) {
	conv, err := newConverter(cfg, newLogger(cfg, env.Stderr), nil)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return
	}
	defer func() { _ = conv.Close() }()

	path, err := conv.Executable(ctx)
	if err != nil {
		msg := err.Error()
		if cfg.Browser.Bin == "" {
			msg += hints.ForResolve()
		}
		result.Errors = append(result.Errors, msg)
		return
	}

	result.Browser.Found = true
	result.Browser.Path = path
	result.Browser.Strategy = conv.ExecutableStrategy()

	probeCtx, cancel := context.WithTimeout(ctx, versionProbeTimeout)
	defer cancel()
	out, err := exec.CommandContext(probeCtx, path, "--version").Output() // #nosec G204 -- path comes from resolution
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get browser version: %v", err))
		return
	}
	result.Browser.Version = strings.TrimSpace(string(out))
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult, cfg *config.Config, getenv func(string) string) {
	result.Env.Container, result.Env.ContainerHint = isContainer(getenv)

	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	if result.Env.Container && !cfg.IsProduction() && cfg.Browser.Bin == "" {
		result.Warnings = append(result.Warnings,
			"Container detected outside production: Chromium is downloaded on first use. Set HTML2PDF_BROWSER_BIN to use an installed browser")
	}
	if cfg.IsProduction() && !cfg.Isolation() {
		result.Warnings = append(result.Warnings,
			"Production without isolation: one browser process is shared across requests")
	}
}

// isContainer reports whether we run in a container and which signal said so.
func isContainer(getenv func(string) string) (bool, string) {
	if getenv("HTML2PDF_CONTAINER") == "1" {
		return true, "HTML2PDF_CONTAINER=1"
	}
	if hints.IsInContainer() {
		return true, "/.dockerenv"
	}
	// Podman / systemd-nspawn
	if v := getenv("container"); v != "" {
		return true, "container=" + v
	}
	if getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies that the directories the service writes to are writable.
func checkSystem(result *doctorResult, cfg *config.Config) {
	tmpDir := os.TempDir()
	if err := probeWritable(tmpDir); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", tmpDir))
	} else {
		result.System.TempWritable = true
	}

	if cfg.IsProduction() || cfg.Browser.Bin != "" {
		return
	}
	if err := probeWritable(cfg.Browser.CacheDir); err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Browser cache directory not writable: %s", cfg.Browser.CacheDir))
		return
	}
	result.System.CacheWritable = true
}

func probeWritable(dir string) error {
	if err := fileutil.EnsureDir(dir); err != nil {
		return err
	}
	testFile := filepath.Join(dir, ".html2pdf-doctor-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		return err
	}
	return os.Remove(testFile)
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "html2pdfd doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Browser")
	if r.Browser.Found {
		fmt.Fprintf(w, "  [OK] Found at %s (%s)\n", r.Browser.Path, r.Browser.Strategy)
		if r.Browser.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Browser.Version)
		}
	} else {
		fmt.Fprintln(w, "  [ERROR] Not found")
	}
	fmt.Fprintf(w, "  [OK] Engine: %s\n", r.Browser.Engine)
	if r.Browser.Isolation {
		fmt.Fprintln(w, "  [OK] Isolation: one process per request")
	} else {
		fmt.Fprintln(w, "  [OK] Isolation: shared process")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	fmt.Fprintf(w, "  [OK] Environment: %s\n", r.Env.Environment)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	if r.System.CacheWritable {
		fmt.Fprintln(w, "  [OK] Browser cache: writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to render")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
