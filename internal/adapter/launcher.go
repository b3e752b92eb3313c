package adapter

import (
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// Launcher opens video and live room pages in an external player, falling
// back to the system browser
type Launcher struct {
	command   string   // configured player command, empty for detection
	args      []string // additional arguments for the player
	startFlag string   // offset flag prefix, e.g. "--start="
	logger    *slog.Logger
}

// startFlags maps players able to open bilibili URLs to their offset flag
var startFlags = map[string]string{
	"mpv":       "--start=",
	"iina":      "--mpv-start=",
	"celluloid": "--mpv-start=",
	"haruna":    "--mpv-start=",
}

// candidatePlayers is the detection order per platform; players need
// yt-dlp to resolve the page URL
var candidatePlayers = map[string][]string{
	"darwin":  {"iina", "mpv"},
	"linux":   {"mpv", "celluloid", "haruna"},
	"windows": {"mpv"},
}

// NewLauncher creates a launcher from the player config
func NewLauncher(cfg PlayerConfig, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}

	flag := cfg.StartFlag
	if flag == "" && cfg.Command != "" {
		if f, ok := startFlags[playerName(cfg.Command)]; ok {
			flag = f
			logger.Debug("auto-detected player offset flag", "player", cfg.Command, "flag", flag)
		}
	}

	return &Launcher{
		command:   cfg.Command,
		args:      cfg.Args,
		startFlag: flag,
		logger:    logger,
	}
}

// playerName strips directory and extension: /usr/bin/mpv.exe -> mpv
func playerName(command string) string {
	base := filepath.Base(command)
	return strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
}

// offsetArgs renders the resume position for flag ("-ss " takes a separate value)
func offsetArgs(flag string, start time.Duration) []string {
	if start <= 0 || flag == "" {
		return nil
	}
	secs := fmt.Sprintf("%.0f", start.Seconds())
	if strings.HasSuffix(flag, " ") {
		return []string{strings.TrimSuffix(flag, " "), secs}
	}
	return []string{flag + secs}
}

// Launch opens url in the configured player, a detected one, or the
// system default handler, in that order
func (l *Launcher) Launch(url string, start time.Duration) error {
	if l.command != "" {
		args := append(append([]string{}, l.args...), offsetArgs(l.startFlag, start)...)
		args = append(args, url)
		l.logger.Info("launching player", "command", l.command, "args", args)
		return exec.Command(l.command, args...).Start()
	}

	candidates, ok := candidatePlayers[runtime.GOOS]
	if !ok {
		candidates = candidatePlayers["linux"]
	}
	for _, name := range candidates {
		if _, err := exec.LookPath(name); err != nil {
			l.logger.Debug("player not found", "player", name)
			continue
		}
		args := append(offsetArgs(startFlags[name], start), url)
		if err := exec.Command(name, args...).Start(); err == nil {
			l.logger.Info("launched with detected player", "player", name)
			return nil
		}
	}

	return l.launchDefault(url)
}

// launchDefault opens the URL using the system default handler
func (l *Launcher) launchDefault(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}

	l.logger.Info("launching with system default", "os", runtime.GOOS, "url", url)
	return cmd.Start()
}
