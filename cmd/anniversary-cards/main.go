package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/tartampluch/anniversary-cards/internal/app"
	"github.com/tartampluch/anniversary-cards/internal/config"
	"github.com/tartampluch/anniversary-cards/internal/widget"
)

// main delegates to runMain so deferred calls run before os.Exit.
func main() {
	os.Exit(runMain())
}

// runMain manages the application lifecycle, argument parsing, and exit codes.
func runMain() int {
	showVersion := flag.Bool(config.FlagVersion, false, config.FlagDescVersion)
	debugMode := flag.Bool(config.FlagDebug, false, config.FlagDescDebug)
	configPath := flag.String(config.FlagConfig, "", config.FlagDescConfig)
	once := flag.Bool(config.FlagOnce, false, config.FlagDescOnce)
	statesPath := flag.String(config.FlagStates, "", config.FlagDescStates)
	setPassword := flag.Bool(config.FlagSetPassword, false, config.FlagDescPassword)
	setToken := flag.Bool(config.FlagSetToken, false, config.FlagDescToken)
	flag.Parse()

	if *showVersion {
		printVersion()
		return config.ExitCodeSuccess
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return config.ExitCodeError
	}
	if *statesPath != "" {
		applyStates(cfg, *statesPath)
	}

	level, _ := config.ParseLogLevel(cfg.LogLevel)
	if *debugMode {
		level = slog.LevelDebug
	}
	logCloser := setupLogging(level, *debugMode)
	if logCloser != nil {
		defer func() {
			_ = logCloser.Close()
		}()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logStartupInfo()
	slog.Info(config.MsgConfigLoaded,
		config.LogKeyComponent, config.CompMain,
		config.LogKeyMode, cfg.SourceMode,
		config.LogKeyCount, len(cfg.Cards),
	)

	switch {
	case *setPassword:
		err = storePassword(cfg, os.Stdin)
	case *setToken:
		err = storeToken(os.Stdin)
	case *once:
		err = renderOnce(ctx, cfg, os.Stdout)
	default:
		err = run(ctx, cfg, *configPath)
	}
	if err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		return config.ExitCodeError
	}

	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return config.ExitCodeSuccess
}

// run serves until the context is cancelled, reloading the config file on change.
func run(ctx context.Context, cfg *config.App, configPath string) error {
	a, err := app.New(cfg)
	if err != nil {
		return err
	}

	if configPath != "" {
		stop, err := config.Watch(configPath, func(next *config.App) {
			next.SourceMode, next.StatesPath, next.StatesURL = cfg.SourceMode, cfg.StatesPath, cfg.StatesURL
			a.Reload(next)
		})
		if err != nil {
			slog.Warn(config.ErrConfigWatch, config.LogKeyComponent, config.CompMain, config.LogKeyError, err)
		} else {
			defer func() { _ = stop() }()
		}
	}

	return a.Run(ctx)
}

// renderOnce syncs, renders every card and writes the views as a JSON array.
func renderOnce(ctx context.Context, cfg *config.App, w io.Writer) error {
	// Renders wait for the explicit Flush below.
	a, err := app.New(cfg,
		app.WithoutRuntimeMetrics(),
		app.WithCardOptions(widget.WithDelay(time.Hour)),
	)
	if err != nil {
		return err
	}
	defer a.Board.Close()

	if err := a.Sync(ctx); err != nil {
		return err
	}
	a.Board.Flush()

	views := make([]widget.View, 0, len(cfg.Cards))
	for _, c := range a.Board.Cards() {
		if v, ok := c.Latest(); ok {
			views = append(views, v)
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(views); err != nil {
		return fmt.Errorf("%s: %w", config.ErrOnceEncode, err)
	}
	return nil
}

// applyStates points the states source at a Home Assistant URL or a dump file.
func applyStates(cfg *config.App, source string) {
	cfg.SourceMode = config.SourceModeStates
	if strings.HasPrefix(source, config.SchemeHTTP+"://") || strings.HasPrefix(source, config.SchemeHTTPS+"://") {
		cfg.StatesURL, cfg.StatesPath = source, ""
		return
	}
	cfg.StatesPath, cfg.StatesURL = source, ""
}

// readSecret reads one line from r without its line ending.
func readSecret(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// storePassword reads one line from r and saves it for the configured web user.
func storePassword(cfg *config.App, r io.Reader) error {
	if cfg.WebUser == "" {
		return errors.New(config.ErrWebUserEmpty)
	}
	password, err := readSecret(r)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrPasswordRead, err)
	}
	if err := app.StorePassword(cfg.WebUser, password); err != nil {
		return fmt.Errorf("%s: %w", config.ErrPasswordStore, err)
	}
	slog.Info(config.MsgPasswordStored, config.LogKeyComponent, config.CompMain, config.LogKeyUser, cfg.WebUser)
	return nil
}

// storeToken reads the Home Assistant access token from r and saves it.
func storeToken(r io.Reader) error {
	token, err := readSecret(r)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrTokenRead, err)
	}
	if token == "" {
		return errors.New(config.ErrTokenEmpty)
	}
	if err := app.StoreToken(token); err != nil {
		return fmt.Errorf("%s: %w", config.ErrTokenStore, err)
	}
	slog.Info(config.MsgTokenStored, config.LogKeyComponent, config.CompMain)
	return nil
}

func printVersion() {
	fmt.Printf(config.MsgVersionOutput,
		config.AppName,
		config.Version,
		config.Commit,
		config.Date,
		runtime.GOOS,
		runtime.GOARCH,
	)
}

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo() {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyCommit, config.Commit),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging configures the default slog logger: JSON to stderr and to a
// truncated log file in the user cache directory. Stdout stays free for -once.
func setupLogging(level slog.Level, addSource bool) io.Closer {
	writers := []io.Writer{os.Stderr}
	var logFile *os.File

	if logPath, err := getLogFilePath(); err == nil {
		// O_TRUNC resets logs on restart.
		f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
		if err == nil {
			writers = append(writers, f)
			logFile = f
		} else {
			fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, logPath, err)
		}
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: addSource,
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), opts)))

	if logFile == nil {
		return nil
	}
	return logFile
}

// getLogFilePath determines the platform-specific cache directory for logs.
func getLogFilePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}

	appDir := filepath.Join(cacheDir, config.AppID)
	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	return filepath.Join(appDir, config.LogFileName), nil
}
