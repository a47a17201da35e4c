package sir

import (
	"os"
	"strconv"
	"sync"
	"time"
)

// Limits are the compile-time configurable constants of section 6.4.
const (
	maxFiles              = 16
	maxPlugins             = 16
	maxMessageBytes        = 4096
	rotationThreshold      = 5 << 20 // 5 MiB
	sizeCheckWriteInterval = 10
	hostnameRecheck        = 60 * time.Second
	threadNameRecheck      = 333 * time.Millisecond
	squelchThresholdStart  = 5
	squelchBackoffFactor   = 2
)

// StdioConfig is a stdio destination record: a level mask plus an option
// mask, nothing else (stdout/stderr need no identity or category).
type StdioConfig struct {
	Levels  LevelMask
	Options OptionMask
}

// SyslogConfig is the system-logger destination record.
type SyslogConfig struct {
	Levels   LevelMask
	Options  OptionMask
	Identity string // at most 128 bytes
	Category string // at most 64 bytes
}

// InitConfig is the two-stdio-plus-syslog-plus-name configuration passed to
// Init, per section 3 ("Init configuration").
type InitConfig struct {
	Stdout      StdioConfig
	Stderr      StdioConfig
	Syslog      SyslogConfig
	ProcessName string // at most 32 bytes, no embedded NUL
}

// MakeInitDefaults fills an InitConfig with the library's defaults without
// touching ProcessName, matching make_init_defaults in section 6.1.
func MakeInitDefaults() InitConfig {
	return InitConfig{
		Stdout: StdioConfig{Levels: LevelMask(LevelDebug | LevelInfo | LevelNotice), Options: OptAll},
		Stderr: StdioConfig{Levels: LevelMask(LevelWarn | LevelError | LevelCrit | LevelAlert | LevelEmerg), Options: OptAll},
		Syslog: SyslogConfig{Levels: MaskNone, Options: OptAll},
	}
}

func validInitConfig(c InitConfig) bool {
	if !validMask(c.Stdout.Levels) || !validOptions(c.Stdout.Options) {
		return false
	}
	if !validMask(c.Stderr.Levels) || !validOptions(c.Stderr.Options) {
		return false
	}
	if !validMask(c.Syslog.Levels) || !validOptions(c.Syslog.Options) {
		return false
	}
	if len(c.ProcessName) > 32 || len(c.Syslog.Identity) > 128 || len(c.Syslog.Category) > 64 {
		return false
	}
	return true
}

// squelchState is described in section 3; guarded by the config mutex along
// with the rest of cfg.
type squelchState struct {
	lastLevel Level
	lastHash  uint64
	lastHead  [2]byte
	run       int
	threshold int
	squelched bool
}

func freshSquelch() squelchState {
	return squelchState{threshold: squelchThresholdStart}
}

// libConfig is the process-wide config singleton of section 3, guarded by
// mutex section 1 ("Config"). It is never copied after cfgSingleton is
// constructed; noCopy makes go vet's copylocks check enforce that.
type libConfig struct {
	noCopy
	mu sync.Mutex

	initialized bool
	cfg         InitConfig

	hostname     string
	hostnameTime time.Time

	pid       int
	pidString string

	lastSecond  int64
	lastTimeStr string

	squelch squelchState
}

var cfgSingleton libConfig

// IsInitialized reports whether Init has been called without a matching
// Cleanup.
func IsInitialized() bool {
	cfgSingleton.mu.Lock()
	defer cfgSingleton.mu.Unlock()
	return cfgSingleton.initialized
}

// Init begins a logging session: the init-config is copied in, the system
// logger is opened if its level mask is non-zero, and the process's
// hostname/pid are captured. Init fails with Already if already
// initialized.
func Init(c InitConfig) bool {
	staticInit()
	clearError()

	cfgSingleton.mu.Lock()
	defer cfgSingleton.mu.Unlock()
	if cfgSingleton.initialized {
		setError("Init", Already)
		return false
	}
	if !validInitConfig(c) {
		setError("Init", Invalid)
		return false
	}

	c.Stdout.Levels = resolveLevels(c.Stdout.Levels, MaskAll)
	c.Stdout.Options = resolveOptions(c.Stdout.Options, OptAll)
	c.Stderr.Levels = resolveLevels(c.Stderr.Levels, MaskAll)
	c.Stderr.Options = resolveOptions(c.Stderr.Options, OptAll)
	c.Syslog.Levels = resolveLevels(c.Syslog.Levels, MaskNone)
	c.Syslog.Options = resolveOptions(c.Syslog.Options, OptAll)

	host, err := os.Hostname()
	if err != nil {
		host = ""
	}
	pid := os.Getpid()

	cfgSingleton.cfg = c
	cfgSingleton.hostname = host
	cfgSingleton.hostnameTime = time.Now()
	cfgSingleton.pid = pid
	cfgSingleton.pidString = strconv.Itoa(pid)
	cfgSingleton.squelch = freshSquelch()
	cfgSingleton.initialized = true

	if c.Syslog.Levels != MaskNone {
		if err := syslogDestination.Open(c.Syslog.Identity, c.Syslog.Category); err != nil {
			setErrorOS("Init", Platform, 0, err.Error())
			cfgSingleton.initialized = false
			return false
		}
	}

	return true
}

// Cleanup flushes/closes files, unloads plugins, closes the system logger,
// and resets the singletons so the process may Init again.
func Cleanup() bool {
	clearError()
	cfgSingleton.mu.Lock()
	if !cfgSingleton.initialized {
		cfgSingleton.mu.Unlock()
		setError("Cleanup", NotReady)
		return false
	}
	cfgSingleton.initialized = false
	syslogOpen := cfgSingleton.cfg.Syslog.Levels != MaskNone
	cfgSingleton.cfg = InitConfig{}
	cfgSingleton.squelch = freshSquelch()
	cfgSingleton.mu.Unlock()

	files.CloseAll()
	plugins.UnloadAll()
	if syslogOpen {
		_ = syslogDestination.Close()
	}
	return true
}

// refreshHostnameLocked re-resolves the hostname if at least hostnameRecheck has
// elapsed since the last attempt; failures keep the previous value, best
// effort, per section 4.1 step 2.
func (c *libConfig) refreshHostnameLocked(now time.Time) {
	if now.Sub(c.hostnameTime) < hostnameRecheck {
		return
	}
	c.hostnameTime = now
	if h, err := os.Hostname(); err == nil {
		c.hostname = h
	}
}

// timestampLocked returns the cached "HH:MM:SS" rendering, refreshing it
// only when the integer second has advanced, per section 4.1 step 3.
func (c *libConfig) timestampLocked(now time.Time) string {
	sec := now.Unix()
	if sec != c.lastSecond || c.lastTimeStr == "" {
		c.lastSecond = sec
		c.lastTimeStr = now.Format("15:04:05")
	}
	return c.lastTimeStr
}

// snapshot is the thread-local copy of the pieces of cfg a single dispatch
// call needs, taken under the config mutex and then used lock-free
// (section 4.1 step 5).
type snapshot struct {
	cfg      InitConfig
	hostname string
	pid      int
	pidStr   string
	time     string
	msec     int
}

func takeSnapshot() snapshot {
	now := time.Now()
	cfgSingleton.mu.Lock()
	cfgSingleton.refreshHostnameLocked(now)
	ts := cfgSingleton.timestampLocked(now)
	s := snapshot{
		cfg:      cfgSingleton.cfg,
		hostname: cfgSingleton.hostname,
		pid:      cfgSingleton.pid,
		pidStr:   cfgSingleton.pidString,
		time:     ts,
		msec:     now.Nanosecond() / 1e6,
	}
	cfgSingleton.mu.Unlock()
	return s
}
