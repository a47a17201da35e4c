// Package sir is a thread-safe, multi-destination structured logging
// library: stdout, stderr, the system logger, rotating files, and dynamically
// loaded plugins, each with its own level mask and formatting options, plus
// a duplicate-message squelch detector and a per-goroutine error surface.
package sir

import (
	"github.com/quay/sir/internal/destconsole"
	"github.com/quay/sir/internal/destfile"
	"github.com/quay/sir/internal/destplugin"
	"github.com/quay/sir/internal/destsyslog"
)

var (
	files             = destfile.New(destfile.Hooks{Diag: diagNoop, RotateFailed: diagRotateFailed})
	plugins           = destplugin.New(destplugin.NewLoader(), destplugin.Hooks{CleanupFailed: diagPluginCleanupFailed})
	syslogDestination = destsyslog.New()

	consoleStdout = destconsole.Stdout()
	consoleStderr = destconsole.Stderr()
)

// AddFile opens path for logging, creating it if it does not already exist,
// and returns an identifier used by FileLevels/FileOptions/RemFile. A
// MaskDefault/OptDefault levels/options value is resolved to the library's
// file defaults (ALL levels, ALL fields shown) before storage.
func AddFile(path string, levels LevelMask, options OptionMask) (uint32, bool) {
	clearError()
	if !IsInitialized() {
		setError("AddFile", NotReady)
		return 0, false
	}
	if path == "" {
		setError("AddFile", BadString)
		return 0, false
	}
	levels = resolveLevels(levels, MaskAll)
	options = resolveOptions(options, OptAll)
	if !validMask(levels) || !validOptions(options) {
		setError("AddFile", BadOptions)
		return 0, false
	}

	id, err := files.Add(path, uint32(levels), uint32(options), options.has(OptNoHdr))
	if err != nil {
		return 0, fileErrToKind("AddFile", err)
	}
	return id, true
}

// RemFile closes and forgets the file identified by id.
func RemFile(id uint32) bool {
	clearError()
	if err := files.Remove(id); err != nil {
		return fileErrToKind("RemFile", err)
	}
	return true
}

// FileLevels updates the level mask of the file identified by id.
func FileLevels(id uint32, levels LevelMask) bool {
	clearError()
	levels = resolveLevels(levels, MaskAll)
	if !validMask(levels) {
		setError("FileLevels", BadLevels)
		return false
	}
	if err := files.SetLevels(id, uint32(levels)); err != nil {
		return fileErrToKind("FileLevels", err)
	}
	return true
}

// FileOptions updates the option mask of the file identified by id.
func FileOptions(id uint32, options OptionMask) bool {
	clearError()
	options = resolveOptions(options, OptAll)
	if !validOptions(options) {
		setError("FileOptions", BadOptions)
		return false
	}
	if err := files.SetOptions(id, uint32(options)); err != nil {
		return fileErrToKind("FileOptions", err)
	}
	return true
}

func fileErrToKind(loc string, err error) bool {
	switch err {
	case destfile.ErrDup:
		setError(loc, DupItem)
	case destfile.ErrFull:
		setError(loc, NoRoom)
	case destfile.ErrNoItem:
		setError(loc, NoItem)
	default:
		setErrorOS(loc, Platform, 0, err.Error())
	}
	return false
}

// LoadPlugin loads the dynamically-linked module at path, queries and
// initializes it, and returns an identifier used by UnloadPlugin.
func LoadPlugin(path string) (uint32, bool) {
	clearError()
	if !IsInitialized() {
		setError("LoadPlugin", NotReady)
		return 0, false
	}
	id, err := plugins.Load(path)
	if err == nil {
		return id, true
	}
	switch {
	case err == destplugin.ErrDup:
		setError("LoadPlugin", DupItem)
	case err == destplugin.ErrFull:
		setError("LoadPlugin", NoRoom)
	case err == destplugin.ErrVersion:
		setError("LoadPlugin", PluginVersion)
	case err == destplugin.ErrData:
		setError("LoadPlugin", PluginData)
	case err == destplugin.ErrQuery, err == destplugin.ErrInitFailed:
		setError("LoadPlugin", PluginError)
	default:
		setError("LoadPlugin", PluginBad)
	}
	return 0, false
}

// UnloadPlugin runs cleanup() on and unmaps the plugin identified by id.
func UnloadPlugin(id uint32) bool {
	clearError()
	if err := plugins.Unload(id); err != nil {
		if err == destplugin.ErrNoItem {
			setError("UnloadPlugin", NoItem)
		} else {
			setErrorOS("UnloadPlugin", Platform, 0, err.Error())
		}
		return false
	}
	return true
}

// StdoutLevels, StderrLevels, and SyslogLevels update the level mask of
// their respective built-in destination; they fail with NotReady before
// Init.
func StdoutLevels(levels LevelMask) bool { return setStdioLevels(&cfgSingleton.cfg.Stdout, levels, "StdoutLevels") }
func StderrLevels(levels LevelMask) bool { return setStdioLevels(&cfgSingleton.cfg.Stderr, levels, "StderrLevels") }

func setStdioLevels(dst *StdioConfig, levels LevelMask, loc string) bool {
	clearError()
	if !IsInitialized() {
		setError(loc, NotReady)
		return false
	}
	levels = resolveLevels(levels, MaskAll)
	if !validMask(levels) {
		setError(loc, BadLevels)
		return false
	}
	cfgSingleton.mu.Lock()
	dst.Levels = levels
	cfgSingleton.mu.Unlock()
	return true
}

// StdoutOptions and StderrOptions update the option mask of their
// respective built-in destination.
func StdoutOptions(options OptionMask) bool {
	return setStdioOptions(&cfgSingleton.cfg.Stdout, options, "StdoutOptions")
}
func StderrOptions(options OptionMask) bool {
	return setStdioOptions(&cfgSingleton.cfg.Stderr, options, "StderrOptions")
}

func setStdioOptions(dst *StdioConfig, options OptionMask, loc string) bool {
	clearError()
	if !IsInitialized() {
		setError(loc, NotReady)
		return false
	}
	options = resolveOptions(options, OptAll)
	if !validOptions(options) {
		setError(loc, BadOptions)
		return false
	}
	cfgSingleton.mu.Lock()
	dst.Options = options
	cfgSingleton.mu.Unlock()
	return true
}

// SyslogLevels updates the system logger's level mask, opening or closing
// the underlying connection as the mask transitions to/from MaskNone.
func SyslogLevels(levels LevelMask) bool {
	clearError()
	if !IsInitialized() {
		setError("SyslogLevels", NotReady)
		return false
	}
	levels = resolveLevels(levels, MaskNone)
	if !validMask(levels) {
		setError("SyslogLevels", BadLevels)
		return false
	}

	cfgSingleton.mu.Lock()
	wasOpen := cfgSingleton.cfg.Syslog.Levels != MaskNone
	willOpen := levels != MaskNone
	identity, category := cfgSingleton.cfg.Syslog.Identity, cfgSingleton.cfg.Syslog.Category
	cfgSingleton.cfg.Syslog.Levels = levels
	cfgSingleton.mu.Unlock()

	if willOpen && !wasOpen {
		if err := syslogDestination.Open(identity, category); err != nil {
			setErrorOS("SyslogLevels", Platform, 0, err.Error())
			return false
		}
	} else if wasOpen && !willOpen {
		_ = syslogDestination.Close()
	}
	return true
}

// SyslogOptions updates the system logger's formatting option mask.
func SyslogOptions(options OptionMask) bool {
	clearError()
	if !IsInitialized() {
		setError("SyslogOptions", NotReady)
		return false
	}
	options = resolveOptions(options, OptAll)
	if !validOptions(options) {
		setError("SyslogOptions", BadOptions)
		return false
	}
	cfgSingleton.mu.Lock()
	cfgSingleton.cfg.Syslog.Options = options
	cfgSingleton.mu.Unlock()
	return true
}

// SyslogID and SyslogCat update the identity/category strings the system
// logger uses as its tag, reconnecting transparently if it is currently
// open (section 4.5).
func SyslogID(id string) bool  { return setSyslogIdentity(id, "", true, false) }
func SyslogCat(cat string) bool { return setSyslogIdentity("", cat, false, true) }

func setSyslogIdentity(id, cat string, setID, setCat bool) bool {
	loc := "SyslogID"
	if setCat {
		loc = "SyslogCat"
	}
	clearError()
	if !IsInitialized() {
		setError(loc, NotReady)
		return false
	}
	if setID && len(id) > 128 {
		setError(loc, BadString)
		return false
	}
	if setCat && len(cat) > 64 {
		setError(loc, BadString)
		return false
	}

	cfgSingleton.mu.Lock()
	if setID {
		cfgSingleton.cfg.Syslog.Identity = id
	}
	if setCat {
		cfgSingleton.cfg.Syslog.Category = cat
	}
	open := cfgSingleton.cfg.Syslog.Levels != MaskNone
	identity, category := cfgSingleton.cfg.Syslog.Identity, cfgSingleton.cfg.Syslog.Category
	cfgSingleton.mu.Unlock()

	if open {
		if err := syslogDestination.Reconfigure(identity, category); err != nil {
			setErrorOS(loc, Platform, 0, err.Error())
			return false
		}
	}
	return true
}

func resolveLevels(m, def LevelMask) LevelMask {
	if m == MaskDefault {
		return def
	}
	return m
}

func resolveOptions(o, def OptionMask) OptionMask {
	if o == OptDefault {
		return def
	}
	return o
}
